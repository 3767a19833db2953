// Redis stores the last payload of every pipe and publishes each packet.
// The key of a pipe is <prefix>:pipe:<n>, the value is the payload in hex.
// Published messages are "<pipe> <hex payload>".
package Redis

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/JSkrat/rfm75/TranscieverModel"
	"github.com/go-redis/redis/v8"
)

const defaultPrefix = "rfm75"

// client is the part of *redis.Client the output uses
type client interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Close() error
}

type Settings struct {
	Address  string
	Password string
	DB       int
	Prefix   string
	// Channel is where packets get published, empty disables publishing
	Channel string
	// TTL of the pipe keys, 0 keeps them forever
	TTL time.Duration
}

type Interface struct {
	db       client
	settings Settings
}

func Init(settings Settings) *Interface {
	db := redis.NewClient(&redis.Options{
		Addr:     settings.Address,
		Password: settings.Password,
		DB:       settings.DB,
	})
	return newInterface(db, settings)
}

func newInterface(db client, settings Settings) *Interface {
	if "" == settings.Prefix {
		settings.Prefix = defaultPrefix
	}
	return &Interface{db: db, settings: settings}
}

// Key returns the key the payloads of a pipe are stored under
func (i *Interface) Key(pipe int) string {
	return fmt.Sprintf("%v:pipe:%d", i.settings.Prefix, pipe)
}

func (i *Interface) PacketReceived(ctx context.Context, packet TranscieverModel.Packet) error {
	value := hex.EncodeToString(packet.Payload)
	if err := i.db.Set(ctx, i.Key(packet.Pipe), value, i.settings.TTL).Err(); nil != err {
		return fmt.Errorf("redis set %v: %w", i.Key(packet.Pipe), err)
	}
	if "" == i.settings.Channel {
		return nil
	}
	message := fmt.Sprintf("%d %v", packet.Pipe, value)
	if err := i.db.Publish(ctx, i.settings.Channel, message).Err(); nil != err {
		return fmt.Errorf("redis publish %v: %w", i.settings.Channel, err)
	}
	return nil
}

func (i *Interface) Close() error {
	return i.db.Close()
}

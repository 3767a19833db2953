// Gateway owns the radio: it polls for packets, hands them to the outputs
// and interleaves transmissions with listening.
package Gateway

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/JSkrat/rfm75/OutsideInterface"
	"github.com/JSkrat/rfm75/TranscieverModel"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func SetLogger(l *logrus.Logger) {
	log = l
}

type Stats struct {
	Received      uint64
	Sent          uint64
	OutputErrors  uint64
	TransmitFails uint64
}

type Gateway struct {
	radio  TranscieverModel.Model
	output OutsideInterface.Interface
	// PollInterval is the pause after an empty poll, 0 polls back to back
	PollInterval time.Duration
	mutex        sync.Mutex
	listening    bool
	stats        Stats
}

func New(radio TranscieverModel.Model, output OutsideInterface.Interface) *Gateway {
	return &Gateway{radio: radio, output: output}
}

// Run listens until ctx is done or the radio fails.
// Output errors are logged and counted, they do not stop the loop.
func (g *Gateway) Run(ctx context.Context) error {
	g.mutex.Lock()
	err := g.radio.Listen()
	g.listening = nil == err
	g.mutex.Unlock()
	if nil != err {
		return fmt.Errorf("Gateway.Run: %w", err)
	}
	defer g.stop()
	log.Info("listening")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		g.mutex.Lock()
		packet, ok, err := g.radio.Poll()
		g.mutex.Unlock()
		if nil != err {
			return fmt.Errorf("Gateway.Run: %w", err)
		}
		if !ok {
			if err := g.pause(ctx); nil != err {
				return err
			}
			continue
		}
		g.mutex.Lock()
		g.stats.Received++
		g.mutex.Unlock()
		if err := g.output.PacketReceived(ctx, packet); nil != err {
			log.WithError(err).Errorf("delivering %v", packet)
			g.mutex.Lock()
			g.stats.OutputErrors++
			g.mutex.Unlock()
		}
	}
}

func (g *Gateway) pause(ctx context.Context) error {
	if 0 >= g.PollInterval {
		return nil
	}
	timer := time.NewTimer(g.PollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (g *Gateway) stop() {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.listening = false
	if err := g.radio.GoIdle(); nil != err {
		log.WithError(err).Error("going idle")
	}
}

// Send transmits one payload. A running receive loop gets the radio back in RX afterwards.
func (g *Gateway) Send(payload TranscieverModel.Payload, requestAck bool) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	err := g.radio.Transmit(payload, requestAck)
	if nil != err {
		g.stats.TransmitFails++
	} else {
		g.stats.Sent++
		log.Debugf("sent [% X]", []byte(payload))
	}
	if g.listening {
		if lerr := g.radio.Listen(); nil != lerr {
			log.WithError(lerr).Error("back to listening")
			if nil == err {
				err = lerr
			}
		}
	}
	if nil != err {
		return fmt.Errorf("Gateway.Send: %w", err)
	}
	return nil
}

func (g *Gateway) Stats() Stats {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return g.stats
}

// Close shuts the radio down and closes the outputs
func (g *Gateway) Close() error {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.listening = false
	rerr := g.radio.Close()
	oerr := g.output.Close()
	if nil != rerr {
		return fmt.Errorf("Gateway.Close radio: %w", rerr)
	}
	if nil != oerr {
		return fmt.Errorf("Gateway.Close outputs: %w", oerr)
	}
	return nil
}

// OutsideInterface is where received packets leave the gateway
package OutsideInterface

import (
	"context"
	"errors"

	"github.com/JSkrat/rfm75/TranscieverModel"
	"github.com/sirupsen/logrus"
)

// Interface gets every packet the radio receives, in order.
// PacketReceived is called from a single goroutine.
type Interface interface {
	PacketReceived(ctx context.Context, packet TranscieverModel.Packet) error
	Close() error
}

// LogOutput writes packets to a logger at info level
type LogOutput struct {
	log logrus.FieldLogger
}

func NewLogOutput(log logrus.FieldLogger) *LogOutput {
	return &LogOutput{log: log}
}

func (o *LogOutput) PacketReceived(_ context.Context, packet TranscieverModel.Packet) error {
	o.log.WithFields(logrus.Fields{
		"pipe":   packet.Pipe,
		"length": len(packet.Payload),
	}).Infof("received [% X]", []byte(packet.Payload))
	return nil
}

func (o *LogOutput) Close() error {
	return nil
}

// Fanout passes each packet to all of its outputs, a failing one does not stop the rest
type Fanout []Interface

func (f Fanout) PacketReceived(ctx context.Context, packet TranscieverModel.Packet) error {
	var errs []error
	for _, o := range f {
		if err := o.PacketReceived(ctx, packet); nil != err {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f Fanout) Close() error {
	var errs []error
	for _, o := range f {
		if err := o.Close(); nil != err {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

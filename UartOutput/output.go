// UartOutput forwards packets over a serial line.
// Every packet is one SLIP-stuffed frame: 0xC0, pipe number, payload.
package UartOutput

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/JSkrat/rfm75/TranscieverModel"
	"github.com/sirupsen/logrus"
	"github.com/tarm/serial"
)

var log = logrus.New()

func SetLogger(l *logrus.Logger) {
	log = l
}

type Settings struct {
	PortName string
	Speed    int
}

type Output struct {
	port  io.WriteCloser
	mutex sync.Mutex
}

func Open(settings Settings) (*Output, error) {
	log.Infof("opening %v at %d baud", settings.PortName, settings.Speed)
	port, err := serial.OpenPort(&serial.Config{Name: settings.PortName, Baud: settings.Speed})
	if nil != err {
		return nil, fmt.Errorf("serial.OpenPort(%v): %w", settings.PortName, err)
	}
	return New(port), nil
}

// New wraps an already open port
func New(port io.WriteCloser) *Output {
	return &Output{port: port}
}

func Encode(packet TranscieverModel.Packet) []byte {
	return stuffPacket(append([]byte{byte(packet.Pipe)}, packet.Payload...))
}

// Decode parses one frame produced by Encode
func Decode(data []byte) (TranscieverModel.Packet, error) {
	raw, err := unstuffPacket(data)
	if nil != err {
		return TranscieverModel.Packet{}, fmt.Errorf("UartOutput.Decode: %w", err)
	}
	if 0 == len(raw) {
		return TranscieverModel.Packet{}, fmt.Errorf("UartOutput.Decode: %w", errEmptyPayload)
	}
	return TranscieverModel.Packet{Pipe: int(raw[0]), Payload: raw[1:]}, nil
}

func (o *Output) PacketReceived(_ context.Context, packet TranscieverModel.Packet) error {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	data := Encode(packet)
	if _, err := o.port.Write(data); nil != err {
		return fmt.Errorf("UartOutput write %v: %w", packet, err)
	}
	log.Debugf("sent frame [% X]", data)
	return nil
}

func (o *Output) Close() error {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	return o.port.Close()
}

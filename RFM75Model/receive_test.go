package RFM75Model

import (
	"context"
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/JSkrat/rfm75/ChipEmulator"
	"github.com/JSkrat/rfm75/TranscieverModel"
)

func TestController_Poll(t *testing.T) {
	c, chip, _ := newTestController(t)
	chip.SetFeaturesActive(true)
	_, ok, err := c.Poll()
	Assert(t, nil == err && !ok, "Poll() on empty FIFO returned a packet")

	chip.Receive(2, []byte{0xCA, 0xFE, 0xB0, 0xBA, 0x07})
	packet, ok, err := c.Poll()
	if nil != err || !ok {
		t.Fatalf("Poll() = %v, %v, %v", packet, ok, err)
	}
	want := TranscieverModel.Packet{Pipe: 2, Payload: TranscieverModel.Payload{0xCA, 0xFE, 0xB0, 0xBA, 0x07}}
	if !reflect.DeepEqual(packet, want) {
		t.Errorf("Poll() = %v, want %v", packet, want)
	}
	Assert(t, 0 == chip.Flags(), "RX_DR is not cleared")
	Assert(t, 0 == chip.RxFifoLen(), "payload was not popped")
}

func TestController_PollCorruptedWidth(t *testing.T) {
	c, chip, _ := newTestController(t)
	chip.SetFeaturesActive(true)
	chip.Receive(0, make([]byte, 33))
	chip.Receive(0, []byte{1})
	_, ok, err := c.Poll()
	Assert(t, nil == err && !ok, "corrupted entry returned as a packet")
	Assert(t, 0 == chip.RxFifoLen(), "RX FIFO was not flushed")
}

func TestController_Receive(t *testing.T) {
	c, chip, _ := newTestController(t)
	chip.SetFeaturesActive(true)
	chip.Receive(1, []byte{1, 2, 3})
	chip.Receive(4, []byte{4})
	chip.Receive(0, []byte{5, 6})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var got []TranscieverModel.Packet
	err := c.Receive(ctx, func(p TranscieverModel.Packet) error {
		got = append(got, p)
		if 3 == len(got) {
			cancel()
		}
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Receive() error = %v, want %v", err, context.Canceled)
	}
	want := []TranscieverModel.Packet{
		{Pipe: 1, Payload: TranscieverModel.Payload{1, 2, 3}},
		{Pipe: 4, Payload: TranscieverModel.Payload{4}},
		{Pipe: 0, Payload: TranscieverModel.Payload{5, 6}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Receive() packets = %v, want %v", got, want)
	}
	// every payload is read exactly once
	var reads int
	for _, call := range chip.Calls() {
		if 0 < len(call.Out) && 0x61 == call.Out[0] {
			reads++
		}
	}
	Assert(t, 3 == reads, "payloads were read more than once")
}

func TestController_ReceiveStops(t *testing.T) {
	stop := errors.New("stop")
	tests := []struct {
		name    string
		fail    func(ChipEmulator.Call) error
		fn      func(TranscieverModel.Packet) error
		wantErr error
	}{
		{
			name:    "handler error",
			fn:      func(TranscieverModel.Packet) error { return stop },
			wantErr: stop,
		},
		{
			name:    "transport error",
			fail:    func(ChipEmulator.Call) error { return io.EOF },
			fn:      func(TranscieverModel.Packet) error { return nil },
			wantErr: io.EOF,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, chip, _ := newTestController(t)
			chip.SetFeaturesActive(true)
			chip.Receive(0, []byte{1})
			chip.Fail = tt.fail
			if err := c.Receive(context.Background(), tt.fn); !errors.Is(err, tt.wantErr) {
				t.Errorf("Receive() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestController_ReceiveCancelled(t *testing.T) {
	c, chip, _ := newTestController(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.Receive(ctx, func(TranscieverModel.Packet) error { return nil })
	Assert(t, errors.Is(err, context.Canceled), "Receive() did not stop on a cancelled context")
	Assert(t, 0 == len(chip.Calls()), "Receive() polled after cancellation")
}

func TestController_Transmit(t *testing.T) {
	c, chip, pins := newTestController(t)
	if err := c.Listen(); nil != err {
		t.Fatal(err)
	}
	if err := c.Transmit(TranscieverModel.Payload{9, 8, 7}, true); nil != err {
		t.Fatal(err)
	}
	Assert(t, 0 == chip.Register(0, 0x00)[0]&0x01, "PRIM_RX is still set")
	Assert(t, 1 == len(chip.Sent()), "nothing was sent")
	Assert(t, 0 == pins.Levels()&(1<<testCEPin), "CE is left high")
	if err := c.GoIdle(); nil != err {
		t.Fatal(err)
	}
}

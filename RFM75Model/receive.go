package RFM75Model

import (
	"context"
	"fmt"

	"github.com/JSkrat/rfm75/TranscieverModel"
)

// Poll pops one packet from the RX FIFO.
// ok is false when the FIFO is empty. A width over 32 means a corrupted entry, the FIFO is flushed then.
func (c *Controller) Poll() (packet TranscieverModel.Packet, ok bool, err error) {
	pipe, err := c.RxPipe()
	if nil != err || 0 > pipe {
		return packet, false, err
	}
	width, err := c.ReadRxPayloadLen()
	if nil != err {
		return packet, false, err
	}
	if 0 == width || MaxPayloadWidth < width {
		log.Warn(fmt.Sprintf("bad RX payload width %d on pipe %d, flushing RX FIFO", width, pipe))
		return packet, false, c.FlushRX()
	}
	payload, err := c.ReadRxPayload(width)
	if nil != err {
		return packet, false, err
	}
	if err := c.ClearRxDataReady(); nil != err {
		return packet, false, err
	}
	packet = TranscieverModel.Packet{Pipe: pipe, Payload: payload}
	log.Debug(fmt.Sprintf("data received: %v", packet))
	return packet, true, nil
}

// Receive polls the RX FIFO until ctx is done, handing every packet to fn.
// It spins without sleeping, the returned error is ctx.Err() or the first failure from the chip or fn.
func (c *Controller) Receive(ctx context.Context, fn func(TranscieverModel.Packet) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		packet, ok, err := c.Poll()
		if nil != err {
			return err
		}
		if !ok {
			continue
		}
		if err := fn(packet); nil != err {
			return err
		}
	}
}

// Listen enters RX mode and raises CE
func (c *Controller) Listen() error {
	if err := c.SetModeRX(); nil != err {
		return err
	}
	return c.CEOn()
}

// Transmit leaves RX, sends the payload and stays in TX standby
func (c *Controller) Transmit(data TranscieverModel.Payload, requestAck bool) error {
	if err := c.CEOff(); nil != err {
		return err
	}
	if err := c.SetModeTX(); nil != err {
		return err
	}
	return c.WriteTxPayload(data, requestAck)
}

func (c *Controller) GoIdle() error {
	return c.CEOff()
}

// Close drops CE and powers the chip down, the transport stays open
func (c *Controller) Close() error {
	if err := c.CEOff(); nil != err {
		return err
	}
	_, err := c.PowerDown()
	return err
}

package TranscieverModel

import "fmt"

// Payload is raw packet content as it went over the air, at most 32 bytes.
type Payload []byte

// Packet is a payload popped from the receive FIFO together with the pipe it arrived on.
type Packet struct {
	Pipe    int
	Payload Payload
}

func (p Packet) String() string {
	return fmt.Sprintf("pipe %v [% X]", p.Pipe, []byte(p.Payload))
}

// Model is a half-duplex packet radio.
// Implementations are not safe for concurrent use, the caller serializes access.
type Model interface {
	// Listen switches the radio to receive and activates it.
	Listen() error
	// Poll pops one packet if the receive FIFO has one.
	Poll() (Packet, bool, error)
	// Transmit sends a single payload, leaving the radio in transmit standby.
	Transmit(data Payload, requestAck bool) error
	// GoIdle deactivates the radio without powering it down.
	GoIdle() error
	Close() error
}

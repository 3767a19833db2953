// Transport describes the two collaborators the RFM75 driver talks through:
// an SPI-like port with explicit chip-select framing and a GPIO bank used for CE.
package Transport

// Port is an SPI-like bus with explicit chip-select control.
//
// start asserts chip-select before the transfer, stop releases it afterwards.
// A call with stop=false leaves the transaction open and the following call
// must pass start=false to continue it. Nothing else may use the port between
// the open and the close, that ordering is the caller's job.
type Port interface {
	// Exchange writes out, then clocks in readLen bytes and returns them.
	Exchange(out []byte, readLen int, start, stop bool) ([]byte, error)
	// Write is the write-only variant of Exchange.
	Write(out []byte, start, stop bool) error
}

// GPIO is a bank of up to 16 pins addressed by bitmask, bit i is pin i.
type GPIO interface {
	// SetDirection configures every pin in pins, the ones also set in outputs
	// become outputs and the rest inputs.
	SetDirection(pins, outputs uint16) error
	Read() (uint16, error)
	Write(levels uint16) error
}

// Pin returns the bitmask for pin number n.
func Pin(n uint) uint16 {
	return 1 << n
}

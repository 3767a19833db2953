// ChipEmulator is an in-memory RFM75 behind the Transport interfaces.
// It keeps both register banks, the bank toggle, the ACTIVATE lock of FEATURE/DYNPD/R_RX_PL_WID/W_TX_PAYLOAD_NOACK,
// an RX FIFO fed by the test and a log of every transport call.
package ChipEmulator

import (
	"sync"
)

// Call is one transport call as the chip saw it
type Call struct {
	Write   bool
	Out     []byte
	ReadLen int
	Start   bool
	Stop    bool
}

// TxPacket is a payload written with W_TX_PAYLOAD or W_TX_PAYLOAD_NOACK
type TxPacket struct {
	Payload []byte
	NoAck   bool
}

type rxEntry struct {
	pipe    int
	payload []byte
}

const (
	cmdWriteRegister      = 0x20
	cmdActivate           = 0x50
	cmdReadRxWidth        = 0x60
	cmdReadRxPayload      = 0x61
	cmdWriteTx            = 0xA0
	cmdWriteTxNoAck       = 0xB0
	cmdFlushTx            = 0xE1
	cmdFlushRx            = 0xE2
	activateFeatures      = 0x73
	activateBank          = 0x53
	regStatus             = 0x07
	regFeature            = 0x1D
	regDynPd              = 0x1C
	featureDynAck    byte = 0x01
	statusFlags      byte = 0x70
	statusRxDr       byte = 0x40
	statusTxDs       byte = 0x20
	rxPipeEmpty           = 7
)

var bank0Sizes = map[byte]int{
	0x0A: 5, 0x0B: 5, 0x10: 5,
}

var bank1Sizes = map[byte]int{
	0x00: 4, 0x01: 4, 0x02: 4, 0x03: 4, 0x04: 4, 0x05: 4,
	0x07: 1, 0x08: 4, 0x0C: 4, 0x0D: 4, 0x0E: 11,
}

// Chip implements Transport.Port
type Chip struct {
	mutex sync.Mutex
	// Disconnected makes the chip answer zeros and ignore everything, like an empty socket
	Disconnected bool
	// Fail, when set, is consulted before every call and its error returned
	Fail func(call Call) error

	banks          [2]map[byte][]byte
	bank           int
	featuresActive bool
	flags          byte
	frame          []byte
	rxFifo         []rxEntry
	sent           []TxPacket
	calls          []Call
	toggles        int
	txFlushes      int
}

// New returns a chip with power-on register values
func New() *Chip {
	c := &Chip{}
	c.Reset()
	return c
}

// Reset restores power-on state and clears the logs
func (c *Chip) Reset() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.banks[0] = map[byte][]byte{
		0x00: {0x08},
		0x01: {0x3F},
		0x02: {0x03},
		0x03: {0x03},
		0x04: {0x03},
		0x05: {0x02},
		0x06: {0x3F},
		0x08: {0x00},
		0x09: {0x00},
		0x0A: {0xE7, 0xE7, 0xE7, 0xE7, 0xE7},
		0x0B: {0xC2, 0xC2, 0xC2, 0xC2, 0xC2},
		0x0C: {0xC3},
		0x0D: {0xC4},
		0x0E: {0xC5},
		0x0F: {0xC6},
		0x10: {0xE7, 0xE7, 0xE7, 0xE7, 0xE7},
		0x11: {0x00}, 0x12: {0x00}, 0x13: {0x00}, 0x14: {0x00}, 0x15: {0x00}, 0x16: {0x00},
		0x17: {0x11},
		0x1C: {0x00},
		0x1D: {0x00},
	}
	c.banks[1] = map[byte][]byte{
		0x08: {0x63, 0x00, 0x00, 0x00},
	}
	c.bank = 0
	c.featuresActive = false
	c.flags = 0
	c.frame = nil
	c.rxFifo = nil
	c.sent = nil
	c.calls = nil
	c.toggles = 0
	c.txFlushes = 0
}

func (c *Chip) Exchange(out []byte, readLen int, start, stop bool) ([]byte, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if err := c.log(Call{Out: out, ReadLen: readLen, Start: start, Stop: stop}); nil != err {
		return nil, err
	}
	if start {
		c.frame = nil
	}
	c.frame = append(c.frame, out...)
	in := make([]byte, readLen)
	if 0 < readLen && 0 < len(c.frame) && !c.Disconnected {
		copy(in, c.read(c.frame[0], readLen))
	}
	if stop {
		c.execute()
	}
	return in, nil
}

func (c *Chip) Write(out []byte, start, stop bool) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if err := c.log(Call{Write: true, Out: out, Start: start, Stop: stop}); nil != err {
		return err
	}
	if start {
		c.frame = nil
	}
	c.frame = append(c.frame, out...)
	if stop {
		c.execute()
	}
	return nil
}

func (c *Chip) log(call Call) error {
	call.Out = append([]byte(nil), call.Out...)
	c.calls = append(c.calls, call)
	if nil != c.Fail {
		return c.Fail(call)
	}
	return nil
}

func (c *Chip) read(command byte, n int) []byte {
	switch {
	case command < cmdWriteRegister:
		return c.register(c.bank, command)
	case cmdReadRxWidth == command:
		if 0 == len(c.rxFifo) || !c.featuresActive {
			return []byte{0}
		}
		return []byte{byte(len(c.rxFifo[0].payload))}
	case cmdReadRxPayload == command:
		if 0 == len(c.rxFifo) {
			return nil
		}
		head := c.rxFifo[0]
		c.rxFifo = c.rxFifo[1:]
		return head.payload
	}
	return nil
}

func (c *Chip) register(bank int, addr byte) []byte {
	if regStatus == addr {
		return []byte{c.status()}
	}
	if v, ok := c.banks[bank][addr]; ok {
		return append([]byte(nil), v...)
	}
	return make([]byte, c.size(bank, addr))
}

func (c *Chip) size(bank int, addr byte) int {
	sizes := bank0Sizes
	if 1 == bank {
		sizes = bank1Sizes
	}
	if n, ok := sizes[addr]; ok {
		return n
	}
	return 1
}

// status is visible from both banks, bit 7 tells which one is active
func (c *Chip) status() byte {
	pipe := rxPipeEmpty
	if 0 < len(c.rxFifo) {
		pipe = c.rxFifo[0].pipe
	}
	return byte(c.bank)<<7 | c.flags | byte(pipe)<<1
}

func (c *Chip) execute() {
	frame := c.frame
	c.frame = nil
	if 0 == len(frame) || c.Disconnected {
		return
	}
	command := frame[0]
	switch {
	case command&0xE0 == cmdWriteRegister:
		c.writeRegister(command&0x1F, frame[1:])
	case cmdActivate == command && 2 == len(frame):
		switch frame[1] {
		case activateBank:
			c.bank ^= 1
			c.toggles++
		case activateFeatures:
			c.featuresActive = !c.featuresActive
		}
	case cmdWriteTxNoAck == command && !c.noAckAllowed():
		// inactive command, the payload is dropped
	case cmdWriteTx == command || cmdWriteTxNoAck == command:
		c.sent = append(c.sent, TxPacket{
			Payload: append([]byte(nil), frame[1:]...),
			NoAck:   cmdWriteTxNoAck == command,
		})
		c.flags |= statusTxDs
	case cmdFlushTx == command:
		c.txFlushes++
	case cmdFlushRx == command:
		c.rxFifo = nil
		c.flags &^= statusRxDr
	}
}

// noAckAllowed tells whether W_TX_PAYLOAD_NOACK is active: features unlocked and EN_DYN_ACK set
func (c *Chip) noAckAllowed() bool {
	return c.featuresActive && 0 != c.register(0, regFeature)[0]&featureDynAck
}

func (c *Chip) writeRegister(addr byte, values []byte) {
	if regStatus == addr {
		if 0 == c.bank && 0 < len(values) {
			c.flags &^= values[0] & statusFlags
		}
		return
	}
	if 0 == c.bank && (regFeature == addr || regDynPd == addr) && !c.featuresActive {
		return
	}
	reg := c.register(c.bank, addr)
	copy(reg, values)
	c.banks[c.bank][addr] = reg
}

// Receive puts a packet into the RX FIFO as if it came over the air on pipe
func (c *Chip) Receive(pipe int, payload []byte) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.rxFifo = append(c.rxFifo, rxEntry{pipe: pipe, payload: append([]byte(nil), payload...)})
	c.flags |= statusRxDr
}

// Register peeks at a register without logging a call
func (c *Chip) Register(bank int, addr byte) []byte {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.register(bank, addr)
}

// SetRegister pokes a register without logging a call
func (c *Chip) SetRegister(bank int, addr byte, value []byte) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.banks[bank][addr] = append([]byte(nil), value...)
}

// Bank is the currently selected bank
func (c *Chip) Bank() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.bank
}

// SetFeaturesActive pokes the ACTIVATE state without logging a call
func (c *Chip) SetFeaturesActive(active bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.featuresActive = active
}

func (c *Chip) FeaturesActive() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.featuresActive
}

// Flags returns the RX_DR, TX_DS and MAX_RT bits of STATUS
func (c *Chip) Flags() byte {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.flags
}

func (c *Chip) RxFifoLen() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.rxFifo)
}

func (c *Chip) Sent() []TxPacket {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return append([]TxPacket(nil), c.sent...)
}

func (c *Chip) Calls() []Call {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return append([]Call(nil), c.calls...)
}

// Toggles counts bank toggle commands received
func (c *Chip) Toggles() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.toggles
}

func (c *Chip) TxFlushes() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.txFlushes
}

// ClearLog forgets the calls seen so far, the chip state stays
func (c *Chip) ClearLog() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.calls = nil
	c.toggles = 0
}

// WriteFrames returns the complete frames of register writes, in order
func (c *Chip) WriteFrames() [][]byte {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	var frames [][]byte
	for _, call := range c.calls {
		if call.Write && call.Start && call.Stop && 0 < len(call.Out) && call.Out[0]&0xE0 == cmdWriteRegister {
			frames = append(frames, call.Out)
		}
	}
	return frames
}

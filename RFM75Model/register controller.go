package RFM75Model

import (
	"fmt"

	"github.com/JSkrat/rfm75/Transport"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// SetLogger replaces the package logger
func SetLogger(l *logrus.Logger) {
	log = l
}

// RegisterController gives bank-aware access to chip registers.
// The active bank is never cached, it is read back from STATUS before each decision.
type RegisterController struct {
	port Transport.Port
}

func NewRegisterController(port Transport.Port) *RegisterController {
	return &RegisterController{port: port}
}

// CurrentBank reads the bank indicator from STATUS, which is visible from both banks.
func (rc *RegisterController) CurrentBank() (Bank, error) {
	reg, err := rc.exchange("CurrentBank", []byte{RStatus.Addr}, RStatus.Size)
	if nil != err {
		return Bank0, err
	}
	return Bank(reg[0] >> BRBank & 1), nil
}

// EnsureBank switches to bank b. The chip only has a toggle command, so it is sent only when the banks differ.
func (rc *RegisterController) EnsureBank(b Bank) error {
	current, err := rc.CurrentBank()
	if nil != err {
		return err
	}
	if current == b {
		return nil
	}
	log.Trace(fmt.Sprintf("switching bank %v -> %v", current, b))
	if err := rc.port.Write(cmdToggleBank, true, true); nil != err {
		return transportError("EnsureBank", err)
	}
	return nil
}

func (rc *RegisterController) ReadRegister(r Register) ([]byte, error) {
	if err := rc.EnsureBank(r.Bank); nil != err {
		return nil, err
	}
	return rc.exchange("ReadRegister "+r.Name, []byte{r.Addr}, r.Size)
}

// WriteRegister sends [addr|W_REGISTER]+values as a single transaction and returns the register value read back after it.
func (rc *RegisterController) WriteRegister(r Register, values []byte) ([]byte, error) {
	if len(values) > r.Size {
		return nil, newError(ERegisterValueTooLong, "WriteRegister "+r.Name,
			fmt.Sprintf("[%v] does not fit %d bytes", Dump(values), r.Size))
	}
	if err := rc.EnsureBank(r.Bank); nil != err {
		return nil, err
	}
	log.Debug(fmt.Sprintf("WriteRegister %v [%v]", r, Dump(values)))
	frame := make([]byte, 0, 1+len(values))
	frame = append(frame, r.Addr|byte(CWriteRegister))
	frame = append(frame, values...)
	if err := rc.port.Write(frame, true, true); nil != err {
		return nil, transportError("WriteRegister "+r.Name, err)
	}
	// the bank can not change in between
	return rc.exchange("WriteRegister "+r.Name, []byte{r.Addr}, r.Size)
}

// SetBit sets bit n of the register, counting from the least significant bit of the first byte.
// Returns the register value read back.
func (rc *RegisterController) SetBit(r Register, n Bit) ([]byte, error) {
	return rc.modifyBit(r, n, true)
}

// ClearBit is the counterpart of SetBit
func (rc *RegisterController) ClearBit(r Register, n Bit) ([]byte, error) {
	return rc.modifyBit(r, n, false)
}

// ReadBit returns 0 or 1
func (rc *RegisterController) ReadBit(r Register, n Bit) (byte, error) {
	if err := checkBit(r, n, "ReadBit"); nil != err {
		return 0, err
	}
	reg, err := rc.ReadRegister(r)
	if nil != err {
		return 0, err
	}
	return reg[n/8] >> (n % 8) & 1, nil
}

func (rc *RegisterController) modifyBit(r Register, n Bit, value bool) ([]byte, error) {
	if err := checkBit(r, n, "modifyBit"); nil != err {
		return nil, err
	}
	reg, err := rc.ReadRegister(r)
	if nil != err {
		return nil, err
	}
	if value {
		reg[n/8] |= 1 << (n % 8)
	} else {
		reg[n/8] &^= 1 << (n % 8)
	}
	return rc.WriteRegister(r, reg)
}

// modifyMasked replaces the bits selected by mask in a single byte register
func (rc *RegisterController) modifyMasked(r Register, mask byte, value byte) ([]byte, error) {
	reg, err := rc.ReadRegister(r)
	if nil != err {
		return nil, err
	}
	reg[0] = reg[0]&^mask | value&mask
	return rc.WriteRegister(r, reg)
}

func checkBit(r Register, n Bit, op string) error {
	if int(n) >= 8*r.Size {
		return newError(EBitOutOfRange, op+" "+r.Name, fmt.Sprintf("bit %d of %d", n, 8*r.Size))
	}
	return nil
}

// exchange runs one start-to-stop transaction and checks the answer length
func (rc *RegisterController) exchange(op string, out []byte, readLen int) ([]byte, error) {
	in, err := rc.port.Exchange(out, readLen, true, true)
	if nil != err {
		return nil, transportError(op, err)
	}
	if len(in) != readLen {
		return nil, transportError(op, fmt.Errorf("read %d bytes, want %d", len(in), readLen))
	}
	return in, nil
}

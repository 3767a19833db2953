package RFM75Model

import (
	"fmt"
	"time"

	"github.com/JSkrat/rfm75/TranscieverModel"
	"github.com/JSkrat/rfm75/Transport"
)

const (
	// DefaultCEHold is how long CE stays high to start a transmission
	DefaultCEHold = 2 * time.Millisecond
	// MinCEHold is the shortest CE pulse the chip accepts as a transmit trigger
	MinCEHold = 10 * time.Microsecond
	// MaxCEHold is the longest time the chip may stay in TX mode
	MaxCEHold = 4 * time.Millisecond
)

// Controller drives one RFM75 chip: mode changes, CE line and FIFO access.
// It does no locking, callers sharing it between goroutines must serialize every call.
type Controller struct {
	port   Transport.Port
	gpio   Transport.GPIO
	cePin  uint16
	ceHold time.Duration
	sleep  func(time.Duration)
	rc     *RegisterController
	config *ConfigController
}

var _ TranscieverModel.Model = (*Controller)(nil)

type Option func(*Controller) error

// WithCEHold sets the CE pulse length used by WriteTxPayload
func WithCEHold(d time.Duration) Option {
	return func(c *Controller) error {
		if MinCEHold > d || MaxCEHold < d {
			return newError(EInvalidCEHold, "WithCEHold", fmt.Sprintf("%v, allowed %v-%v", d, MinCEHold, MaxCEHold))
		}
		c.ceHold = d
		return nil
	}
}

// WithRegisterController shares an existing register controller instead of creating one on port
func WithRegisterController(rc *RegisterController) Option {
	return func(c *Controller) error {
		c.rc = rc
		return nil
	}
}

// NewController configures cePin as an output and drives it low
func NewController(port Transport.Port, gpio Transport.GPIO, cePin uint, opts ...Option) (*Controller, error) {
	if 16 <= cePin {
		return nil, newError(EBadParameter, "NewController", fmt.Sprintf("CE pin %d, allowed 0-15", cePin))
	}
	c := &Controller{
		port:   port,
		gpio:   gpio,
		cePin:  Transport.Pin(cePin),
		ceHold: DefaultCEHold,
		sleep:  time.Sleep,
	}
	for _, opt := range opts {
		if err := opt(c); nil != err {
			return nil, err
		}
	}
	if nil == c.rc {
		c.rc = NewRegisterController(port)
	}
	c.config = NewConfigController(c.rc)
	if err := gpio.SetDirection(c.cePin, c.cePin); nil != err {
		return nil, transportError("NewController", err)
	}
	if err := c.CEOff(); nil != err {
		return nil, err
	}
	return c, nil
}

func (c *Controller) Registers() *RegisterController {
	return c.rc
}

func (c *Controller) Config() *ConfigController {
	return c.config
}

// IsConnected compares STATUS as seen from both banks. On a live chip bank 1 reads differently,
// a missing chip answers the same for both.
func (c *Controller) IsConnected() (bool, error) {
	bank0, err := c.rc.ReadRegister(RStatus)
	if nil != err {
		return false, err
	}
	bank1, err := c.rc.ReadRegister(RB1Status)
	if nil != err {
		return false, err
	}
	result := 0 != bank0[0]^bank1[0]
	log.Info(fmt.Sprintf("is RFM75 chip connected: %v", result))
	return result, nil
}

// ActivateFeatures toggles availability of R_RX_PL_WID, W_ACK_PAYLOAD and W_TX_PAYLOAD_NOACK
func (c *Controller) ActivateFeatures() error {
	log.Debug("features activated")
	if err := c.port.Write(cmdActivateFeatures, true, true); nil != err {
		return transportError("ActivateFeatures", err)
	}
	return nil
}

func (c *Controller) ChipID() ([]byte, error) {
	return c.rc.ReadRegister(RB1ChipID)
}

func (c *Controller) PowerUp() ([]byte, error) {
	log.Info("RFM75 power up")
	return c.rc.SetBit(RConfig, BPwrUp)
}

func (c *Controller) PowerDown() ([]byte, error) {
	log.Info("RFM75 power down")
	return c.rc.ClearBit(RConfig, BPwrUp)
}

// SetModeTX clears PRIM_RX, clears pending interrupt flags and flushes the TX FIFO
func (c *Controller) SetModeTX() error {
	log.Debug("mode TX")
	if _, err := c.rc.ClearBit(RConfig, BPrimRx); nil != err {
		return err
	}
	if _, err := c.rc.WriteRegister(RStatus, []byte{statusClearFlags}); nil != err {
		return err
	}
	return c.FlushTX()
}

// SetModeRX sets PRIM_RX only
func (c *Controller) SetModeRX() error {
	log.Debug("mode RX")
	_, err := c.rc.SetBit(RConfig, BPrimRx)
	return err
}

// Mode derives the chip state from CONFIG, the CE line and FIFO_STATUS.
// Standby covers both standby-I (CE low) and standby-II (CE high, TX FIFO empty).
func (c *Controller) Mode() (Mode, error) {
	config, err := c.rc.ReadRegister(RConfig)
	if nil != err {
		return ModePowerDown, err
	}
	if 0 == config[0]&BV(BPwrUp) {
		return ModePowerDown, nil
	}
	ce, err := c.CE()
	if nil != err {
		return ModePowerDown, err
	}
	if !ce {
		return ModeStandby, nil
	}
	if 0 != config[0]&BV(BPrimRx) {
		return ModeRX, nil
	}
	// CE high with nothing to send is standby-II
	empty, err := c.rc.ReadBit(RFifoStatus, BTxEmpty)
	if nil != err {
		return ModePowerDown, err
	}
	if 1 == empty {
		return ModeStandby, nil
	}
	return ModeTX, nil
}

// CEOn drives CE high, CE is read-modify-written so other pins of the bank keep their levels
func (c *Controller) CEOn() error {
	return c.setCE(true)
}

func (c *Controller) CEOff() error {
	return c.setCE(false)
}

// CE reports the current level of the CE line
func (c *Controller) CE() (bool, error) {
	pins, err := c.gpio.Read()
	if nil != err {
		return false, transportError("CE", err)
	}
	return 0 != pins&c.cePin, nil
}

func (c *Controller) setCE(value bool) error {
	log.Trace(fmt.Sprintf("setCE %v", value))
	pins, err := c.gpio.Read()
	if nil != err {
		return transportError("setCE", err)
	}
	if value {
		pins |= c.cePin
	} else {
		pins &^= c.cePin
	}
	if err := c.gpio.Write(pins); nil != err {
		return transportError("setCE", err)
	}
	return nil
}

// WriteTxPayload loads one payload into the TX FIFO and pulses CE to send it.
// With auto acknowledge enabled on any pipe and requestAck false the packet goes out as NO_ACK.
func (c *Controller) WriteTxPayload(payload []byte, requestAck bool) error {
	if MaxPayloadWidth < len(payload) {
		return newError(EPayloadTooLong, "WriteTxPayload", fmt.Sprintf("%d bytes", len(payload)))
	}
	command := CWriteTxPayload
	autoAck, err := c.config.Pipes.AutoAckEnabledAny()
	if nil != err {
		return err
	}
	if autoAck && !requestAck {
		command = CWriteTxPayloadNoAck
		dynamicAck, err := c.config.DynamicAckEnabled()
		if nil != err {
			return err
		}
		if !dynamicAck {
			log.Warn("W_TX_PAYLOAD_NOACK with EN_DYN_ACK clear, the chip will ignore this payload")
		}
	}
	log.Debug(fmt.Sprintf("WriteTxPayload %#02x [%v]", byte(command), Dump(payload)))
	if err := c.CEOff(); nil != err {
		return err
	}
	// opcode and payload have to stay within one chip select frame
	if err := c.port.Write([]byte{byte(command)}, true, false); nil != err {
		return transportError("WriteTxPayload", err)
	}
	if err := c.port.Write(payload, false, false); nil != err {
		return transportError("WriteTxPayload", err)
	}
	if err := c.port.Write(nil, false, true); nil != err {
		return transportError("WriteTxPayload", err)
	}
	if err := c.CEOn(); nil != err {
		return err
	}
	c.sleep(c.ceHold)
	return c.CEOff()
}

// ReadRxPayloadLen returns the width of the payload at the head of the RX FIFO
func (c *Controller) ReadRxPayloadLen() (int, error) {
	in, err := c.command("ReadRxPayloadLen", CReadRxPayloadWidth, 1)
	if nil != err {
		return 0, err
	}
	log.Trace(fmt.Sprintf("R_RX_PAYLOAD length is %d", in[0]))
	return int(in[0]), nil
}

// ReadRxPayload pops n bytes from the RX FIFO
func (c *Controller) ReadRxPayload(n int) ([]byte, error) {
	if 0 > n || MaxPayloadWidth < n {
		return nil, newError(EInvalidPayloadWidth, "ReadRxPayload", fmt.Sprintf("%d, allowed 0-32", n))
	}
	return c.command("ReadRxPayload", CReadRxPayload, n)
}

func (c *Controller) FlushRX() error {
	_, err := c.command("FlushRX", CFlushRx, 0)
	return err
}

func (c *Controller) FlushTX() error {
	_, err := c.command("FlushTX", CFlushTx, 0)
	return err
}

func (c *Controller) Status() (byte, error) {
	reg, err := c.rc.ReadRegister(RStatus)
	if nil != err {
		return 0, err
	}
	return reg[0], nil
}

// RxPipe returns the pipe of the payload at the head of the RX FIFO, or -1 when it is empty
func (c *Controller) RxPipe() (int, error) {
	status, err := c.Status()
	if nil != err {
		return -1, err
	}
	pipe := int(status&BRxPNoMask) >> BRxPNo
	if PipeCount <= pipe {
		return -1, nil
	}
	return pipe, nil
}

func (c *Controller) RxDataReady() (bool, error) {
	bit, err := c.rc.ReadBit(RStatus, BRxDr)
	return 1 == bit, err
}

// ClearRxDataReady writes 1 to RX_DR only, the other flags are left pending
func (c *Controller) ClearRxDataReady() error {
	_, err := c.rc.WriteRegister(RStatus, []byte{BV(BRxDr)})
	return err
}

func (c *Controller) command(op string, command Command, readLen int) ([]byte, error) {
	in, err := c.port.Exchange([]byte{byte(command)}, readLen, true, true)
	if nil != err {
		return nil, transportError(op, err)
	}
	if len(in) != readLen {
		return nil, transportError(op, fmt.Errorf("read %d bytes, want %d", len(in), readLen))
	}
	return in, nil
}

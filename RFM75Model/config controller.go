package RFM75Model

import (
	"fmt"
)

// ConfigController holds the chip-wide settings
type ConfigController struct {
	rc    *RegisterController
	CRC   *CRCController
	Pipes *PipeController
}

func NewConfigController(rc *RegisterController) *ConfigController {
	return &ConfigController{
		rc:    rc,
		CRC:   &CRCController{rc: rc},
		Pipes: &PipeController{rc: rc},
	}
}

// SetChannel writes RF_CH, the carrier is 2400 + ch MHz.
// Values above 127 are not rejected here, the chip ignores the high bit.
func (c *ConfigController) SetChannel(ch byte) (byte, error) {
	log.Info(fmt.Sprintf("RF channel set to %d", ch))
	reg, err := c.rc.WriteRegister(RRFCh, []byte{ch})
	if nil != err {
		return 0, err
	}
	return reg[0], nil
}

func (c *ConfigController) Channel() (byte, error) {
	reg, err := c.rc.ReadRegister(RRFCh)
	if nil != err {
		return 0, err
	}
	return reg[0], nil
}

func (c *ConfigController) SetLNAGain(g LNAGain) ([]byte, error) {
	log.Info(fmt.Sprintf("LNA gain set to %v", g))
	if LNAGainHigh == g {
		return c.rc.SetBit(RRFSetup, BLnaHcurr)
	}
	return c.rc.ClearBit(RRFSetup, BLnaHcurr)
}

func (c *ConfigController) LNAGain() (LNAGain, error) {
	bit, err := c.rc.ReadBit(RRFSetup, BLnaHcurr)
	return LNAGain(bit), err
}

// SetTxPower replaces the RF_PWR field, the previous level is masked out first
func (c *ConfigController) SetTxPower(p TxPower) ([]byte, error) {
	if byte(p)&^txPowerMask != 0 {
		return nil, newError(EInvalidTxPower, "SetTxPower", fmt.Sprintf("%#b", byte(p)))
	}
	log.Info(fmt.Sprintf("TX power set to %v", p))
	return c.rc.modifyMasked(RRFSetup, txPowerMask, byte(p))
}

func (c *ConfigController) TxPower() (TxPower, error) {
	reg, err := c.rc.ReadRegister(RRFSetup)
	if nil != err {
		return 0, err
	}
	return TxPower(reg[0] & txPowerMask), nil
}

func (c *ConfigController) SetAddressWidth(w AddressWidth) ([]byte, error) {
	if !w.valid() {
		return nil, newError(EInvalidAddressWidth, "SetAddressWidth", w.String())
	}
	log.Info(fmt.Sprintf("address width set to %v", w))
	return c.rc.WriteRegister(RSetupAW, []byte{byte(w)})
}

func (c *ConfigController) AddressWidth() (AddressWidth, error) {
	reg, err := c.rc.ReadRegister(RSetupAW)
	if nil != err {
		return 0, err
	}
	return AddressWidth(reg[0] & 0b11), nil
}

// ChipInit selects the data rate and loads bank 1 with the tuning values for it.
// Both parts must be applied together, the rate bits alone do not work.
func (c *ConfigController) ChipInit(rate DataRate) error {
	reg04, ok := b1Reg04Values[rate]
	if !ok {
		return newError(EInvalidDataRate, "ChipInit", rate.String())
	}
	reg05 := b1Reg05Values[rate]
	log.Info(fmt.Sprintf("data rate is %v", rate))
	var drHigh, drLow bool
	switch rate {
	case DataRate2Msps:
		drHigh = true
	case DataRate250ksps:
		drLow = true
	}
	if err := c.setBitTo(RRFSetup, BRfDrHigh, drHigh); nil != err {
		return err
	}
	if err := c.setBitTo(RRFSetup, BRfDrLow, drLow); nil != err {
		return err
	}
	writes := []struct {
		r      Register
		values []byte
	}{
		{RB1Reg00, b1Reg00Value},
		{RB1Reg01, b1Reg01Value},
		{RB1Reg02, b1Reg02Value},
		{RB1Reg03, b1Reg03Value},
		{RB1Reg04, reg04},
		{RB1Reg05, reg05},
		{RB1Reg0C, b1Reg0CValue},
		{RB1Reg0D, b1Reg0DValue},
		{RB1RampCurve, b1RampCurveValue},
	}
	for _, w := range writes {
		if _, err := c.rc.WriteRegister(w.r, w.values); nil != err {
			return err
		}
	}
	return nil
}

// DataRate decodes the rate bits of RF_SETUP
func (c *ConfigController) DataRate() (DataRate, error) {
	reg, err := c.rc.ReadRegister(RRFSetup)
	if nil != err {
		return 0, err
	}
	switch {
	case 0 != reg[0]&BV(BRfDrLow):
		return DataRate250ksps, nil
	case 0 != reg[0]&BV(BRfDrHigh):
		return DataRate2Msps, nil
	}
	return DataRate1Msps, nil
}

// EnableDynamicPayload sets FEATURE.EN_DPL, pipes still need their own DYNPD bit
func (c *ConfigController) EnableDynamicPayload() ([]byte, error) {
	log.Info("dynamic payload enabled")
	return c.rc.SetBit(RFeature, BEnDpl)
}

func (c *ConfigController) DisableDynamicPayload() ([]byte, error) {
	log.Info("dynamic payload disabled")
	return c.rc.ClearBit(RFeature, BEnDpl)
}

// EnableDynamicAck allows W_TX_PAYLOAD_NO_ACK
func (c *ConfigController) EnableDynamicAck() ([]byte, error) {
	log.Info("dynamic acknowledge enabled")
	return c.rc.SetBit(RFeature, BEnDynAck)
}

func (c *ConfigController) DisableDynamicAck() ([]byte, error) {
	log.Info("dynamic acknowledge disabled")
	return c.rc.ClearBit(RFeature, BEnDynAck)
}

func (c *ConfigController) DynamicAckEnabled() (bool, error) {
	bit, err := c.rc.ReadBit(RFeature, BEnDynAck)
	return 1 == bit, err
}

// EnableAckPayload sets FEATURE.EN_ACK_PAY
func (c *ConfigController) EnableAckPayload() ([]byte, error) {
	log.Info("payload with ack enabled")
	return c.rc.SetBit(RFeature, BEnAckPay)
}

func (c *ConfigController) DisableAckPayload() ([]byte, error) {
	log.Info("payload with ack disabled")
	return c.rc.ClearBit(RFeature, BEnAckPay)
}

// SetTxAddress writes TX_ADDR. The length should match the configured address width, that is not checked here.
func (c *ConfigController) SetTxAddress(addr []byte) ([]byte, error) {
	log.Info(fmt.Sprintf("TX address set to %v", Dump(addr)))
	return c.rc.WriteRegister(RTxAddr, addr)
}

func (c *ConfigController) TxAddress() ([]byte, error) {
	return c.rc.ReadRegister(RTxAddr)
}

// SetAutoRetransmit writes SETUP_RETR, delay is (delayCode+1)*250us, count 0 disables retransmission
func (c *ConfigController) SetAutoRetransmit(delayCode, count byte) ([]byte, error) {
	if 15 < delayCode || 15 < count {
		return nil, newError(EBadParameter, "SetAutoRetransmit",
			fmt.Sprintf("delay %d count %d, allowed 0-15", delayCode, count))
	}
	log.Info(fmt.Sprintf("auto retransmit delay %dus, count %d", (int(delayCode)+1)*250, count))
	return c.rc.WriteRegister(RSetupRetr, []byte{delayCode<<BARD | count<<BARC})
}

// Reset zeroes CONFIG: powered down, PRIM_TX, CRC off, all interrupts unmasked
func (c *ConfigController) Reset() ([]byte, error) {
	log.Info("config reset")
	return c.rc.WriteRegister(RConfig, []byte{0x00})
}

func (c *ConfigController) setBitTo(r Register, n Bit, value bool) error {
	var err error
	if value {
		_, err = c.rc.SetBit(r, n)
	} else {
		_, err = c.rc.ClearBit(r, n)
	}
	return err
}

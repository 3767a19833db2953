package RFM75Model

import (
	"fmt"
)

// PipeSettings is the receive setup of one pipe
type PipeSettings struct {
	Pipe    int
	Address []byte
	// Width is the static payload width, ignored with DynamicPayload
	Width          int
	AutoAck        bool
	DynamicPayload bool
}

// Settings is everything needed to bring the chip from reset to a working radio
type Settings struct {
	Channel      byte
	DataRate     DataRate
	AddressWidth AddressWidth
	TxPower      TxPower
	LNAGain      LNAGain
	CRC          bool
	CRCLength    CRCLength
	// DynamicPayload sets FEATURE.EN_DPL, pipes opt in through PipeSettings
	DynamicPayload bool
	DynamicAck     bool
	AckPayload     bool
	TxAddress      []byte
	// RetransmitDelay and RetransmitCount go to SETUP_RETR as is
	RetransmitDelay byte
	RetransmitCount byte
	Pipes           []PipeSettings
	// Receive selects PRIM_RX, otherwise the chip is left in TX mode
	Receive bool
}

// Validate checks everything that can be checked without talking to the chip
func (s *Settings) Validate() error {
	if !s.AddressWidth.valid() {
		return newError(EInvalidAddressWidth, "Settings", s.AddressWidth.String())
	}
	if _, ok := dataRateNames[s.DataRate]; !ok {
		return newError(EInvalidDataRate, "Settings", s.DataRate.String())
	}
	if _, ok := txPowerNames[s.TxPower]; !ok {
		return newError(EInvalidTxPower, "Settings", s.TxPower.String())
	}
	if CRC1 != s.CRCLength && CRC2 != s.CRCLength {
		return newError(EBadParameter, "Settings", "CRC length "+s.CRCLength.String())
	}
	if 15 < s.RetransmitDelay || 15 < s.RetransmitCount {
		return newError(EBadParameter, "Settings",
			fmt.Sprintf("retransmit delay %d count %d, allowed 0-15", s.RetransmitDelay, s.RetransmitCount))
	}
	if 0 != len(s.TxAddress) && s.AddressWidth.Bytes() != len(s.TxAddress) {
		return newError(EBadParameter, "Settings",
			fmt.Sprintf("TX address [%v] does not match address width %v", Dump(s.TxAddress), s.AddressWidth))
	}
	seen := make(map[int]bool)
	for _, p := range s.Pipes {
		if err := checkPipe(p.Pipe, "Settings"); nil != err {
			return err
		}
		if seen[p.Pipe] {
			return newError(EBadParameter, "Settings", fmt.Sprintf("pipe %d configured twice", p.Pipe))
		}
		seen[p.Pipe] = true
		if 0 > p.Width || MaxPayloadWidth < p.Width {
			return newError(EInvalidPayloadWidth, "Settings", fmt.Sprintf("%d for pipe %d, allowed 0-32", p.Width, p.Pipe))
		}
		want := s.AddressWidth.Bytes()
		if 1 < p.Pipe {
			want = 1
		}
		if 0 != len(p.Address) && want != len(p.Address) {
			return newError(EBadParameter, "Settings",
				fmt.Sprintf("pipe %d address [%v], want %d bytes", p.Pipe, Dump(p.Address), want))
		}
		if p.DynamicPayload && !s.DynamicPayload {
			return newError(EBadParameter, "Settings",
				fmt.Sprintf("pipe %d uses dynamic payload while it is disabled globally", p.Pipe))
		}
	}
	return nil
}

// Configure runs the whole bring-up sequence and powers the chip up.
// CE is left low, Listen or WriteTxPayload raise it.
func (c *Controller) Configure(s Settings) error {
	if err := s.Validate(); nil != err {
		return err
	}
	connected, err := c.IsConnected()
	if nil != err {
		return err
	}
	if !connected {
		return newError(ENotConnected, "Configure", "")
	}
	if id, err := c.ChipID(); nil == err {
		log.Info(fmt.Sprintf("chip id: %v", Dump(id)))
	} else {
		return err
	}
	if err := c.CEOff(); nil != err {
		return err
	}
	cfg := c.config
	steps := []func() error{
		func() error { _, err := cfg.Reset(); return err },
		func() error { _, err := cfg.SetChannel(s.Channel); return err },
		func() error { _, err := cfg.SetLNAGain(s.LNAGain); return err },
		func() error { return cfg.ChipInit(s.DataRate) },
		func() error { return c.applyFeatures(s) },
		func() error { _, err := cfg.SetAddressWidth(s.AddressWidth); return err },
		func() error { _, err := cfg.SetTxPower(s.TxPower); return err },
		func() error { _, err := cfg.SetAutoRetransmit(s.RetransmitDelay, s.RetransmitCount); return err },
		func() error { _, err := cfg.Pipes.DisableAutoAckAll(); return err },
	}
	if 0 != len(s.TxAddress) {
		steps = append(steps, func() error { _, err := cfg.SetTxAddress(s.TxAddress); return err })
	}
	for _, p := range s.Pipes {
		steps = append(steps, c.pipeSteps(p)...)
	}
	steps = append(steps,
		func() error { _, err := cfg.CRC.SetLength(s.CRCLength); return err },
		func() error { return setFeature(cfg.CRC.Enable, cfg.CRC.Disable, s.CRC) },
		func() error {
			if s.Receive {
				return c.SetModeRX()
			}
			return c.SetModeTX()
		},
		func() error { _, err := c.PowerUp(); return err },
	)
	for _, step := range steps {
		if err := step(); nil != err {
			return err
		}
	}
	log.Info("module initialisation done")
	return nil
}

func (c *Controller) pipeSteps(p PipeSettings) []func() error {
	pipes := c.config.Pipes
	steps := []func() error{
		func() error { _, err := pipes.Enable(p.Pipe); return err },
	}
	if 0 != len(p.Address) {
		steps = append(steps, func() error { _, err := pipes.SetRxAddress(p.Pipe, p.Address); return err })
	}
	if p.DynamicPayload {
		steps = append(steps, func() error { _, err := pipes.EnableDynamicPayload(p.Pipe); return err })
	} else {
		steps = append(steps,
			func() error { _, err := pipes.DisableDynamicPayload(p.Pipe); return err },
			func() error { _, err := pipes.SetStaticPayloadWidth(p.Pipe, p.Width); return err },
		)
	}
	if p.AutoAck {
		steps = append(steps, func() error { _, err := pipes.EnableAutoAck(p.Pipe); return err })
	}
	return steps
}

func setFeature(enable, disable func() ([]byte, error), on bool) error {
	var err error
	if on {
		_, err = enable()
	} else {
		_, err = disable()
	}
	return err
}

// applyFeatures unlocks the feature registers and writes FEATURE. ACTIVATE is a toggle on this chip,
// so a non-zero value is written first and ACTIVATE is sent only when it did not stick.
// Zero can not tell locked from unlocked, and R_RX_PL_WID reads 0 while the features are locked.
func (c *Controller) applyFeatures(s Settings) error {
	var want byte
	if s.DynamicPayload {
		want |= BV(BEnDpl)
	}
	if s.AckPayload {
		want |= BV(BEnAckPay)
	}
	if s.DynamicAck {
		want |= BV(BEnDynAck)
	}
	marker := BV(BEnDynAck)
	reg, err := c.rc.WriteRegister(RFeature, []byte{marker})
	if nil != err {
		return err
	}
	if marker != reg[0] {
		if err := c.ActivateFeatures(); nil != err {
			return err
		}
	}
	if reg, err = c.rc.WriteRegister(RFeature, []byte{want}); nil != err {
		return err
	}
	if want != reg[0] {
		return newError(EBadParameter, "applyFeatures", fmt.Sprintf("FEATURE reads %#02x after activation, want %#02x", reg[0], want))
	}
	return nil
}

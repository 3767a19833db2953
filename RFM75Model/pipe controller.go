package RFM75Model

import "fmt"

// PipeController configures the six receive pipes
type PipeController struct {
	rc *RegisterController
}

func checkPipe(pipe int, op string) error {
	if 0 > pipe || PipeCount <= pipe {
		return newError(EInvalidPipeNumber, op, fmt.Sprintf("%d, allowed 0-5", pipe))
	}
	return nil
}

// Enable sets the pipe bit in EN_RXADDR
func (p *PipeController) Enable(pipe int) ([]byte, error) {
	if err := checkPipe(pipe, "pipe Enable"); nil != err {
		return nil, err
	}
	log.Info(fmt.Sprintf("pipe %d enabled", pipe))
	return p.rc.SetBit(REnRxAddr, Bit(pipe))
}

func (p *PipeController) Disable(pipe int) ([]byte, error) {
	if err := checkPipe(pipe, "pipe Disable"); nil != err {
		return nil, err
	}
	log.Info(fmt.Sprintf("pipe %d disabled", pipe))
	return p.rc.ClearBit(REnRxAddr, Bit(pipe))
}

func (p *PipeController) Enabled(pipe int) (bool, error) {
	if err := checkPipe(pipe, "pipe Enabled"); nil != err {
		return false, err
	}
	bit, err := p.rc.ReadBit(REnRxAddr, Bit(pipe))
	return 1 == bit, err
}

func (p *PipeController) EnableAutoAck(pipe int) ([]byte, error) {
	if err := checkPipe(pipe, "EnableAutoAck"); nil != err {
		return nil, err
	}
	log.Info(fmt.Sprintf("auto acknowledge for pipe %d enabled", pipe))
	return p.rc.SetBit(REnAA, Bit(pipe))
}

func (p *PipeController) DisableAutoAck(pipe int) ([]byte, error) {
	if err := checkPipe(pipe, "DisableAutoAck"); nil != err {
		return nil, err
	}
	log.Info(fmt.Sprintf("auto acknowledge for pipe %d disabled", pipe))
	return p.rc.ClearBit(REnAA, Bit(pipe))
}

// DisableAutoAckAll zeroes EN_AA
func (p *PipeController) DisableAutoAckAll() ([]byte, error) {
	log.Info("auto acknowledge disabled")
	return p.rc.WriteRegister(REnAA, []byte{0})
}

// AutoAckEnabledAny is true when at least one pipe has auto acknowledge on
func (p *PipeController) AutoAckEnabledAny() (bool, error) {
	reg, err := p.rc.ReadRegister(REnAA)
	if nil != err {
		return false, err
	}
	return 0 != reg[0], nil
}

func (p *PipeController) AutoAckEnabled(pipe int) (bool, error) {
	if err := checkPipe(pipe, "AutoAckEnabled"); nil != err {
		return false, err
	}
	bit, err := p.rc.ReadBit(REnAA, Bit(pipe))
	return 1 == bit, err
}

// SetRxAddress writes the pipe address. Pipes 0 and 1 take a full address,
// pipes 2-5 only the least significant byte and share the rest with pipe 1.
func (p *PipeController) SetRxAddress(pipe int, addr []byte) ([]byte, error) {
	if err := checkPipe(pipe, "SetRxAddress"); nil != err {
		return nil, err
	}
	log.Info(fmt.Sprintf("RX pipe %d address set to %v", pipe, Dump(addr)))
	return p.rc.WriteRegister(rxAddrRegisters[pipe], addr)
}

func (p *PipeController) RxAddress(pipe int) ([]byte, error) {
	if err := checkPipe(pipe, "RxAddress"); nil != err {
		return nil, err
	}
	return p.rc.ReadRegister(rxAddrRegisters[pipe])
}

// SetStaticPayloadWidth writes RX_PW_Px, 0 means the pipe is not used
func (p *PipeController) SetStaticPayloadWidth(pipe int, width int) (int, error) {
	if err := checkPipe(pipe, "SetStaticPayloadWidth"); nil != err {
		return 0, err
	}
	if 0 > width || MaxPayloadWidth < width {
		return 0, newError(EInvalidPayloadWidth, "SetStaticPayloadWidth",
			fmt.Sprintf("%d for pipe %d, allowed 0-32", width, pipe))
	}
	log.Info(fmt.Sprintf("pipe %d RX payload width is %d", pipe, width))
	reg, err := p.rc.WriteRegister(rxPayloadWidthRegisters[pipe], []byte{byte(width)})
	if nil != err {
		return 0, err
	}
	return int(reg[0]), nil
}

func (p *PipeController) StaticPayloadWidth(pipe int) (int, error) {
	if err := checkPipe(pipe, "StaticPayloadWidth"); nil != err {
		return 0, err
	}
	reg, err := p.rc.ReadRegister(rxPayloadWidthRegisters[pipe])
	if nil != err {
		return 0, err
	}
	return int(reg[0]), nil
}

// EnableDynamicPayload sets the pipe bit in DYNPD. FEATURE.EN_DPL must be set as well.
func (p *PipeController) EnableDynamicPayload(pipe int) ([]byte, error) {
	if err := checkPipe(pipe, "EnableDynamicPayload"); nil != err {
		return nil, err
	}
	log.Info(fmt.Sprintf("pipe %d dynamic payload enabled", pipe))
	return p.rc.SetBit(RDynPd, Bit(pipe))
}

func (p *PipeController) DisableDynamicPayload(pipe int) ([]byte, error) {
	if err := checkPipe(pipe, "DisableDynamicPayload"); nil != err {
		return nil, err
	}
	log.Info(fmt.Sprintf("pipe %d dynamic payload disabled", pipe))
	return p.rc.ClearBit(RDynPd, Bit(pipe))
}

func (p *PipeController) DynamicPayloadEnabled(pipe int) (bool, error) {
	if err := checkPipe(pipe, "DynamicPayloadEnabled"); nil != err {
		return false, err
	}
	bit, err := p.rc.ReadBit(RDynPd, Bit(pipe))
	return 1 == bit, err
}

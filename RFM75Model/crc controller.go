package RFM75Model

import "fmt"

// CRCController handles CONFIG.EN_CRC and CONFIG.CRCO.
// Note that the chip forces CRC on while any pipe has auto acknowledge enabled, whatever Disable wrote.
type CRCController struct {
	rc *RegisterController
}

func (c *CRCController) SetLength(l CRCLength) ([]byte, error) {
	log.Info(fmt.Sprintf("CRC encoding scheme %v", l))
	switch l {
	case CRC2:
		return c.rc.SetBit(RConfig, BCrcO)
	case CRC1:
		return c.rc.ClearBit(RConfig, BCrcO)
	}
	return nil, newError(EBadParameter, "CRC SetLength", l.String())
}

func (c *CRCController) Length() (CRCLength, error) {
	bit, err := c.rc.ReadBit(RConfig, BCrcO)
	return CRCLength(bit), err
}

func (c *CRCController) Enable() ([]byte, error) {
	log.Info("CRC enabled")
	return c.rc.SetBit(RConfig, BEnCrc)
}

func (c *CRCController) Disable() ([]byte, error) {
	log.Info("CRC disabled")
	return c.rc.ClearBit(RConfig, BEnCrc)
}

// Enabled reports the EN_CRC bit as written, not the forced state
func (c *CRCController) Enabled() (bool, error) {
	bit, err := c.rc.ReadBit(RConfig, BEnCrc)
	return 1 == bit, err
}

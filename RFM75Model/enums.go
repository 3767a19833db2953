package RFM75Model

import (
	"fmt"
	"strings"
)

// AddressWidth is the SETUP_AW encoding of the address length
type AddressWidth byte

const (
	AddressWidth3 AddressWidth = 0b01
	AddressWidth4 AddressWidth = 0b10
	AddressWidth5 AddressWidth = 0b11
)

// Bytes returns the address length in bytes, 0 for an invalid value
func (w AddressWidth) Bytes() int {
	switch w {
	case AddressWidth3, AddressWidth4, AddressWidth5:
		return int(w) + 2
	}
	return 0
}

func (w AddressWidth) valid() bool {
	return 0 != w.Bytes()
}

func (w AddressWidth) String() string {
	if !w.valid() {
		return fmt.Sprintf("AddressWidth(%d)", byte(w))
	}
	return fmt.Sprintf("%d bytes", w.Bytes())
}

// AddressWidthFromBytes converts an address length in bytes to its register encoding
func AddressWidthFromBytes(n int) (AddressWidth, error) {
	switch n {
	case 3:
		return AddressWidth3, nil
	case 4:
		return AddressWidth4, nil
	case 5:
		return AddressWidth5, nil
	}
	return 0, newError(EInvalidAddressWidth, "AddressWidthFromBytes", fmt.Sprintf("%d bytes, allowed 3-5", n))
}

// CRCLength is the value of CONFIG.CRCO
type CRCLength byte

const (
	CRC1 CRCLength = 0
	CRC2 CRCLength = 1
)

func (c CRCLength) String() string {
	switch c {
	case CRC1:
		return "1 byte"
	case CRC2:
		return "2 bytes"
	}
	return fmt.Sprintf("CRCLength(%d)", byte(c))
}

// TxPower is the RF_PWR field already shifted into its RF_SETUP position
type TxPower byte

const (
	TxPowerLow  TxPower = 0b000
	TxPower1    TxPower = 0b010
	TxPower2    TxPower = 0b100
	TxPowerHigh TxPower = 0b110

	txPowerMask = byte(TxPowerHigh)
)

var txPowerNames = map[TxPower]string{
	TxPowerLow:  "low",
	TxPower1:    "1",
	TxPower2:    "2",
	TxPowerHigh: "high",
}

func (p TxPower) String() string {
	if name, ok := txPowerNames[p]; ok {
		return name
	}
	return fmt.Sprintf("TxPower(%#b)", byte(p))
}

// ParseTxPower accepts "low", "1", "2" and "high"
func ParseTxPower(s string) (TxPower, error) {
	for p, name := range txPowerNames {
		if strings.EqualFold(s, name) {
			return p, nil
		}
	}
	return 0, newError(EInvalidTxPower, "ParseTxPower", s)
}

// DataRate is the air data rate profile. It selects both RF_SETUP rate bits and bank 1 tuning values.
type DataRate byte

const (
	DataRate1Msps DataRate = iota
	DataRate2Msps
	DataRate250ksps
)

var dataRateNames = map[DataRate]string{
	DataRate1Msps:   "1Msps",
	DataRate2Msps:   "2Msps",
	DataRate250ksps: "250ksps",
}

func (r DataRate) String() string {
	if name, ok := dataRateNames[r]; ok {
		return name
	}
	return fmt.Sprintf("DataRate(%d)", byte(r))
}

// ParseDataRate accepts "1Msps", "2Msps" and "250ksps"
func ParseDataRate(s string) (DataRate, error) {
	for r, name := range dataRateNames {
		if strings.EqualFold(s, name) {
			return r, nil
		}
	}
	return 0, newError(EInvalidDataRate, "ParseDataRate", s)
}

// LNAGain is the LNA_HCURR bit of RF_SETUP
type LNAGain byte

const (
	// LNAGainLow is 20dB down
	LNAGainLow  LNAGain = 0
	LNAGainHigh LNAGain = 1
)

func (g LNAGain) String() string {
	if LNAGainHigh == g {
		return "high"
	}
	return "low"
}

// Mode is the chip state as seen through CONFIG and the CE line
type Mode byte

const (
	ModePowerDown Mode = iota
	ModeStandby
	ModeTX
	ModeRX
)

func (m Mode) String() string {
	switch m {
	case ModePowerDown:
		return "power down"
	case ModeStandby:
		return "standby"
	case ModeTX:
		return "TX"
	case ModeRX:
		return "RX"
	}
	return fmt.Sprintf("Mode(%d)", byte(m))
}

package RFM75Model

import "fmt"

// RFM75-related stuff
type Command byte
type Bit uint

// Bank selects one of the two register address spaces
type Bank byte

const (
	Bank0 Bank = 0
	Bank1 Bank = 1
)

// Register describes a single chip register. Values are immutable.
type Register struct {
	Name string
	Addr byte
	Size int
	Bank Bank
}

func (r Register) String() string {
	return fmt.Sprintf("%v (bank %v, 0x%02X)", r.Name, r.Bank, r.Addr)
}

// RFM75 commands
const (
	CReadRegister        Command = 0x00
	CWriteRegister       Command = 0x20
	CActivate            Command = 0x50
	CReadRxPayloadWidth  Command = 0x60
	CReadRxPayload       Command = 0x61
	CWriteTxPayload      Command = 0xA0
	CWriteAckPayload     Command = 0xA8
	CWriteTxPayloadNoAck Command = 0xB0
	CFlushTx             Command = 0xE1
	CFlushRx             Command = 0xE2
	CReuseTxPl           Command = 0xE3
	CNop                 Command = 0xFF
)

// ACTIVATE has two flavours told apart by the second byte
var (
	cmdActivateFeatures = []byte{byte(CActivate), 0x73}
	cmdToggleBank       = []byte{byte(CActivate), 0x53}
)

// bank 0 registers
var (
	RConfig     = Register{"CONFIG", 0x00, 1, Bank0}
	REnAA       = Register{"EN_AA", 0x01, 1, Bank0}
	REnRxAddr   = Register{"EN_RXADDR", 0x02, 1, Bank0}
	RSetupAW    = Register{"SETUP_AW", 0x03, 1, Bank0}
	RSetupRetr  = Register{"SETUP_RETR", 0x04, 1, Bank0}
	RRFCh       = Register{"RF_CH", 0x05, 1, Bank0}
	RRFSetup    = Register{"RF_SETUP", 0x06, 1, Bank0}
	RStatus     = Register{"STATUS", 0x07, 1, Bank0}
	RObserveTx  = Register{"OBSERVE_TX", 0x08, 1, Bank0}
	RCD         = Register{"CD", 0x09, 1, Bank0}
	RRxAddrP0   = Register{"RX_ADDR_P0", 0x0A, 5, Bank0}
	RRxAddrP1   = Register{"RX_ADDR_P1", 0x0B, 5, Bank0}
	RRxAddrP2   = Register{"RX_ADDR_P2", 0x0C, 1, Bank0}
	RRxAddrP3   = Register{"RX_ADDR_P3", 0x0D, 1, Bank0}
	RRxAddrP4   = Register{"RX_ADDR_P4", 0x0E, 1, Bank0}
	RRxAddrP5   = Register{"RX_ADDR_P5", 0x0F, 1, Bank0}
	RTxAddr     = Register{"TX_ADDR", 0x10, 5, Bank0}
	RRxPwP0     = Register{"RX_PW_P0", 0x11, 1, Bank0}
	RRxPwP1     = Register{"RX_PW_P1", 0x12, 1, Bank0}
	RRxPwP2     = Register{"RX_PW_P2", 0x13, 1, Bank0}
	RRxPwP3     = Register{"RX_PW_P3", 0x14, 1, Bank0}
	RRxPwP4     = Register{"RX_PW_P4", 0x15, 1, Bank0}
	RRxPwP5     = Register{"RX_PW_P5", 0x16, 1, Bank0}
	RFifoStatus = Register{"FIFO_STATUS", 0x17, 1, Bank0}
	RDynPd      = Register{"DYNPD", 0x1C, 1, Bank0}
	RFeature    = Register{"FEATURE", 0x1D, 1, Bank0}
)

// bank 1 registers, tuning values are not documented per bit
var (
	RB1Reg00     = Register{"B1_REG_00", 0x00, 4, Bank1}
	RB1Reg01     = Register{"B1_REG_01", 0x01, 4, Bank1}
	RB1Reg02     = Register{"B1_REG_02", 0x02, 4, Bank1}
	RB1Reg03     = Register{"B1_REG_03", 0x03, 4, Bank1}
	RB1Reg04     = Register{"B1_REG_04", 0x04, 4, Bank1}
	RB1Reg05     = Register{"B1_REG_05", 0x05, 4, Bank1}
	RB1Status    = Register{"B1_STATUS", 0x07, 1, Bank1}
	RB1ChipID    = Register{"B1_CHIP_ID", 0x08, 4, Bank1}
	RB1Reg0C     = Register{"B1_REG_0C", 0x0C, 4, Bank1}
	RB1Reg0D     = Register{"B1_REG_0D", 0x0D, 4, Bank1}
	RB1RampCurve = Register{"B1_REG_0E", 0x0E, 11, Bank1}
)

// Registers lists every register in address order, bank 0 first
var Registers = []Register{
	RConfig, REnAA, REnRxAddr, RSetupAW, RSetupRetr, RRFCh, RRFSetup, RStatus,
	RObserveTx, RCD, RRxAddrP0, RRxAddrP1, RRxAddrP2, RRxAddrP3, RRxAddrP4, RRxAddrP5,
	RTxAddr, RRxPwP0, RRxPwP1, RRxPwP2, RRxPwP3, RRxPwP4, RRxPwP5, RFifoStatus,
	RDynPd, RFeature,
	RB1Reg00, RB1Reg01, RB1Reg02, RB1Reg03, RB1Reg04, RB1Reg05, RB1Status, RB1ChipID,
	RB1Reg0C, RB1Reg0D, RB1RampCurve,
}

var rxAddrRegisters = [PipeCount]Register{RRxAddrP0, RRxAddrP1, RRxAddrP2, RRxAddrP3, RRxAddrP4, RRxAddrP5}
var rxPayloadWidthRegisters = [PipeCount]Register{RRxPwP0, RRxPwP1, RRxPwP2, RRxPwP3, RRxPwP4, RRxPwP5}

// register bits
const (
	// CONFIG
	BMaskRxDr  Bit = 6
	BMaskTxDs  Bit = 5
	BMaskMaxRt Bit = 4
	BEnCrc     Bit = 3
	BCrcO      Bit = 2
	BPwrUp     Bit = 1
	BPrimRx    Bit = 0

	// SETUP_RETR
	BARD Bit = 4
	BARC Bit = 0

	// RF_SETUP
	BRfDrLow  Bit = 5
	BRfDrHigh Bit = 3
	BRfPwr    Bit = 1
	BLnaHcurr Bit = 0

	// STATUS
	BRBank        Bit  = 7
	BRxDr         Bit  = 6
	BTxDs         Bit  = 5
	BMaxRt        Bit  = 4
	BRxPNo        Bit  = 1
	BStatusTxFull Bit  = 0
	BRxPNoMask    byte = 0x0E

	// FIFO_STATUS
	BTxReuse    Bit = 6
	BFifoTxFull Bit = 5
	BTxEmpty    Bit = 4
	BRxFull     Bit = 1
	BRxEmpty    Bit = 0

	// FEATURE
	BEnDpl    Bit = 2
	BEnAckPay Bit = 1
	BEnDynAck Bit = 0
)

const (
	// PipeCount is the number of receive pipes
	PipeCount = 6
	// MaxPayloadWidth is the FIFO entry size
	MaxPayloadWidth = 32
	// rxPipeEmpty is the RX_P_NO value reported when the receive FIFO is empty
	rxPipeEmpty = 7
	// clearing all three interrupt flags at once
	statusClearFlags byte = 1<<BRxDr | 1<<BTxDs | 1<<BMaxRt
)

func BV(b Bit) byte {
	return 1 << byte(b)
}

// bank 1 initialization values, as recommended by the chip vendor
var (
	b1Reg00Value     = []byte{0x40, 0x4B, 0x01, 0xE2}
	b1Reg01Value     = []byte{0xC0, 0x4B, 0x00, 0x00}
	b1Reg02Value     = []byte{0xD0, 0xFC, 0x8C, 0x02}
	b1Reg03Value     = []byte{0x99, 0x00, 0x39, 0x41}
	b1Reg0CValue     = []byte{0x00, 0x12, 0x73, 0x00}
	b1Reg0DValue     = []byte{0x36, 0xB4, 0x80, 0x00}
	b1RampCurveValue = []byte{0x41, 0x20, 0x08, 0x04, 0x81, 0x20, 0xCF, 0xF7, 0xFE, 0xFF, 0xFF}

	b1Reg04Values = map[DataRate][]byte{
		DataRate1Msps:   {0xF9, 0x96, 0x82, 0x1B},
		DataRate2Msps:   {0xF9, 0x96, 0x82, 0xDB},
		DataRate250ksps: {0xF9, 0x96, 0x8A, 0xDB},
	}
	b1Reg05Values = map[DataRate][]byte{
		DataRate1Msps:   {0x24, 0x06, 0x0F, 0xA6},
		DataRate2Msps:   {0x24, 0x06, 0x0F, 0xB6},
		DataRate250ksps: {0x24, 0x06, 0x0F, 0xB6},
	}
)

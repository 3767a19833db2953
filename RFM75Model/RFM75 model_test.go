package RFM75Model

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"testing"
	"time"

	"github.com/JSkrat/rfm75/ChipEmulator"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestNewController(t *testing.T) {
	chip := ChipEmulator.New()
	pins := &ChipEmulator.Pins{}
	pins.SetLevels(0xFFFF)
	if _, err := NewController(chip, pins, testCEPin); nil != err {
		t.Fatal(err)
	}
	Assert(t, 1<<testCEPin == pins.Outputs(), "CE is not the only output")
	Assert(t, 0xFF7F == pins.Levels(), "CE is not low or other pins were touched")
	Assert(t, 0 == len(chip.Calls()), "constructor talked to the chip")
}

func TestNewControllerOptions(t *testing.T) {
	tests := []struct {
		name    string
		cePin   uint
		opts    []Option
		wantErr error
	}{
		{"defaults", 7, nil, nil},
		{"short hold", 0, []Option{WithCEHold(10 * time.Microsecond)}, nil},
		{"hold too short", 7, []Option{WithCEHold(time.Microsecond)}, EInvalidCEHold},
		{"hold too long", 7, []Option{WithCEHold(5 * time.Millisecond)}, EInvalidCEHold},
		{"pin out of bank", 16, nil, EBadParameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewController(ChipEmulator.New(), &ChipEmulator.Pins{}, tt.cePin, tt.opts...)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewController() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewControllerSharedRegisterController(t *testing.T) {
	chip := ChipEmulator.New()
	rc := NewRegisterController(chip)
	c, err := NewController(chip, &ChipEmulator.Pins{}, testCEPin, WithRegisterController(rc))
	if nil != err {
		t.Fatal(err)
	}
	Assert(t, rc == c.Registers(), "register controller is not shared")
}

func TestController_IsConnected(t *testing.T) {
	c, chip, _ := newTestController(t)
	connected, err := c.IsConnected()
	Assert(t, nil == err && connected, "emulated chip is not connected")

	chip.Disconnected = true
	connected, err = c.IsConnected()
	Assert(t, nil == err && !connected, "empty socket reported as connected")
}

func TestController_ChipID(t *testing.T) {
	c, _, _ := newTestController(t)
	id, err := c.ChipID()
	if nil != err || !reflect.DeepEqual(id, []byte{0x63, 0x00, 0x00, 0x00}) {
		t.Errorf("ChipID() = %v, %v", id, err)
	}
}

func TestController_Modes(t *testing.T) {
	c, chip, _ := newTestController(t)
	mode, _ := c.Mode()
	Assert(t, ModePowerDown == mode, "power-on mode is not power down")
	if _, err := c.PowerUp(); nil != err {
		t.Fatal(err)
	}
	mode, _ = c.Mode()
	Assert(t, ModeStandby == mode, "powered chip with CE low is not standby")
	if err := c.Listen(); nil != err {
		t.Fatal(err)
	}
	mode, _ = c.Mode()
	Assert(t, ModeRX == mode, "mode is not RX after Listen")
	chip.Receive(0, []byte{1})
	if err := c.SetModeTX(); nil != err {
		t.Fatal(err)
	}
	mode, _ = c.Mode()
	Assert(t, ModeStandby == mode, "CE high with an empty TX FIFO is not standby-II")
	chip.SetRegister(0, 0x17, []byte{0x01})
	mode, _ = c.Mode()
	Assert(t, ModeTX == mode, "mode is not TX with a payload queued")
	Assert(t, 0 == chip.Flags(), "SetModeTX did not clear interrupt flags")
	Assert(t, 1 == chip.TxFlushes(), "SetModeTX did not flush TX FIFO")
	if err := c.Close(); nil != err {
		t.Fatal(err)
	}
	mode, _ = c.Mode()
	Assert(t, ModePowerDown == mode, "mode is not power down after Close")
	ce, _ := c.CE()
	Assert(t, !ce, "CE is high after Close")
}

func TestController_SetModeRX(t *testing.T) {
	c, chip, _ := newTestController(t)
	chip.SetRegister(0, 0x00, []byte{0x0A})
	chip.Receive(0, []byte{1})
	if err := c.SetModeRX(); nil != err {
		t.Fatal(err)
	}
	Assert(t, 0x0B == chip.Register(0, 0x00)[0], "PRIM_RX is not set")
	Assert(t, 0 != chip.Flags(), "SetModeRX touched STATUS")
	Assert(t, 0 == chip.TxFlushes(), "SetModeRX flushed TX")
}

func TestController_WriteTxPayload(t *testing.T) {
	c, chip, pins := newTestController(t)
	var events []string
	pins.OnWrite = func(levels uint16) {
		events = append(events, fmt.Sprintf("ce %v", 0 != levels&(1<<testCEPin)))
	}
	c.sleep = func(d time.Duration) {
		events = append(events, fmt.Sprintf("sleep %v", d))
	}
	chip.SetRegister(0, 0x01, []byte{0x01})
	payload := []byte{0xCA, 0xFE, 0xB0, 0xBA, 0x01}
	if err := c.WriteTxPayload(payload, true); nil != err {
		t.Fatal(err)
	}
	calls := chip.Calls()
	var frame []ChipEmulator.Call
	for i, call := range calls {
		if call.Start && !call.Stop {
			frame = calls[i:]
			break
		}
	}
	want := []ChipEmulator.Call{
		{Write: true, Out: []byte{0xA0}, Start: true},
		{Write: true, Out: payload},
		{Write: true, Stop: true},
	}
	if !reflect.DeepEqual(frame, want) {
		t.Errorf("WriteTxPayload() frame = %+v, want %+v", frame, want)
	}
	wantEvents := []string{"ce false", "ce true", "sleep 2ms", "ce false"}
	if !reflect.DeepEqual(events, wantEvents) {
		t.Errorf("WriteTxPayload() CE events = %v, want %v", events, wantEvents)
	}
	wantSent := []ChipEmulator.TxPacket{{Payload: payload}}
	if got := chip.Sent(); !reflect.DeepEqual(got, wantSent) {
		t.Errorf("sent = %+v, want %+v", got, wantSent)
	}
}

func TestController_WriteTxPayloadCommand(t *testing.T) {
	tests := []struct {
		name        string
		enAA        byte
		feature     byte
		requestAck  bool
		wantSent    bool
		wantNoAck   bool
		wantWarning bool
	}{
		{"no auto ack, no request", 0x00, 0x00, false, true, false, false},
		{"no auto ack, request", 0x00, 0x00, true, true, false, false},
		{"auto ack, no request", 0x01, 0x01, false, true, true, false},
		{"auto ack on pipe 5, request", 0x20, 0x00, true, true, false, false},
		{"auto ack, no request, dynamic ack off", 0x01, 0x00, false, false, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, chip, _ := newTestController(t)
			logger, hook := test.NewNullLogger()
			defer SetLogger(log)
			SetLogger(logger)
			chip.SetFeaturesActive(true)
			chip.SetRegister(0, 0x01, []byte{tt.enAA})
			chip.SetRegister(0, 0x1D, []byte{tt.feature})
			if err := c.WriteTxPayload([]byte{0x42}, tt.requestAck); nil != err {
				t.Fatal(err)
			}
			sent := chip.Sent()
			if tt.wantSent && (1 != len(sent) || tt.wantNoAck != sent[0].NoAck) {
				t.Errorf("sent = %+v, want NoAck %v", sent, tt.wantNoAck)
			}
			if !tt.wantSent && 0 != len(sent) {
				t.Errorf("sent = %+v, want nothing", sent)
			}
			var warned bool
			for _, e := range hook.AllEntries() {
				warned = warned || logrus.WarnLevel == e.Level
			}
			Assert(t, tt.wantWarning == warned, fmt.Sprintf("warning logged = %v, want %v", warned, tt.wantWarning))
		})
	}
}

func TestController_WriteTxPayloadHold(t *testing.T) {
	c, _, _ := newTestController(t, WithCEHold(130*time.Microsecond))
	var slept []time.Duration
	c.sleep = func(d time.Duration) { slept = append(slept, d) }
	if err := c.WriteTxPayload([]byte{1, 2}, false); nil != err {
		t.Fatal(err)
	}
	Assert(t, reflect.DeepEqual(slept, []time.Duration{130 * time.Microsecond}), "CE hold is not the configured one")
}

func TestController_WriteTxPayloadTooLong(t *testing.T) {
	c, chip, pins := newTestController(t)
	before := len(pins.Writes())
	if err := c.WriteTxPayload(make([]byte, 33), true); !errors.Is(err, EPayloadTooLong) {
		t.Errorf("WriteTxPayload() error = %v, want %v", err, EPayloadTooLong)
	}
	Assert(t, 0 == len(chip.Calls()), "too long payload caused transport calls")
	Assert(t, before == len(pins.Writes()), "too long payload moved CE")
}

func TestController_WriteTxPayloadFailureKeepsCELow(t *testing.T) {
	c, chip, pins := newTestController(t)
	chip.Fail = func(call ChipEmulator.Call) error {
		if call.Write && !call.Start {
			return io.ErrClosedPipe
		}
		return nil
	}
	err := c.WriteTxPayload([]byte{1}, true)
	Assert(t, errors.Is(err, ETransport) && errors.Is(err, io.ErrClosedPipe), "transport error is not reported")
	Assert(t, 0 == pins.Levels()&(1<<testCEPin), "CE went high after a failed frame")
}

func TestController_ReadRxPayload(t *testing.T) {
	c, chip, _ := newTestController(t)
	chip.SetFeaturesActive(true)
	n, err := c.ReadRxPayloadLen()
	Assert(t, nil == err && 0 == n, "empty FIFO reports a payload")
	chip.Receive(1, []byte{0xCA, 0xFE})
	n, err = c.ReadRxPayloadLen()
	Assert(t, nil == err && 2 == n, "payload length is not 2")
	payload, err := c.ReadRxPayload(n)
	if nil != err || !reflect.DeepEqual(payload, []byte{0xCA, 0xFE}) {
		t.Errorf("ReadRxPayload() = %v, %v", payload, err)
	}
	calls := chip.Calls()
	want := []ChipEmulator.Call{
		{Out: []byte{0x60}, ReadLen: 1, Start: true, Stop: true},
		{Out: []byte{0x60}, ReadLen: 1, Start: true, Stop: true},
		{Out: []byte{0x61}, ReadLen: 2, Start: true, Stop: true},
	}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("calls = %+v, want %+v", calls, want)
	}
	if _, err := c.ReadRxPayload(33); !errors.Is(err, EInvalidPayloadWidth) {
		t.Errorf("ReadRxPayload(33) error = %v", err)
	}
}

func TestController_FlushRX(t *testing.T) {
	c, chip, _ := newTestController(t)
	chip.Receive(0, []byte{1})
	chip.Receive(0, []byte{2})
	if err := c.FlushRX(); nil != err {
		t.Fatal(err)
	}
	Assert(t, 0 == chip.RxFifoLen(), "RX FIFO is not empty")
}

func TestController_RxDataReady(t *testing.T) {
	c, chip, _ := newTestController(t)
	ready, _ := c.RxDataReady()
	Assert(t, !ready, "RX_DR set on an idle chip")
	chip.Receive(3, []byte{1})
	_ = c.WriteTxPayload([]byte{1}, false)
	ready, _ = c.RxDataReady()
	Assert(t, ready, "RX_DR is not set")
	pipe, _ := c.RxPipe()
	Assert(t, 3 == pipe, "RX_P_NO is not 3")
	if err := c.ClearRxDataReady(); nil != err {
		t.Fatal(err)
	}
	ready, _ = c.RxDataReady()
	Assert(t, !ready, "RX_DR is still set")
	Assert(t, 0x20 == chip.Flags(), "TX_DS was cleared along with RX_DR")
}

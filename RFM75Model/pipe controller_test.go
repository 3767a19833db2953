package RFM75Model

import (
	"errors"
	"reflect"
	"testing"
)

func TestPipeController_EnableDisable(t *testing.T) {
	for pipe := 0; pipe < PipeCount; pipe++ {
		c, chip, _ := newTestController(t)
		chip.SetRegister(0, 0x02, []byte{0x00})
		got, err := c.Config().Pipes.Enable(pipe)
		if nil != err {
			t.Fatalf("Enable(%d) error = %v", pipe, err)
		}
		if want := byte(1) << pipe; want != got[0] {
			t.Errorf("Enable(%d) = %#02x, want %#02x", pipe, got[0], want)
		}
		chip.SetRegister(0, 0x02, []byte{0x3F})
		got, err = c.Config().Pipes.Disable(pipe)
		if nil != err {
			t.Fatalf("Disable(%d) error = %v", pipe, err)
		}
		if want := 0x3F &^ (byte(1) << pipe); want != got[0] {
			t.Errorf("Disable(%d) = %#02x, want %#02x", pipe, got[0], want)
		}
		enabled, _ := c.Config().Pipes.Enabled(pipe)
		Assert(t, !enabled, "pipe is still enabled")
	}
}

func TestPipeController_InvalidPipe(t *testing.T) {
	c, chip, _ := newTestController(t)
	pipes := c.Config().Pipes
	operations := []struct {
		name string
		call func(pipe int) error
	}{
		{"Enable", func(p int) error { _, err := pipes.Enable(p); return err }},
		{"Disable", func(p int) error { _, err := pipes.Disable(p); return err }},
		{"Enabled", func(p int) error { _, err := pipes.Enabled(p); return err }},
		{"EnableAutoAck", func(p int) error { _, err := pipes.EnableAutoAck(p); return err }},
		{"DisableAutoAck", func(p int) error { _, err := pipes.DisableAutoAck(p); return err }},
		{"AutoAckEnabled", func(p int) error { _, err := pipes.AutoAckEnabled(p); return err }},
		{"SetRxAddress", func(p int) error { _, err := pipes.SetRxAddress(p, []byte{1}); return err }},
		{"RxAddress", func(p int) error { _, err := pipes.RxAddress(p); return err }},
		{"SetStaticPayloadWidth", func(p int) error { _, err := pipes.SetStaticPayloadWidth(p, 5); return err }},
		{"StaticPayloadWidth", func(p int) error { _, err := pipes.StaticPayloadWidth(p); return err }},
		{"EnableDynamicPayload", func(p int) error { _, err := pipes.EnableDynamicPayload(p); return err }},
		{"DisableDynamicPayload", func(p int) error { _, err := pipes.DisableDynamicPayload(p); return err }},
		{"DynamicPayloadEnabled", func(p int) error { _, err := pipes.DynamicPayloadEnabled(p); return err }},
	}
	for _, op := range operations {
		t.Run(op.name, func(t *testing.T) {
			for _, pipe := range []int{-1, 6, 255} {
				if err := op.call(pipe); !errors.Is(err, EInvalidPipeNumber) {
					t.Errorf("%v(%d) error = %v, want %v", op.name, pipe, err, EInvalidPipeNumber)
				}
			}
		})
	}
	Assert(t, 0 == len(chip.Calls()), "invalid pipe caused transport calls")
}

func TestPipeController_AutoAck(t *testing.T) {
	c, _, _ := newTestController(t)
	pipes := c.Config().Pipes
	if _, err := pipes.DisableAutoAckAll(); nil != err {
		t.Fatal(err)
	}
	anyOn, _ := pipes.AutoAckEnabledAny()
	Assert(t, !anyOn, "auto ack still enabled after DisableAutoAckAll")
	got, err := pipes.EnableAutoAck(3)
	if nil != err || 0x08 != got[0] {
		t.Errorf("EnableAutoAck(3) = %v, %v", got, err)
	}
	anyOn, _ = pipes.AutoAckEnabledAny()
	Assert(t, anyOn, "AutoAckEnabledAny() is false with pipe 3 on")
	on, _ := pipes.AutoAckEnabled(3)
	Assert(t, on, "AutoAckEnabled(3) is false")
	got, _ = pipes.DisableAutoAck(3)
	Assert(t, 0x00 == got[0], "DisableAutoAck(3) left bits set")
}

func TestPipeController_RxAddress(t *testing.T) {
	tests := []struct {
		name string
		pipe int
		addr []byte
		reg  byte
	}{
		{"pipe 0", 0, []byte{0x11, 0x22, 0x33, 0x22, 0x11}, 0x0A},
		{"pipe 1", 1, []byte{0xA1, 0xA2, 0xA3, 0xA4, 0xA5}, 0x0B},
		{"pipe 2", 2, []byte{0xB2}, 0x0C},
		{"pipe 5", 5, []byte{0xB5}, 0x0F},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, chip, _ := newTestController(t)
			got, err := c.Config().Pipes.SetRxAddress(tt.pipe, tt.addr)
			if nil != err {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, tt.addr) {
				t.Errorf("SetRxAddress() = %v, want %v", got, tt.addr)
			}
			if !reflect.DeepEqual(chip.Register(0, tt.reg), tt.addr) {
				t.Errorf("register %#02x = %v, want %v", tt.reg, chip.Register(0, tt.reg), tt.addr)
			}
			read, _ := c.Config().Pipes.RxAddress(tt.pipe)
			Assert(t, reflect.DeepEqual(read, tt.addr), "RxAddress() differs")
		})
	}
}

func TestPipeController_StaticPayloadWidth(t *testing.T) {
	c, _, _ := newTestController(t)
	pipes := c.Config().Pipes
	got, err := pipes.SetStaticPayloadWidth(0, 5)
	if nil != err || 5 != got {
		t.Errorf("SetStaticPayloadWidth(0, 5) = %v, %v", got, err)
	}
	width, err := pipes.StaticPayloadWidth(0)
	if nil != err || 5 != width {
		t.Errorf("StaticPayloadWidth(0) = %v, %v, want 5", width, err)
	}
	for _, w := range []int{0, 32} {
		if _, err := pipes.SetStaticPayloadWidth(4, w); nil != err {
			t.Errorf("SetStaticPayloadWidth(4, %d) error = %v", w, err)
		}
	}
	for _, w := range []int{-1, 33} {
		if _, err := pipes.SetStaticPayloadWidth(0, w); !errors.Is(err, EInvalidPayloadWidth) {
			t.Errorf("SetStaticPayloadWidth(0, %d) error = %v, want %v", w, err, EInvalidPayloadWidth)
		}
	}
	width, _ = pipes.StaticPayloadWidth(0)
	Assert(t, 5 == width, "rejected width changed the register")
}

// disabling dynamic payload clears only the pipe bit
func TestPipeController_DynamicPayload(t *testing.T) {
	c, chip, _ := newTestController(t)
	if err := c.ActivateFeatures(); nil != err {
		t.Fatal(err)
	}
	pipes := c.Config().Pipes
	for _, p := range []int{0, 2, 5} {
		if _, err := pipes.EnableDynamicPayload(p); nil != err {
			t.Fatal(err)
		}
	}
	Assert(t, 0x25 == chip.Register(0, 0x1C)[0], "DYNPD is not 0x25")
	got, err := pipes.DisableDynamicPayload(2)
	if nil != err || 0x21 != got[0] {
		t.Errorf("DisableDynamicPayload(2) = %v, %v, want [0x21]", got, err)
	}
	on, _ := pipes.DynamicPayloadEnabled(2)
	Assert(t, !on, "pipe 2 dynamic payload still enabled")
	on, _ = pipes.DynamicPayloadEnabled(5)
	Assert(t, on, "pipe 5 dynamic payload was disabled too")
}

package RFM75Model

import (
	"testing"
	"time"

	"github.com/JSkrat/rfm75/ChipEmulator"
)

const testCEPin = 7

func Assert(t *testing.T, condition bool, errorMessage string) {
	t.Helper()
	if !condition {
		t.Error(errorMessage)
	}
}

func newTestController(t *testing.T, opts ...Option) (*Controller, *ChipEmulator.Chip, *ChipEmulator.Pins) {
	t.Helper()
	chip := ChipEmulator.New()
	pins := &ChipEmulator.Pins{}
	c, err := NewController(chip, pins, testCEPin, opts...)
	if nil != err {
		t.Fatalf("NewController() error = %v", err)
	}
	c.sleep = func(d time.Duration) {}
	chip.ClearLog()
	return c, chip, pins
}

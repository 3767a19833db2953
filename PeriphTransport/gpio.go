package PeriphTransport

import (
	"fmt"
	"sync"

	"periph.io/x/periph/conn/gpio"
)

// Pins implements Transport.GPIO over an ordered list of periph pins, bit i is pins[i].
// Output levels are shadowed because not every driver reads back an output pin.
type Pins struct {
	mutex   sync.Mutex
	pins    []gpio.PinIO
	outputs uint16
	levels  uint16
}

func NewPins(pins []gpio.PinIO) (*Pins, error) {
	if 16 < len(pins) {
		return nil, fmt.Errorf("%d pins do not fit a 16 bit mask", len(pins))
	}
	return &Pins{pins: pins}, nil
}

func (p *Pins) SetDirection(pins, outputs uint16) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	for i, pin := range p.pins {
		bit := uint16(1) << i
		if 0 == pins&bit || nil == pin {
			continue
		}
		if 0 != outputs&bit {
			if err := pin.Out(gpio.Level(0 != p.levels&bit)); nil != err {
				return fmt.Errorf("pin %v, PinOut.Out: %w", pin, err)
			}
			p.outputs |= bit
		} else {
			if err := pin.In(gpio.PullNoChange, gpio.NoEdge); nil != err {
				return fmt.Errorf("pin %v, PinIn.In: %w", pin, err)
			}
			p.outputs &^= bit
		}
	}
	return nil
}

func (p *Pins) Read() (uint16, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	levels := p.levels & p.outputs
	for i, pin := range p.pins {
		bit := uint16(1) << i
		if 0 != p.outputs&bit || nil == pin {
			continue
		}
		if gpio.High == pin.Read() {
			levels |= bit
		}
	}
	return levels, nil
}

// Write drives every output pin whose level changed, inputs ignore their bits
func (p *Pins) Write(levels uint16) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	for i, pin := range p.pins {
		bit := uint16(1) << i
		if 0 == p.outputs&bit || nil == pin || (p.levels^levels)&bit == 0 {
			continue
		}
		if err := pin.Out(gpio.Level(0 != levels&bit)); nil != err {
			return fmt.Errorf("pin %v, PinOut.Out: %w", pin, err)
		}
	}
	p.levels = levels & p.outputs
	return nil
}

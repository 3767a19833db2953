package ChipEmulator

import (
	"sync"
)

// Pins implements Transport.GPIO and remembers every level written
type Pins struct {
	mutex   sync.Mutex
	pins    uint16
	outputs uint16
	levels  uint16
	writes  []uint16
	// OnWrite is called with the new levels after every Write
	OnWrite func(levels uint16)
	// Fail, when set, is returned from every call
	Fail error
}

func (p *Pins) SetDirection(pins, outputs uint16) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if nil != p.Fail {
		return p.Fail
	}
	p.pins |= pins
	p.outputs = p.outputs&^pins | outputs&pins
	return nil
}

func (p *Pins) Read() (uint16, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if nil != p.Fail {
		return 0, p.Fail
	}
	return p.levels, nil
}

func (p *Pins) Write(levels uint16) error {
	p.mutex.Lock()
	if nil != p.Fail {
		p.mutex.Unlock()
		return p.Fail
	}
	p.levels = levels
	p.writes = append(p.writes, levels)
	hook := p.OnWrite
	p.mutex.Unlock()
	if nil != hook {
		hook(levels)
	}
	return nil
}

// Outputs returns the mask of pins configured as outputs
func (p *Pins) Outputs() uint16 {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.outputs
}

func (p *Pins) Levels() uint16 {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.levels
}

// Writes returns all levels written so far
func (p *Pins) Writes() []uint16 {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return append([]uint16(nil), p.writes...)
}

// SetLevels drives input levels from the outside
func (p *Pins) SetLevels(levels uint16) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.levels = levels
}

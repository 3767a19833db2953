package PeriphTransport

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/conn/spi"
	"periph.io/x/periph/conn/spi/spireg"
	"periph.io/x/periph/host"
	"periph.io/x/periph/host/ftdi"
)

var log = logrus.New()

func SetLogger(l *logrus.Logger) {
	log = l
}

const (
	KindSpidev = "spidev"
	KindFTDI   = "ftdi"
)

// Settings selects the bus and names the pins.
// For spidev the names are gpioreg names, for an FT232H they are D0-D7 and C0-C7.
type Settings struct {
	Kind string
	// PortName is the spireg port, or the FT232H device name. Empty picks the first one.
	PortName   string
	Frequency  physic.Frequency
	ChipSelect string
	// Pins is the GPIO bank in bit order. Empty on an FT232H means D0-D7 followed by C0-C7.
	Pins []string
}

// Device is an opened bus with its GPIO bank
type Device struct {
	SPI  *SPI
	Pins *Pins
	port spi.PortCloser
}

func (d *Device) Close() error {
	if nil == d.port {
		return nil
	}
	return d.port.Close()
}

var _ io.Closer = (*Device)(nil)

func Open(settings Settings) (*Device, error) {
	log.Info(fmt.Sprintf("PeriphTransport.Open %+v", settings))
	if 0 == settings.Frequency {
		settings.Frequency = physic.MegaHertz
	}
	// Make sure periphery is initialized.
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host.Init: %w", err)
	}
	switch settings.Kind {
	case KindSpidev, "":
		return openSpidev(settings)
	case KindFTDI:
		return openFTDI(settings)
	}
	return nil, fmt.Errorf("unknown transport kind %q", settings.Kind)
}

func openSpidev(settings Settings) (*Device, error) {
	port, err := spireg.Open(settings.PortName)
	if err != nil {
		return nil, fmt.Errorf("spireg.Open of port %q: %w", settings.PortName, err)
	}
	cs := gpioreg.ByName(settings.ChipSelect)
	if nil == cs {
		_ = port.Close()
		return nil, fmt.Errorf("chip select pin <%v> was not found", settings.ChipSelect)
	}
	pins := make([]gpio.PinIO, len(settings.Pins))
	for i, name := range settings.Pins {
		if pins[i] = gpioreg.ByName(name); nil == pins[i] {
			_ = port.Close()
			return nil, fmt.Errorf("pin <%v> was not found", name)
		}
	}
	return newDevice(port, cs, pins, settings.Frequency)
}

func openFTDI(settings Settings) (*Device, error) {
	var dev *ftdi.FT232H
	for _, d := range ftdi.All() {
		ft, ok := d.(*ftdi.FT232H)
		if !ok {
			continue
		}
		if "" != settings.PortName && settings.PortName != ft.String() {
			continue
		}
		dev = ft
		break
	}
	if nil == dev {
		return nil, errors.New("no FT232H found")
	}
	byName := map[string]gpio.PinIO{
		"D0": dev.D0, "D1": dev.D1, "D2": dev.D2, "D3": dev.D3,
		"D4": dev.D4, "D5": dev.D5, "D6": dev.D6, "D7": dev.D7,
		"C0": dev.C0, "C1": dev.C1, "C2": dev.C2, "C3": dev.C3,
		"C4": dev.C4, "C5": dev.C5, "C6": dev.C6, "C7": dev.C7,
	}
	names := settings.Pins
	if 0 == len(names) {
		names = []string{"D0", "D1", "D2", "D3", "D4", "D5", "D6", "D7", "C0", "C1", "C2", "C3", "C4", "C5", "C6", "C7"}
	}
	pins := make([]gpio.PinIO, len(names))
	for i, name := range names {
		// D0-D2 carry the bus itself
		if "D0" == name || "D1" == name || "D2" == name {
			continue
		}
		pin, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("FT232H has no pin <%v>", name)
		}
		pins[i] = pin
	}
	csName := settings.ChipSelect
	if "" == csName {
		csName = "D3"
	}
	cs, ok := byName[csName]
	if !ok {
		return nil, fmt.Errorf("FT232H has no pin <%v>", csName)
	}
	for i, name := range names {
		if name == csName {
			pins[i] = nil
		}
	}
	port, err := dev.SPI()
	if err != nil {
		return nil, fmt.Errorf("FT232H.SPI: %w", err)
	}
	return newDevice(port, cs, pins, settings.Frequency)
}

func newDevice(port spi.PortCloser, cs gpio.PinOut, pins []gpio.PinIO, f physic.Frequency) (*Device, error) {
	// Convert the spi.Port into a spi.Conn so it can be used for communication.
	conn, err := port.Connect(f, spi.Mode0|spi.NoCS, 8)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("port.Connect: %w", err)
	}
	s, err := NewSPI(conn, cs)
	if nil != err {
		_ = port.Close()
		return nil, err
	}
	bank, err := NewPins(pins)
	if nil != err {
		_ = port.Close()
		return nil, err
	}
	return &Device{SPI: s, Pins: bank, port: port}, nil
}

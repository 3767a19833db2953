// PeriphTransport binds the Transport interfaces to real hardware through periph.io:
// a Linux spidev bus or an FT232H USB bridge, with chip select and CE driven as plain GPIO.
package PeriphTransport

import (
	"fmt"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/spi"
)

// SPI implements Transport.Port on a periph connection opened with spi.NoCS.
// Chip select is a separate pin so that a transaction may span several calls.
type SPI struct {
	conn spi.Conn
	cs   gpio.PinOut
}

func NewSPI(conn spi.Conn, cs gpio.PinOut) (*SPI, error) {
	if err := cs.Out(gpio.High); nil != err {
		return nil, fmt.Errorf("chip select %v, PinOut.Out: %w", cs, err)
	}
	return &SPI{conn: conn, cs: cs}, nil
}

func (s *SPI) Exchange(out []byte, readLen int, start, stop bool) (in []byte, err error) {
	if start {
		if err := s.cs.Out(gpio.Low); nil != err {
			return nil, fmt.Errorf("chip select, PinOut.Out: %w", err)
		}
	}
	defer func() {
		// never leave the chip selected after a failure
		if stop || nil != err {
			if csErr := s.cs.Out(gpio.High); nil == err && nil != csErr {
				err = fmt.Errorf("chip select, PinOut.Out: %w", csErr)
			}
		}
	}()
	if 0 < len(out) {
		if err := s.conn.Tx(out, make([]byte, len(out))); nil != err {
			return nil, fmt.Errorf("spi write [% X], Conn.Tx: %w", out, err)
		}
	}
	in = make([]byte, readLen)
	if 0 < readLen {
		if err := s.conn.Tx(make([]byte, readLen), in); nil != err {
			return nil, fmt.Errorf("spi read %d bytes, Conn.Tx: %w", readLen, err)
		}
	}
	return in, nil
}

func (s *SPI) Write(out []byte, start, stop bool) error {
	_, err := s.Exchange(out, 0, start, stop)
	return err
}

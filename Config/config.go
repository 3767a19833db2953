// Config reads the gateway settings file. The file is JSON5, so comments and trailing commas are fine:
//
//	{
//	  transport: {kind: "ftdi", frequency: 8000000, cePin: 7},
//	  radio: {channel: 4, dataRate: "1Msps", addressWidth: 5, txPower: "high", crc: 2, dynamicPayload: true},
//	  pipes: [{pipe: 0, address: "11 22 33 22 11", autoAck: true, dynamicPayload: true}],
//	  outputs: {log: true, redis: {address: "localhost:6379"}},
//	}
package Config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/JSkrat/rfm75/PeriphTransport"
	"github.com/JSkrat/rfm75/RFM75Model"
	"github.com/flynn/json5"
	"github.com/sirupsen/logrus"
	"periph.io/x/periph/conn/physic"
)

type Transport struct {
	Kind       string   `json:"kind"`
	Port       string   `json:"port"`
	Frequency  int64    `json:"frequency"`
	ChipSelect string   `json:"chipSelect"`
	Pins       []string `json:"pins"`
	CEPin      uint     `json:"cePin"`
}

type Retransmit struct {
	Delay byte `json:"delay"`
	Count byte `json:"count"`
}

type Radio struct {
	Channel      byte   `json:"channel"`
	DataRate     string `json:"dataRate"`
	AddressWidth int    `json:"addressWidth"`
	TxPower      string `json:"txPower"`
	LNAGain      string `json:"lnaGain"`
	// CRC is the checksum length in bytes, 0 disables it
	CRC            int        `json:"crc"`
	DynamicPayload bool       `json:"dynamicPayload"`
	DynamicAck     bool       `json:"dynamicAck"`
	AckPayload     bool       `json:"ackPayload"`
	TxAddress      string     `json:"txAddress"`
	Retransmit     Retransmit `json:"retransmit"`
	// CEHold is the transmit pulse in microseconds
	CEHold int `json:"ceHold"`
}

type Pipe struct {
	Pipe           int    `json:"pipe"`
	Address        string `json:"address"`
	Width          int    `json:"width"`
	AutoAck        bool   `json:"autoAck"`
	DynamicPayload bool   `json:"dynamicPayload"`
}

type Redis struct {
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	// Prefix starts every key, the key of a pipe is <prefix>:pipe:<n>
	Prefix string `json:"prefix"`
	// Channel receives every packet as a publish, empty disables publishing
	Channel string `json:"channel"`
}

type Serial struct {
	Port string `json:"port"`
	Baud int    `json:"baud"`
}

type Outputs struct {
	Log    bool    `json:"log"`
	Redis  *Redis  `json:"redis"`
	Serial *Serial `json:"serial"`
}

type Log struct {
	Level string `json:"level"`
	// Format is "text" or "json"
	Format string `json:"format"`
}

type File struct {
	Transport Transport `json:"transport"`
	Radio     Radio     `json:"radio"`
	Pipes     []Pipe    `json:"pipes"`
	Outputs   Outputs   `json:"outputs"`
	Log       Log       `json:"log"`
	// PollInterval is the pause between empty polls in milliseconds, 0 spins
	PollInterval int `json:"pollInterval"`
}

// Default is used for everything the file leaves out
func Default() File {
	return File{
		Transport: Transport{
			Kind:      PeriphTransport.KindFTDI,
			Frequency: int64(8 * physic.MegaHertz / physic.Hertz),
			CEPin:     7,
		},
		Radio: Radio{
			Channel:      4,
			DataRate:     "1Msps",
			AddressWidth: 5,
			TxPower:      "high",
			LNAGain:      "high",
			CRC:          2,
			CEHold:       int(RFM75Model.DefaultCEHold / time.Microsecond),
		},
		Outputs: Outputs{Log: true},
		Log:     Log{Level: "info", Format: "text"},
	}
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if nil != err {
		return nil, fmt.Errorf("Config.Load: %w", err)
	}
	f, err := Parse(data)
	if nil != err {
		return nil, fmt.Errorf("Config.Load %v: %w", path, err)
	}
	return f, nil
}

func Parse(data []byte) (*File, error) {
	f := Default()
	if err := json5.Unmarshal(data, &f); nil != err {
		return nil, fmt.Errorf("json5.Unmarshal: %w", err)
	}
	if _, err := f.Settings(); nil != err {
		return nil, err
	}
	if _, err := f.CEHold(); nil != err {
		return nil, err
	}
	if _, err := f.Logger(); nil != err {
		return nil, err
	}
	if nil != f.Outputs.Redis && "" == f.Outputs.Redis.Address {
		return nil, fmt.Errorf("outputs.redis.address is empty")
	}
	if nil != f.Outputs.Serial && "" == f.Outputs.Serial.Port {
		return nil, fmt.Errorf("outputs.serial.port is empty")
	}
	return &f, nil
}

// ParseAddress accepts hex with optional space, colon or dash separators, "11 22 33 22 11" or "1122332211"
func ParseAddress(s string) ([]byte, error) {
	clean := strings.NewReplacer(" ", "", ":", "", "-", "").Replace(s)
	b, err := hex.DecodeString(clean)
	if nil != err {
		return nil, fmt.Errorf("address %q: %w", s, err)
	}
	return b, nil
}

// Settings converts the radio and pipes sections into chip settings, it makes no I/O
func (f *File) Settings() (RFM75Model.Settings, error) {
	var s RFM75Model.Settings
	var err error
	r := f.Radio
	s.Channel = r.Channel
	if s.DataRate, err = RFM75Model.ParseDataRate(r.DataRate); nil != err {
		return s, err
	}
	if s.AddressWidth, err = RFM75Model.AddressWidthFromBytes(r.AddressWidth); nil != err {
		return s, err
	}
	if s.TxPower, err = RFM75Model.ParseTxPower(r.TxPower); nil != err {
		return s, err
	}
	switch strings.ToLower(r.LNAGain) {
	case "high", "":
		s.LNAGain = RFM75Model.LNAGainHigh
	case "low":
		s.LNAGain = RFM75Model.LNAGainLow
	default:
		return s, fmt.Errorf("radio.lnaGain %q, want low or high", r.LNAGain)
	}
	switch r.CRC {
	case 0:
	case 1:
		s.CRC, s.CRCLength = true, RFM75Model.CRC1
	case 2:
		s.CRC, s.CRCLength = true, RFM75Model.CRC2
	default:
		return s, fmt.Errorf("radio.crc %d, want 0, 1 or 2", r.CRC)
	}
	s.DynamicPayload = r.DynamicPayload
	s.DynamicAck = r.DynamicAck
	s.AckPayload = r.AckPayload
	if "" != r.TxAddress {
		if s.TxAddress, err = ParseAddress(r.TxAddress); nil != err {
			return s, fmt.Errorf("radio.txAddress: %w", err)
		}
	}
	s.RetransmitDelay = r.Retransmit.Delay
	s.RetransmitCount = r.Retransmit.Count
	s.Receive = true
	for i, p := range f.Pipes {
		ps := RFM75Model.PipeSettings{
			Pipe:           p.Pipe,
			Width:          p.Width,
			AutoAck:        p.AutoAck,
			DynamicPayload: p.DynamicPayload,
		}
		if "" != p.Address {
			if ps.Address, err = ParseAddress(p.Address); nil != err {
				return s, fmt.Errorf("pipes[%d].address: %w", i, err)
			}
		}
		s.Pipes = append(s.Pipes, ps)
	}
	return s, s.Validate()
}

func (f *File) CEHold() (time.Duration, error) {
	d := time.Duration(f.Radio.CEHold) * time.Microsecond
	if RFM75Model.MinCEHold > d || RFM75Model.MaxCEHold < d {
		return 0, fmt.Errorf("radio.ceHold %v, allowed %v-%v", d, RFM75Model.MinCEHold, RFM75Model.MaxCEHold)
	}
	return d, nil
}

func (f *File) PeriphSettings() PeriphTransport.Settings {
	return PeriphTransport.Settings{
		Kind:       f.Transport.Kind,
		PortName:   f.Transport.Port,
		Frequency:  physic.Frequency(f.Transport.Frequency) * physic.Hertz,
		ChipSelect: f.Transport.ChipSelect,
		Pins:       f.Transport.Pins,
	}
}

func (f *File) PollPause() time.Duration {
	return time.Duration(f.PollInterval) * time.Millisecond
}

// Logger builds the logger described by the log section
func (f *File) Logger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(f.Log.Level)
	if nil != err {
		return nil, fmt.Errorf("log.level: %w", err)
	}
	l := logrus.New()
	switch f.Log.Format {
	case "text", "":
		l.Formatter = new(logrus.TextFormatter)
	case "json":
		l.Formatter = new(logrus.JSONFormatter)
	default:
		return nil, fmt.Errorf("log.format %q, want text or json", f.Log.Format)
	}
	l.Level = level
	l.Out = os.Stdout
	return l, nil
}

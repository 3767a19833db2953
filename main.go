package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JSkrat/rfm75/Config"
	"github.com/JSkrat/rfm75/Gateway"
	"github.com/JSkrat/rfm75/OutsideInterface"
	"github.com/JSkrat/rfm75/PeriphTransport"
	"github.com/JSkrat/rfm75/RFM75Model"
	"github.com/JSkrat/rfm75/Redis"
	"github.com/JSkrat/rfm75/TranscieverModel"
	"github.com/JSkrat/rfm75/UartOutput"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

const usage = `usage: rfm75 [-config file] [-v] <command> [arguments]

commands:
  info                      check the chip and dump its registers
  rx                        receive and forward packets until interrupted
  tx [-count n] [-interval d] [-ack] <hex payload>
                            transmit, the last byte counts packets
`

func main() {
	configPath := flag.String("config", "rfm75.json5", "settings file")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Usage = func() { fmt.Fprint(flag.CommandLine.Output(), usage) }
	flag.Parse()

	settings, err := Config.Load(*configPath)
	if nil != err {
		log.Fatal(err)
	}
	logger, err := settings.Logger()
	if nil != err {
		log.Fatal(err)
	}
	log = logger
	if *verbose {
		log.Level = logrus.DebugLevel
	}
	RFM75Model.SetLogger(log)
	PeriphTransport.SetLogger(log)
	Gateway.SetLogger(log)
	UartOutput.SetLogger(log)

	command := "rx"
	if 0 < flag.NArg() {
		command = flag.Arg(0)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, settings, command, flag.Args()); nil != err && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}

func run(ctx context.Context, settings *Config.File, command string, args []string) error {
	device, err := PeriphTransport.Open(settings.PeriphSettings())
	if nil != err {
		return err
	}
	defer device.Close()
	hold, err := settings.CEHold()
	if nil != err {
		return err
	}
	radio, err := RFM75Model.NewController(device.SPI, device.Pins, settings.Transport.CEPin, RFM75Model.WithCEHold(hold))
	if nil != err {
		return err
	}
	switch command {
	case "info":
		return info(radio)
	case "rx":
		return receive(ctx, settings, radio)
	case "tx":
		if 0 < len(args) {
			args = args[1:]
		}
		return transmit(ctx, settings, radio, args)
	}
	return fmt.Errorf("unknown command %q", command)
}

func info(radio *RFM75Model.Controller) error {
	connected, err := radio.IsConnected()
	if nil != err {
		return err
	}
	log.Infof("connected: %v", connected)
	if !connected {
		return nil
	}
	id, err := radio.ChipID()
	if nil != err {
		return err
	}
	log.Infof("chip id: [%v]", RFM75Model.Dump(id))
	mode, err := radio.Mode()
	if nil != err {
		return err
	}
	log.Infof("mode: %v", mode)
	for _, r := range RFM75Model.Registers {
		value, err := radio.Registers().ReadRegister(r)
		if nil != err {
			return err
		}
		log.Infof("%-12v [%v]", r.Name, RFM75Model.Dump(value))
	}
	return nil
}

func outputs(settings *Config.File) (OutsideInterface.Fanout, error) {
	var ret OutsideInterface.Fanout
	if settings.Outputs.Log {
		ret = append(ret, OutsideInterface.NewLogOutput(log))
	}
	if r := settings.Outputs.Redis; nil != r {
		ret = append(ret, Redis.Init(Redis.Settings{
			Address:  r.Address,
			Password: r.Password,
			DB:       r.DB,
			Prefix:   r.Prefix,
			Channel:  r.Channel,
		}))
	}
	if s := settings.Outputs.Serial; nil != s {
		o, err := UartOutput.Open(UartOutput.Settings{PortName: s.Port, Speed: s.Baud})
		if nil != err {
			_ = ret.Close()
			return nil, err
		}
		ret = append(ret, o)
	}
	return ret, nil
}

func receive(ctx context.Context, settings *Config.File, radio *RFM75Model.Controller) error {
	s, err := settings.Settings()
	if nil != err {
		return err
	}
	if err := radio.Configure(s); nil != err {
		return err
	}
	out, err := outputs(settings)
	if nil != err {
		return err
	}
	g := Gateway.New(radio, out)
	g.PollInterval = settings.PollPause()
	defer func() {
		if err := g.Close(); nil != err {
			log.Error(err)
		}
		log.Infof("stats: %+v", g.Stats())
	}()
	return g.Run(ctx)
}

func transmit(ctx context.Context, settings *Config.File, radio *RFM75Model.Controller, args []string) error {
	flags := flag.NewFlagSet("tx", flag.ContinueOnError)
	count := flags.Int("count", 1, "packets to send, 0 sends until interrupted")
	interval := flags.Duration("interval", time.Second, "pause between packets")
	ack := flags.Bool("ack", false, "request acknowledgement")
	if err := flags.Parse(args); nil != err {
		return err
	}
	if 1 != flags.NArg() {
		return fmt.Errorf("tx wants exactly one hex payload, got %d arguments", flags.NArg())
	}
	payload, err := Config.ParseAddress(flags.Arg(0))
	if nil != err {
		return err
	}
	if 0 == len(payload) || RFM75Model.MaxPayloadWidth < len(payload) {
		return fmt.Errorf("payload of %d bytes, allowed 1-%d", len(payload), RFM75Model.MaxPayloadWidth)
	}
	s, err := settings.Settings()
	if nil != err {
		return err
	}
	s.Receive = false
	if err := radio.Configure(s); nil != err {
		return err
	}
	g := Gateway.New(radio, OutsideInterface.Fanout{})
	defer func() {
		if err := g.Close(); nil != err {
			log.Error(err)
		}
		log.Infof("stats: %+v", g.Stats())
	}()
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for i := 0; 0 == *count || i < *count; i++ {
		if err := g.Send(TranscieverModel.Payload(payload), *ack); nil != err {
			log.WithError(err).Warn("transmit")
		} else {
			log.Infof("sent [%v]", RFM75Model.Dump(payload))
		}
		payload[len(payload)-1]++
		if i+1 == *count {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

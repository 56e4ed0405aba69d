package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mklimuk/hdc2080"
	"github.com/mklimuk/hdc2080/adapter"
	"github.com/mklimuk/hdc2080/cmd/hdc2080/console"
	"github.com/mklimuk/hdc2080/config"
	"github.com/mklimuk/hdc2080/environment"
	"github.com/mklimuk/hdc2080/i2c"
	"github.com/urfave/cli/v2"
)

func deviceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "adapter",
			Aliases: []string{"a"},
			Usage:   "bus adapter: periph, gobot, d2r2 or mcp2221",
		},
		&cli.StringFlag{
			Name:  "device",
			Usage: "periph bus name, the first bus when empty",
		},
		&cli.IntFlag{
			Name:  "bus",
			Usage: "bus number used by the gobot and d2r2 adapters",
		},
		&cli.IntFlag{
			Name:  "addr",
			Usage: "level of the ADDR pin, 0 or 1",
		},
	}
}

func sessionFlags() []cli.Flag {
	return append(deviceFlags(),
		&cli.IntFlag{
			Name:    "times",
			Aliases: []string{"t"},
			Usage:   "number of readings",
		},
		&cli.DurationFlag{
			Name:  "interval",
			Usage: "delay before each reading",
		},
	)
}

// loadConfig reads the configuration file, if any, and applies command flags on top.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return cfg, err
		}
	}
	if c.IsSet("adapter") {
		cfg.Adapter = c.String("adapter")
	}
	if c.IsSet("device") {
		cfg.Device = c.String("device")
	}
	if c.IsSet("bus") {
		cfg.Bus = c.Int("bus")
	}
	if c.IsSet("addr") {
		cfg.AddressPin = c.Int("addr")
	}
	if c.IsSet("times") {
		cfg.Times = c.Int("times")
	}
	if c.IsSet("interval") {
		cfg.Interval = c.Duration("interval")
	}
	return cfg, cfg.Validate()
}

// newBus builds the transport selected by the configuration.
var newBus = func(cfg config.Config) (hdc2080.RegisterBus, error) {
	switch cfg.Adapter {
	case config.AdapterPeriph:
		return i2c.NewGenericBus(cfg.Device), nil
	case config.AdapterGobot:
		return i2c.NewNanoPiBus(cfg.Bus), nil
	case config.AdapterD2R2:
		bus := cfg.Bus
		if bus < 0 {
			bus = 0
		}
		return i2c.NewD2R2Bus(bus), nil
	case config.AdapterMCP2221:
		return hdc2080.NewRegisterBus(adapter.NewMCP2221()), nil
	default:
		return nil, fmt.Errorf("unsupported adapter %q", cfg.Adapter)
	}
}

func openDevice(cfg config.Config) (*environment.HDC2080, error) {
	bus, err := newBus(cfg)
	if err != nil {
		return nil, err
	}
	opts := append(cfg.DeviceOptions(), environment.WithLogger(slog.Default()))
	return environment.NewHDC2080(bus, opts...), nil
}

type closer interface {
	Close(ctx context.Context) error
}

// closeDevice deinitializes the chip even when the command was interrupted.
func closeDevice(ctx context.Context, s closer) {
	err := s.Close(context.WithoutCancel(ctx))
	if err != nil {
		slog.Error("could not deinit device", "error", err)
	}
}

// deviceExit maps driver errors to the status codes of the driver.
func deviceExit(msg string, err error) cli.ExitCoder {
	return console.Exit(environment.Code(err), "%s: %s", msg, console.Red(err))
}

func configExit(err error) cli.ExitCoder {
	return console.Exit(1, "configuration error: %s", console.Red(err))
}

// Package config holds the settings shared by the hdc2080 command line tools.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mklimuk/hdc2080/environment"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Version is injected at build time.
var Version = "dev"

const (
	AdapterPeriph  = "periph"
	AdapterGobot   = "gobot"
	AdapterD2R2    = "d2r2"
	AdapterMCP2221 = "mcp2221"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Adapter      string                 `yaml:"adapter"`
	Device       string                 `yaml:"device"`
	Bus          int                    `yaml:"bus"`
	AddressPin   int                    `yaml:"address_pin"`
	Resolution   string                 `yaml:"resolution"`
	AutoRate     string                 `yaml:"auto_rate"`
	Heater       bool                   `yaml:"heater"`
	Offsets      Offsets                `yaml:"offsets"`
	Thresholds   environment.Thresholds `yaml:"thresholds"`
	PollAttempts int                    `yaml:"poll_attempts"`
	PollInterval time.Duration          `yaml:"poll_interval"`
	Times        int                    `yaml:"times"`
	Interval     time.Duration          `yaml:"interval"`
	Listen       string                 `yaml:"listen"`
}

// Offsets are in °C and %RH.
type Offsets struct {
	Temperature float32 `yaml:"temperature"`
	Humidity    float32 `yaml:"humidity"`
}

func Default() Config {
	return Config{
		Adapter:      AdapterPeriph,
		Bus:          -1,
		Resolution:   environment.Resolution14Bit.String(),
		AutoRate:     environment.AutoMeasurement5Hz.String(),
		PollAttempts: 500,
		PollInterval: 10 * time.Millisecond,
		Times:        3,
		Interval:     2 * time.Second,
		Listen:       ":9120",
		Thresholds: environment.Thresholds{
			TemperatureHigh: 30,
			TemperatureLow:  10,
			HumidityHigh:    75,
			HumidityLow:     20,
		},
	}
}

// Load reads a YAML file on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("could not open config file: %w", err)
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	err = dec.Decode(&cfg)
	if err != nil {
		return cfg, fmt.Errorf("could not decode config file %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var err error
	switch c.Adapter {
	case AdapterPeriph, AdapterGobot, AdapterD2R2, AdapterMCP2221:
	default:
		err = multierr.Append(err, fmt.Errorf("%w: unknown adapter %q", ErrInvalid, c.Adapter))
	}
	if c.AddressPin != 0 && c.AddressPin != 1 {
		err = multierr.Append(err, fmt.Errorf("%w: address pin must be 0 or 1, got %d", ErrInvalid, c.AddressPin))
	}
	if _, perr := environment.ParseResolution(c.Resolution); perr != nil {
		err = multierr.Append(err, fmt.Errorf("%w: %w", ErrInvalid, perr))
	}
	if _, perr := environment.ParseAutoMeasurementRate(c.AutoRate); perr != nil {
		err = multierr.Append(err, fmt.Errorf("%w: %w", ErrInvalid, perr))
	}
	if c.PollAttempts <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: poll attempts must be positive", ErrInvalid))
	}
	if c.Times <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: times must be positive", ErrInvalid))
	}
	if c.Thresholds.TemperatureLow > c.Thresholds.TemperatureHigh {
		err = multierr.Append(err, fmt.Errorf("%w: temperature low threshold above high threshold", ErrInvalid))
	}
	if c.Thresholds.HumidityLow > c.Thresholds.HumidityHigh {
		err = multierr.Append(err, fmt.Errorf("%w: humidity low threshold above high threshold", ErrInvalid))
	}
	return err
}

func (c Config) Pin() environment.AddressPin {
	if c.AddressPin == 1 {
		return environment.AddressPinVCC
	}
	return environment.AddressPinGND
}

// DeviceOptions returns the handle options derived from the configuration.
func (c Config) DeviceOptions() []environment.HDC2080Option {
	return []environment.HDC2080Option{
		environment.WithAddressPin(c.Pin()),
		environment.WithPollAttempts(c.PollAttempts),
		environment.WithPollInterval(c.PollInterval),
	}
}

// Tune applies resolution, heater and offsets to an initialized device.
// The rate is applied only when autoRate is set; one-shot sessions keep
// automatic measurement disabled.
func (c Config) Tune(ctx context.Context, dev *environment.HDC2080, autoRate bool) error {
	res, err := environment.ParseResolution(c.Resolution)
	if err != nil {
		return err
	}
	if err := dev.SetTemperatureResolution(ctx, res); err != nil {
		return err
	}
	if err := dev.SetHumidityResolution(ctx, res); err != nil {
		return err
	}
	if err := dev.SetHeater(ctx, c.Heater); err != nil {
		return err
	}
	if err := dev.SetTemperatureOffset(ctx, environment.TemperatureOffsetToRegister(c.Offsets.Temperature)); err != nil {
		return err
	}
	if err := dev.SetHumidityOffset(ctx, environment.HumidityOffsetToRegister(c.Offsets.Humidity)); err != nil {
		return err
	}
	if !autoRate {
		return nil
	}
	rate, err := environment.ParseAutoMeasurementRate(c.AutoRate)
	if err != nil {
		return err
	}
	return dev.SetAutoMeasurementMode(ctx, rate)
}

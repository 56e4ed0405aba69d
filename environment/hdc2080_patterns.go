package environment

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"periph.io/x/conn/v3/physic"
)

// TempHumSensor is a combined temperature (°C) and relative humidity (%RH) sensor.
type TempHumSensor interface {
	GetTemperature(ctx context.Context) (float32, error)
	GetHumidity(ctx context.Context) (float32, error)
	GetTempAndHum(ctx context.Context) (float32, float32, error)
}

var (
	_ TempHumSensor = &HDC2080Basic{}
	_ TempHumSensor = &HDC2080Shot{}
	_ TempHumSensor = &HDC2080Interrupt{}
)

// Thresholds are the interrupt bounds in °C and %RH.
type Thresholds struct {
	TemperatureHigh float32 `yaml:"temperature_high"`
	TemperatureLow  float32 `yaml:"temperature_low"`
	HumidityHigh    float32 `yaml:"humidity_high"`
	HumidityLow     float32 `yaml:"humidity_low"`
}

// Crossing lists the thresholds exceeded by a reading.
type Crossing struct {
	TemperatureHigh bool
	TemperatureLow  bool
	HumidityHigh    bool
	HumidityLow     bool
}

func (c Crossing) Any() bool {
	return c.TemperatureHigh || c.TemperatureLow || c.HumidityHigh || c.HumidityLow
}

// Crossed compares a reading against the thresholds.
func (t Thresholds) Crossed(m Measurement) Crossing {
	return Crossing{
		TemperatureHigh: m.Temperature > t.TemperatureHigh,
		TemperatureLow:  m.Temperature < t.TemperatureLow,
		HumidityHigh:    m.Humidity > t.HumidityHigh,
		HumidityLow:     m.Humidity < t.HumidityLow,
	}
}

// Settings is a complete chip configuration applied after Init.
type Settings struct {
	TemperatureResolution Resolution
	HumidityResolution    Resolution
	Heater                bool
	InterruptPin          bool
	Polarity              InterruptPolarity
	InterruptMode         InterruptMode
	Thresholds            Thresholds
	TemperatureOffset     float32
	HumidityOffset        float32
	Interrupts            map[Interrupt]bool
	Rate                  AutoMeasurementRate
	Trigger               bool
}

// BasicSettings measures continuously at 5 Hz with the interrupt pin off.
func BasicSettings() Settings {
	return Settings{
		TemperatureResolution: Resolution14Bit,
		HumidityResolution:    Resolution14Bit,
		Polarity:              InterruptPolarityLow,
		InterruptMode:         InterruptModeComparator,
		Rate:                  AutoMeasurement5Hz,
		Trigger:               true,
	}
}

// ShotSettings leaves automatic measurement disabled; conversions are
// triggered with ReadPoll.
func ShotSettings() Settings {
	s := BasicSettings()
	s.Rate = AutoMeasurementDisabled
	s.Trigger = false
	return s
}

// InterruptSettings enables the interrupt pin and the four threshold sources.
func InterruptSettings(t Thresholds) Settings {
	s := BasicSettings()
	s.InterruptPin = true
	s.Thresholds = t
	s.Interrupts = map[Interrupt]bool{
		InterruptTemperatureHigh: true,
		InterruptTemperatureLow:  true,
		InterruptHumidityHigh:    true,
		InterruptHumidityLow:     true,
	}
	return s
}

// Apply writes the settings field by field. Every interrupt source missing in
// Interrupts is disabled.
func (s Settings) Apply(ctx context.Context, dev *HDC2080) error {
	steps := []struct {
		name string
		fn   func() error
	}{
		{"temperature resolution", func() error { return dev.SetTemperatureResolution(ctx, s.TemperatureResolution) }},
		{"humidity resolution", func() error { return dev.SetHumidityResolution(ctx, s.HumidityResolution) }},
		{"mode", func() error { return dev.SetMode(ctx, ModeHumidityTemperature) }},
		{"heater", func() error { return dev.SetHeater(ctx, s.Heater) }},
		{"interrupt pin", func() error { return dev.SetInterruptPin(ctx, s.InterruptPin) }},
		{"interrupt polarity", func() error { return dev.SetInterruptPolarity(ctx, s.Polarity) }},
		{"interrupt mode", func() error { return dev.SetInterruptMode(ctx, s.InterruptMode) }},
		{"humidity high threshold", func() error {
			return dev.SetHumidityHighThreshold(ctx, HumidityToRegister(s.Thresholds.HumidityHigh))
		}},
		{"humidity low threshold", func() error {
			return dev.SetHumidityLowThreshold(ctx, HumidityToRegister(s.Thresholds.HumidityLow))
		}},
		{"temperature high threshold", func() error {
			return dev.SetTemperatureHighThreshold(ctx, TemperatureToRegister(s.Thresholds.TemperatureHigh))
		}},
		{"temperature low threshold", func() error {
			return dev.SetTemperatureLowThreshold(ctx, TemperatureToRegister(s.Thresholds.TemperatureLow))
		}},
		{"humidity offset", func() error {
			return dev.SetHumidityOffset(ctx, HumidityOffsetToRegister(s.HumidityOffset))
		}},
		{"temperature offset", func() error {
			return dev.SetTemperatureOffset(ctx, TemperatureOffsetToRegister(s.TemperatureOffset))
		}},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			return fmt.Errorf("hdc2080: set %s: %w", step.name, err)
		}
	}
	for _, i := range Interrupts {
		if err := dev.SetInterrupt(ctx, i, s.Interrupts[i]); err != nil {
			return fmt.Errorf("hdc2080: set %s interrupt: %w", i, err)
		}
	}
	if err := dev.SetAutoMeasurementMode(ctx, s.Rate); err != nil {
		return fmt.Errorf("hdc2080: set auto measurement mode: %w", err)
	}
	if s.Trigger {
		if err := dev.SetMeasurement(ctx, true); err != nil {
			return fmt.Errorf("hdc2080: start measurement: %w", err)
		}
	}
	return nil
}

// start initializes the chip and applies the settings. When configuration
// fails the chip is deinitialized and both errors are returned.
func start(ctx context.Context, dev *HDC2080, s Settings) error {
	if err := dev.Init(ctx); err != nil {
		return err
	}
	if err := s.Apply(ctx, dev); err != nil {
		return multierr.Append(err, dev.Deinit(ctx))
	}
	return nil
}

type hdc2080Pattern struct {
	dev *HDC2080
}

// Device exposes the underlying handle for register level access.
func (p *hdc2080Pattern) Device() *HDC2080 {
	return p.dev
}

func (p *hdc2080Pattern) Close(ctx context.Context) error {
	return p.dev.Deinit(ctx)
}

// HDC2080Basic reads results of the chip's automatic 5 Hz conversions.
//
//	s := NewHDC2080Basic(NewHDC2080(bus))
//	if err := s.Init(ctx); err != nil {
//		return err
//	}
//	defer s.Close(ctx)
//	t, h, err := s.GetTempAndHum(ctx)
type HDC2080Basic struct {
	hdc2080Pattern
}

func NewHDC2080Basic(dev *HDC2080) *HDC2080Basic {
	return &HDC2080Basic{hdc2080Pattern{dev: dev}}
}

func (s *HDC2080Basic) Init(ctx context.Context) error {
	return start(ctx, s.dev, BasicSettings())
}

func (s *HDC2080Basic) Read(ctx context.Context) (Measurement, error) {
	return s.dev.ReadTemperatureHumidity(ctx)
}

func (s *HDC2080Basic) GetTemperature(ctx context.Context) (float32, error) {
	_, t, err := s.dev.ReadTemperature(ctx)
	return t, err
}

func (s *HDC2080Basic) GetHumidity(ctx context.Context) (float32, error) {
	_, h, err := s.dev.ReadHumidity(ctx)
	return h, err
}

func (s *HDC2080Basic) GetTempAndHum(ctx context.Context) (float32, float32, error) {
	return readBoth(s.Read(ctx))
}

func (s *HDC2080Basic) Sense(env *physic.Env) error {
	return sense(s.Read, env)
}

// HDC2080Shot triggers a conversion for every reading.
type HDC2080Shot struct {
	hdc2080Pattern
}

func NewHDC2080Shot(dev *HDC2080) *HDC2080Shot {
	return &HDC2080Shot{hdc2080Pattern{dev: dev}}
}

func (s *HDC2080Shot) Init(ctx context.Context) error {
	return start(ctx, s.dev, ShotSettings())
}

func (s *HDC2080Shot) Read(ctx context.Context) (Measurement, error) {
	if err := s.dev.ReadPoll(ctx); err != nil {
		return Measurement{}, err
	}
	return s.dev.ReadTemperatureHumidity(ctx)
}

func (s *HDC2080Shot) GetTemperature(ctx context.Context) (float32, error) {
	m, err := s.Read(ctx)
	return m.Temperature, err
}

func (s *HDC2080Shot) GetHumidity(ctx context.Context) (float32, error) {
	m, err := s.Read(ctx)
	return m.Humidity, err
}

func (s *HDC2080Shot) GetTempAndHum(ctx context.Context) (float32, float32, error) {
	return readBoth(s.Read(ctx))
}

func (s *HDC2080Shot) Sense(env *physic.Env) error {
	return sense(s.Read, env)
}

// TemperatureMax returns the latched peak temperature in °C.
func (s *HDC2080Shot) TemperatureMax(ctx context.Context) (float32, error) {
	reg, err := s.dev.TemperatureMax(ctx)
	if err != nil {
		return 0, err
	}
	return RegisterToTemperature(reg), nil
}

// HumidityMax returns the latched peak humidity in %RH.
func (s *HDC2080Shot) HumidityMax(ctx context.Context) (float32, error) {
	reg, err := s.dev.HumidityMax(ctx)
	if err != nil {
		return 0, err
	}
	return RegisterToHumidity(reg), nil
}

// HDC2080Interrupt drives the interrupt pin whenever a reading leaves the
// configured bounds.
type HDC2080Interrupt struct {
	hdc2080Pattern
	thresholds Thresholds
}

func NewHDC2080Interrupt(dev *HDC2080) *HDC2080Interrupt {
	return &HDC2080Interrupt{hdc2080Pattern: hdc2080Pattern{dev: dev}}
}

func (s *HDC2080Interrupt) Init(ctx context.Context, t Thresholds) error {
	err := start(ctx, s.dev, InterruptSettings(t))
	if err != nil {
		return err
	}
	s.thresholds = t
	return nil
}

func (s *HDC2080Interrupt) Thresholds() Thresholds {
	return s.thresholds
}

func (s *HDC2080Interrupt) Read(ctx context.Context) (Measurement, error) {
	return s.dev.ReadTemperatureHumidity(ctx)
}

// Status reads and clears the interrupt flags.
func (s *HDC2080Interrupt) Status(ctx context.Context) (InterruptStatus, error) {
	return s.dev.InterruptStatus(ctx)
}

func (s *HDC2080Interrupt) GetTemperature(ctx context.Context) (float32, error) {
	_, t, err := s.dev.ReadTemperature(ctx)
	return t, err
}

func (s *HDC2080Interrupt) GetHumidity(ctx context.Context) (float32, error) {
	_, h, err := s.dev.ReadHumidity(ctx)
	return h, err
}

func (s *HDC2080Interrupt) GetTempAndHum(ctx context.Context) (float32, float32, error) {
	return readBoth(s.Read(ctx))
}

func (s *HDC2080Interrupt) Sense(env *physic.Env) error {
	return sense(s.Read, env)
}

func readBoth(m Measurement, err error) (float32, float32, error) {
	if err != nil {
		return 0, 0, err
	}
	return m.Temperature, m.Humidity, nil
}

func sense(read func(context.Context) (Measurement, error), env *physic.Env) error {
	m, err := read(context.Background())
	if err != nil {
		return err
	}
	env.Temperature = TemperatureToPhysic(m.Temperature)
	env.Humidity = HumidityToPhysic(m.Humidity)
	return nil
}

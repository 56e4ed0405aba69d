package environment

import (
	"context"
	"fmt"
)

// Measurement configuration register fields
const (
	measTempResShift = 6
	measTempResMask  = 0x3 << measTempResShift
	measHumResShift  = 4
	measHumResMask   = 0x3 << measHumResShift
	measModeShift    = 1
	measModeMask     = 0x3 << measModeShift
	measTriggerMask  = 0x01
)

// Device configuration register fields
const (
	configResetMask     = 0x80
	configRateShift     = 4
	configRateMask      = 0x7 << configRateShift
	configHeaterMask    = 0x08
	configIntPinMask    = 0x04
	configPolarityShift = 1
	configPolarityMask  = 0x02
	configIntModeMask   = 0x01
)

type Resolution uint8

const (
	Resolution14Bit Resolution = 0
	Resolution11Bit Resolution = 1
	Resolution9Bit  Resolution = 2
)

func (r Resolution) String() string {
	switch r {
	case Resolution14Bit:
		return "14bit"
	case Resolution11Bit:
		return "11bit"
	case Resolution9Bit:
		return "9bit"
	default:
		return fmt.Sprintf("Resolution(%d)", uint8(r))
	}
}

func ParseResolution(s string) (Resolution, error) {
	for _, r := range []Resolution{Resolution14Bit, Resolution11Bit, Resolution9Bit} {
		if s == r.String() {
			return r, nil
		}
	}
	return 0, fmt.Errorf("hdc2080: unknown resolution %q", s)
}

// Mode selects which quantities a conversion produces.
type Mode uint8

const (
	ModeHumidityTemperature Mode = 0
	ModeTemperature         Mode = 1
)

func (m Mode) String() string {
	switch m {
	case ModeHumidityTemperature:
		return "humidity+temperature"
	case ModeTemperature:
		return "temperature"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// AutoMeasurementRate is the conversion rate of the automatic measurement mode.
type AutoMeasurementRate uint8

const (
	AutoMeasurementDisabled AutoMeasurementRate = iota
	AutoMeasurement120s
	AutoMeasurement60s
	AutoMeasurement10s
	AutoMeasurement5s
	AutoMeasurement1Hz
	AutoMeasurement2Hz
	AutoMeasurement5Hz
)

var autoMeasurementNames = []string{"disabled", "1/120Hz", "1/60Hz", "0.1Hz", "0.2Hz", "1Hz", "2Hz", "5Hz"}

func (r AutoMeasurementRate) String() string {
	if int(r) < len(autoMeasurementNames) {
		return autoMeasurementNames[r]
	}
	return fmt.Sprintf("AutoMeasurementRate(%d)", uint8(r))
}

// ParseAutoMeasurementRate accepts the names returned by String.
func ParseAutoMeasurementRate(s string) (AutoMeasurementRate, error) {
	for i, name := range autoMeasurementNames {
		if s == name {
			return AutoMeasurementRate(i), nil
		}
	}
	return 0, fmt.Errorf("hdc2080: unknown auto measurement rate %q", s)
}

type InterruptPolarity uint8

const (
	InterruptPolarityLow  InterruptPolarity = 0
	InterruptPolarityHigh InterruptPolarity = 1
)

type InterruptMode uint8

const (
	InterruptModeLevel      InterruptMode = 0
	InterruptModeComparator InterruptMode = 1
)

// Interrupt is the bit position of an interrupt source in the enable and
// status registers.
type Interrupt uint8

const (
	InterruptHumidityLow     Interrupt = 3
	InterruptHumidityHigh    Interrupt = 4
	InterruptTemperatureLow  Interrupt = 5
	InterruptTemperatureHigh Interrupt = 6
	InterruptDataReady       Interrupt = 7
)

// Interrupts lists every interrupt source.
var Interrupts = []Interrupt{
	InterruptDataReady,
	InterruptTemperatureHigh,
	InterruptTemperatureLow,
	InterruptHumidityHigh,
	InterruptHumidityLow,
}

func (i Interrupt) mask() byte {
	return 1 << i
}

func (i Interrupt) String() string {
	switch i {
	case InterruptDataReady:
		return "data ready"
	case InterruptTemperatureHigh:
		return "temperature high"
	case InterruptTemperatureLow:
		return "temperature low"
	case InterruptHumidityHigh:
		return "humidity high"
	case InterruptHumidityLow:
		return "humidity low"
	default:
		return fmt.Sprintf("Interrupt(%d)", uint8(i))
	}
}

func boolBit(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func (h *HDC2080) SetTemperatureResolution(ctx context.Context, r Resolution) error {
	return h.setField(ctx, hdc2080RegMeasurement, measTempResMask, measTempResShift, byte(r))
}

func (h *HDC2080) TemperatureResolution(ctx context.Context) (Resolution, error) {
	v, err := h.field(ctx, hdc2080RegMeasurement, measTempResMask, measTempResShift)
	return Resolution(v), err
}

func (h *HDC2080) SetHumidityResolution(ctx context.Context, r Resolution) error {
	return h.setField(ctx, hdc2080RegMeasurement, measHumResMask, measHumResShift, byte(r))
}

func (h *HDC2080) HumidityResolution(ctx context.Context) (Resolution, error) {
	v, err := h.field(ctx, hdc2080RegMeasurement, measHumResMask, measHumResShift)
	return Resolution(v), err
}

func (h *HDC2080) SetMode(ctx context.Context, m Mode) error {
	return h.setField(ctx, hdc2080RegMeasurement, measModeMask, measModeShift, byte(m))
}

func (h *HDC2080) Mode(ctx context.Context) (Mode, error) {
	v, err := h.field(ctx, hdc2080RegMeasurement, measModeMask, measModeShift)
	return Mode(v), err
}

// SetMeasurement sets or clears the measurement trigger bit. The chip clears
// it once a conversion completes.
func (h *HDC2080) SetMeasurement(ctx context.Context, enable bool) error {
	return h.setField(ctx, hdc2080RegMeasurement, measTriggerMask, 0, boolBit(enable))
}

func (h *HDC2080) Measurement(ctx context.Context) (bool, error) {
	v, err := h.field(ctx, hdc2080RegMeasurement, measTriggerMask, 0)
	return v == 1, err
}

func (h *HDC2080) SetAutoMeasurementMode(ctx context.Context, r AutoMeasurementRate) error {
	return h.setField(ctx, hdc2080RegConfig, configRateMask, configRateShift, byte(r))
}

func (h *HDC2080) AutoMeasurementMode(ctx context.Context) (AutoMeasurementRate, error) {
	v, err := h.field(ctx, hdc2080RegConfig, configRateMask, configRateShift)
	return AutoMeasurementRate(v), err
}

func (h *HDC2080) SetHeater(ctx context.Context, enable bool) error {
	return h.setField(ctx, hdc2080RegConfig, configHeaterMask, 3, boolBit(enable))
}

func (h *HDC2080) Heater(ctx context.Context) (bool, error) {
	v, err := h.field(ctx, hdc2080RegConfig, configHeaterMask, 3)
	return v == 1, err
}

// SetInterruptPin enables the DRDY/INT output pin.
func (h *HDC2080) SetInterruptPin(ctx context.Context, enable bool) error {
	return h.setField(ctx, hdc2080RegConfig, configIntPinMask, 2, boolBit(enable))
}

func (h *HDC2080) InterruptPin(ctx context.Context) (bool, error) {
	v, err := h.field(ctx, hdc2080RegConfig, configIntPinMask, 2)
	return v == 1, err
}

func (h *HDC2080) SetInterruptPolarity(ctx context.Context, p InterruptPolarity) error {
	return h.setField(ctx, hdc2080RegConfig, configPolarityMask, configPolarityShift, byte(p))
}

func (h *HDC2080) InterruptPolarity(ctx context.Context) (InterruptPolarity, error) {
	v, err := h.field(ctx, hdc2080RegConfig, configPolarityMask, configPolarityShift)
	return InterruptPolarity(v), err
}

func (h *HDC2080) SetInterruptMode(ctx context.Context, m InterruptMode) error {
	return h.setField(ctx, hdc2080RegConfig, configIntModeMask, 0, byte(m))
}

func (h *HDC2080) InterruptMode(ctx context.Context) (InterruptMode, error) {
	v, err := h.field(ctx, hdc2080RegConfig, configIntModeMask, 0)
	return InterruptMode(v), err
}

// SetInterrupt enables or disables a single interrupt source.
func (h *HDC2080) SetInterrupt(ctx context.Context, i Interrupt, enable bool) error {
	return h.setField(ctx, hdc2080RegInterruptEnable, i.mask(), byte(i), boolBit(enable))
}

func (h *HDC2080) Interrupt(ctx context.Context, i Interrupt) (bool, error) {
	v, err := h.field(ctx, hdc2080RegInterruptEnable, i.mask(), byte(i))
	return v == 1, err
}

// Thresholds, offsets and the max registers are owned as whole bytes.

func (h *HDC2080) setByte(ctx context.Context, reg, value byte) error {
	if err := h.check(); err != nil {
		return err
	}
	return h.writeByte(ctx, reg, value)
}

func (h *HDC2080) getByte(ctx context.Context, reg byte) (byte, error) {
	if err := h.check(); err != nil {
		return 0, err
	}
	return h.readByte(ctx, reg)
}

func (h *HDC2080) SetTemperatureLowThreshold(ctx context.Context, reg uint8) error {
	return h.setByte(ctx, hdc2080RegTemperatureThrLow, reg)
}

func (h *HDC2080) TemperatureLowThreshold(ctx context.Context) (uint8, error) {
	return h.getByte(ctx, hdc2080RegTemperatureThrLow)
}

func (h *HDC2080) SetTemperatureHighThreshold(ctx context.Context, reg uint8) error {
	return h.setByte(ctx, hdc2080RegTemperatureThrHi, reg)
}

func (h *HDC2080) TemperatureHighThreshold(ctx context.Context) (uint8, error) {
	return h.getByte(ctx, hdc2080RegTemperatureThrHi)
}

func (h *HDC2080) SetHumidityLowThreshold(ctx context.Context, reg uint8) error {
	return h.setByte(ctx, hdc2080RegHumidityThrLow, reg)
}

func (h *HDC2080) HumidityLowThreshold(ctx context.Context) (uint8, error) {
	return h.getByte(ctx, hdc2080RegHumidityThrLow)
}

func (h *HDC2080) SetHumidityHighThreshold(ctx context.Context, reg uint8) error {
	return h.setByte(ctx, hdc2080RegHumidityThrHi, reg)
}

func (h *HDC2080) HumidityHighThreshold(ctx context.Context) (uint8, error) {
	return h.getByte(ctx, hdc2080RegHumidityThrHi)
}

// SetTemperatureOffset writes the signed offset the chip adds to each temperature conversion.
func (h *HDC2080) SetTemperatureOffset(ctx context.Context, reg int8) error {
	return h.setByte(ctx, hdc2080RegTemperatureOffset, byte(reg))
}

func (h *HDC2080) TemperatureOffset(ctx context.Context) (int8, error) {
	v, err := h.getByte(ctx, hdc2080RegTemperatureOffset)
	return int8(v), err
}

func (h *HDC2080) SetHumidityOffset(ctx context.Context, reg int8) error {
	return h.setByte(ctx, hdc2080RegHumidityOffset, byte(reg))
}

func (h *HDC2080) HumidityOffset(ctx context.Context) (int8, error) {
	v, err := h.getByte(ctx, hdc2080RegHumidityOffset)
	return int8(v), err
}

// SetTemperatureMax overwrites the latched peak temperature, usually to reset it.
func (h *HDC2080) SetTemperatureMax(ctx context.Context, reg uint8) error {
	return h.setByte(ctx, hdc2080RegTemperatureMax, reg)
}

func (h *HDC2080) TemperatureMax(ctx context.Context) (uint8, error) {
	return h.getByte(ctx, hdc2080RegTemperatureMax)
}

func (h *HDC2080) SetHumidityMax(ctx context.Context, reg uint8) error {
	return h.setByte(ctx, hdc2080RegHumidityMax, reg)
}

func (h *HDC2080) HumidityMax(ctx context.Context) (uint8, error) {
	return h.getByte(ctx, hdc2080RegHumidityMax)
}

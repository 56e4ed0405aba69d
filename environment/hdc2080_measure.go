package environment

import (
	"context"
	"encoding/binary"
	"fmt"
)

// Measurement is a single temperature and humidity conversion result.
type Measurement struct {
	RawTemperature uint16
	Temperature    float32
	RawHumidity    uint16
	Humidity       float32
}

// InterruptStatus is the content of the interrupt/DRDY status register.
type InterruptStatus uint8

// Is reports whether the given interrupt flag is set.
func (s InterruptStatus) Is(i Interrupt) bool {
	return byte(s)&i.mask() != 0
}

// ReadPoll triggers a one-shot conversion and waits for the chip to clear the
// trigger bit. The wait is bounded by the poll attempts and interval options;
// running out of attempts yields ErrTimeout.
func (h *HDC2080) ReadPoll(ctx context.Context) error {
	if err := h.check(); err != nil {
		return err
	}
	err := h.updateRegister(ctx, hdc2080RegMeasurement, measTriggerMask, measTriggerMask)
	if err != nil {
		h.logger.Error("hdc2080: trigger measurement failed", "error", err)
		return err
	}
	for i := 0; i < h.pollAttempts; i++ {
		value, err := h.readByte(ctx, hdc2080RegMeasurement)
		if err != nil {
			h.logger.Error("hdc2080: read measurement config failed", "error", err)
			return err
		}
		if value&measTriggerMask == 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("hdc2080: poll interrupted: %w", err)
		}
		h.delayer.Delay(ctx, h.pollInterval)
	}
	h.logger.Error("hdc2080: read timeout", "attempts", h.pollAttempts)
	return fmt.Errorf("%w after %d attempts", ErrTimeout, h.pollAttempts)
}

// ReadTemperatureHumidity reads the latest conversion result without waiting
// for a new one.
func (h *HDC2080) ReadTemperatureHumidity(ctx context.Context) (Measurement, error) {
	var m Measurement
	if err := h.check(); err != nil {
		return m, err
	}
	raw, err := h.readWord(ctx, hdc2080RegTemperatureLow)
	if err != nil {
		return m, err
	}
	m.RawTemperature = raw
	m.Temperature = RawToTemperature(raw)
	raw, err = h.readWord(ctx, hdc2080RegHumidityLow)
	if err != nil {
		return m, err
	}
	m.RawHumidity = raw
	m.Humidity = RawToHumidity(raw)
	return m, nil
}

func (h *HDC2080) ReadTemperature(ctx context.Context) (uint16, float32, error) {
	if err := h.check(); err != nil {
		return 0, 0, err
	}
	raw, err := h.readWord(ctx, hdc2080RegTemperatureLow)
	if err != nil {
		return 0, 0, err
	}
	return raw, RawToTemperature(raw), nil
}

func (h *HDC2080) ReadHumidity(ctx context.Context) (uint16, float32, error) {
	if err := h.check(); err != nil {
		return 0, 0, err
	}
	raw, err := h.readWord(ctx, hdc2080RegHumidityLow)
	if err != nil {
		return 0, 0, err
	}
	return raw, RawToHumidity(raw), nil
}

// InterruptStatus reads the status register. The chip clears it on read.
func (h *HDC2080) InterruptStatus(ctx context.Context) (InterruptStatus, error) {
	v, err := h.getByte(ctx, hdc2080RegInterruptStatus)
	return InterruptStatus(v), err
}

func (h *HDC2080) readWord(ctx context.Context, reg byte) (uint16, error) {
	buf := make([]byte, 2)
	err := h.readRegister(ctx, reg, buf)
	if err != nil {
		h.logger.Error("hdc2080: read measurement failed", "register", fmt.Sprintf("%#04x", reg), "error", err)
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf), nil
}

// ChipInfo describes the chip and the driver.
type ChipInfo struct {
	ChipName         string  `yaml:"chip_name"`
	Manufacturer     string  `yaml:"manufacturer"`
	Interface        string  `yaml:"interface"`
	SupplyVoltageMin float32 `yaml:"supply_voltage_min_v"`
	SupplyVoltageMax float32 `yaml:"supply_voltage_max_v"`
	MaxCurrent       float32 `yaml:"max_current_ma"`
	TemperatureMin   float32 `yaml:"temperature_min"`
	TemperatureMax   float32 `yaml:"temperature_max"`
	DriverVersion    int     `yaml:"driver_version"`
}

// Info returns static chip information. It does not touch the bus.
func Info() ChipInfo {
	return ChipInfo{
		ChipName:         "Texas Instruments HDC2080",
		Manufacturer:     "Texas Instruments",
		Interface:        "IIC",
		SupplyVoltageMin: 1.62,
		SupplyVoltageMax: 3.6,
		MaxCurrent:       90,
		TemperatureMin:   -40,
		TemperatureMax:   125,
		DriverVersion:    1000,
	}
}

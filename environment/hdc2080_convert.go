package environment

import (
	"math"

	"periph.io/x/conn/v3/physic"
)

// Register encodings round to the nearest step and saturate at the register
// bounds.

func roundUnsigned(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > math.MaxUint8 {
		return math.MaxUint8
	}
	return uint8(v)
}

func roundSigned(v float64) int8 {
	v = math.Round(v)
	if v < math.MinInt8 {
		return math.MinInt8
	}
	if v > math.MaxInt8 {
		return math.MaxInt8
	}
	return int8(v)
}

// HumidityToRegister encodes a relative humidity threshold in %RH.
func HumidityToRegister(percent float32) uint8 {
	return roundUnsigned(float64(percent) / 100 * 256)
}

func RegisterToHumidity(reg uint8) float32 {
	return float32(reg) / 256 * 100
}

// TemperatureToRegister encodes a temperature threshold in °C.
func TemperatureToRegister(deg float32) uint8 {
	return roundUnsigned((float64(deg) + 40.5) / 165 * 256)
}

func RegisterToTemperature(reg uint8) float32 {
	return float32(reg)/256*165 - 40.5
}

// RawToHumidity converts the 16-bit humidity measurement to %RH.
func RawToHumidity(raw uint16) float32 {
	return float32(raw) / 65536 * 100
}

// RawToTemperature converts the 16-bit temperature measurement to °C.
func RawToTemperature(raw uint16) float32 {
	return float32(raw)/65536*165 - 40.5
}

// HumidityOffsetToRegister encodes a humidity offset; one step is 0.2 %RH.
func HumidityOffsetToRegister(percent float32) int8 {
	return roundSigned(float64(percent) / 0.2)
}

func RegisterToHumidityOffset(reg int8) float32 {
	return float32(reg) * 0.2
}

// TemperatureOffsetToRegister encodes a temperature offset; one step is 0.16 °C.
func TemperatureOffsetToRegister(deg float32) int8 {
	return roundSigned(float64(deg) / 0.16)
}

func RegisterToTemperatureOffset(reg int8) float32 {
	return float32(reg) * 0.16
}

func TemperatureToPhysic(deg float32) physic.Temperature {
	return physic.ZeroCelsius + physic.Temperature(float64(deg)*float64(physic.Celsius))
}

func HumidityToPhysic(percent float32) physic.RelativeHumidity {
	return physic.RelativeHumidity(float64(percent) * float64(physic.PercentRH))
}

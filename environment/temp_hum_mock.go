package environment

import (
	"context"
)

// ReadingFunc produces a single reading or an error.
type ReadingFunc func(ctx context.Context) (float32, error)

var _ TempHumSensor = &MockTempHumSensor{}

// MockTempHumSensor is a TempHumSensor driven by behavior functions. It stands
// in for the chip in exporter and CLI tests.
//
//	sensor := NewMockTempHumSensor(
//		func(ctx context.Context) (float32, error) { return 22.5, nil },
//		func(ctx context.Context) (float32, error) { return 45.0, nil },
//	)
type MockTempHumSensor struct {
	temperature ReadingFunc
	humidity    ReadingFunc
}

func NewMockTempHumSensor(temperature, humidity ReadingFunc) *MockTempHumSensor {
	return &MockTempHumSensor{temperature: temperature, humidity: humidity}
}

// StaticTempHumSensor always reports the same values.
func StaticTempHumSensor(temp, hum float32) *MockTempHumSensor {
	return NewMockTempHumSensor(
		func(ctx context.Context) (float32, error) { return temp, nil },
		func(ctx context.Context) (float32, error) { return hum, nil },
	)
}

func (m *MockTempHumSensor) GetTemperature(ctx context.Context) (float32, error) {
	return m.temperature(ctx)
}

func (m *MockTempHumSensor) GetHumidity(ctx context.Context) (float32, error) {
	return m.humidity(ctx)
}

// GetTempAndHum stops at the first failing behavior.
func (m *MockTempHumSensor) GetTempAndHum(ctx context.Context) (float32, float32, error) {
	temp, err := m.temperature(ctx)
	if err != nil {
		return 0, 0, err
	}
	hum, err := m.humidity(ctx)
	if err != nil {
		return 0, 0, err
	}
	return temp, hum, nil
}

package environment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMockTempHumSensor_Static(t *testing.T) {
	ctx := context.Background()
	sensor := StaticTempHumSensor(22.5, 45)

	temp, err := sensor.GetTemperature(ctx)
	assert.NoError(t, err)
	assert.Equal(t, float32(22.5), temp)
	hum, err := sensor.GetHumidity(ctx)
	assert.NoError(t, err)
	assert.Equal(t, float32(45), hum)
	temp, hum, err = sensor.GetTempAndHum(ctx)
	assert.NoError(t, err)
	assert.Equal(t, float32(22.5), temp)
	assert.Equal(t, float32(45), hum)
}

func TestMockTempHumSensor_IndependentBehaviors(t *testing.T) {
	ctx := context.Background()
	tempCalls, humCalls := 0, 0
	sensor := NewMockTempHumSensor(
		func(ctx context.Context) (float32, error) {
			tempCalls++
			return 20, nil
		},
		func(ctx context.Context) (float32, error) {
			humCalls++
			return 50, nil
		},
	)

	_, _ = sensor.GetTemperature(ctx)
	assert.Equal(t, []int{1, 0}, []int{tempCalls, humCalls})
	_, _ = sensor.GetHumidity(ctx)
	assert.Equal(t, []int{1, 1}, []int{tempCalls, humCalls})
	_, _, _ = sensor.GetTempAndHum(ctx)
	assert.Equal(t, []int{2, 2}, []int{tempCalls, humCalls})
}

func TestMockTempHumSensor_Errors(t *testing.T) {
	ctx := context.Background()
	tempErr := errors.New("temperature sensor error")
	humCalled := false
	sensor := NewMockTempHumSensor(
		func(ctx context.Context) (float32, error) { return 0, tempErr },
		func(ctx context.Context) (float32, error) {
			humCalled = true
			return 0, nil
		},
	)

	_, _, err := sensor.GetTempAndHum(ctx)
	assert.ErrorIs(t, err, tempErr)
	assert.False(t, humCalled)
}

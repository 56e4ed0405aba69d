package metrics

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mklimuk/hdc2080/environment"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	c := NewCollector(environment.StaticTempHumSensor(21.5, 40), "0x40", 0)
	expected := `
# HELP hdc2080_relative_humidity_percent Relative humidity percent
# TYPE hdc2080_relative_humidity_percent gauge
hdc2080_relative_humidity_percent{address="0x40"} 40
# HELP hdc2080_temperature_celsius Temperature in degrees Celsius
# TYPE hdc2080_temperature_celsius gauge
hdc2080_temperature_celsius{address="0x40"} 21.5
`
	err := testutil.CollectAndCompare(c, strings.NewReader(expected),
		"hdc2080_temperature_celsius", "hdc2080_relative_humidity_percent")
	require.NoError(t, err)
	assert.Equal(t, float64(0), testutil.ToFloat64(c.errors))
}

func TestCollector_ReadError(t *testing.T) {
	fail := func(ctx context.Context) (float32, error) { return 0, errors.New("bus failure") }
	c := NewCollector(environment.NewMockTempHumSensor(fail, fail), "0x41", 0)

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(c))
	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, "hdc2080_read_errors_total", families[0].GetName())
	assert.Equal(t, float64(1), families[0].GetMetric()[0].GetCounter().GetValue())

	_, err = reg.Gather()
	require.NoError(t, err)
	assert.Equal(t, float64(2), testutil.ToFloat64(c.errors))
}

func TestCollector_SerializesScrapes(t *testing.T) {
	var mx sync.Mutex
	active, peak := 0, 0
	read := func(ctx context.Context) (float32, error) {
		mx.Lock()
		active++
		if active > peak {
			peak = active
		}
		mx.Unlock()
		time.Sleep(time.Millisecond)
		mx.Lock()
		active--
		mx.Unlock()
		return 20, nil
	}
	c := NewCollector(environment.NewMockTempHumSensor(read, read), "0x40", 0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			testutil.CollectAndCount(c)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, peak)
}

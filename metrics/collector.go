// Package metrics exposes HDC2080 readings as Prometheus metrics.
package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mklimuk/hdc2080/environment"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hdc2080"

var _ prometheus.Collector = &Collector{}

// Collector reads the sensor on every scrape. Concurrent scrapes are
// serialized since the sensor handle is not safe for concurrent use.
type Collector struct {
	mx          sync.Mutex
	sensor      environment.TempHumSensor
	timeout     time.Duration
	logger      *slog.Logger
	temperature *prometheus.Desc
	humidity    *prometheus.Desc
	errors      prometheus.Counter
}

// NewCollector labels every sample with the given address, e.g. "0x40".
func NewCollector(sensor environment.TempHumSensor, address string, timeout time.Duration) *Collector {
	labels := prometheus.Labels{"address": address}
	return &Collector{
		sensor:  sensor,
		timeout: timeout,
		logger:  slog.Default(),
		temperature: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "temperature_celsius"),
			"Temperature in degrees Celsius",
			nil, labels,
		),
		humidity: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "relative_humidity_percent"),
			"Relative humidity percent",
			nil, labels,
		),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "read_errors_total",
			Help:        "Number of failed sensor reads",
			ConstLabels: labels,
		}),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.temperature
	ch <- c.humidity
	c.errors.Describe(ch)
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mx.Lock()
	defer c.mx.Unlock()
	ctx := context.Background()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	temp, hum, err := c.sensor.GetTempAndHum(ctx)
	if err != nil {
		c.logger.Error("sensor read failed", "error", err)
		c.errors.Inc()
	} else {
		ch <- prometheus.MustNewConstMetric(c.temperature, prometheus.GaugeValue, float64(temp))
		ch <- prometheus.MustNewConstMetric(c.humidity, prometheus.GaugeValue, float64(hum))
	}
	c.errors.Collect(ch)
}

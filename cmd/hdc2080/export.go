package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mklimuk/hdc2080/config"
	"github.com/mklimuk/hdc2080/environment"
	"github.com/mklimuk/hdc2080/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
)

var exportCmd = cli.Command{
	Name:  "export",
	Usage: "serve readings as Prometheus metrics",
	Flags: append(deviceFlags(),
		&cli.StringFlag{Name: "listen", Usage: "metrics listen address"},
	),
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return configExit(err)
		}
		if c.IsSet("listen") {
			cfg.Listen = c.String("listen")
		}
		dev, err := openDevice(cfg)
		if err != nil {
			return configExit(err)
		}
		s := environment.NewHDC2080Basic(dev)
		err = s.Init(c.Context)
		if err != nil {
			return deviceExit("init failed", err)
		}
		defer closeDevice(c.Context, s)
		err = cfg.Tune(c.Context, dev, true)
		if err != nil {
			return deviceExit("configuration failed", err)
		}
		err = serveMetrics(c.Context, cfg, metricsHandler(s, cfg))
		if err != nil {
			return configExit(err)
		}
		return nil
	},
}

func metricsHandler(s environment.TempHumSensor, cfg config.Config) http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(metrics.NewCollector(s, fmt.Sprintf("0x%02x", cfg.Pin().Address()), time.Second))
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return mux
}

// serveMetrics blocks until ctx is done.
func serveMetrics(ctx context.Context, cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errs := make(chan error, 1)
	go func() {
		slog.Info("serving metrics", "listen", cfg.Listen)
		errs <- srv.ListenAndServe()
	}()
	select {
	case err := <-errs:
		return fmt.Errorf("metrics server failed: %w", err)
	case <-ctx.Done():
	}
	shutdown, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdown)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server shutdown: %w", err)
	}
	return nil
}

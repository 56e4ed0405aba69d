package main

import (
	"context"
	"fmt"

	"github.com/mklimuk/hdc2080"
	"github.com/mklimuk/hdc2080/cmd/hdc2080/console"
	"github.com/mklimuk/hdc2080/config"
	"github.com/mklimuk/hdc2080/environment"
	"github.com/urfave/cli/v2"
)

var readCmd = cli.Command{
	Name:  "read",
	Usage: "read results of the 5Hz automatic conversion",
	Flags: sessionFlags(),
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return configExit(err)
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
		err = session(c.Context, cfg, s.Read, printMeasurement)
		if err != nil {
			return deviceExit("read failed", err)
		}
		return nil
	},
}

var shotCmd = cli.Command{
	Name:  "shot",
	Usage: "trigger a conversion for every reading",
	Flags: sessionFlags(),
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return configExit(err)
		}
		dev, err := openDevice(cfg)
		if err != nil {
			return configExit(err)
		}
		s := environment.NewHDC2080Shot(dev)
		err = s.Init(c.Context)
		if err != nil {
			return deviceExit("init failed", err)
		}
		defer closeDevice(c.Context, s)
		err = cfg.Tune(c.Context, dev, false)
		if err != nil {
			return deviceExit("configuration failed", err)
		}
		err = session(c.Context, cfg, s.Read, printMeasurement)
		if err != nil {
			return deviceExit("read failed", err)
		}
		tmax, err := s.TemperatureMax(c.Context)
		if err != nil {
			return deviceExit("read failed", err)
		}
		hmax, err := s.HumidityMax(c.Context)
		if err != nil {
			return deviceExit("read failed", err)
		}
		console.Infof("peak temperature %s, peak humidity %s", console.White(celsius(tmax)), console.White(percent(hmax)))
		return nil
	},
}

var interruptCmd = cli.Command{
	Name:  "interrupt",
	Usage: "drive the interrupt pin when readings leave the thresholds",
	Flags: append(sessionFlags(),
		&cli.Float64Flag{Name: "temperature-high", Usage: "high temperature threshold in °C"},
		&cli.Float64Flag{Name: "temperature-low", Usage: "low temperature threshold in °C"},
		&cli.Float64Flag{Name: "humidity-high", Usage: "high humidity threshold in %RH"},
		&cli.Float64Flag{Name: "humidity-low", Usage: "low humidity threshold in %RH"},
	),
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return configExit(err)
		}
		t := thresholdsFromFlags(c, cfg.Thresholds)
		dev, err := openDevice(cfg)
		if err != nil {
			return configExit(err)
		}
		s := environment.NewHDC2080Interrupt(dev)
		err = s.Init(c.Context, t)
		if err != nil {
			return deviceExit("init failed", err)
		}
		defer closeDevice(c.Context, s)
		err = cfg.Tune(c.Context, dev, true)
		if err != nil {
			return deviceExit("configuration failed", err)
		}
		err = session(c.Context, cfg, s.Read, func(i int, m environment.Measurement) {
			printMeasurement(i, m)
			printCrossing(s.Thresholds().Crossed(m))
		})
		if err != nil {
			return deviceExit("read failed", err)
		}
		status, err := s.Status(c.Context)
		if err != nil {
			return deviceExit("status read failed", err)
		}
		for _, i := range environment.Interrupts {
			if status.Is(i) {
				console.PInfof(console.PictoPin, "%s interrupt flag is set", i)
			}
		}
		return nil
	},
}

func thresholdsFromFlags(c *cli.Context, t environment.Thresholds) environment.Thresholds {
	if c.IsSet("temperature-high") {
		t.TemperatureHigh = float32(c.Float64("temperature-high"))
	}
	if c.IsSet("temperature-low") {
		t.TemperatureLow = float32(c.Float64("temperature-low"))
	}
	if c.IsSet("humidity-high") {
		t.HumidityHigh = float32(c.Float64("humidity-high"))
	}
	if c.IsSet("humidity-low") {
		t.HumidityLow = float32(c.Float64("humidity-low"))
	}
	return t
}

// session waits the configured interval before each of the configured readings.
func session(ctx context.Context, cfg config.Config, read func(context.Context) (environment.Measurement, error), each func(int, environment.Measurement)) error {
	var delay hdc2080.SleepDelayer
	for i := 0; i < cfg.Times; i++ {
		delay.Delay(ctx, cfg.Interval)
		if err := ctx.Err(); err != nil {
			return err
		}
		m, err := read(ctx)
		if err != nil {
			return err
		}
		console.Infof("%d/%d", i+1, cfg.Times)
		each(i, m)
	}
	return nil
}

func printMeasurement(_ int, m environment.Measurement) {
	console.PInfof(console.PictoThermometer, "temperature is %s", console.White(celsius(m.Temperature)))
	console.PInfof(console.PictoHumidity, "humidity is %s", console.White(percent(m.Humidity)))
}

func printCrossing(x environment.Crossing) {
	if x.TemperatureHigh {
		console.PInfof(console.PictoStop, "temperature is over high threshold and check the interrupt pin")
	}
	if x.TemperatureLow {
		console.PInfof(console.PictoStop, "temperature is less than low threshold and check the interrupt pin")
	}
	if x.HumidityHigh {
		console.PInfof(console.PictoStop, "humidity is over high threshold and check the interrupt pin")
	}
	if x.HumidityLow {
		console.PInfof(console.PictoStop, "humidity is less than low threshold and check the interrupt pin")
	}
}

func celsius(v float32) string {
	return fmt.Sprintf("%.2fC", v)
}

func percent(v float32) string {
	return fmt.Sprintf("%.2f%%", v)
}

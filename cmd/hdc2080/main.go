package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	chlog "github.com/charmbracelet/log"
	"github.com/mklimuk/hdc2080/cmd/hdc2080/console"
	"github.com/mklimuk/hdc2080/config"
	"github.com/mklimuk/hdc2080/hdcctx"
	"github.com/mklimuk/hdc2080/i2c"
	"github.com/muesli/termenv"
	"github.com/urfave/cli/v2"
)

var commit string
var date string

func main() {
	os.Exit(run(os.Args))
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "hdc2080"
	app.EnableBashCompletion = true
	app.Version = fmt.Sprintf("%s-%s-%s", config.Version, date, commit)
	app.Usage = "TI HDC2080 humidity and temperature sensor cli"
	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "enable verbose logging",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to a YAML configuration file",
			EnvVars: []string{"HDC2080_CONFIG"},
		},
	}
	app.Before = func(c *cli.Context) error {
		verbose := c.Bool("verbose")
		charm := chlog.NewWithOptions(os.Stdout, chlog.Options{
			ReportCaller:    true,
			ReportTimestamp: true,
			TimeFormat:      time.DateTime,
		})
		charm.SetColorProfile(termenv.TrueColor)
		charm.SetLevel(chlog.InfoLevel)
		if verbose {
			charm.SetLevel(chlog.DebugLevel)
		}
		logger := slog.New(charm)
		slog.SetDefault(logger)
		if verbose {
			logCapabilities(logger)
		}
		console.Trace = verbose
		i2c.SetD2R2Verbose(verbose)
		c.Context = hdcctx.WithLogger(hdcctx.SetVerbose(c.Context, verbose), logger)
		return nil
	}
	// errors are reported here and turned into exit codes by run
	app.ExitErrHandler = func(c *cli.Context, err error) {
		if err != nil {
			console.Errorf("%s", err)
		}
	}
	app.Commands = cli.Commands{
		&infoCmd,
		&pinsCmd,
		&readCmd,
		&shotCmd,
		&interruptCmd,
		&registerCmd,
		&exportCmd,
		&adapterCmd,
	}
	return app
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err := newApp().RunContext(ctx, args)
	if err != nil {
		var exerr cli.ExitCoder
		if errors.As(err, &exerr) {
			return exerr.ExitCode()
		}
		console.Errorf("unexpected error: %v", err)
		return 1
	}
	return 0
}

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/karalabe/hid"
	"github.com/mklimuk/hdc2080/adapter"
	"github.com/mklimuk/hdc2080/cmd/hdc2080/console"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

var adapterCmd = cli.Command{
	Name:  "adapter",
	Usage: "USB adapter tools",
	Subcommands: cli.Commands{
		&adapterLsCmd,
		&adapterDetectCmd,
		&adapterStatusCmd,
		&adapterReleaseCmd,
	},
}

var adapterLsCmd = cli.Command{
	Name:  "ls",
	Usage: "list all HID devices",
	Action: func(c *cli.Context) error {
		devices := hid.Enumerate(0, 0)

		w := tabwriter.NewWriter(os.Stdout, 24, 0, 1, ' ', 0)
		_, _ = fmt.Fprintf(w, "PATH\tSERIAL\tVENDOR\tPRODUCT ID\tMANUFACTURER\tPRODUCT\n")
		for _, dev := range devices {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%#x\t%#x\t%s\t%s\n",
				dev.Path, dev.Serial, dev.VendorID, dev.ProductID, dev.Manufacturer, dev.Product)
		}
		return w.Flush()
	},
}

var adapterDetectCmd = cli.Command{
	Name:  "detect",
	Usage: "list attached MCP2221 adapters",
	Action: func(c *cli.Context) error {
		devices := adapter.Detect()
		if len(devices) == 0 {
			return console.Exit(1, "%s", adapter.ErrDeviceNotFound)
		}
		w := tabwriter.NewWriter(os.Stdout, 24, 0, 1, ' ', 0)
		_, _ = fmt.Fprintf(w, "INDEX\tVENDOR\tPRODUCT\tSERIAL\tDEVICE\n")
		for i, dev := range devices {
			_, _ = fmt.Fprintf(w, "%d\t%#x\t%#x\t%s\tMCP2221\n", i, dev.VendorID, dev.ProductID, dev.Serial)
		}
		return w.Flush()
	},
}

func indexFlag() cli.Flag {
	return &cli.IntFlag{Name: "index", Value: -1, Usage: "adapter index as listed by detect"}
}

var adapterStatusCmd = cli.Command{
	Name:  "status",
	Flags: []cli.Flag{indexFlag()},
	Action: func(c *cli.Context) error {
		a := adapter.NewMCP2221(adapter.WithDeviceIndex(c.Int("index")))
		status, err := a.Status(c.Context)
		if err != nil {
			return console.Exit(1, "adapter communication error: %s", console.Red(err))
		}
		return printYAML(status)
	},
}

var adapterReleaseCmd = cli.Command{
	Name:  "release",
	Usage: "cancel the pending I2C transfer",
	Flags: []cli.Flag{indexFlag()},
	Action: func(c *cli.Context) error {
		a := adapter.NewMCP2221(adapter.WithDeviceIndex(c.Int("index")))
		status, err := a.ReleaseBus(c.Context)
		if err != nil {
			return console.Exit(1, "adapter communication error: %s", console.Red(err))
		}
		return printYAML(status)
	},
}

func printYAML(v any) error {
	enc := yaml.NewEncoder(console.Output())
	defer enc.Close()
	err := enc.Encode(v)
	if err != nil {
		return console.Exit(1, "encoding error: %s", console.Red(err))
	}
	return nil
}

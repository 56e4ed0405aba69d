package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/mklimuk/hdc2080/cmd/hdc2080/console"
	"github.com/mklimuk/hdc2080/environment"
	"github.com/urfave/cli/v2"
)

var infoCmd = cli.Command{
	Name:  "info",
	Usage: "print chip and driver information",
	Action: func(c *cli.Context) error {
		return printYAML(environment.Info())
	},
}

var pinsCmd = cli.Command{
	Name:  "pins",
	Usage: "print the chip wiring",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "addr", Usage: "level of the ADDR pin, 0 or 1"},
	},
	Action: func(c *cli.Context) error {
		pin := environment.AddressPinGND
		if c.Int("addr") == 1 {
			pin = environment.AddressPinVCC
		}
		w := tabwriter.NewWriter(console.Output(), 8, 0, 1, ' ', 0)
		_, _ = fmt.Fprintf(w, "PIN\tCONNECTION\n")
		_, _ = fmt.Fprintf(w, "SCL\tI2C clock, GPIO3(BCM) on a Raspberry Pi\n")
		_, _ = fmt.Fprintf(w, "SDA\tI2C data, GPIO2(BCM) on a Raspberry Pi\n")
		_, _ = fmt.Fprintf(w, "ADDR\t%s, address 0x%02x\n", pin, pin.Address())
		_, _ = fmt.Fprintf(w, "INT\tinterrupt output, optional\n")
		_, _ = fmt.Fprintf(w, "VDD\t1.62V to 3.6V\n")
		_, _ = fmt.Fprintf(w, "GND\tground\n")
		return w.Flush()
	},
}

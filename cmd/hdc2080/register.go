package main

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/mklimuk/hdc2080"
	"github.com/mklimuk/hdc2080/cmd/hdc2080/console"
	"github.com/urfave/cli/v2"
)

type namedRegister struct {
	addr byte
	name string
}

var registerMap = []namedRegister{
	{0x00, "TEMPERATURE_LOW"},
	{0x01, "TEMPERATURE_HIGH"},
	{0x02, "HUMIDITY_LOW"},
	{0x03, "HUMIDITY_HIGH"},
	{0x04, "INTERRUPT_DRDY"},
	{0x05, "TEMPERATURE_MAX"},
	{0x06, "HUMIDITY_MAX"},
	{0x07, "INTERRUPT_ENABLE"},
	{0x08, "TEMP_OFFSET_ADJUST"},
	{0x09, "HUM_OFFSET_ADJUST"},
	{0x0A, "TEMP_THR_L"},
	{0x0B, "TEMP_THR_H"},
	{0x0C, "RH_THR_L"},
	{0x0D, "RH_THR_H"},
	{0x0E, "DEVICE_CONFIGURATION"},
	{0x0F, "MEASUREMENT_CONFIGURATION"},
	{0xFC, "MANUFACTURER_ID_LOW"},
	{0xFD, "MANUFACTURER_ID_HIGH"},
	{0xFE, "DEVICE_ID_LOW"},
	{0xFF, "DEVICE_ID_HIGH"},
}

var registerCmd = cli.Command{
	Name:  "register",
	Usage: "raw register access, bypassing the driver initialization",
	Subcommands: cli.Commands{
		&registerDumpCmd,
		&registerGetCmd,
		&registerSetCmd,
	},
}

var registerDumpCmd = cli.Command{
	Name:  "dump",
	Flags: deviceFlags(),
	Action: func(c *cli.Context) error {
		return withRawBus(c, func(ctx context.Context, bus hdc2080.RegisterBus, addr byte) error {
			w := tabwriter.NewWriter(console.Output(), 8, 0, 1, ' ', 0)
			_, _ = fmt.Fprintf(w, "REG\tNAME\tVALUE\n")
			buf := make([]byte, 1)
			for _, r := range registerMap {
				err := bus.ReadRegister(ctx, addr, r.addr, buf)
				if err != nil {
					return fmt.Errorf("register %s: %w", r.name, err)
				}
				_, _ = fmt.Fprintf(w, "0x%02x\t%s\t0x%02x\n", r.addr, r.name, buf[0])
			}
			return w.Flush()
		})
	},
}

var registerGetCmd = cli.Command{
	Name:      "get",
	ArgsUsage: "<register>",
	Flags: append(deviceFlags(),
		&cli.IntFlag{Name: "len", Value: 1, Usage: "number of bytes to read"},
	),
	Action: func(c *cli.Context) error {
		reg, err := parseByte(c.Args().First())
		if err != nil {
			return console.Exit(1, "invalid register: %s", console.Red(err))
		}
		n := c.Int("len")
		if n < 1 || int(reg)+n > 0x100 {
			return console.Exit(1, "invalid length %d", n)
		}
		return withRawBus(c, func(ctx context.Context, bus hdc2080.RegisterBus, addr byte) error {
			buf := make([]byte, n)
			err := bus.ReadRegister(ctx, addr, reg, buf)
			if err != nil {
				return err
			}
			for i, v := range buf {
				console.Printf("0x%02x: %s\n", int(reg)+i, console.Hex(v))
			}
			return nil
		})
	},
}

var registerSetCmd = cli.Command{
	Name:      "set",
	ArgsUsage: "<register> <value>",
	Flags: append(deviceFlags(),
		&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "do not ask for confirmation"},
	),
	Action: func(c *cli.Context) error {
		reg, err := parseByte(c.Args().Get(0))
		if err != nil {
			return console.Exit(1, "invalid register: %s", console.Red(err))
		}
		value, err := parseByte(c.Args().Get(1))
		if err != nil {
			return console.Exit(1, "invalid value: %s", console.Red(err))
		}
		if !c.Bool("yes") {
			ok, err := console.Confirm(fmt.Sprintf("write 0x%02x to register 0x%02x?", value, reg))
			if err != nil {
				return console.Exit(1, "prompt error: %s", console.Red(err))
			}
			if !ok {
				console.Infof("aborted")
				return nil
			}
		}
		return withRawBus(c, func(ctx context.Context, bus hdc2080.RegisterBus, addr byte) error {
			return bus.WriteRegister(ctx, addr, reg, []byte{value})
		})
	},
}

func withRawBus(c *cli.Context, fn func(context.Context, hdc2080.RegisterBus, byte) error) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return configExit(err)
	}
	bus, err := newBus(cfg)
	if err != nil {
		return configExit(err)
	}
	ctx := c.Context
	err = bus.Open(ctx)
	if err != nil {
		return console.Exit(1, "could not open bus: %s", console.Red(err))
	}
	defer func() {
		if err := bus.Close(context.WithoutCancel(ctx)); err != nil {
			console.Warnf("could not close bus: %s", err)
		}
	}()
	err = fn(ctx, bus, cfg.Pin().Address())
	if err != nil {
		return console.Exit(1, "register access failed: %s", console.Red(err))
	}
	return nil
}

// parseByte accepts decimal, 0x hex and 0b binary notation.
func parseByte(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, err
	}
	return byte(v), nil
}

package i2c

import (
	"context"
	"fmt"

	d2r2 "github.com/d2r2/go-i2c"
	logger "github.com/d2r2/go-logger"
	"github.com/mklimuk/hdc2080"
)

var _ hdc2080.RegisterBus = &D2R2Bus{}

// D2R2Bus uses the Linux i2c-dev interface (/dev/i2c-N) through d2r2/go-i2c.
type D2R2Bus struct {
	bus  int
	devs map[byte]*d2r2.I2C
}

func NewD2R2Bus(bus int) *D2R2Bus {
	return &D2R2Bus{bus: bus, devs: map[byte]*d2r2.I2C{}}
}

// SetD2R2Verbose switches the i2c package logger of d2r2 between debug and
// info levels. The library logs every transfer at debug level.
func SetD2R2Verbose(verbose bool) {
	lv := logger.InfoLevel
	if verbose {
		lv = logger.DebugLevel
	}
	logger.ChangePackageLogLevel("i2c", lv)
}

func (b *D2R2Bus) Open(ctx context.Context) error {
	return nil
}

func (b *D2R2Bus) Close(ctx context.Context) error {
	var first error
	for addr, dev := range b.devs {
		if err := dev.Close(); err != nil && first == nil {
			first = fmt.Errorf("cannot close i2c device %#x: %w", addr, err)
		}
		delete(b.devs, addr)
	}
	return first
}

func (b *D2R2Bus) dev(address byte) (*d2r2.I2C, error) {
	if dev, ok := b.devs[address]; ok {
		return dev, nil
	}
	dev, err := d2r2.NewI2C(address, b.bus)
	if err != nil {
		return nil, fmt.Errorf("cannot open i2c device %#x on bus %d: %w", address, b.bus, err)
	}
	b.devs[address] = dev
	return dev, nil
}

func (b *D2R2Bus) ReadRegister(ctx context.Context, address, reg byte, buf []byte) error {
	dev, err := b.dev(address)
	if err != nil {
		return err
	}
	_, err = dev.WriteBytes([]byte{reg})
	if err != nil {
		return fmt.Errorf("cannot select register %#x: %w", reg, err)
	}
	n, err := dev.ReadBytes(buf)
	if err != nil {
		return fmt.Errorf("cannot read register %#x: %w", reg, err)
	}
	if n != len(buf) {
		return fmt.Errorf("short read from register %#x: %d of %d bytes", reg, n, len(buf))
	}
	return nil
}

func (b *D2R2Bus) WriteRegister(ctx context.Context, address, reg byte, buf []byte) error {
	dev, err := b.dev(address)
	if err != nil {
		return err
	}
	out := append([]byte{reg}, buf...)
	n, err := dev.WriteBytes(out)
	if err != nil {
		return fmt.Errorf("cannot write register %#x: %w", reg, err)
	}
	if n != len(out) {
		return fmt.Errorf("short write to register %#x: %d of %d bytes", reg, n, len(out))
	}
	return nil
}

package i2c

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mklimuk/hdc2080"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

var ErrBusClosed = errors.New("i2c bus is not open")

var (
	_ hdc2080.I2CBus      = &GenericBus{}
	_ hdc2080.RegisterBus = &GenericBus{}
)

// GenericBus is a periph.io host bus. Register reads are a single combined
// write/read transaction.
type GenericBus struct {
	dev    string
	bus    i2c.Bus
	closer i2c.BusCloser
}

// NewGenericBus returns a bus opened lazily by name ("" selects the first one).
func NewGenericBus(dev string) *GenericBus {
	return &GenericBus{dev: dev}
}

// NewBus wraps a bus owned by the caller. Close leaves it open.
func NewBus(bus i2c.Bus) *GenericBus {
	return &GenericBus{bus: bus}
}

func (b *GenericBus) Open(ctx context.Context) error {
	if b.bus != nil {
		return nil
	}
	state, err := host.Init()
	if err != nil {
		return fmt.Errorf("could not init host: %w", err)
	}
	for _, driver := range state.Loaded {
		slog.Debug("periph driver loaded", "driver", driver.String())
	}
	bus, err := i2creg.Open(b.dev)
	if err != nil {
		return fmt.Errorf("could not open i2c bus: %w", err)
	}
	b.bus = bus
	b.closer = bus
	return nil
}

func (b *GenericBus) Close(ctx context.Context) error {
	if b.closer == nil {
		return nil
	}
	err := b.closer.Close()
	b.bus, b.closer = nil, nil
	if err != nil {
		return fmt.Errorf("could not close i2c bus: %w", err)
	}
	return nil
}

func (b *GenericBus) ReadRegister(ctx context.Context, address, reg byte, buf []byte) error {
	if b.bus == nil {
		return ErrBusClosed
	}
	err := b.bus.Tx(uint16(address), []byte{reg}, buf)
	if err != nil {
		return fmt.Errorf("could not read register %#x from %#x: %w", reg, address, err)
	}
	return nil
}

func (b *GenericBus) WriteRegister(ctx context.Context, address, reg byte, buf []byte) error {
	if b.bus == nil {
		return ErrBusClosed
	}
	w := append([]byte{reg}, buf...)
	err := b.bus.Tx(uint16(address), w, nil)
	if err != nil {
		return fmt.Errorf("could not write register %#x on %#x: %w", reg, address, err)
	}
	return nil
}

func (b *GenericBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	if b.bus == nil {
		return ErrBusClosed
	}
	err := b.bus.Tx(uint16(address), nil, buffer)
	if err != nil {
		return fmt.Errorf("could not read from i2c bus %x: %w", address, err)
	}
	return nil
}

func (b *GenericBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	if b.bus == nil {
		return ErrBusClosed
	}
	err := b.bus.Tx(uint16(address), buffer, nil)
	if err != nil {
		return fmt.Errorf("could not write to i2c bus %x: %w", address, err)
	}
	return nil
}

func (b *GenericBus) Release(ctx context.Context) error {
	return nil
}

func (b *GenericBus) String() string {
	if b.bus != nil {
		return b.bus.String()
	}
	return fmt.Sprintf("periph(%q)", b.dev)
}

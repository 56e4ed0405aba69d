package hdc2080

import (
	"context"
	"fmt"
	"time"
)

var ErrBusBusy = fmt.Errorf("I2C engine is busy (command not completed)")

type AddressableReader interface {
	ReadFromAddr(ctx context.Context, address byte, buffer []byte) error
}

type AddressableWriter interface {
	WriteToAddr(ctx context.Context, address byte, buffer []byte) error
	Release(ctx context.Context) error
}

// I2CBus is a raw address level bus such as a USB bridge.
type I2CBus interface {
	AddressableReader
	AddressableWriter
}

// RegisterBus transfers register contents to and from a device. The length of
// buf is the transfer length.
type RegisterBus interface {
	Open(ctx context.Context) error
	Close(ctx context.Context) error
	ReadRegister(ctx context.Context, address, reg byte, buf []byte) error
	WriteRegister(ctx context.Context, address, reg byte, buf []byte) error
}

type Delayer interface {
	Delay(ctx context.Context, d time.Duration)
}

// SleepDelayer waits on a timer and returns early when ctx is done.
type SleepDelayer struct{}

func (SleepDelayer) Delay(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

var _ RegisterBus = &registerBus{}

type registerBus struct {
	bus I2CBus
}

// NewRegisterBus exposes a raw bus as a register bus. Reads write the register
// pointer first, writes prefix the payload with it.
func NewRegisterBus(bus I2CBus) RegisterBus {
	return &registerBus{bus: bus}
}

func (b *registerBus) Open(ctx context.Context) error {
	return nil
}

func (b *registerBus) Close(ctx context.Context) error {
	return b.bus.Release(ctx)
}

func (b *registerBus) ReadRegister(ctx context.Context, address, reg byte, buf []byte) error {
	err := b.bus.WriteToAddr(ctx, address, []byte{reg})
	if err != nil {
		return fmt.Errorf("could not set register pointer %#x: %w", reg, err)
	}
	err = b.bus.ReadFromAddr(ctx, address, buf)
	if err != nil {
		return fmt.Errorf("could not read register %#x: %w", reg, err)
	}
	return nil
}

func (b *registerBus) WriteRegister(ctx context.Context, address, reg byte, buf []byte) error {
	out := make([]byte, 0, len(buf)+1)
	out = append(out, reg)
	out = append(out, buf...)
	err := b.bus.WriteToAddr(ctx, address, out)
	if err != nil {
		return fmt.Errorf("could not write register %#x: %w", reg, err)
	}
	return nil
}

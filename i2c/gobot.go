package i2c

import (
	"context"
	"fmt"

	"github.com/mklimuk/hdc2080"
	gi2c "gobot.io/x/gobot/v2/drivers/i2c"
	"gobot.io/x/gobot/v2/platforms/friendlyelec/nanopi"
)

// GobotAdaptor is a gobot platform adaptor able to hand out I2C connections.
type GobotAdaptor interface {
	gi2c.Connector
	Connect() error
	Finalize() error
}

var _ hdc2080.RegisterBus = &GobotBus{}

// GobotBus talks to devices through a gobot platform adaptor. A connection is
// kept per device address until Close.
type GobotBus struct {
	adaptor GobotAdaptor
	busNr   int
	conns   map[byte]gi2c.Connection
}

// NewNanoPiBus uses the I2C part of the NanoPi NEO adaptor only. A negative
// bus number selects the adaptor default.
func NewNanoPiBus(busNr int) *GobotBus {
	npi := nanopi.NewNeoAdaptor()
	return NewGobotBus(npi.I2cBusAdaptor, busNr)
}

func NewGobotBus(adaptor GobotAdaptor, busNr int) *GobotBus {
	if busNr < 0 {
		busNr = adaptor.DefaultI2cBus()
	}
	return &GobotBus{
		adaptor: adaptor,
		busNr:   busNr,
		conns:   map[byte]gi2c.Connection{},
	}
}

func (b *GobotBus) Open(ctx context.Context) error {
	err := b.adaptor.Connect()
	if err != nil {
		return fmt.Errorf("adaptor connect error: %w", err)
	}
	return nil
}

func (b *GobotBus) Close(ctx context.Context) error {
	var first error
	for addr, conn := range b.conns {
		if err := conn.Close(); err != nil && first == nil {
			first = fmt.Errorf("could not close connection to %#x: %w", addr, err)
		}
		delete(b.conns, addr)
	}
	if err := b.adaptor.Finalize(); err != nil && first == nil {
		first = fmt.Errorf("adaptor finalize error: %w", err)
	}
	return first
}

func (b *GobotBus) conn(address byte) (gi2c.Connection, error) {
	if conn, ok := b.conns[address]; ok {
		return conn, nil
	}
	conn, err := b.adaptor.GetI2cConnection(int(address), b.busNr)
	if err != nil {
		return nil, fmt.Errorf("could not get connection to %#x on bus %d: %w", address, b.busNr, err)
	}
	b.conns[address] = conn
	return conn, nil
}

func (b *GobotBus) ReadRegister(ctx context.Context, address, reg byte, buf []byte) error {
	conn, err := b.conn(address)
	if err != nil {
		return err
	}
	if len(buf) == 1 {
		v, err := conn.ReadByteData(reg)
		if err != nil {
			return fmt.Errorf("read error: %w", err)
		}
		buf[0] = v
		return nil
	}
	err = conn.ReadBlockData(reg, buf)
	if err != nil {
		return fmt.Errorf("block read error: %w", err)
	}
	return nil
}

func (b *GobotBus) WriteRegister(ctx context.Context, address, reg byte, buf []byte) error {
	conn, err := b.conn(address)
	if err != nil {
		return err
	}
	if len(buf) == 1 {
		err = conn.WriteByteData(reg, buf[0])
	} else {
		err = conn.WriteBlockData(reg, buf)
	}
	if err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	return nil
}

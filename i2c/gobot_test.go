package i2c

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gi2c "gobot.io/x/gobot/v2/drivers/i2c"
)

type fakeConnection struct {
	gi2c.Connection
	regs   [256]byte
	closed bool
}

func (c *fakeConnection) ReadByteData(reg uint8) (uint8, error) {
	return c.regs[reg], nil
}

func (c *fakeConnection) ReadBlockData(reg uint8, b []byte) error {
	copy(b, c.regs[reg:])
	return nil
}

func (c *fakeConnection) WriteByteData(reg uint8, val uint8) error {
	c.regs[reg] = val
	return nil
}

func (c *fakeConnection) WriteBlockData(reg uint8, b []byte) error {
	copy(c.regs[reg:], b)
	return nil
}

func (c *fakeConnection) Close() error {
	c.closed = true
	return nil
}

type fakeAdaptor struct {
	conns     map[int]*fakeConnection
	requested []int
	connected bool
	finalized bool
	err       error
}

func (a *fakeAdaptor) GetI2cConnection(address int, bus int) (gi2c.Connection, error) {
	if a.err != nil {
		return nil, a.err
	}
	a.requested = append(a.requested, bus)
	c, ok := a.conns[address]
	if !ok {
		c = &fakeConnection{}
		a.conns[address] = c
	}
	return c, nil
}

func (a *fakeAdaptor) DefaultI2cBus() int { return 0 }

func (a *fakeAdaptor) Connect() error {
	a.connected = true
	return nil
}

func (a *fakeAdaptor) Finalize() error {
	a.finalized = true
	return nil
}

func TestGobotBus_ReadWrite(t *testing.T) {
	ctx := context.Background()
	adaptor := &fakeAdaptor{conns: map[int]*fakeConnection{}}
	bus := NewGobotBus(adaptor, -1)
	require.NoError(t, bus.Open(ctx))
	assert.True(t, adaptor.connected)

	require.NoError(t, bus.WriteRegister(ctx, 0x40, 0x0B, []byte{0xC0}))
	require.NoError(t, bus.WriteRegister(ctx, 0x40, 0x00, []byte{0x66, 0x66, 0x00, 0x80}))

	one := make([]byte, 1)
	require.NoError(t, bus.ReadRegister(ctx, 0x40, 0x0B, one))
	assert.Equal(t, []byte{0xC0}, one)
	word := make([]byte, 2)
	require.NoError(t, bus.ReadRegister(ctx, 0x40, 0x02, word))
	assert.Equal(t, []byte{0x00, 0x80}, word)

	assert.Equal(t, []int{0}, adaptor.requested)

	require.NoError(t, bus.Close(ctx))
	assert.True(t, adaptor.conns[0x40].closed)
	assert.True(t, adaptor.finalized)
}

func TestGobotBus_ConnectionError(t *testing.T) {
	ctx := context.Background()
	adaptor := &fakeAdaptor{conns: map[int]*fakeConnection{}, err: errors.New("no bus")}
	bus := NewGobotBus(adaptor, 1)
	err := bus.ReadRegister(ctx, 0x41, 0x00, make([]byte, 2))
	assert.ErrorContains(t, err, "bus 1")
}

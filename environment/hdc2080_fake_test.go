package environment

import (
	"context"
	"errors"
	"time"

	"github.com/stretchr/testify/mock"
)

var errBus = errors.New("bus failure")

// fakeChip is an in-memory register store that behaves like an HDC2080.
type fakeChip struct {
	regs     [256]byte
	calls    int
	reads    map[byte]int
	writes   map[byte]int
	opened   bool
	closed   int
	openErr  error
	closeErr error
	failOn   map[byte]error
	written  map[byte][]byte
	// stuck keeps the measurement trigger bit set.
	stuck     bool
	dataReads int
}

func newFakeChip() *fakeChip {
	c := &fakeChip{
		reads:   map[byte]int{},
		writes:  map[byte]int{},
		failOn:  map[byte]error{},
		written: map[byte][]byte{},
	}
	c.regs[0xFC], c.regs[0xFD] = 0x49, 0x54
	c.regs[0xFE], c.regs[0xFF] = 0xD0, 0x07
	return c
}

func (c *fakeChip) Open(ctx context.Context) error {
	c.calls++
	if c.openErr != nil {
		return c.openErr
	}
	c.opened = true
	return nil
}

func (c *fakeChip) Close(ctx context.Context) error {
	c.calls++
	c.opened = false
	c.closed++
	return c.closeErr
}

func (c *fakeChip) ReadRegister(ctx context.Context, address, reg byte, buf []byte) error {
	c.calls++
	c.reads[reg]++
	if err := c.failOn[reg]; err != nil {
		return err
	}
	if reg <= 0x03 {
		c.dataReads++
	}
	for i := range buf {
		buf[i] = c.regs[int(reg)+i]
	}
	// a triggered conversion completes after it has been observed once
	if reg == 0x0F && !c.stuck {
		c.regs[0x0F] &^= 0x01
	}
	return nil
}

func (c *fakeChip) WriteRegister(ctx context.Context, address, reg byte, buf []byte) error {
	c.calls++
	c.writes[reg]++
	if err := c.failOn[reg]; err != nil {
		return err
	}
	c.written[reg] = append([]byte(nil), buf...)
	for i, b := range buf {
		c.regs[int(reg)+i] = b
	}
	return nil
}

type noDelay struct {
	calls int
	total time.Duration
}

func (d *noDelay) Delay(ctx context.Context, t time.Duration) {
	d.calls++
	d.total += t
}

// MockRegisterBus is a testify mock of the register bus.
type MockRegisterBus struct {
	mock.Mock
}

func (m *MockRegisterBus) Open(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockRegisterBus) Close(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockRegisterBus) ReadRegister(ctx context.Context, address, reg byte, buf []byte) error {
	args := m.Called(ctx, address, reg, buf)
	if data, ok := args.Get(0).([]byte); ok {
		copy(buf, data)
	}
	return args.Error(1)
}

func (m *MockRegisterBus) WriteRegister(ctx context.Context, address, reg byte, buf []byte) error {
	return m.Called(ctx, address, reg, buf).Error(0)
}

func newTestDevice(chip *fakeChip, opts ...HDC2080Option) (*HDC2080, *noDelay) {
	delay := &noDelay{}
	opts = append([]HDC2080Option{WithDelayer(delay)}, opts...)
	return NewHDC2080(chip, opts...), delay
}

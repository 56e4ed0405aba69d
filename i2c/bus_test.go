package i2c

import (
	"context"
	"testing"
	"time"

	"github.com/mklimuk/hdc2080/environment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

type instant struct{}

func (instant) Delay(ctx context.Context, d time.Duration) {}

func TestGenericBus_Register(t *testing.T) {
	ctx := context.Background()
	pb := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x40, W: []byte{0x0E}, R: []byte{0x57}},
			{Addr: 0x41, W: []byte{0x0B, 0xC0}},
		},
		DontPanic: true,
	}
	bus := NewBus(pb)
	require.NoError(t, bus.Open(ctx))

	buf := make([]byte, 1)
	require.NoError(t, bus.ReadRegister(ctx, 0x40, 0x0E, buf))
	assert.Equal(t, []byte{0x57}, buf)
	require.NoError(t, bus.WriteRegister(ctx, 0x41, 0x0B, []byte{0xC0}))

	require.NoError(t, bus.Close(ctx))
	require.NoError(t, pb.Close())
}

func TestGenericBus_TransferError(t *testing.T) {
	ctx := context.Background()
	pb := &i2ctest.Playback{
		Ops:       []i2ctest.IO{{Addr: 0x40, W: []byte{0x0E}, R: []byte{0x00}}},
		DontPanic: true,
	}
	bus := NewBus(pb)
	err := bus.ReadRegister(ctx, 0x40, 0x0F, make([]byte, 1))
	assert.Error(t, err)
}

func TestGenericBus_NotOpen(t *testing.T) {
	ctx := context.Background()
	bus := NewGenericBus("")
	assert.ErrorIs(t, bus.ReadRegister(ctx, 0x40, 0x00, make([]byte, 2)), ErrBusClosed)
	assert.ErrorIs(t, bus.WriteRegister(ctx, 0x40, 0x00, []byte{0}), ErrBusClosed)
	assert.ErrorIs(t, bus.ReadFromAddr(ctx, 0x40, make([]byte, 2)), ErrBusClosed)
	assert.ErrorIs(t, bus.WriteToAddr(ctx, 0x40, []byte{0}), ErrBusClosed)
	assert.NoError(t, bus.Close(ctx))
	assert.Equal(t, `periph("")`, bus.String())
}

func TestGenericBus_DriverSession(t *testing.T) {
	ctx := context.Background()
	pb := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x40, W: []byte{0xFC}, R: []byte{0x49, 0x54}},
			{Addr: 0x40, W: []byte{0xFE}, R: []byte{0xD0, 0x07}},
			{Addr: 0x40, W: []byte{0x0E}, R: []byte{0x00}},
			{Addr: 0x40, W: []byte{0x0E, 0x80}},
			{Addr: 0x40, W: []byte{0x00}, R: []byte{0x66, 0x66}},
			{Addr: 0x40, W: []byte{0x02}, R: []byte{0x00, 0x80}},
			{Addr: 0x40, W: []byte{0x0E}, R: []byte{0x50}},
			{Addr: 0x40, W: []byte{0x0E, 0x00}},
		},
		DontPanic: true,
	}
	dev := environment.NewHDC2080(NewBus(pb), environment.WithDelayer(instant{}))
	require.NoError(t, dev.Init(ctx))

	m, err := dev.ReadTemperatureHumidity(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x6666), m.RawTemperature)
	assert.Equal(t, float32(50), m.Humidity)

	require.NoError(t, dev.Deinit(ctx))
	require.NoError(t, pb.Close())
}

package adapter

import (
	"context"
	"errors"
	"testing"

	"github.com/mklimuk/hdc2080"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAdapter answers each report with the output of reply.
type fakeAdapter struct {
	requests [][]byte
	reply    func(req []byte) []byte
	pending  []byte
	opened   int
	closed   int
}

func (f *fakeAdapter) Write(b []byte) (int, error) {
	req := append([]byte(nil), b...)
	f.requests = append(f.requests, req)
	f.pending = f.reply(req)
	return len(b), nil
}

func (f *fakeAdapter) Read(b []byte) (int, error) {
	n := copy(b, f.pending)
	return n, nil
}

func (f *fakeAdapter) Close() error {
	f.closed++
	return nil
}

func newFakeMCP2221(f *fakeAdapter) *MCP2221 {
	d := NewMCP2221(WithResponseWait(0))
	d.open = func(int) (hidDevice, error) {
		f.opened++
		return f, nil
	}
	return d
}

func report(b ...byte) []byte {
	r := make([]byte, reportSize)
	copy(r, b)
	return r
}

func TestMCP2221_RegisterRead(t *testing.T) {
	ctx := context.Background()
	f := &fakeAdapter{reply: func(req []byte) []byte {
		switch req[0] {
		case cmdGetI2CData:
			return report(cmdGetI2CData, 0x00, 0x00, 2, 0x49, 0x54)
		default:
			return report(req[0], 0x00)
		}
	}}
	bus := hdc2080.NewRegisterBus(newFakeMCP2221(f))

	buf := make([]byte, 2)
	require.NoError(t, bus.ReadRegister(ctx, 0x40, 0xFC, buf))
	assert.Equal(t, []byte{0x49, 0x54}, buf)

	require.Len(t, f.requests, 3)
	assert.Equal(t, []byte{cmdWriteData, 1, 0, 0x80, 0xFC}, f.requests[0][:5])
	assert.Equal(t, []byte{cmdReadData, 2, 0, 0x81}, f.requests[1][:4])
	assert.Equal(t, byte(cmdGetI2CData), f.requests[2][0])
	assert.Equal(t, f.opened, f.closed)
}

func TestMCP2221_Busy(t *testing.T) {
	ctx := context.Background()
	f := &fakeAdapter{reply: func(req []byte) []byte {
		return report(req[0], 0x01)
	}}
	err := newFakeMCP2221(f).WriteToAddr(ctx, 0x40, []byte{0x0E, 0x80})
	assert.ErrorIs(t, err, hdc2080.ErrBusBusy)
}

func TestMCP2221_ReadSizeMismatch(t *testing.T) {
	ctx := context.Background()
	f := &fakeAdapter{reply: func(req []byte) []byte {
		if req[0] == cmdGetI2CData {
			return report(cmdGetI2CData, 0x00, 0x00, 127)
		}
		return report(req[0])
	}}
	err := newFakeMCP2221(f).ReadFromAddr(ctx, 0x40, make([]byte, 2))
	assert.ErrorContains(t, err, "invalid data size byte")
}

func TestMCP2221_EngineError(t *testing.T) {
	ctx := context.Background()
	f := &fakeAdapter{reply: func(req []byte) []byte {
		if req[0] == cmdGetI2CData {
			return report(cmdGetI2CData, 0x41)
		}
		return report(req[0])
	}}
	err := newFakeMCP2221(f).ReadFromAddr(ctx, 0x40, make([]byte, 1))
	assert.ErrorIs(t, err, ErrCommandFailed)
}

func TestMCP2221_StatusAndRelease(t *testing.T) {
	ctx := context.Background()
	resp := report(cmdStatus)
	resp[9], resp[10] = 0x02, 0x00
	resp[11], resp[12] = 0x01, 0x00
	resp[13] = 3
	resp[14] = 0x75
	resp[15] = 9
	resp[16], resp[17] = 0x80, 0x00
	resp[25] = 1
	f := &fakeAdapter{reply: func(req []byte) []byte { return resp }}
	d := newFakeMCP2221(f)

	status, err := d.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, &MCP2221Status{
		I2CDataBufferCounter:   3,
		I2CSpeedDivider:        0x75,
		I2CTimeout:             9,
		CurrentAddress:         "8000",
		LastWriteRequestedSize: 2,
		LastWriteSentSize:      1,
		ReadPending:            1,
	}, status)
	assert.Zero(t, f.requests[0][2])

	_, err = d.ReleaseBus(ctx)
	require.NoError(t, err)
	assert.Equal(t, byte(0x10), f.requests[1][2])
	require.NoError(t, d.Release(ctx))
}

func TestMCP2221_UnexpectedEcho(t *testing.T) {
	ctx := context.Background()
	f := &fakeAdapter{reply: func(req []byte) []byte { return report(0xFF) }}
	_, err := newFakeMCP2221(f).Status(ctx)
	assert.ErrorIs(t, err, ErrCommandFailed)
}

func TestMCP2221_OpenError(t *testing.T) {
	ctx := context.Background()
	d := NewMCP2221()
	d.open = func(int) (hidDevice, error) { return nil, ErrDeviceNotFound }
	err := d.WriteToAddr(ctx, 0x40, nil)
	assert.True(t, errors.Is(err, ErrDeviceNotFound))
}

func TestMCP2221_CancelledWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := &fakeAdapter{reply: func(req []byte) []byte { return report(req[0]) }}
	d := newFakeMCP2221(f)
	d.responseWait = 0
	_, err := d.Status(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, f.closed)
}

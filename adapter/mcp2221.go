package adapter

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/karalabe/hid"
	"github.com/mklimuk/hdc2080"
	"github.com/mklimuk/hdc2080/hdcctx"
)

const VendorID = 0x04D8
const ProductID = 0x00DD

const reportSize = 64

const (
	cmdStatus     = 0x10
	cmdWriteData  = 0x90
	cmdReadData   = 0x91
	cmdGetI2CData = 0x40
)

var (
	ErrDeviceNotFound = errors.New("MCP2221 device not found")
	ErrAmbiguous      = errors.New("ambiguous device identification")
	ErrCommandFailed  = errors.New("command failed")
)

var _ hdc2080.I2CBus = &MCP2221{}

// hidDevice is the part of *hid.Device used by the adapter.
type hidDevice interface {
	Write(b []byte) (int, error)
	Read(b []byte) (int, error)
	Close() error
}

type MCP2221 struct {
	mx           sync.Mutex
	request      []byte
	response     []byte
	responseWait time.Duration
	index        int
	open         func(index int) (hidDevice, error)
}

type MCP2221Status struct {
	I2CDataBufferCounter   int    `yaml:"data_buffer_counter"`
	I2CSpeedDivider        int    `yaml:"speed_divider"`
	I2CTimeout             int    `yaml:"timeout"`
	CurrentAddress         string `yaml:"current_address"`
	LastWriteRequestedSize uint16 `yaml:"last_write_requested"`
	LastWriteSentSize      uint16 `yaml:"last_write_sent"`
	ReadPending            int    `yaml:"read_pending"`
}

type MCP2221Option func(*MCP2221)

// WithDeviceIndex selects one of several attached adapters, in Detect order.
func WithDeviceIndex(index int) MCP2221Option {
	return func(d *MCP2221) {
		d.index = index
	}
}

func WithResponseWait(wait time.Duration) MCP2221Option {
	return func(d *MCP2221) {
		d.responseWait = wait
	}
}

func NewMCP2221(opts ...MCP2221Option) *MCP2221 {
	d := &MCP2221{
		request:      make([]byte, reportSize),
		response:     make([]byte, reportSize),
		responseWait: 50 * time.Millisecond,
		index:        -1,
		open:         openHID,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect lists the attached MCP2221 adapters.
func Detect() []hid.DeviceInfo {
	return hid.Enumerate(VendorID, ProductID)
}

func openHID(index int) (hidDevice, error) {
	devs := Detect()
	if len(devs) == 0 {
		return nil, ErrDeviceNotFound
	}
	if index < 0 {
		if len(devs) > 1 {
			return nil, ErrAmbiguous
		}
		index = 0
	}
	if index >= len(devs) {
		return nil, fmt.Errorf("no device with id %d", index)
	}
	dev, err := devs[index].Open()
	if err != nil {
		return nil, fmt.Errorf("error opening device: %w", err)
	}
	return dev, nil
}

func (d *MCP2221) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.resetBuffers()
	d.request[0] = cmdWriteData
	binary.LittleEndian.PutUint16(d.request[1:3], uint16(len(buffer)))
	d.request[3] = address << 1
	copy(d.request[4:], buffer)
	err := d.send(ctx)
	if err != nil {
		return fmt.Errorf("write to %x failed: %w", address, err)
	}
	// write could not be performed
	if d.response[1] == 0x01 {
		hdcctx.Logger(ctx).Debug("adapter busy")
		return hdc2080.ErrBusBusy
	}
	return nil
}

func (d *MCP2221) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.resetBuffers()
	d.request[0] = cmdReadData
	binary.LittleEndian.PutUint16(d.request[1:3], uint16(len(buffer)))
	d.request[3] = address<<1 + 1
	err := d.send(ctx)
	if err != nil {
		return fmt.Errorf("bus read from %x failed: %w", address, err)
	}
	if d.response[1] == 0x01 {
		hdcctx.Logger(ctx).Debug("adapter busy")
		return hdc2080.ErrBusBusy
	}
	d.resetBuffers()
	d.request[0] = cmdGetI2CData
	err = d.send(ctx)
	if err != nil {
		return fmt.Errorf("error getting read data from adapter: %w", err)
	}
	if d.response[1] == 0x41 {
		return fmt.Errorf("error reading the I2C slave data from the I2C engine: %w", ErrCommandFailed)
	}
	if d.response[3] == 127 || int(d.response[3]) != len(buffer) {
		return fmt.Errorf("invalid data size byte; expected %d, got %d", len(buffer), d.response[3])
	}
	copy(buffer, d.response[4:])
	return nil
}

func (d *MCP2221) Status(ctx context.Context) (*MCP2221Status, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.resetBuffers()
	d.request[0] = cmdStatus
	err := d.send(ctx)
	if err != nil {
		return nil, fmt.Errorf("status request failed: %w", err)
	}
	return bufferToStatus(d.response), nil
}

func bufferToStatus(buffer []byte) *MCP2221Status {
	/*
		9: Lower byte (16-bit value) of the requested I2C transfer length
		10: Higher byte (16-bit value) of the requested I2C transfer length
		11:	Lower byte (16-bit value) of the already transferred (through I2C) number of bytes
		12:	Higher byte (16-bit value) of the already transferred (through I2C) number of bytes
		13:	Internal I2C data buffer counter
		14: Current I2C communication speed divider value
		15: Current I2C timeout value
		16:	Lower byte (16-bit value) of the I2C address being used
		17:	Higher byte (16-bit value) of the I2C address being used
		25: I2C read pending
	*/
	status := &MCP2221Status{
		I2CDataBufferCounter: int(buffer[13]),
		I2CSpeedDivider:      int(buffer[14]),
		I2CTimeout:           int(buffer[15]),
		ReadPending:          int(buffer[25]),
		CurrentAddress:       hex.EncodeToString(buffer[16:18]),
	}
	status.LastWriteRequestedSize = binary.LittleEndian.Uint16(buffer[9:11])
	status.LastWriteSentSize = binary.LittleEndian.Uint16(buffer[11:13])
	return status
}

// Release cancels any pending transfer so the next one starts on an idle bus.
func (d *MCP2221) Release(ctx context.Context) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	_, err := d.releaseBus(ctx)
	return err
}

func (d *MCP2221) ReleaseBus(ctx context.Context) (*MCP2221Status, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.releaseBus(ctx)
}

func (d *MCP2221) releaseBus(ctx context.Context) (*MCP2221Status, error) {
	d.resetBuffers()
	d.request[0] = cmdStatus
	d.request[2] = 0x10
	err := d.send(ctx)
	if err != nil {
		return nil, fmt.Errorf("release request failed: %w", err)
	}
	return bufferToStatus(d.response), nil
}

func (d *MCP2221) send(ctx context.Context) error {
	dev, err := d.open(d.index)
	if err != nil {
		return err
	}
	logger := hdcctx.Logger(ctx)
	defer func() {
		if err := dev.Close(); err != nil {
			logger.Debug("could not close adapter", "error", err)
		}
	}()
	verbose := hdcctx.IsVerbose(ctx)
	if verbose {
		logger.Debug("sending message to adapter", "dump", "\n"+hex.Dump(d.request))
	}
	n, err := dev.Write(d.request)
	if err != nil {
		return fmt.Errorf("could not write request: %w", err)
	}
	if n != reportSize {
		return fmt.Errorf("short write: %d", n)
	}
	err = wait(ctx, d.responseWait)
	if err != nil {
		return err
	}
	n, err = dev.Read(d.response)
	if err != nil {
		return fmt.Errorf("could not read response: %w", err)
	}
	if n != reportSize {
		return fmt.Errorf("short read: %d", n)
	}
	if verbose {
		logger.Debug("read message from adapter", "dump", "\n"+hex.Dump(d.response))
	}
	if d.response[0] != d.request[0] {
		return fmt.Errorf("response to %#x echoes command %#x: %w", d.request[0], d.response[0], ErrCommandFailed)
	}
	return nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (d *MCP2221) resetBuffers() {
	clear(d.request)
	clear(d.response)
}

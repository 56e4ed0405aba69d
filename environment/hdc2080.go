package environment

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"time"

	"github.com/mklimuk/hdc2080"
)

// HDC2080 registers
const (
	hdc2080RegTemperatureLow    = 0x00
	hdc2080RegHumidityLow       = 0x02
	hdc2080RegInterruptStatus   = 0x04
	hdc2080RegTemperatureMax    = 0x05
	hdc2080RegHumidityMax       = 0x06
	hdc2080RegInterruptEnable   = 0x07
	hdc2080RegTemperatureOffset = 0x08
	hdc2080RegHumidityOffset    = 0x09
	hdc2080RegTemperatureThrLow = 0x0A
	hdc2080RegTemperatureThrHi  = 0x0B
	hdc2080RegHumidityThrLow    = 0x0C
	hdc2080RegHumidityThrHi     = 0x0D
	hdc2080RegConfig            = 0x0E
	hdc2080RegMeasurement       = 0x0F
	hdc2080RegManufacturerID    = 0xFC
	hdc2080RegDeviceID          = 0xFE
)

const (
	hdc2080ManufacturerID uint16 = 0x5449
	hdc2080DeviceID       uint16 = 0x07D0
)

const (
	hdc2080ResetSettle         = 100 * time.Millisecond
	hdc2080DefaultPollAttempts = 500
	hdc2080DefaultPollInterval = 10 * time.Millisecond
)

// AddressPin is the logical level of the ADDR pin.
type AddressPin uint8

const (
	AddressPinGND AddressPin = 0
	AddressPinVCC AddressPin = 1
)

// Address returns the 7-bit bus address selected by the pin.
func (p AddressPin) Address() byte {
	if p == AddressPinVCC {
		return 0x41
	}
	return 0x40
}

func (p AddressPin) String() string {
	if p == AddressPinVCC {
		return "VCC"
	}
	return "GND"
}

// HDC2080 is a Texas Instruments HDC2080 humidity and temperature sensor.
// See: https://www.ti.com/lit/ds/symlink/hdc2080.pdf
//
// A handle has a single owner and must not be shared between goroutines.
// Every register operation requires a successful Init:
//
//	dev := NewHDC2080(bus, WithAddressPin(AddressPinGND))
//	if err := dev.Init(ctx); err != nil {
//		return err
//	}
//	defer dev.Deinit(ctx)
type HDC2080 struct {
	bus          hdc2080.RegisterBus
	delayer      hdc2080.Delayer
	logger       *slog.Logger
	pin          AddressPin
	initialized  bool
	pollAttempts int
	pollInterval time.Duration
}

type HDC2080Option func(*HDC2080)

func WithAddressPin(pin AddressPin) HDC2080Option {
	return func(h *HDC2080) {
		h.pin = pin
	}
}

func WithLogger(logger *slog.Logger) HDC2080Option {
	return func(h *HDC2080) {
		h.logger = logger
	}
}

func WithDelayer(delayer hdc2080.Delayer) HDC2080Option {
	return func(h *HDC2080) {
		h.delayer = delayer
	}
}

// WithPollAttempts bounds the number of status reads done by ReadPoll.
func WithPollAttempts(attempts int) HDC2080Option {
	return func(h *HDC2080) {
		h.pollAttempts = attempts
	}
}

func WithPollInterval(interval time.Duration) HDC2080Option {
	return func(h *HDC2080) {
		h.pollInterval = interval
	}
}

// NewHDC2080 creates an uninitialized handle bound to the given bus.
func NewHDC2080(bus hdc2080.RegisterBus, opts ...HDC2080Option) *HDC2080 {
	h := &HDC2080{
		bus:          bus,
		delayer:      hdc2080.SleepDelayer{},
		logger:       slog.Default(),
		pollAttempts: hdc2080DefaultPollAttempts,
		pollInterval: hdc2080DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SetAddressPin selects the bus address used by subsequent transfers.
func (h *HDC2080) SetAddressPin(pin AddressPin) error {
	if h == nil {
		return ErrInvalidHandle
	}
	h.pin = pin
	return nil
}

func (h *HDC2080) AddressPin() (AddressPin, error) {
	if h == nil {
		return 0, ErrInvalidHandle
	}
	return h.pin, nil
}

// Initialized reports whether Init has completed and Deinit has not been called since.
func (h *HDC2080) Initialized() bool {
	return h != nil && h.initialized
}

// Init opens the bus, verifies the chip identity and performs a soft reset.
// The bus is closed again when the identity check or the reset fails.
func (h *HDC2080) Init(ctx context.Context) error {
	if h == nil {
		return ErrInvalidHandle
	}
	if h.logger == nil {
		return fmt.Errorf("%w: logger is nil", ErrMissingDependency)
	}
	if h.bus == nil {
		h.logger.Error("hdc2080: bus is nil")
		return fmt.Errorf("%w: bus is nil", ErrMissingDependency)
	}
	if h.delayer == nil {
		h.logger.Error("hdc2080: delayer is nil")
		return fmt.Errorf("%w: delayer is nil", ErrMissingDependency)
	}
	err := h.bus.Open(ctx)
	if err != nil {
		h.logger.Error("hdc2080: bus open failed", "error", err)
		return fmt.Errorf("%w: open: %w", ErrTransport, err)
	}
	err = h.checkID(ctx, hdc2080RegManufacturerID, hdc2080ManufacturerID, "manufacturer")
	if err != nil {
		return h.closeOnFailure(ctx, err)
	}
	err = h.checkID(ctx, hdc2080RegDeviceID, hdc2080DeviceID, "device")
	if err != nil {
		return h.closeOnFailure(ctx, err)
	}
	err = h.updateRegister(ctx, hdc2080RegConfig, configResetMask, configResetMask)
	if err != nil {
		h.logger.Error("hdc2080: soft reset failed", "error", err)
		return h.closeOnFailure(ctx, fmt.Errorf("%w: %w", ErrResetFailed, err))
	}
	h.delayer.Delay(ctx, hdc2080ResetSettle)
	h.initialized = true
	h.logger.Debug("hdc2080: initialized", "address", fmt.Sprintf("%#02x", h.pin.Address()))
	return nil
}

func (h *HDC2080) checkID(ctx context.Context, reg byte, expected uint16, name string) error {
	buf := make([]byte, 2)
	err := h.readRegister(ctx, reg, buf)
	if err != nil {
		h.logger.Error("hdc2080: read id failed", "id", name, "error", err)
		return fmt.Errorf("%w: %s id: %w", errIdentityRead, name, err)
	}
	id := binary.LittleEndian.Uint16(buf)
	if id != expected {
		h.logger.Error("hdc2080: id is invalid", "id", name, "expected", fmt.Sprintf("%#04x", expected), "got", fmt.Sprintf("%#04x", id))
		return fmt.Errorf("%w: %s id %#04x, expected %#04x", ErrIdentityMismatch, name, id, expected)
	}
	return nil
}

func (h *HDC2080) closeOnFailure(ctx context.Context, err error) error {
	closeErr := h.bus.Close(ctx)
	if closeErr != nil {
		h.logger.Debug("hdc2080: bus close after failure", "error", closeErr)
	}
	return err
}

// Deinit disables automatic measurement and closes the bus. Only the rate
// field of the config register is cleared. On failure the handle stays
// initialized.
func (h *HDC2080) Deinit(ctx context.Context) error {
	if err := h.check(); err != nil {
		return err
	}
	err := h.updateRegister(ctx, hdc2080RegConfig, configRateMask, 0)
	if err != nil {
		h.logger.Error("hdc2080: disable auto measurement failed", "error", err)
		return err
	}
	err = h.bus.Close(ctx)
	if err != nil {
		h.logger.Error("hdc2080: bus close failed", "error", err)
		return fmt.Errorf("%w: close: %w", ErrTransport, err)
	}
	h.initialized = false
	return nil
}

// SoftReset sets the self-clearing reset bit of the config register.
func (h *HDC2080) SoftReset(ctx context.Context) error {
	if err := h.check(); err != nil {
		return err
	}
	return h.updateRegister(ctx, hdc2080RegConfig, configResetMask, configResetMask)
}

// GetRegister reads len(buf) bytes starting at reg.
func (h *HDC2080) GetRegister(ctx context.Context, reg byte, buf []byte) error {
	if err := h.check(); err != nil {
		return err
	}
	return h.readRegister(ctx, reg, buf)
}

// SetRegister writes buf starting at reg.
func (h *HDC2080) SetRegister(ctx context.Context, reg byte, buf []byte) error {
	if err := h.check(); err != nil {
		return err
	}
	return h.writeRegister(ctx, reg, buf)
}

func (h *HDC2080) check() error {
	if h == nil {
		return ErrInvalidHandle
	}
	if !h.initialized {
		return ErrNotInitialized
	}
	return nil
}

func (h *HDC2080) readRegister(ctx context.Context, reg byte, buf []byte) error {
	err := h.bus.ReadRegister(ctx, h.pin.Address(), reg, buf)
	if err != nil {
		return transportErr("read", reg, err)
	}
	return nil
}

func (h *HDC2080) writeRegister(ctx context.Context, reg byte, buf []byte) error {
	err := h.bus.WriteRegister(ctx, h.pin.Address(), reg, buf)
	if err != nil {
		return transportErr("write", reg, err)
	}
	return nil
}

func (h *HDC2080) readByte(ctx context.Context, reg byte) (byte, error) {
	buf := make([]byte, 1)
	err := h.readRegister(ctx, reg, buf)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (h *HDC2080) writeByte(ctx context.Context, reg, value byte) error {
	return h.writeRegister(ctx, reg, []byte{value})
}

// updateRegister re-reads reg and replaces the bits selected by mask with value.
// The register is always read first since the chip clears some bits on its own.
func (h *HDC2080) updateRegister(ctx context.Context, reg, mask, value byte) error {
	prev, err := h.readByte(ctx, reg)
	if err != nil {
		return err
	}
	return h.writeByte(ctx, reg, prev&^mask|value&mask)
}

func (h *HDC2080) field(ctx context.Context, reg, mask, shift byte) (byte, error) {
	if err := h.check(); err != nil {
		return 0, err
	}
	value, err := h.readByte(ctx, reg)
	if err != nil {
		return 0, err
	}
	return (value & mask) >> shift, nil
}

func (h *HDC2080) setField(ctx context.Context, reg, mask, shift, value byte) error {
	if err := h.check(); err != nil {
		return err
	}
	return h.updateRegister(ctx, reg, mask, value<<shift)
}

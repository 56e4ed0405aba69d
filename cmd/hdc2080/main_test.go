package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/mklimuk/hdc2080"
	"github.com/mklimuk/hdc2080/cmd/hdc2080/console"
	"github.com/mklimuk/hdc2080/config"
	"github.com/mklimuk/hdc2080/environment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chip struct {
	regs    [256]byte
	address byte
	closed  int
}

func newChip() *chip {
	c := &chip{}
	c.regs[0xFC], c.regs[0xFD] = 0x49, 0x54
	c.regs[0xFE], c.regs[0xFF] = 0xD0, 0x07
	copy(c.regs[0x00:], []byte{0x66, 0x66, 0x00, 0x80})
	return c
}

func (c *chip) Open(ctx context.Context) error { return nil }

func (c *chip) Close(ctx context.Context) error {
	c.closed++
	return nil
}

func (c *chip) ReadRegister(ctx context.Context, address, reg byte, buf []byte) error {
	c.address = address
	copy(buf, c.regs[reg:])
	if reg == 0x0F {
		c.regs[0x0F] &^= 0x01
	}
	return nil
}

func (c *chip) WriteRegister(ctx context.Context, address, reg byte, buf []byte) error {
	c.address = address
	copy(c.regs[reg:], buf)
	return nil
}

func runWith(t *testing.T, c *chip, args ...string) (int, string, string) {
	t.Helper()
	prev := newBus
	newBus = func(cfg config.Config) (hdc2080.RegisterBus, error) { return c, nil }
	defer func() { newBus = prev }()
	color.NoColor = true
	var out, errOut bytes.Buffer
	console.SetOutput(&out, &errOut)
	defer console.SetOutput(os.Stdout, os.Stderr)
	code := run(append([]string{"hdc2080"}, args...))
	return code, out.String(), errOut.String()
}

func TestRead(t *testing.T) {
	c := newChip()
	code, out, _ := runWith(t, c, "read", "--times", "2", "--interval", "0")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "2/2")
	assert.Contains(t, out, "temperature is 25.50C")
	assert.Contains(t, out, "humidity is 50.00%")
	assert.Equal(t, byte(0x40), c.address)
	assert.Equal(t, 1, c.closed)
	assert.Equal(t, byte(0x00), c.regs[0x0E]&0x70)
}

func TestShot(t *testing.T) {
	c := newChip()
	c.regs[0x05] = 0x80
	code, out, _ := runWith(t, c, "shot", "--times", "1", "--interval", "0", "--addr", "1")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "temperature is 25.50C")
	assert.Contains(t, out, "peak temperature 42.00C")
	assert.Equal(t, byte(0x41), c.address)
}

func TestInterrupt(t *testing.T) {
	c := newChip()
	code, out, _ := runWith(t, c, "interrupt", "--times", "1", "--interval", "0",
		"--temperature-high", "20", "--humidity-low", "60")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "temperature is over high threshold and check the interrupt pin")
	assert.Contains(t, out, "humidity is less than low threshold and check the interrupt pin")
	assert.NotContains(t, out, "humidity is over high threshold")
	assert.Equal(t, environment.TemperatureToRegister(20), c.regs[0x0B])
}

func TestRead_IdentityMismatch(t *testing.T) {
	c := newChip()
	c.regs[0xFE] = 0x00
	code, _, errOut := runWith(t, c, "read", "--times", "1", "--interval", "0")
	assert.Equal(t, environment.CodeIdentity, code)
	assert.Contains(t, errOut, "init failed")
	assert.Equal(t, 1, c.closed)
}

func TestRead_InvalidConfig(t *testing.T) {
	code, _, errOut := runWith(t, newChip(), "read", "--adapter", "spi")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "configuration error")
}

func TestRead_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hdc2080.yaml")
	require.NoError(t, os.WriteFile(path, []byte("address_pin: 1\ntimes: 1\ninterval: 0s\nheater: true\n"), 0o600))
	c := newChip()
	code, _, _ := runWith(t, c, "--config", path, "read")
	require.Equal(t, 0, code)
	assert.Equal(t, byte(0x41), c.address)
	assert.Equal(t, byte(0x08), c.regs[0x0E]&0x08)
}

func TestRegister(t *testing.T) {
	c := newChip()
	code, out, _ := runWith(t, c, "register", "get", "--len", "2", "0xfc")
	require.Equal(t, 0, code)
	assert.Equal(t, "0xfc: 0x49\n0xfd: 0x54\n", out)

	code, _, _ = runWith(t, c, "register", "set", "--yes", "0x0b", "0xc0")
	require.Equal(t, 0, code)
	assert.Equal(t, byte(0xC0), c.regs[0x0B])

	code, out, _ = runWith(t, c, "register", "dump")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "TEMP_THR_H")
	assert.Contains(t, out, "0xc0")
	assert.Equal(t, 3, c.closed)

	code, _, _ = runWith(t, c, "register", "get", "zz")
	assert.Equal(t, 1, code)
}

func TestInfo(t *testing.T) {
	code, out, _ := runWith(t, newChip(), "info")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "chip_name: Texas Instruments HDC2080")
	assert.Contains(t, out, "driver_version: 1000")
}

func TestPins(t *testing.T) {
	code, out, _ := runWith(t, newChip(), "pins", "--addr", "1")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "0x41")
}

func TestMetricsHandler(t *testing.T) {
	h := metricsHandler(environment.StaticTempHumSensor(22, 41), config.Default())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `hdc2080_temperature_celsius{address="0x40"} 22`)
}

func TestParseByte(t *testing.T) {
	tests := []struct {
		given    string
		expected byte
		err      bool
	}{
		{"14", 14, false},
		{"0x0e", 0x0E, false},
		{"0b101", 5, false},
		{"256", 0, true},
		{"", 0, true},
	}
	for _, test := range tests {
		t.Run(test.given, func(t *testing.T) {
			got, err := parseByte(test.given)
			if test.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expected, got)
		})
	}
}

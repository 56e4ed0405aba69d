package console

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestPrompt(t *testing.T) {
	assert.Equal(t, "write? [N/y]:", promptText("write?", yesNoConstraints))
	assert.Equal(t, "value:", promptText("value:", nil))

	tests := []struct {
		given    string
		expected string
	}{
		{"", No},
		{"y", Yes},
		{" Y ", Yes},
		{"n", No},
		{"maybe", No},
	}
	for _, test := range tests {
		t.Run(test.given, func(t *testing.T) {
			assert.Equal(t, test.expected, pick(test.given, yesNoConstraints))
		})
	}
}

func TestOutput(t *testing.T) {
	color.NoColor = true
	prevOut, prevErr := writer, errWriter
	defer SetOutput(prevOut, prevErr)
	var out, errOut bytes.Buffer
	SetOutput(&out, &errOut)

	PInfof(PictoThermometer, "temperature is %.2fC", 21.5)
	Errorf("read failed: %s", "timeout")
	Debugf("hidden")
	Trace = true
	Debugf("shown")
	Trace = false

	assert.Equal(t, "🌡 temperature is 21.50C\n[DEBUG] shown\n", out.String())
	assert.Equal(t, "ERROR: read failed: timeout\n", errOut.String())
	assert.Equal(t, "0x0e", Hex(0x0e))
}

package hdcctx

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerbose(t *testing.T) {
	ctx := context.Background()
	assert.False(t, IsVerbose(ctx))
	assert.True(t, IsVerbose(SetVerbose(ctx, true)))
	assert.False(t, IsVerbose(SetVerbose(SetVerbose(ctx, true), false)))
}

func TestLogger(t *testing.T) {
	ctx := context.Background()
	assert.Same(t, slog.Default(), Logger(ctx))

	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, nil))
	Logger(WithLogger(ctx, l)).Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}

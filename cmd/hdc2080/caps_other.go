//go:build !linux

package main

import "log/slog"

func logCapabilities(logger *slog.Logger) {}

package main

import (
	"log/slog"

	"kernel.org/pub/linux/libs/security/libcap/cap"
)

// logCapabilities helps diagnosing permission problems on /dev/i2c-N and hidraw nodes.
func logCapabilities(logger *slog.Logger) {
	logger.Debug("process capabilities", "caps", cap.GetProc().String())
}

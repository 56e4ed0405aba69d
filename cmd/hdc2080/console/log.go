package console

import (
	"fmt"
	"io"

	"github.com/mattn/go-colorable"
)

const PictoThermometer = "🌡"
const PictoHumidity = "💧"
const PictoPin = "📌"
const PictoStop = "🚫"
const PictoNotebook = "📒"
const PictoFinish = "🏁"

var writer io.Writer = colorable.NewColorableStdout()
var errWriter io.Writer = colorable.NewColorableStderr()

var Trace bool

func SetOutput(w, errw io.Writer) {
	writer = w
	errWriter = errw
}

func Output() io.Writer {
	return writer
}

func fmtHex(v byte) string {
	return fmt.Sprintf("0x%02x", v)
}

func Errorf(msg string, args ...interface{}) {
	_, _ = fmt.Fprintf(errWriter, "%s: %s\n", Red("ERROR"), fmt.Sprintf(msg, args...))
}

func Warnf(msg string, args ...interface{}) {
	_, _ = fmt.Fprintf(errWriter, "%s: %s\n", Yellow("WARN"), fmt.Sprintf(msg, args...))
}

func Infof(msg string, args ...interface{}) {
	_, _ = fmt.Fprintf(writer, "%s %s\n", White("..."), fmt.Sprintf(msg, args...))
}

func Debugf(msg string, args ...interface{}) {
	if Trace {
		_, _ = fmt.Fprintf(writer, "%s %s\n", White("[DEBUG]"), fmt.Sprintf(msg, args...))
	}
}

// PInfof prefixes the line with a pictogram.
func PInfof(picto, msg string, args ...interface{}) {
	_, _ = fmt.Fprintf(writer, "%s %s\n", picto, fmt.Sprintf(msg, args...))
}

func Printf(msg string, args ...interface{}) {
	_, _ = fmt.Fprintf(writer, msg, args...)
}

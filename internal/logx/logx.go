package logx

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns a zerolog logger writing human-readable lines to stderr,
// leaving stdout to the tool's own output.
func NewLogger() zerolog.Logger {
	return New(os.Stderr)
}

func New(out io.Writer) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		short := file
		for i := len(file) - 1; i > 0; i-- {
			if file[i] == '/' {
				short = file[i+1:]
				break
			}
		}
		return fmt.Sprintf("%-16s", fmt.Sprintf("%s:%d", short, line))
	}
	return zerolog.New(output).With().Timestamp().Caller().Logger()
}

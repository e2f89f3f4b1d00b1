package logx_test

import (
	"bytes"
	"strings"
	"testing"

	"koma/internal/logx"
)

func TestNewWritesConsoleLines(t *testing.T) {
	var out bytes.Buffer
	logger := logx.New(&out)
	logger.Info().Str("token", "+p").Msg("parsed")

	got := out.String()
	for _, want := range []string{"INF", "parsed", "token=+p", "logx_test.go:"} {
		if !strings.Contains(got, want) {
			t.Fatalf("unexpected log line: %q does not contain %q", got, want)
		}
	}
}

package infra

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "production")
	logger.Debug().Msg("hidden")
	logger.Info().Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line logged in production: %s", out)
	}
	if !strings.Contains(out, `"service":"captioner"`) || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected output: %s", out)
	}

	buf.Reset()
	dev := NewLoggerTo(&buf, "development")
	dev.Debug().Msg("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("debug line missing in development: %s", buf.String())
	}
}

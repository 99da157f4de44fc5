package internal

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLogLevel("debug"))
	assert.Equal(t, LogLevelError, ParseLogLevel(" ERROR "))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("chatty"))
	assert.Equal(t, "TRACE", LogLevelTrace.String())
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	l := NewLogger(LogLevelWarn)
	l.Info("hidden %d", 1)
	l.Warn("shown %d", 2)

	out := buf.String()
	assert.False(t, strings.Contains(out, "hidden"))
	assert.Contains(t, out, "[WARN] shown 2")
}

package internal

import (
	"bytes"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	flags := log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
	})
	return &buf
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LogLevelError, ParseLevel("error"))
	assert.Equal(t, LogLevelWarn, ParseLevel("WARN"))
	assert.Equal(t, LogLevelDebug, ParseLevel(" debug "))
	assert.Equal(t, LogLevelTrace, ParseLevel("trace"))
	assert.Equal(t, LogLevelInfo, ParseLevel(""))
	assert.Equal(t, LogLevelInfo, ParseLevel("verbose"))
}

func TestLogger_LevelsAndPrefix(t *testing.T) {
	buf := captureLog(t)
	l := NewLogger(LogLevelInfo).With("service")

	l.Debug("hidden")
	l.Info("cached %d bytes", 42)
	l.Error("failed")

	assert.Equal(t, "[INFO] [service] cached 42 bytes\n[ERROR] [service] failed\n", buf.String())
	assert.Equal(t, LogLevelInfo, l.GetLevel())
}

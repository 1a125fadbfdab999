package services

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProductionLogger_WritesStructuredFields(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer
	logger := NewProductionLoggerWithLevel("darkbin", LogLevelInfo, &buf, true)

	logger.Info("user connected", "username", "alice", "room", "global")

	var entry map[string]interface{}
	req.NoError(json.Unmarshal(buf.Bytes(), &entry))
	req.Equal("user connected", entry["msg"])
	req.Equal("darkbin", entry["service"])
	req.Equal("alice", entry["username"])
	req.Equal("global", entry["room"])
}

func TestProductionLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewProductionLoggerWithLevel("darkbin", LogLevelWarn, &buf, true)

	logger.Info("hidden")
	logger.Debug("hidden")
	require.Empty(t, buf.String())

	logger.SetLevel(LogLevelDebug)
	logger.Debug("shown")
	require.Contains(t, buf.String(), "shown")
}

func TestParseLogLevel(t *testing.T) {
	require.Equal(t, LogLevelDebug, ParseLogLevel("debug"))
	require.Equal(t, LogLevelError, ParseLogLevel(" ERROR "))
	require.Equal(t, LogLevelInfo, ParseLogLevel(""))
	require.Equal(t, LogLevelInfo, ParseLogLevel("verbose"))
}

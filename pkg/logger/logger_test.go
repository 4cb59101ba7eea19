package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger()
	assert.NotNil(t, logger)
	assert.IsType(t, &zerologLogger{}, logger)
}

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, "debug")

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 4)
	assert.Equal(t, "debug", entries[0]["level"])
	assert.Equal(t, "debug message", entries[0]["message"])
	assert.Equal(t, "info", entries[1]["level"])
	assert.Equal(t, "warn", entries[2]["level"])
	assert.Equal(t, "error", entries[3]["level"])
	assert.Contains(t, entries[0], "time")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, "warn")

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "shown", entries[0]["message"])
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input    string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseLevel(tc.input))
		})
	}
}

func TestWithField(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, "info")

	logger.WithField("document_id", "doc1").Info("saved")
	logger.Info("plain")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "doc1", entries[0]["document_id"])
	assert.NotContains(t, entries[1], "document_id")
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, "info")

	child := logger.WithFields(map[string]interface{}{
		"document_id": "doc1",
		"version":     3,
	})
	child.Info("saved")
	logger.Info("parent")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "doc1", entries[0]["document_id"])
	assert.Equal(t, float64(3), entries[0]["version"])
	assert.NotContains(t, entries[1], "document_id")
}

// captureTB records the lines written to the test log
type captureTB struct {
	testing.TB
	lines []string
}

func (c *captureTB) Helper() {}

func (c *captureTB) Logf(format string, args ...interface{}) {
	c.lines = append(c.lines, fmt.Sprintf(format, args...))
}

func TestTestLogger(t *testing.T) {
	tb := &captureTB{TB: t}
	logger := NewTestLogger(tb)

	logger.Debug("debug")
	withDoc := logger.WithField("document_id", "doc1")
	withDoc.WithFields(map[string]interface{}{"operation": "AddBlock", "attempt": 2}).Warn("retrying")
	withDoc.Error("failed")
	logger.Fatal("fatal")

	assert.Equal(t, []string{
		"[DEBUG] debug",
		"[WARN] retrying attempt=2 document_id=doc1 operation=AddBlock",
		"[ERROR] failed document_id=doc1",
		"[FATAL] fatal",
	}, tb.lines)

	assert.NotPanics(t, func() {
		(&TestLogger{}).WithField("k", "v").Info("no t")
	})
}

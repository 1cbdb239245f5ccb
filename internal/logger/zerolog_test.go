package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var rec map[string]interface{}
		require.NoError(t, json.Unmarshal(line, &rec))
		out = append(out, rec)
	}
	return out
}

func TestZerologAdapterWritesComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerolog(&buf, zerolog.DebugLevel)

	l.Info("Shell", "window created", map[string]interface{}{"label": "main"})
	l.Error("Shell", errors.New("boom"), nil)

	recs := decodeLines(t, &buf)
	require.Len(t, recs, 2)

	assert.Equal(t, "info", recs[0]["level"])
	assert.Equal(t, "Shell", recs[0]["component"])
	assert.Equal(t, "window created", recs[0]["message"])
	assert.Equal(t, "main", recs[0]["label"])

	assert.Equal(t, "error", recs[1]["level"])
	assert.Equal(t, "boom", recs[1]["error"])
}

func TestZerologAdapterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerolog(&buf, zerolog.WarnLevel)

	l.Debug("c", "dropped", nil)
	l.Info("c", "dropped", nil)
	l.Warning("c", "kept", nil)

	recs := decodeLines(t, &buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "kept", recs[0]["message"])
}

func TestNoOpLoggerSatisfiesInterface(t *testing.T) {
	var l Logger = NoOpLogger{}
	l.Info("c", "m", nil)
	l.Error("c", errors.New("x"), nil)
}

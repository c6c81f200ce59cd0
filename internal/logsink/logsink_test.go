package logsink

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/harshul/devrun/internal/ui"
)

func decode(t *testing.T, data []byte) []map[string]any {
	t.Helper()
	var records []map[string]any
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		records = append(records, rec)
	}
	return records
}

func TestSinkWritesJSONRecords(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf)

	_, err := uuid.Parse(s.RunID)
	require.NoError(t, err)

	s.Emit(ui.LogLine{Tag: ui.TagBackend, Text: "Application startup complete."})
	s.Emit(ui.LogLine{Tag: ui.TagSetup, Level: ui.LevelWarn, Text: "pip upgrade failed (exit code 1), continuing"})
	s.Logger().Debug("stage transition", zap.String("to", "ready"))
	require.NoError(t, s.Close())

	records := decode(t, buf.Bytes())
	require.Len(t, records, 3)

	assert.Equal(t, "info", records[0]["level"])
	assert.Equal(t, "BACKEND", records[0]["tag"])
	assert.Equal(t, "Application startup complete.", records[0]["text"])
	assert.Equal(t, "warn", records[1]["level"])
	assert.Equal(t, "debug", records[2]["level"])
	for _, rec := range records {
		assert.Equal(t, s.RunID, rec["run_id"])
	}
}

func TestOpenAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devrun.log")

	for i := 0; i < 2; i++ {
		s, err := Open(path)
		require.NoError(t, err)
		s.Emit(ui.LogLine{Tag: ui.TagFrontend, Text: "ready"})
		require.NoError(t, s.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	records := decode(t, data)
	require.Len(t, records, 2)
	assert.NotEqual(t, records[0]["run_id"], records[1]["run_id"])
}

func TestOpenFailsOnMissingDir(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "devrun.log"))
	assert.Error(t, err)
}

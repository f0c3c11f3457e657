package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/entrystack/internal/model"
)

func testHistory() []model.HistoryRecord {
	finished := time.Now().Add(-time.Hour)
	return []model.HistoryRecord{
		{
			EntryID:     "01A",
			Name:        "upload",
			Summary:     "Upload complete",
			Level:       "normal",
			Priority:    500,
			Status:      "dismissed",
			Reason:      "expired",
			DisplayedAt: finished.Add(-2 * time.Second),
			FinishedAt:  finished,
		},
		{
			EntryID:    "01B",
			Summary:    "Backup done",
			Level:      "alert",
			Priority:   250,
			Status:     "dropped",
			Reason:     "queue-cleared",
			FinishedAt: finished,
		},
	}
}

func TestWriteHistory_Plain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHistory(&buf, FormatPlain, testHistory(), DefaultFormatterOptions()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "dismissed/expired")
	assert.Contains(t, lines[0], "2s")
	assert.Contains(t, lines[0], "upload: Upload complete")
	assert.Contains(t, lines[0], "ago")
	assert.Contains(t, lines[1], "dropped/queue-cleared")
	assert.Contains(t, lines[1], " - ")
	assert.Contains(t, lines[1], "Backup done")
}

func TestWriteHistory_PlainNoTime(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultFormatterOptions()
	opts.ShowTime = false
	require.NoError(t, WriteHistory(&buf, FormatPlain, testHistory(), opts))
	assert.NotContains(t, buf.String(), "ago")
}

func TestWriteHistory_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHistory(&buf, FormatJSON, testHistory(), DefaultFormatterOptions()))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "01A", decoded[0]["entry_id"])
	assert.Contains(t, decoded[0], "displayed_at")
	assert.NotContains(t, decoded[1], "displayed_at")
}

func TestWriteHistory_JSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHistory(&buf, FormatJSON, nil, DefaultFormatterOptions()))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteHistory_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHistory(&buf, FormatYAML, testHistory(), DefaultFormatterOptions()))

	var decoded []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "dropped", decoded[1]["status"])
}

func TestWriteHistory_UnknownFormat(t *testing.T) {
	err := WriteHistory(&bytes.Buffer{}, FormatWaybar, testHistory(), DefaultFormatterOptions())
	assert.Error(t, err)
}

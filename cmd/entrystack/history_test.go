package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/entrystack/internal/model"
)

func setHistoryOpts(t *testing.T, set func()) {
	t.Helper()
	saved := historyOpts
	t.Cleanup(func() { historyOpts = saved })
	historyOpts.sortBy = "finished"
	historyOpts.sortOrder = "desc"
	set()
}

func historyFixture() []model.HistoryRecord {
	now := time.Now()
	return []model.HistoryRecord{
		{EntryID: "a", Name: "old", Level: "normal", Priority: 500, Status: "dismissed", FinishedAt: now.Add(-48 * time.Hour)},
		{EntryID: "b", Name: "alert", Level: "alert", Priority: 900, Status: "dismissed", FinishedAt: now.Add(-time.Hour)},
		{EntryID: "c", Name: "queued", Level: "normal", Priority: 250, Status: "dropped", FinishedAt: now.Add(-time.Minute)},
	}
}

func entryIDs(records []model.HistoryRecord) []string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.EntryID
	}
	return ids
}

func TestSelectHistory(t *testing.T) {
	tests := []struct {
		name string
		set  func()
		want []string
	}{
		{
			name: "newest first by default",
			set:  func() {},
			want: []string{"c", "b", "a"},
		},
		{
			name: "since",
			set:  func() { historyOpts.since = "1d" },
			want: []string{"c", "b"},
		},
		{
			name: "level",
			set:  func() { historyOpts.level = "alert" },
			want: []string{"b"},
		},
		{
			name: "filter expression",
			set:  func() { historyOpts.filter = "status=dismissed" },
			want: []string{"b", "a"},
		},
		{
			name: "sort by priority ascending",
			set: func() {
				historyOpts.sortBy = "priority"
				historyOpts.sortOrder = "asc"
			},
			want: []string{"c", "a", "b"},
		},
		{
			name: "limit",
			set:  func() { historyOpts.limit = 1 },
			want: []string{"c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setHistoryOpts(t, tt.set)
			got, err := selectHistory(historyFixture())
			require.NoError(t, err)
			assert.Equal(t, tt.want, entryIDs(got))
		})
	}
}

func TestSelectHistory_Invalid(t *testing.T) {
	for name, set := range map[string]func(){
		"level":  func() { historyOpts.level = "overhead" },
		"since":  func() { historyOpts.since = "soon" },
		"filter": func() { historyOpts.filter = "colour=red" },
	} {
		t.Run(name, func(t *testing.T) {
			setHistoryOpts(t, set)
			_, err := selectHistory(historyFixture())
			assert.Error(t, err)
		})
	}
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "y", plural(1))
	assert.Equal(t, "ies", plural(0))
	assert.Equal(t, "ies", plural(3))
}

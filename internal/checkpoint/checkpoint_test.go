package checkpoint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRec struct {
	ID    string `json:"id"`
	Score int    `json:"score"`
}

func TestAppendAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stage.checkpoint.jsonl")
	log := NewLog[testRec](path)

	require.NoError(t, log.Append(Entry[testRec]{SourceID: "conv-1", Records: []testRec{{ID: "conv-1:0", Score: 3}}}))
	require.NoError(t, log.Append(Entry[testRec]{SourceID: "conv-2", Records: nil}))
	require.NoError(t, log.Close())

	entries, err := log.Load()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "conv-1", entries[0].SourceID)
	assert.Equal(t, []testRec{{ID: "conv-1:0", Score: 3}}, entries[0].Records)

	// A source that produced no outputs still counts as done.
	assert.Equal(t, "conv-2", entries[1].SourceID)
	assert.Empty(t, entries[1].Records)

	done := DoneIDs(entries)
	assert.True(t, done["conv-1"])
	assert.True(t, done["conv-2"])
	assert.False(t, done["conv-3"])
}

func TestLoadMissingFile(t *testing.T) {
	log := NewLog[testRec](filepath.Join(t.TempDir(), "missing.jsonl"))

	entries, err := log.Load()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoadSkipsTornTrailingLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stage.checkpoint.jsonl")
	log := NewLog[testRec](path)
	require.NoError(t, log.Append(Entry[testRec]{SourceID: "conv-1"}))
	require.NoError(t, log.Close())

	// Simulate a crash mid-append: a partial JSON line at the end.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"source_id":"conv-2","rec`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	entries, err := log.Load()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "conv-1", entries[0].SourceID)
}

func TestDiscard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stage.checkpoint.jsonl")
	log := NewLog[testRec](path)
	require.NoError(t, log.Append(Entry[testRec]{SourceID: "conv-1"}))

	require.NoError(t, log.Discard())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Discarding a log that never wrote anything is fine too.
	require.NoError(t, NewLog[testRec](path).Discard())
}

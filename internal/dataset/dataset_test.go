package dataset

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSONL = `{"conversation_id":"conv-1","model":"gpt-4","conversation":[[{"role":"user","content":"hi"},{"role":"assistant","content":"hello"}]]}
{"conversation_id":"conv-2","model":"claude","conversation":[]}
`

func TestLoadSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(sampleJSONL), 0644))

	convs, err := Load(path)
	require.NoError(t, err)
	require.Len(t, convs, 2)

	assert.Equal(t, "conv-1", convs[0].ConversationID)
	assert.Equal(t, "gpt-4", convs[0].Model)
	require.Len(t, convs[0].Turns, 1)
	require.Len(t, convs[0].Turns[0], 2)
	assert.Equal(t, "user", convs[0].Turns[0][0].Role)
	assert.Empty(t, convs[1].Turns)
}

func TestLoadSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("\n"+sampleJSONL+"\n"), 0644))

	convs, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, convs, 2)
}

func TestLoadReportsLineNumber(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(sampleJSONL+"not json\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}

func TestFetchDownloadsPinnedRevision(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(sampleJSONL))
	}))
	defer srv.Close()

	src := &Source{
		Name:     "Suzhen/CodeChat-V2.0",
		Revision: "09dacf311596f8214075878600dcb60e5bcd7eb4",
		File:     "train.jsonl",
		BaseURL:  srv.URL,
		Client:   srv.Client(),
	}

	dataDir := t.TempDir()
	path, err := src.Fetch(context.Background(), dataDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "train.jsonl"), path)
	assert.Equal(t, "/datasets/Suzhen/CodeChat-V2.0/resolve/09dacf311596f8214075878600dcb60e5bcd7eb4/train.jsonl", gotPath)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sampleJSONL, string(data))
}

func TestFetchReusesExistingSnapshot(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(sampleJSONL))
	}))
	defer srv.Close()

	src := &Source{Name: "x/y", Revision: "rev", File: "train.jsonl", BaseURL: srv.URL, Client: srv.Client()}
	dataDir := t.TempDir()

	_, err := src.Fetch(context.Background(), dataDir)
	require.NoError(t, err)
	_, err = src.Fetch(context.Background(), dataDir)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "an existing snapshot is never re-downloaded")
}

func TestFetchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	src := &Source{Name: "x/y", Revision: "rev", File: "train.jsonl", BaseURL: srv.URL, Client: srv.Client()}
	dataDir := t.TempDir()

	_, err := src.Fetch(context.Background(), dataDir)
	require.Error(t, err)

	// A failed download leaves nothing behind.
	entries, rerr := os.ReadDir(dataDir)
	require.NoError(t, rerr)
	assert.Empty(t, entries)
}

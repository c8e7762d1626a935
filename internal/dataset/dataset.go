// Package dataset obtains and loads the raw conversation dataset.
//
// The dataset identity is a name plus an immutable revision pin; the snapshot
// is downloaded once into the data directory and loaded as line-delimited
// JSON, one conversation per line.
package dataset

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/codechat/curator/internal/record"
)

// SnapshotSchema describes the raw dataset's row shape for display. The
// conversation column nests turns of role/content/language/timestamp messages
// and never flows into a columnar artifact.
var SnapshotSchema = []record.Field{
	{Name: "conversation_id", Type: record.TypeString},
	{Name: "model", Type: record.TypeString},
	{Name: "conversation", Type: "list<list<message>>"},
}

// Source identifies one pinned dataset snapshot.
type Source struct {
	Name     string
	Revision string
	File     string
	BaseURL  string

	// Client overrides the HTTP client, for tests.
	Client *http.Client
}

// LocalPath is where the snapshot lives inside the data directory.
func (s *Source) LocalPath(dataDir string) string {
	return filepath.Join(dataDir, s.File)
}

// Fetch ensures the snapshot exists locally, downloading the pinned revision
// when missing, and returns its path. The download goes to a temporary file
// first so an interrupted transfer never leaves a truncated snapshot behind.
func (s *Source) Fetch(ctx context.Context, dataDir string) (string, error) {
	path := s.LocalPath(dataDir)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	u, err := url.JoinPath(s.BaseURL, "datasets", s.Name, "resolve", s.Revision, s.File)
	if err != nil {
		return "", fmt.Errorf("dataset: building snapshot URL: %w", err)
	}

	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Minute}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("dataset: building request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("dataset: downloading %s: %w", u, err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("dataset: downloading %s: unexpected status %s", u, resp.Status)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("dataset: creating %s: %w", dataDir, err)
	}
	tmp, err := os.CreateTemp(dataDir, "."+s.File+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("dataset: creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close() //nolint:errcheck
		return "", fmt.Errorf("dataset: writing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("dataset: closing snapshot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("dataset: publishing snapshot: %w", err)
	}
	return path, nil
}

// Load reads a JSONL snapshot into conversation records, preserving file
// order.
func Load(path string) ([]record.Conversation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: opening %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	var convs []record.Conversation
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var c record.Conversation
		if err := json.Unmarshal(line, &c); err != nil {
			return nil, fmt.Errorf("dataset: %s line %d: %w", path, lineNum, err)
		}
		convs = append(convs, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("dataset: reading %s: %w", path, err)
	}
	return convs, nil
}

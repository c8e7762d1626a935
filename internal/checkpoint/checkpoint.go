// Package checkpoint implements the append-only progress log for one
// in-progress stage run.
//
// Each entry records that a single input record has been fully evaluated,
// together with the output records it produced (zero or more for the filter
// stage, exactly one for scoring stages). Entries are flushed to disk
// individually, so a crash never loses completed work and resume is exact:
// load the log, skip every source id it already contains.
package checkpoint

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

// Entry marks one fully-evaluated input record.
type Entry[T any] struct {
	SourceID string `json:"source_id"`
	Records  []T    `json:"records"`
}

// Log is a line-delimited JSON file of entries. Append is safe for concurrent
// callers; writes are serialized internally.
type Log[T any] struct {
	path string

	mu   sync.Mutex
	file *os.File
}

// NewLog creates a log handle for path. The file is created on first append.
func NewLog[T any](path string) *Log[T] {
	return &Log[T]{path: path}
}

// Path returns the log's file path.
func (l *Log[T]) Path() string { return l.path }

// Load returns all previously appended entries in append order, or an empty
// slice when no log exists. Trailing partial lines (from a crash mid-write)
// are ignored.
func (l *Log[T]) Load() ([]Entry[T], error) {
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("checkpoint: opening %s: %w", l.path, err)
	}
	defer f.Close() //nolint:errcheck

	var entries []Entry[T]
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Entry[T]
		if err := json.Unmarshal(line, &e); err != nil {
			// An interrupted append can leave one torn trailing line; that
			// entry was never durable, so it is simply redone.
			continue
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("checkpoint: reading %s: %w", l.path, err)
	}
	return entries, nil
}

// DoneIDs returns the set of source ids the entries cover.
func DoneIDs[T any](entries []Entry[T]) map[string]bool {
	done := make(map[string]bool, len(entries))
	for _, e := range entries {
		done[e.SourceID] = true
	}
	return done
}

// Append durably persists one entry. Each entry is synced independently so its
// durability never depends on a later write.
func (l *Log[T]) Append(e Entry[T]) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("checkpoint: encoding entry %s: %w", e.SourceID, err)
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("checkpoint: opening %s: %w", l.path, err)
		}
		l.file = f
	}
	if _, err := l.file.Write(data); err != nil {
		return fmt.Errorf("checkpoint: appending to %s: %w", l.path, err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("checkpoint: syncing %s: %w", l.path, err)
	}
	return nil
}

// Close releases the underlying file handle, if open.
func (l *Log[T]) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// Discard closes and removes the log. Called only after the stage's full table
// has been handed to the artifact store. Safe to call when no log exists.
func (l *Log[T]) Discard() error {
	if err := l.Close(); err != nil {
		return fmt.Errorf("checkpoint: closing %s: %w", l.path, err)
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checkpoint: removing %s: %w", l.path, err)
	}
	return nil
}

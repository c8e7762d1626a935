// Package artifact persists stage output tables as columnar, zstd-compressed
// files keyed by stage name and parameter fingerprint.
//
// An artifact is all-or-nothing: it is written to a temporary file and
// published with an atomic rename, so readers can never observe a partial
// table. Once present, GetOrCompute returns it verbatim without invoking the
// producer.
package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/codechat/curator/internal/record"
)

// Ext is the artifact filename extension (columnar zstd).
const Ext = ".colz"

// Table is a materialized stage output: ordered rows sharing one schema.
type Table struct {
	Stage  string
	Key    string
	Schema []record.Field
	Rows   []map[string]any
}

// Info summarizes a stored artifact for display.
type Info struct {
	Path string
	Rows int
	Size int64
}

// document is the on-disk layout. Columns is a map so encoding/json emits its
// keys sorted, keeping the bytes deterministic.
type document struct {
	Stage   string           `json:"stage"`
	Key     string           `json:"key"`
	Rows    int              `json:"rows"`
	Schema  []record.Field   `json:"schema"`
	Columns map[string][]any `json:"columns"`
}

// Store manages the artifact directory.
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore creates a store rooted at dir. The directory is created lazily on
// first save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the artifact directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the artifact file path for a stage and key.
func (s *Store) Path(stage, key string) string {
	return filepath.Join(s.dir, stage+"_"+key+Ext)
}

// Exists reports whether an artifact for the stage and key has been published.
func (s *Store) Exists(stage, key string) bool {
	_, err := os.Stat(s.Path(stage, key))
	return err == nil
}

// GetOrCompute returns the cached table for (stage, key) if present, otherwise
// invokes producer, persists its rows and returns them. The bool result is
// true on a cache hit. If producer fails nothing is written and the error
// propagates unchanged.
func (s *Store) GetOrCompute(stage, key string, schema []record.Field, producer func() ([]map[string]any, error)) (*Table, bool, error) {
	if s.Exists(stage, key) {
		tbl, err := s.Load(stage, key)
		if err != nil {
			return nil, false, err
		}
		return tbl, true, nil
	}

	rows, err := producer()
	if err != nil {
		return nil, false, err
	}

	tbl, err := s.Save(stage, key, schema, rows)
	if err != nil {
		return nil, false, err
	}
	return tbl, false, nil
}

// Save persists rows as a new artifact. Rows are sorted by their "id" field
// first so re-running a stage produces byte-identical files regardless of
// completion order.
func (s *Store) Save(stage, key string, schema []record.Field, rows []map[string]any) (*Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sorted := make([]map[string]any, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool {
		return rowID(sorted[i]) < rowID(sorted[j])
	})

	doc := document{
		Stage:   stage,
		Key:     key,
		Rows:    len(sorted),
		Schema:  schema,
		Columns: make(map[string][]any, len(schema)),
	}
	for _, f := range schema {
		col := make([]any, 0, len(sorted))
		for i, row := range sorted {
			v, err := normalize(row[f.Name], f.Type)
			if err != nil {
				return nil, fmt.Errorf("artifact: row %d field %q: %w", i, f.Name, err)
			}
			col = append(col, v)
		}
		doc.Columns[f.Name] = col
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("artifact: encoding %s: %w", stage, err)
	}
	compressed, err := compress(data)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, fmt.Errorf("artifact: creating directory: %w", err)
	}

	// Write to a temp file in the same directory, then publish atomically.
	final := s.Path(stage, key)
	tmp, err := os.CreateTemp(s.dir, "."+stage+"-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("artifact: creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after successful rename

	if _, err := tmp.Write(compressed); err != nil {
		tmp.Close() //nolint:errcheck
		return nil, fmt.Errorf("artifact: writing %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close() //nolint:errcheck
		return nil, fmt.Errorf("artifact: syncing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("artifact: closing %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, final); err != nil {
		return nil, fmt.Errorf("artifact: publishing %s: %w", final, err)
	}

	return &Table{Stage: stage, Key: key, Schema: schema, Rows: sorted}, nil
}

// Load reads a published artifact back into a table.
func (s *Store) Load(stage, key string) (*Table, error) {
	path := s.Path(stage, key)
	compressed, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("artifact: reading %s: %w", path, err)
	}
	data, err := decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("artifact: decompressing %s: %w", path, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("artifact: decoding %s: %w", path, err)
	}

	rows := make([]map[string]any, doc.Rows)
	for i := range rows {
		rows[i] = make(map[string]any, len(doc.Schema))
	}
	for _, f := range doc.Schema {
		col, ok := doc.Columns[f.Name]
		if !ok || len(col) != doc.Rows {
			return nil, fmt.Errorf("artifact: %s: column %q missing or short", path, f.Name)
		}
		for i, v := range col {
			typed, err := normalize(v, f.Type)
			if err != nil {
				return nil, fmt.Errorf("artifact: %s: column %q row %d: %w", path, f.Name, i, err)
			}
			rows[i][f.Name] = typed
		}
	}

	return &Table{Stage: doc.Stage, Key: doc.Key, Schema: doc.Schema, Rows: rows}, nil
}

// Stat returns display information for a published artifact.
func (s *Store) Stat(stage, key string) (Info, error) {
	path := s.Path(stage, key)
	fi, err := os.Stat(path)
	if err != nil {
		return Info{}, err
	}
	tbl, err := s.Load(stage, key)
	if err != nil {
		return Info{}, err
	}
	return Info{Path: path, Rows: len(tbl.Rows), Size: fi.Size()}, nil
}

// Remove deletes a published artifact. Missing files are not an error.
func (s *Store) Remove(stage, key string) error {
	err := os.Remove(s.Path(stage, key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// List returns the paths of the store's artifacts and checkpoint logs,
// sorted. The dataset snapshot and anything else in the directory is not the
// store's to manage.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, Ext) || strings.HasSuffix(name, ".checkpoint.jsonl") {
			paths = append(paths, filepath.Join(s.dir, name))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func rowID(row map[string]any) string {
	id, _ := row["id"].(string)
	return id
}

// normalize coerces a value into the canonical Go representation for its
// column type. JSON decoding yields float64 for every number, so longs get
// converted back.
func normalize(v any, typ string) (any, error) {
	if v == nil {
		return zeroFor(typ), nil
	}
	switch typ {
	case record.TypeString:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("want string, got %T", v)
		}
		return s, nil
	case record.TypeBool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("want bool, got %T", v)
		}
		return b, nil
	case record.TypeLong:
		switch n := v.(type) {
		case int:
			return int64(n), nil
		case int64:
			return n, nil
		case float64:
			return int64(n), nil
		}
		return nil, fmt.Errorf("want integer, got %T", v)
	case record.TypeDouble:
		switch n := v.(type) {
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		}
		return nil, fmt.Errorf("want number, got %T", v)
	case record.TypeStringList:
		switch list := v.(type) {
		case []string:
			return list, nil
		case []any:
			out := make([]string, 0, len(list))
			for _, item := range list {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("want string element, got %T", item)
				}
				out = append(out, s)
			}
			return out, nil
		}
		return nil, fmt.Errorf("want string list, got %T", v)
	}
	return nil, fmt.Errorf("unknown column type %q", typ)
}

func zeroFor(typ string) any {
	switch typ {
	case record.TypeString:
		return ""
	case record.TypeBool:
		return false
	case record.TypeLong:
		return int64(0)
	case record.TypeDouble:
		return float64(0)
	case record.TypeStringList:
		return []string{}
	}
	return nil
}

package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Ledger is the set of corpus-relative paths already ingested. It mirrors the
// ingested_files table to a JSON file so the corpus can be inspected without
// opening the database.
type Ledger struct {
	path  string
	files map[string]struct{}
}

type ledgerFile struct {
	Files []string `json:"files"`
}

// LoadLedger reads the ledger at path. A missing file yields an empty ledger;
// an empty path yields an in-memory ledger whose Save is a no-op.
func LoadLedger(path string) (*Ledger, error) {
	l := &Ledger{path: path, files: make(map[string]struct{})}
	if path == "" {
		return l, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", path, err)
	}
	var lf ledgerFile
	if err := json.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("decode ledger %s: %w", path, err)
	}
	l.Merge(lf.Files)
	return l, nil
}

// Path returns the file backing the ledger.
func (l *Ledger) Path() string { return l.path }

// Contains reports whether file has been ingested.
func (l *Ledger) Contains(file string) bool {
	_, ok := l.files[file]
	return ok
}

// Add records file as ingested.
func (l *Ledger) Add(file string) { l.files[file] = struct{}{} }

// Merge adds every entry of files.
func (l *Ledger) Merge(files []string) {
	for _, f := range files {
		l.Add(f)
	}
}

// Len returns the number of entries.
func (l *Ledger) Len() int { return len(l.files) }

// Files returns the entries sorted.
func (l *Ledger) Files() []string {
	out := make([]string, 0, len(l.files))
	for f := range l.files {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Save rewrites the ledger file through a temp file and rename, so a crash
// leaves either the old or the new ledger on disk.
func (l *Ledger) Save() error {
	if l.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(ledgerFile{Files: l.Files()}, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".ledger-*.json")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp ledger: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), l.path); err != nil {
		return fmt.Errorf("replace ledger %s: %w", l.path, err)
	}
	return nil
}

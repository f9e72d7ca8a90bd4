// Package journal implements a write-only JSONL log of branch deletions so
// a deleted branch can be restored later with `git branch <name> <hash>`.
package journal

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const schemaVersion = 1

// Entry records a single deletion.
type Entry struct {
	SchemaVersion int       `json:"schema_version"`
	Timestamp     time.Time `json:"timestamp"`
	RepoPath      string    `json:"repo_path"`
	Branch        string    `json:"branch"`
	Hash          string    `json:"hash"`
	Mode          string    `json:"mode"`
	// RemoteDeleted is true when the remote ref was also removed.
	RemoteDeleted bool `json:"remote_deleted"`
}

// Logger appends entries to monthly JSONL files.
type Logger struct {
	mu   sync.Mutex
	dir  string
	file *os.File
	path string
}

// New creates a Logger writing to the default journal directory
// (~/.local/share/teire/journal/). The directory is created if needed.
func New() (*Logger, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("journal: home directory: %w", err)
	}
	return NewWithDir(filepath.Join(home, ".local", "share", "teire", "journal"))
}

// NewOrNil returns a Logger using the default directory, or nil if
// initialization fails. The journal must never block a deletion, so callers
// use this and discard logging errors.
func NewOrNil() *Logger {
	l, err := New()
	if err != nil {
		slog.Debug("journal disabled", "error", err)
		return nil
	}
	return l
}

// NewWithDir creates a Logger writing to dir. Primarily useful for testing.
func NewWithDir(dir string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("journal: create directory: %w", err)
	}
	return &Logger{dir: dir}, nil
}

// Log writes an entry to the current month's JSONL file. The entry's
// SchemaVersion and Timestamp are set automatically. A nil Logger is safe
// and silently discards all entries.
func (l *Logger) Log(entry Entry) error {
	if l == nil {
		return nil
	}
	entry.SchemaVersion = schemaVersion
	entry.Timestamp = time.Now()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("journal: marshal entry: %w", err)
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := l.openFile()
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("journal: write entry: %w", err)
	}
	return nil
}

// Close closes the underlying file. A nil Logger is safe.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// openFile opens (or reuses) the JSONL file for the current month.
// Callers must hold l.mu.
func (l *Logger) openFile() (*os.File, error) {
	path := filepath.Join(l.dir, time.Now().Format("2006-01")+".jsonl")
	if l.file != nil && l.path == path {
		return l.file, nil
	}
	if l.file != nil {
		_ = l.file.Close()
		l.file = nil
	}

	f, err := os.OpenFile(filepath.Clean(path), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	l.file = f
	l.path = path
	return f, nil
}

package feedback

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrStore marks a failed write to the feedback log. The triage result the
// feedback refers to is unaffected; the caller reports the submission as
// failed.
var ErrStore = errors.New("feedback store")

// Log is an append-only, line-delimited JSON feedback log. A mutex
// serializes writers so records never interleave; each record is a single
// Write of one line, and the file is only ever opened for append, never
// rewritten in place.
type Log struct {
	mu   sync.Mutex
	path string
	f    *os.File
}

// OpenLog opens (creating if needed) the feedback log at path.
func OpenLog(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("%w: create dir: %w", ErrStore, err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrStore, path, err)
	}
	return &Log{path: path, f: f}, nil
}

// Close releases the underlying file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}

// Append validates and writes one record. The write is serialized and
// synced before returning so an acknowledged feedback survives a crash.
func (l *Log) Append(r *Record) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("%w: marshal: %w", ErrStore, err)
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.f.Write(data); err != nil {
		return fmt.Errorf("%w: append: %w", ErrStore, err)
	}
	if err := l.f.Sync(); err != nil {
		return fmt.Errorf("%w: sync: %w", ErrStore, err)
	}
	return nil
}

// Records reads back every record at or after since (zero time means all),
// in append order. This is the batch interface retraining consumes.
func (l *Log) Records(since time.Time) ([]Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: open %s: %w", ErrStore, l.path, err)
	}
	defer func() { _ = f.Close() }()

	var out []Record
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var r Record
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrStore, line, err)
		}
		if !since.IsZero() && r.RecordedAt.Before(since) {
			continue
		}
		out = append(out, r)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: scan: %w", ErrStore, err)
	}
	return out, nil
}

// Count returns the number of records in the log.
func (l *Log) Count() (int, error) {
	recs, err := l.Records(time.Time{})
	if err != nil {
		return 0, err
	}
	return len(recs), nil
}

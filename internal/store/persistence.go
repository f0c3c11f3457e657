package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jmylchreest/entrystack/internal/model"
)

// SchemaVersion is the current journal schema version.
const SchemaVersion = 1

// Journal defines the interface for history storage.
type Journal interface {
	// Load reads all records from storage, oldest first.
	Load() ([]model.HistoryRecord, error)

	// Append adds a record to storage.
	Append(r model.HistoryRecord) error

	// Rewrite replaces the entire storage file (used after prune).
	Rewrite(rs []model.HistoryRecord) error

	// Close releases file handles and resources.
	Close() error
}

// schemaHeader is the first line of the JSONL file.
type schemaHeader struct {
	SchemaVersion int   `json:"entrystack_schema_version"`
	CreatedAt     int64 `json:"created_at"`
}

// maxLineSize bounds a single journal line.
const maxLineSize = 1024 * 1024

// ErrJournalClosed is returned when operations are attempted on a closed journal.
var ErrJournalClosed = errors.New("journal is closed")

// JSONLJournal implements Journal using a JSONL file.
type JSONLJournal struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	closed bool
}

var _ Journal = (*JSONLJournal)(nil)

// OpenJSONLJournal opens the journal at path, creating it and its directory
// if needed.
func OpenJSONLJournal(path string) (*JSONLJournal, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}

	j := &JSONLJournal{
		path: path,
		file: file,
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.Size() == 0 {
		if err := j.writeHeader(); err != nil {
			file.Close()
			return nil, err
		}
	}

	return j, nil
}

// Path returns the journal file path.
func (j *JSONLJournal) Path() string {
	return j.path
}

func (j *JSONLJournal) writeHeader() error {
	data, err := json.Marshal(schemaHeader{
		SchemaVersion: SchemaVersion,
		CreatedAt:     time.Now().Unix(),
	})
	if err != nil {
		return err
	}
	_, err = j.file.Write(append(data, '\n'))
	return err
}

// Load reads all records. Malformed lines are skipped.
func (j *JSONLJournal) Load() ([]model.HistoryRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed || j.file == nil {
		return nil, ErrJournalClosed
	}

	if _, err := j.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek %s: %w", j.path, err)
	}

	records, err := decode(j.file)
	if err != nil {
		return records, fmt.Errorf("read %s: %w", j.path, err)
	}

	// Seek back to end for appending
	if _, err := j.file.Seek(0, io.SeekEnd); err != nil {
		return records, err
	}
	return records, nil
}

// decode reads records from r, checking the schema header.
func decode(r io.Reader) ([]model.HistoryRecord, error) {
	var records []model.HistoryRecord
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		if lineNum == 1 {
			var header schemaHeader
			if err := json.Unmarshal(line, &header); err == nil && header.SchemaVersion > 0 {
				if header.SchemaVersion > SchemaVersion {
					return nil, fmt.Errorf("unsupported schema version %d (max: %d)",
						header.SchemaVersion, SchemaVersion)
				}
				continue
			}
		}

		var rec model.HistoryRecord
		if err := json.Unmarshal(line, &rec); err != nil || rec.EntryID == "" {
			continue
		}
		records = append(records, rec)
	}
	return records, scanner.Err()
}

// Append adds a record and syncs the file.
func (j *JSONLJournal) Append(r model.HistoryRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed || j.file == nil {
		return ErrJournalClosed
	}

	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	if _, err := j.file.Write(append(data, '\n')); err != nil {
		return err
	}
	return j.file.Sync()
}

// Rewrite replaces the journal with rs, keeping a backup until the new file
// is complete.
func (j *JSONLJournal) Rewrite(rs []model.HistoryRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return ErrJournalClosed
	}

	if j.file != nil {
		if err := j.file.Close(); err != nil {
			return err
		}
		j.file = nil
	}

	backupPath := j.path + ".bak"
	if err := os.Rename(j.path, backupPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to create backup: %w", err)
	}

	file, err := os.OpenFile(j.path, os.O_RDWR|os.O_CREATE|os.O_APPEND|os.O_TRUNC, 0600)
	if err != nil {
		_ = os.Rename(backupPath, j.path)
		return fmt.Errorf("failed to create new file: %w", err)
	}
	j.file = file

	if err := j.writeHeader(); err != nil {
		return err
	}
	for _, r := range rs {
		data, err := json.Marshal(r)
		if err != nil {
			return err
		}
		if _, err := j.file.Write(append(data, '\n')); err != nil {
			return err
		}
	}
	if err := j.file.Sync(); err != nil {
		return err
	}

	_ = os.Remove(backupPath)
	return nil
}

// Close releases the file handle.
func (j *JSONLJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return nil
	}
	j.closed = true

	if j.file != nil {
		err := j.file.Close()
		j.file = nil
		return err
	}
	return nil
}

// ReadJournal loads the records at path without opening it for writing. A
// missing file yields no records.
func ReadJournal(path string) ([]model.HistoryRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	records, err := decode(file)
	if err != nil {
		return records, fmt.Errorf("read %s: %w", path, err)
	}
	return records, nil
}

package history

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/arcanaland/seer/internal/card"
)

// TimeLayout is the timestamp format stored with each record
const TimeLayout = "2006-01-02 15:04:05"

// ErrNoRecord is returned for positions outside the history
var ErrNoRecord = errors.New("no such history record")

// Record is one saved reading. Records are identified by their position in
// the file; ID only correlates log lines.
type Record struct {
	ID        string          `json:"id,omitempty" yaml:"id,omitempty"`
	Timestamp string          `json:"timestamp" yaml:"timestamp"`
	Question  string          `json:"question" yaml:"question"`
	Mode      string          `json:"mode,omitempty" yaml:"mode,omitempty"`
	Cards     []card.Snapshot `json:"cards" yaml:"cards"`
	Analysis  string          `json:"analysis" yaml:"analysis"`
	Model     string          `json:"model,omitempty" yaml:"model,omitempty"`
}

// NewRecord stamps a reading with the current time and a fresh ID
func NewRecord(question, mode string, cards []card.Card, analysis string) Record {
	return Record{
		ID:        uuid.NewString(),
		Timestamp: time.Now().Format(TimeLayout),
		Question:  question,
		Mode:      mode,
		Cards:     card.Snapshots(cards),
		Analysis:  analysis,
	}
}

// Entry pairs a record with its position in the store
type Entry struct {
	Index  int
	Record Record
}

// Store is an in-memory list of records mirrored to a JSON file. Every
// mutation rewrites the whole file.
type Store struct {
	path   string
	logger *zap.Logger

	mu      sync.Mutex
	records []Record
	unsaved bool // last save failed
}

// Open loads the history at path. A missing or unreadable file gives an empty
// history; the problem is logged, never returned.
func Open(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{path: path, logger: logger.Named("history").With(zap.String("path", path))}

	records, err := load(path)
	switch {
	case os.IsNotExist(errors.Cause(err)):
		s.logger.Debug("no history file yet")
	case err != nil:
		s.logger.Warn("history unreadable, starting empty", zap.Error(err))
	default:
		s.records = records
		s.logger.Debug("history loaded", zap.Int("records", len(records)))
	}
	return s
}

func load(path string) ([]Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read history")
	}

	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, errors.Wrap(err, "parse history")
	}
	return records, nil
}

// Path returns the backing file
func (s *Store) Path() string {
	return s.path
}

// Len returns the number of records
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Records returns a copy of all records, oldest first
func (s *Store) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.records...)
}

// Get returns the record at index (0-based)
func (s *Store) Get(index int) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.records) {
		return Record{}, errors.Wrapf(ErrNoRecord, "position %d", index+1)
	}
	return s.records[index], nil
}

// Recent returns up to n records, newest first. n <= 0 returns them all.
func (s *Store) Recent(n int) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n <= 0 || n > len(s.records) {
		n = len(s.records)
	}
	out := make([]Entry, 0, n)
	for i := len(s.records) - 1; i >= len(s.records)-n; i-- {
		out = append(out, Entry{Index: i, Record: s.records[i]})
	}
	return out
}

// Append adds a record and saves. The record stays in memory when the save
// fails.
func (s *Store) Append(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Timestamp == "" {
		r.Timestamp = time.Now().Format(TimeLayout)
	}
	s.records = append(s.records, r)
	s.logger.Debug("reading recorded", zap.String("reading_id", r.ID))

	return s.saveLocked()
}

// Delete removes the record at index (0-based) and saves
func (s *Store) Delete(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.records) {
		return errors.Wrapf(ErrNoRecord, "position %d", index+1)
	}
	removed := s.records[index]
	s.records = append(s.records[:index:index], s.records[index+1:]...)
	s.logger.Debug("reading deleted", zap.String("reading_id", removed.ID))

	return s.saveLocked()
}

// Pending reports whether the file is behind memory because a save failed
func (s *Store) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unsaved
}

// Save rewrites the history file
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	err := s.writeLocked()
	s.unsaved = err != nil
	return err
}

func (s *Store) writeLocked() error {
	records := s.records
	if records == nil {
		records = []Record{}
	}

	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode history")
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			s.logger.Error("history not saved", zap.Error(err))
			return errors.Wrap(err, "create history directory")
		}
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		s.logger.Error("history not saved", zap.Error(err))
		return errors.Wrap(err, "write history")
	}
	return nil
}

// Export writes all records to w as "json" or "yaml"
func (s *Store) Export(w io.Writer, format string) error {
	records := s.Records()
	if records == nil {
		records = []Record{}
	}

	switch format {
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(records), "export json")
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return errors.Wrap(err, "export yaml")
		}
		return errors.Wrap(enc.Close(), "export yaml")
	default:
		return fmt.Errorf("unsupported export format %q (use json or yaml)", format)
	}
}

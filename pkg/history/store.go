// Package history persists completed analyses with user-editable
// presentation metadata. The analysis payload itself is never altered
// after it is stored.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/duynguyendang/deconstructor/pkg/model"
	"github.com/google/uuid"
)

// ErrNotFound is returned when no record has the requested ID.
var ErrNotFound = errors.New("history record not found")

// Record is one stored analysis.
type Record struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Notes       string         `json:"notes"`
	SourceLabel string         `json:"sourceLabel"`
	FileNames   []string       `json:"fileNames,omitempty"`
	Result      model.Envelope `json:"result"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// Store is a keyed CRUD store backed by a single JSON file.
type Store struct {
	path string

	mu      sync.Mutex
	records []Record
}

// Open loads the store at path, creating the parent directory if needed.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	if err := json.Unmarshal(data, &s.records); err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}
	return s, nil
}

// Save stores a new analysis. The title defaults to the source label.
func (s *Store) Save(result model.AnalysisResult, title, sourceLabel string, fileNames []string) (*Record, error) {
	if result == nil {
		return nil, fmt.Errorf("nil analysis result")
	}
	if title == "" {
		title = sourceLabel
	}
	now := time.Now().UTC()
	rec := Record{
		ID:          uuid.NewString(),
		Title:       title,
		SourceLabel: sourceLabel,
		FileNames:   fileNames,
		Result:      model.Envelope{Result: result},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	if err := s.persist(); err != nil {
		s.records = s.records[:len(s.records)-1]
		return nil, err
	}
	return &rec, nil
}

// Update changes presentation metadata on a record. Nil fields are left
// untouched; the analysis payload cannot be modified.
type Update struct {
	Title *string
	Notes *string
}

func (s *Store) Update(id string, upd Update) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID != id {
			continue
		}
		if upd.Title != nil {
			s.records[i].Title = *upd.Title
		}
		if upd.Notes != nil {
			s.records[i].Notes = *upd.Notes
		}
		s.records[i].UpdatedAt = time.Now().UTC()
		if err := s.persist(); err != nil {
			return nil, err
		}
		rec := s.records[i]
		return &rec, nil
	}
	return nil, ErrNotFound
}

// Delete removes a record.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return s.persist()
		}
	}
	return ErrNotFound
}

// Get returns one record by ID.
func (s *Store) Get(id string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID == id {
			rec := s.records[i]
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}

// List returns all records, most recently updated first.
func (s *Store) List() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, len(s.records))
	copy(out, s.records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

func (s *Store) persist() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return os.Rename(tmp, s.path)
}

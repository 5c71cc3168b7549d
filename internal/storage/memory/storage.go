package memory

import (
	"context"
	"sync"

	"github.com/mcoot/killergame/internal/storage"
)

// Storage is an in-memory record store
type Storage struct {
	mu    sync.RWMutex
	sheet *storage.Sheet
}

// New creates a new in-memory store with the given header and no rows
func New(header []string) *Storage {
	return &Storage{
		sheet: &storage.Sheet{Header: append([]string(nil), header...)},
	}
}

// NewWithSheet creates an in-memory store holding a copy of sheet
func NewWithSheet(sheet *storage.Sheet) *Storage {
	return &Storage{sheet: sheet.Clone()}
}

// Ensure Storage implements the interfaces
var (
	_ storage.Store    = (*Storage)(nil)
	_ storage.Replacer = (*Storage)(nil)
)

func (s *Storage) ReadSheet(ctx context.Context) (*storage.Sheet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sheet.Clone(), nil
}

func (s *Storage) UpdateCells(ctx context.Context, updates []storage.CellUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sheet.Apply(updates)
}

func (s *Storage) ReplaceSheet(ctx context.Context, sheet *storage.Sheet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sheet = sheet.Clone()
	return nil
}

// AppendRow adds a record row and returns its row index
func (s *Storage) AppendRow(cells ...string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sheet.Rows = append(s.sheet.Rows, append([]string(nil), cells...))
	return len(s.sheet.Rows)
}

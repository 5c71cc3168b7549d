// Package csvfile stores the player sheet as a CSV file on disk
package csvfile

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/natefinch/atomic"

	"github.com/mcoot/killergame/internal/storage"
)

// Storage is a CSV-file record store. The first record is the header.
// Every write replaces the file atomically.
type Storage struct {
	mu   sync.Mutex
	path string
}

// New creates a CSV store backed by path. The file must already exist unless
// the store is seeded through ReplaceSheet.
func New(path string) *Storage {
	return &Storage{path: path}
}

// Ensure Storage implements the interfaces
var (
	_ storage.Store    = (*Storage)(nil)
	_ storage.Replacer = (*Storage)(nil)
)

// Path returns the file backing the store
func (s *Storage) Path() string {
	return s.path
}

func (s *Storage) ReadSheet(ctx context.Context) (*storage.Sheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *Storage) read() (*storage.Sheet, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // short rows are legal
	r.LazyQuotes = true

	sheet := &storage.Sheet{}
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", s.path, err)
		}
		if sheet.Header == nil {
			sheet.Header = record
			continue
		}
		sheet.Rows = append(sheet.Rows, record)
	}
	return sheet, nil
}

func (s *Storage) UpdateCells(ctx context.Context, updates []storage.CellUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sheet, err := s.read()
	if err != nil {
		return err
	}
	if err := sheet.Apply(updates); err != nil {
		return err
	}
	return s.write(sheet)
}

func (s *Storage) ReplaceSheet(ctx context.Context, sheet *storage.Sheet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(sheet)
}

func (s *Storage) write(sheet *storage.Sheet) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(sheet.Header); err != nil {
		return err
	}
	if err := w.WriteAll(sheet.Rows); err != nil {
		return err
	}
	return atomic.WriteFile(s.path, &buf)
}

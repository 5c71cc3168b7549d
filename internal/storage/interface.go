package storage

import (
	"context"
	"fmt"
)

// Sheet is a full read of the record store: a header row followed by one row per player.
// Rows may be shorter than the header.
type Sheet struct {
	Header []string
	Rows   [][]string
}

// CellUpdate sets a single cell. Row 0 is the header row, Row 1 the first record.
type CellUpdate struct {
	Row   int
	Col   int
	Value string
}

// Store is the record store holding one row per player
type Store interface {
	// ReadSheet returns the whole sheet
	ReadSheet(ctx context.Context) (*Sheet, error)

	// UpdateCells applies every update or none of them
	UpdateCells(ctx context.Context, updates []CellUpdate) error
}

// Replacer is implemented by stores that can be overwritten wholesale (seeding, tests)
type Replacer interface {
	ReplaceSheet(ctx context.Context, sheet *Sheet) error
}

// Clone returns a deep copy of the sheet
func (s *Sheet) Clone() *Sheet {
	out := &Sheet{
		Header: append([]string(nil), s.Header...),
		Rows:   make([][]string, len(s.Rows)),
	}
	for i, row := range s.Rows {
		out.Rows[i] = append([]string(nil), row...)
	}
	return out
}

// Apply writes the updates into the sheet in place, padding short rows with "".
func (s *Sheet) Apply(updates []CellUpdate) error {
	for _, u := range updates {
		if err := ValidateUpdate(u, len(s.Rows)); err != nil {
			return err
		}
	}
	for _, u := range updates {
		if u.Row == 0 {
			s.Header = SetCell(s.Header, u.Col, u.Value)
			continue
		}
		s.Rows[u.Row-1] = SetCell(s.Rows[u.Row-1], u.Col, u.Value)
	}
	return nil
}

// ValidateUpdate checks that an update addresses an existing row
func ValidateUpdate(u CellUpdate, rowCount int) error {
	if u.Row < 0 || u.Row > rowCount {
		return fmt.Errorf("row %d out of range (sheet has %d rows)", u.Row, rowCount)
	}
	if u.Col < 0 {
		return fmt.Errorf("column %d out of range", u.Col)
	}
	return nil
}

// SetCell sets row[col], growing the row with empty cells when needed
func SetCell(row []string, col int, value string) []string {
	for len(row) <= col {
		row = append(row, "")
	}
	row[col] = value
	return row
}

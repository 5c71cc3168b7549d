package testutil

import (
	"strconv"

	"github.com/mcoot/killergame/internal/model"
	"github.com/mcoot/killergame/internal/storage"
	"github.com/mcoot/killergame/internal/storage/memory"
)

// Seed describes one player row for tests. Zero values produce empty cells.
type Seed struct {
	Nickname  string
	Password  string
	Name      string
	FirstName string
	Target    string
	Action    string
	Status    model.Status
	Kills     int
	Order     int
	KilledBy  string
	Admin     bool
}

// Row renders the seed in canonical header order
func (s Seed) Row() []string {
	var kills, order, admin string
	if s.Kills != 0 {
		kills = strconv.Itoa(s.Kills)
	}
	if s.Order != 0 {
		order = strconv.Itoa(s.Order)
	}
	if s.Admin {
		admin = "TRUE"
	}
	return []string{
		s.Nickname, s.Password, s.Name, s.FirstName, "",
		"", "", s.Target, s.Action, string(s.Status),
		kills, order, s.KilledBy, admin,
	}
}

// Sheet builds a canonical sheet from seeds
func Sheet(seeds ...Seed) *storage.Sheet {
	sheet := &storage.Sheet{Header: model.CanonicalHeader()}
	for _, s := range seeds {
		sheet.Rows = append(sheet.Rows, s.Row())
	}
	return sheet
}

// NewMemoryStore creates an in-memory store holding the seeds
func NewMemoryStore(seeds ...Seed) *memory.Storage {
	return memory.NewWithSheet(Sheet(seeds...))
}

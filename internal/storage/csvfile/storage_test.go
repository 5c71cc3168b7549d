package csvfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/killergame/internal/storage"
)

type StorageSuite struct {
	suite.Suite
	path    string
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.path = filepath.Join(s.T().TempDir(), "players.csv")
	content := "Surnom,Cible actuelle,Statut\n" +
		"Élodie,bob,alive\n" +
		"bob\n"
	s.Require().NoError(os.WriteFile(s.path, []byte(content), 0o600))
	s.storage = New(s.path)
	s.ctx = context.Background()
}

func (s *StorageSuite) TestReadSheetToleratesShortRows() {
	sheet, err := s.storage.ReadSheet(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"Surnom", "Cible actuelle", "Statut"}, sheet.Header)
	s.Equal([][]string{{"Élodie", "bob", "alive"}, {"bob"}}, sheet.Rows)
}

func (s *StorageSuite) TestUpdateCellsRewritesFile() {
	err := s.storage.UpdateCells(s.ctx, []storage.CellUpdate{
		{Row: 2, Col: 2, Value: "dead"},
		{Row: 1, Col: 1, Value: "a, quoted \"value\""},
	})
	s.Require().NoError(err)

	reopened := New(s.path)
	sheet, err := reopened.ReadSheet(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"Élodie", "a, quoted \"value\"", "alive"}, sheet.Rows[0])
	s.Equal([]string{"bob", "", "dead"}, sheet.Rows[1])
}

func (s *StorageSuite) TestUpdateCellsOutOfRangeLeavesFile() {
	before, err := os.ReadFile(s.path)
	s.Require().NoError(err)

	err = s.storage.UpdateCells(s.ctx, []storage.CellUpdate{{Row: 3, Col: 0, Value: "x"}})
	s.Error(err)

	after, err := os.ReadFile(s.path)
	s.Require().NoError(err)
	s.Equal(before, after)
}

func (s *StorageSuite) TestMissingFile() {
	store := New(filepath.Join(s.T().TempDir(), "missing.csv"))
	_, err := store.ReadSheet(s.ctx)
	s.Error(err)
}

func (s *StorageSuite) TestReplaceSheetCreatesFile() {
	store := New(filepath.Join(s.T().TempDir(), "seed.csv"))
	err := store.ReplaceSheet(s.ctx, &storage.Sheet{
		Header: []string{"nickname", "password"},
		Rows:   [][]string{{"carol", "pw"}},
	})
	s.Require().NoError(err)

	sheet, err := store.ReadSheet(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"nickname", "password"}, sheet.Header)
	s.Equal([][]string{{"carol", "pw"}}, sheet.Rows)
}

// Package postgres stores the player sheet in a PostgreSQL table through GORM
package postgres

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mcoot/killergame/internal/model"
	"github.com/mcoot/killergame/internal/storage"
)

// PlayerRow is one sheet row. Every cell is text so the table mirrors a spreadsheet.
type PlayerRow struct {
	RowIndex         int `gorm:"primaryKey;autoIncrement:false"`
	Nickname         string
	Password         string
	Name             string
	FirstName        string
	Year             string
	PersonPhoto      string
	FeetPhoto        string
	Target           string
	Action           string
	Status           string
	KillCount        string
	EliminationOrder string
	KilledBy         string
	IsAdmin          string
}

// TableName sets the table used for the sheet
func (PlayerRow) TableName() string {
	return "killer_players"
}

// Cells returns the row in canonical header order
func (r PlayerRow) Cells() []string {
	return []string{
		r.Nickname, r.Password, r.Name, r.FirstName, r.Year,
		r.PersonPhoto, r.FeetPhoto, r.Target, r.Action, r.Status,
		r.KillCount, r.EliminationOrder, r.KilledBy, r.IsAdmin,
	}
}

// RowFromCells builds a row from cells in canonical header order; missing cells are ""
func RowFromCells(index int, cells []string) PlayerRow {
	get := func(i int) string {
		if i < len(cells) {
			return cells[i]
		}
		return ""
	}
	return PlayerRow{
		RowIndex:         index,
		Nickname:         get(0),
		Password:         get(1),
		Name:             get(2),
		FirstName:        get(3),
		Year:             get(4),
		PersonPhoto:      get(5),
		FeetPhoto:        get(6),
		Target:           get(7),
		Action:           get(8),
		Status:           get(9),
		KillCount:        get(10),
		EliminationOrder: get(11),
		KilledBy:         get(12),
		IsAdmin:          get(13),
	}
}

// Storage is a PostgreSQL record store with a fixed canonical layout
type Storage struct {
	db     *gorm.DB
	header []string
}

// Open connects to PostgreSQL and migrates the table
func Open(dsn string) (*Storage, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: connecting: %w", err)
	}
	return NewWithDB(db)
}

// NewWithDB wraps an existing GORM handle and migrates the table
func NewWithDB(db *gorm.DB) (*Storage, error) {
	if err := db.AutoMigrate(&PlayerRow{}); err != nil {
		return nil, fmt.Errorf("postgres: migrating: %w", err)
	}
	return &Storage{db: db, header: model.CanonicalHeader()}, nil
}

// DB exposes the connection pool for the transition advisory lock
func (s *Storage) DB() *gorm.DB {
	return s.db
}

// Close releases the connection pool
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ensure Storage implements the interfaces
var (
	_ storage.Store    = (*Storage)(nil)
	_ storage.Replacer = (*Storage)(nil)
)

func (s *Storage) ReadSheet(ctx context.Context) (*storage.Sheet, error) {
	var rows []PlayerRow
	if err := s.db.WithContext(ctx).Order("row_index").Find(&rows).Error; err != nil {
		return nil, err
	}
	sheet := &storage.Sheet{
		Header: append([]string(nil), s.header...),
		Rows:   make([][]string, len(rows)),
	}
	for i, r := range rows {
		sheet.Rows[i] = r.Cells()
	}
	return sheet, nil
}

// UpdateCells runs every update in one transaction. Sheet rows map to table
// rows by position, so gaps in row_index are tolerated.
func (s *Storage) UpdateCells(ctx context.Context, updates []storage.CellUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var indexes []int
		if err := tx.Model(&PlayerRow{}).Order("row_index").Pluck("row_index", &indexes).Error; err != nil {
			return err
		}

		perRow := make(map[int]map[string]any)
		for _, u := range updates {
			if err := storage.ValidateUpdate(u, len(indexes)); err != nil {
				return err
			}
			if u.Col >= len(s.header) {
				return fmt.Errorf("postgres: column %d is not in the table layout", u.Col)
			}
			if u.Row == 0 {
				if u.Value != s.header[u.Col] {
					return fmt.Errorf("postgres: header is fixed, cannot rename %q", s.header[u.Col])
				}
				continue
			}
			idx := indexes[u.Row-1]
			if perRow[idx] == nil {
				perRow[idx] = make(map[string]any)
			}
			perRow[idx][s.header[u.Col]] = u.Value
		}

		for idx, cols := range perRow {
			if err := tx.Model(&PlayerRow{}).Where("row_index = ?", idx).Updates(cols).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ReplaceSheet rewrites the table. Cells are matched to columns by header name,
// unknown headers are dropped.
func (s *Storage) ReplaceSheet(ctx context.Context, sheet *storage.Sheet) error {
	position := make(map[string]int, len(sheet.Header))
	for i, h := range sheet.Header {
		position[h] = i
	}

	rows := make([]PlayerRow, len(sheet.Rows))
	for i, src := range sheet.Rows {
		cells := make([]string, len(s.header))
		for j, h := range s.header {
			if p, ok := position[h]; ok && p < len(src) {
				cells[j] = src[p]
			}
		}
		rows[i] = RowFromCells(i+1, cells)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&PlayerRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, 100).Error
	})
}

// Package sheets stores the player sheet in a Google Sheets spreadsheet
package sheets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/mcoot/killergame/internal/storage"
)

// Config holds the spreadsheet location and credentials
type Config struct {
	SpreadsheetID string
	SheetName     string

	// CredentialsFile is a service account JSON key; empty uses application default credentials
	CredentialsFile string

	// Timeout bounds every API call
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults for the Sheets backend
func DefaultConfig() Config {
	return Config{
		SheetName: "Sheet1",
		Timeout:   10 * time.Second,
	}
}

// Storage is a Google Sheets record store. The first sheet row is the header.
type Storage struct {
	svc *gsheets.Service
	cfg Config
}

// New connects to the Sheets API. Extra options are appended after the
// credentials, which lets tests point the client at a fake endpoint.
func New(ctx context.Context, cfg Config, opts ...option.ClientOption) (*Storage, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("sheets: spreadsheet id is required")
	}
	all := []option.ClientOption{option.WithScopes(gsheets.SpreadsheetsScope)}
	if cfg.CredentialsFile != "" {
		all = append(all, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	all = append(all, opts...)

	svc, err := gsheets.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("sheets: creating service: %w", err)
	}
	return &Storage{svc: svc, cfg: cfg}, nil
}

// Ensure Storage implements the interfaces
var (
	_ storage.Store    = (*Storage)(nil)
	_ storage.Replacer = (*Storage)(nil)
)

func (s *Storage) ReadSheet(ctx context.Context) (*storage.Sheet, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.svc.Spreadsheets.Values.Get(s.cfg.SpreadsheetID, s.sheetRange()).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheets: reading values: %w", err)
	}

	sheet := &storage.Sheet{}
	for i, raw := range resp.Values {
		row := make([]string, len(raw))
		for j, v := range raw {
			row[j] = cellString(v)
		}
		if i == 0 {
			sheet.Header = row
			continue
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, nil
}

// UpdateCells sends every cell in one values.batchUpdate call, which the API applies atomically
func (s *Storage) UpdateCells(ctx context.Context, updates []storage.CellUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	data := make([]*gsheets.ValueRange, 0, len(updates))
	for _, u := range updates {
		if u.Row < 0 || u.Col < 0 {
			return fmt.Errorf("sheets: invalid cell %d,%d", u.Row, u.Col)
		}
		data = append(data, &gsheets.ValueRange{
			Range:  s.cellRange(u.Row, u.Col),
			Values: [][]any{{u.Value}},
		})
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.svc.Spreadsheets.Values.BatchUpdate(s.cfg.SpreadsheetID, &gsheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: batch update: %w", err)
	}
	return nil
}

func (s *Storage) ReplaceSheet(ctx context.Context, sheet *storage.Sheet) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.svc.Spreadsheets.Values.Clear(s.cfg.SpreadsheetID, s.sheetRange(), &gsheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("sheets: clearing values: %w", err)
	}

	values := make([][]any, 0, len(sheet.Rows)+1)
	values = append(values, toAny(sheet.Header))
	for _, r := range sheet.Rows {
		values = append(values, toAny(r))
	}
	_, err := s.svc.Spreadsheets.Values.Update(s.cfg.SpreadsheetID, s.cellRange(0, 0), &gsheets.ValueRange{
		Values: values,
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: writing values: %w", err)
	}
	return nil
}

func (s *Storage) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.Timeout)
}

// sheetRange returns the quoted sheet name, e.g. 'Sheet1'
func (s *Storage) sheetRange() string {
	return "'" + strings.ReplaceAll(s.cfg.SheetName, "'", "''") + "'"
}

// cellRange converts a zero-based cell position to A1 notation
func (s *Storage) cellRange(row, col int) string {
	return fmt.Sprintf("%s!%s%d", s.sheetRange(), ColumnLetters(col), row+1)
}

// ColumnLetters converts a zero-based column index to its A1 letters (0 -> A, 26 -> AA)
func ColumnLetters(col int) string {
	var b []byte
	for n := col + 1; n > 0; n = (n - 1) / 26 {
		b = append([]byte{byte('A' + (n-1)%26)}, b...)
	}
	return string(b)
}

func cellString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func toAny(row []string) []any {
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}

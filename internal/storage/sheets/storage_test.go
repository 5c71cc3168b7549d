package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"google.golang.org/api/option"

	"github.com/mcoot/killergame/internal/storage"
)

// fakeSheetsAPI serves the subset of the Sheets values API the store uses
type fakeSheetsAPI struct {
	mu      sync.Mutex
	values  [][]any
	batches []map[string]any
	cleared bool
	updated []any
	fail    bool
}

func (f *fakeSheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail {
		http.Error(w, `{"error":{"code":400,"message":"bad request"}}`, http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	path := r.URL.Path
	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate"):
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.batches = append(f.batches, body)
		_, _ = w.Write([]byte(`{}`))
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":clear"):
		f.cleared = true
		_, _ = w.Write([]byte(`{}`))
	case r.Method == http.MethodPut && strings.Contains(path, "/values/"):
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if v, ok := body["values"].([]any); ok {
			f.updated = v
		}
		_, _ = w.Write([]byte(`{}`))
	case r.Method == http.MethodGet && strings.Contains(path, "/values/"):
		_ = json.NewEncoder(w).Encode(map[string]any{
			"range":          "'Players'!A1:Z100",
			"majorDimension": "ROWS",
			"values":         f.values,
		})
	default:
		http.NotFound(w, r)
	}
}

type StorageSuite struct {
	suite.Suite
	api     *fakeSheetsAPI
	server  *httptest.Server
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.api = &fakeSheetsAPI{
		values: [][]any{
			{"Surnom", "MDP", "Cible actuelle"},
			{"alice", "pw", "bob"},
			{"bob"},
		},
	}
	s.server = httptest.NewServer(s.api)
	s.ctx = context.Background()

	cfg := DefaultConfig()
	cfg.SpreadsheetID = "sheet-123"
	cfg.SheetName = "Players"

	var err error
	s.storage, err = New(s.ctx, cfg,
		option.WithEndpoint(s.server.URL+"/"),
		option.WithHTTPClient(s.server.Client()),
	)
	s.Require().NoError(err)
}

func (s *StorageSuite) TearDownTest() {
	s.server.Close()
}

func (s *StorageSuite) TestReadSheet() {
	sheet, err := s.storage.ReadSheet(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"Surnom", "MDP", "Cible actuelle"}, sheet.Header)
	s.Equal([][]string{{"alice", "pw", "bob"}, {"bob"}}, sheet.Rows)
}

func (s *StorageSuite) TestUpdateCellsSendsOneBatch() {
	err := s.storage.UpdateCells(s.ctx, []storage.CellUpdate{
		{Row: 1, Col: 2, Value: "carol"},
		{Row: 2, Col: 27, Value: "dead"},
	})
	s.Require().NoError(err)

	s.Require().Len(s.api.batches, 1)
	batch := s.api.batches[0]
	s.Equal("RAW", batch["valueInputOption"])

	data, ok := batch["data"].([]any)
	s.Require().True(ok)
	s.Require().Len(data, 2)
	s.Equal("'Players'!C2", data[0].(map[string]any)["range"])
	s.Equal("'Players'!AB3", data[1].(map[string]any)["range"])
}

func (s *StorageSuite) TestUpdateCellsEmptyBatchSkipsAPI() {
	s.NoError(s.storage.UpdateCells(s.ctx, nil))
	s.Empty(s.api.batches)
}

func (s *StorageSuite) TestReplaceSheet() {
	err := s.storage.ReplaceSheet(s.ctx, &storage.Sheet{
		Header: []string{"nickname"},
		Rows:   [][]string{{"carol"}, {"dave"}},
	})
	s.Require().NoError(err)
	s.True(s.api.cleared)
	s.Len(s.api.updated, 3)
}

func (s *StorageSuite) TestAPIErrorsAreReturned() {
	s.api.fail = true

	_, err := s.storage.ReadSheet(s.ctx)
	s.Error(err)

	err = s.storage.UpdateCells(s.ctx, []storage.CellUpdate{{Row: 1, Col: 0, Value: "x"}})
	s.Error(err)
}

func (s *StorageSuite) TestRequiresSpreadsheetID() {
	_, err := New(s.ctx, DefaultConfig())
	s.Error(err)
}

func TestColumnLetters(t *testing.T) {
	cases := map[int]string{0: "A", 1: "B", 25: "Z", 26: "AA", 27: "AB", 51: "AZ", 52: "BA", 701: "ZZ", 702: "AAA"}
	for col, want := range cases {
		assert.Equal(t, want, ColumnLetters(col), "column %d", col)
	}
}

// Package directory loads the player sheet and writes player changes back
package directory

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mcoot/killergame/internal/cache"
	"github.com/mcoot/killergame/internal/dependencies/clock"
	"github.com/mcoot/killergame/internal/model"
	"github.com/mcoot/killergame/internal/storage"
)

// Change sets fields of the player on Row
type Change struct {
	Row    int
	Fields map[model.Field]string
}

// Service is the player directory
type Service struct {
	store  storage.Store
	cache  *cache.Cache[*Snapshot]
	ttl    time.Duration
	clock  clock.Clock
	logger *slog.Logger
}

// New creates a new directory. Snapshots are cached for ttl; zero disables caching.
func New(store storage.Store, clk clock.Clock, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		cache:  cache.New[*Snapshot](clk),
		ttl:    ttl,
		clock:  clk,
		logger: logger,
	}
}

// Snapshot returns a snapshot at most ttl old
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	if snap, ok := s.cache.Get(s.ttl); ok {
		return snap, nil
	}
	return s.load(ctx)
}

// FreshSnapshot drops the cache and reads the store
func (s *Service) FreshSnapshot(ctx context.Context) (*Snapshot, error) {
	s.cache.Invalidate()
	return s.load(ctx)
}

func (s *Service) load(ctx context.Context) (*Snapshot, error) {
	gen := s.cache.Generation()

	sheet, err := s.store.ReadSheet(ctx)
	if err != nil {
		s.logger.Error("failed to read players",
			slog.String("error", err.Error()),
		)
		return nil, model.Unavailable(err)
	}

	layout, err := DetectLayout(sheet.Header)
	if err != nil {
		s.logger.Error("unusable sheet header",
			slog.Any("header", sheet.Header),
		)
		return nil, model.Unavailable(err)
	}

	players := make([]model.Player, 0, len(sheet.Rows))
	for i, cells := range sheet.Rows {
		if p, ok := ParseRow(layout, i+1, cells); ok {
			players = append(players, p)
		}
	}

	snap := NewSnapshot(layout, players, s.clock.Now())
	s.cache.SetIfUnchanged(gen, snap)
	return snap, nil
}

// ListAllPlayers returns every player with a nickname
func (s *Service) ListAllPlayers(ctx context.Context) ([]model.Player, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Players(), nil
}

// FindByNickname looks a player up by folded nickname
func (s *Service) FindByNickname(ctx context.Context, nickname string) (*model.Player, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	p := snap.Find(nickname)
	if p == nil {
		return nil, model.ErrPlayerNotFound
	}
	return p, nil
}

// Apply writes every change as a single batch. Fields without a column get a
// new column appended to the header in the same batch. The cache is
// invalidated whether or not the write succeeds.
func (s *Service) Apply(ctx context.Context, layout Layout, changes []Change) error {
	defer s.cache.Invalidate()

	var wanted []model.Field
	seen := make(map[model.Field]bool)
	for _, c := range changes {
		for f := range c.Fields {
			if !seen[f] {
				seen[f] = true
				wanted = append(wanted, f)
			}
		}
	}
	missing := layout.Missing(wanted)
	layout = layout.withAppended(missing)

	updates := headerUpdates(layout, missing)
	for _, c := range changes {
		if c.Row <= 0 {
			return fmt.Errorf("invalid player row %d", c.Row)
		}
		for f, v := range c.Fields {
			col, _ := layout.Column(f)
			updates = append(updates, storage.CellUpdate{Row: c.Row, Col: col, Value: v})
		}
	}
	if len(updates) == 0 {
		return nil
	}

	if err := s.store.UpdateCells(ctx, updates); err != nil {
		s.logger.Error("failed to write players",
			slog.Int("cells", len(updates)),
			slog.String("error", err.Error()),
		)
		return model.Unavailable(err)
	}
	return nil
}

// EnsureColumns appends header cells for game fields the sheet lacks and
// returns the fields added
func (s *Service) EnsureColumns(ctx context.Context) ([]model.Field, error) {
	snap, err := s.FreshSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	missing := snap.Layout().Missing(model.GameFields())
	if len(missing) == 0 {
		return nil, nil
	}
	layout := snap.Layout().withAppended(missing)

	defer s.cache.Invalidate()
	if err := s.store.UpdateCells(ctx, headerUpdates(layout, missing)); err != nil {
		return nil, model.Unavailable(err)
	}

	s.logger.Info("added missing sheet columns",
		slog.Any("fields", missing),
	)
	return missing, nil
}

// Invalidate drops the cached snapshot
func (s *Service) Invalidate() {
	s.cache.Invalidate()
}

func headerUpdates(layout Layout, fields []model.Field) []storage.CellUpdate {
	updates := make([]storage.CellUpdate, 0, len(fields))
	for _, f := range fields {
		col, _ := layout.Column(f)
		updates = append(updates, storage.CellUpdate{Row: 0, Col: col, Value: string(f)})
	}
	return updates
}

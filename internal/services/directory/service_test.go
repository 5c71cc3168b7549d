package directory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/killergame/internal/dependencies/mocks"
	"github.com/mcoot/killergame/internal/model"
	"github.com/mcoot/killergame/internal/storage"
	"github.com/mcoot/killergame/internal/storage/memory"
	"github.com/mcoot/killergame/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	memory  *memory.Storage
	store   *testutil.FlakyStore
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.memory = testutil.NewMemoryStore(
		testutil.Seed{Nickname: "Élodie", Password: "secret", Target: "bob", Action: "steal a sock"},
		testutil.Seed{Nickname: "bob", Target: "carol", Status: model.StatusDead, Order: 2},
		testutil.Seed{Nickname: "carol", Target: "Elodie", Kills: 3},
	)
	s.store = testutil.NewFlakyStore(s.memory)
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.store, s.clock, 10*time.Second, testutil.NopLogger())
	s.ctx = context.Background()
}

// Lookup tests

func (s *ServiceSuite) TestListAllPlayers() {
	players, err := s.service.ListAllPlayers(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(players, 3)
	s.Equal("Élodie", players[0].Nickname)
	s.Equal(1, players[0].Row)
	s.Equal(model.StatusDead, players[1].Status)
	s.Equal(3, players[2].KillCount)
}

func (s *ServiceSuite) TestFindByNicknameFoldsAccentsAndCase() {
	p, err := s.service.FindByNickname(s.ctx, "  ELODIE ")
	s.Require().NoError(err)
	s.Equal("Élodie", p.Nickname)
	s.Equal("steal a sock", p.Action)
}

func (s *ServiceSuite) TestFindByNicknameNotFound() {
	_, err := s.service.FindByNickname(s.ctx, "mallory")
	s.ErrorIs(err, model.ErrPlayerNotFound)
	s.ErrorIs(err, model.ErrNotFound)
}

func (s *ServiceSuite) TestFindByEmptyNickname() {
	_, err := s.service.FindByNickname(s.ctx, "")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *ServiceSuite) TestRowsWithoutNicknameAreSkipped() {
	s.memory.AppendRow("", "pw", "", "", "", "", "", "bob")
	s.memory.AppendRow("dave")

	players, err := s.service.ListAllPlayers(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(players, 4)
	s.Equal("dave", players[3].Nickname)
	s.Equal(5, players[3].Row)
}

// Cache tests

func (s *ServiceSuite) TestSnapshotIsCachedWithinTTL() {
	_, err := s.service.Snapshot(s.ctx)
	s.Require().NoError(err)
	s.clock.Advance(5 * time.Second)
	_, err = s.service.Snapshot(s.ctx)
	s.Require().NoError(err)

	s.Equal(1, s.store.Reads())
}

func (s *ServiceSuite) TestSnapshotExpiresAfterTTL() {
	_, _ = s.service.Snapshot(s.ctx)
	s.clock.Advance(10 * time.Second)
	_, _ = s.service.Snapshot(s.ctx)

	s.Equal(2, s.store.Reads())
}

func (s *ServiceSuite) TestFreshSnapshotAlwaysReads() {
	_, _ = s.service.Snapshot(s.ctx)
	_, _ = s.service.FreshSnapshot(s.ctx)

	s.Equal(2, s.store.Reads())
}

func (s *ServiceSuite) TestApplyInvalidatesCache() {
	snap, err := s.service.Snapshot(s.ctx)
	s.Require().NoError(err)

	err = s.service.Apply(s.ctx, snap.Layout(), []Change{
		{Row: 1, Fields: map[model.Field]string{model.FieldTarget: "carol"}},
	})
	s.Require().NoError(err)

	p, err := s.service.FindByNickname(s.ctx, "elodie")
	s.Require().NoError(err)
	s.Equal("carol", p.Target)
	s.Equal(2, s.store.Reads())
}

func (s *ServiceSuite) TestApplyFailureStillInvalidates() {
	snap, _ := s.service.Snapshot(s.ctx)
	s.store.FailWrites(true)

	err := s.service.Apply(s.ctx, snap.Layout(), []Change{
		{Row: 1, Fields: map[model.Field]string{model.FieldTarget: "carol"}},
	})
	s.ErrorIs(err, model.ErrBackendUnavailable)
	s.True(model.Retryable(err))

	_, _ = s.service.Snapshot(s.ctx)
	s.Equal(2, s.store.Reads())
}

func (s *ServiceSuite) TestApplyWritesOneBatch() {
	snap, _ := s.service.Snapshot(s.ctx)
	err := s.service.Apply(s.ctx, snap.Layout(), []Change{
		{Row: 1, Fields: map[model.Field]string{model.FieldKillCount: "1", model.FieldTarget: "carol"}},
		{Row: 2, Fields: map[model.Field]string{model.FieldStatus: "dead"}},
	})
	s.Require().NoError(err)
	s.Equal(1, s.store.Writes())
}

func (s *ServiceSuite) TestApplyRejectsHeaderRow() {
	snap, _ := s.service.Snapshot(s.ctx)
	err := s.service.Apply(s.ctx, snap.Layout(), []Change{
		{Row: 0, Fields: map[model.Field]string{model.FieldTarget: "x"}},
	})
	s.Error(err)
	s.Equal(0, s.store.Writes())
}

// Backend failures

func (s *ServiceSuite) TestReadFailureIsBackendUnavailable() {
	s.store.FailReads(true)

	_, err := s.service.FindByNickname(s.ctx, "bob")
	s.ErrorIs(err, model.ErrBackendUnavailable)
	s.NotErrorIs(err, model.ErrNotFound)
}

func (s *ServiceSuite) TestHeaderWithoutNicknameIsBackendUnavailable() {
	err := s.memory.ReplaceSheet(s.ctx, &storage.Sheet{Header: []string{"foo", "bar"}})
	s.Require().NoError(err)

	_, err = s.service.ListAllPlayers(s.ctx)
	s.ErrorIs(err, model.ErrBackendUnavailable)
	s.ErrorIs(err, model.ErrInvalidLayout)
}

// Columns

func (s *ServiceSuite) TestApplyAppendsMissingColumn() {
	err := s.memory.ReplaceSheet(s.ctx, &storage.Sheet{
		Header: []string{"Surnom", "MDP"},
		Rows:   [][]string{{"alice", "pw"}},
	})
	s.Require().NoError(err)

	snap, err := s.service.FreshSnapshot(s.ctx)
	s.Require().NoError(err)
	err = s.service.Apply(s.ctx, snap.Layout(), []Change{
		{Row: 1, Fields: map[model.Field]string{model.FieldStatus: "dead"}},
	})
	s.Require().NoError(err)

	sheet, _ := s.memory.ReadSheet(s.ctx)
	s.Equal([]string{"Surnom", "MDP", "status"}, sheet.Header)
	s.Equal([]string{"alice", "pw", "dead"}, sheet.Rows[0])

	p, err := s.service.FindByNickname(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.StatusDead, p.Status)
}

func (s *ServiceSuite) TestEnsureColumns() {
	err := s.memory.ReplaceSheet(s.ctx, &storage.Sheet{
		Header: []string{"Surnom", "MDP", "Cible actuelle", "Statut"},
	})
	s.Require().NoError(err)

	added, err := s.service.EnsureColumns(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.Field{
		model.FieldAction,
		model.FieldKillCount,
		model.FieldEliminationOrder,
		model.FieldKilledBy,
	}, added)

	added, err = s.service.EnsureColumns(s.ctx)
	s.Require().NoError(err)
	s.Empty(added)
}

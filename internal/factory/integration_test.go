package factory

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/killergame/internal/lock"
	"github.com/mcoot/killergame/internal/model"
	redisstorage "github.com/mcoot/killergame/internal/storage/redis"
	"github.com/mcoot/killergame/internal/testutil"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp(
		testutil.Seed{Nickname: "alice", Password: "a", Target: "bob", Action: "hand them a spoon"},
		testutil.Seed{Nickname: "bob", Password: "b", Target: "carol", Action: "make them say banana"},
		testutil.Seed{Nickname: "carol", Password: "c", Target: "dave", Action: "take a selfie with them"},
		testutil.Seed{Nickname: "dave", Password: "d", Target: "alice", Action: "borrow a pen"},
		testutil.Seed{Nickname: "boss", Password: "x", Admin: true},
	)
	s.ctx = context.Background()
}

func (s *IntegrationSuite) TearDownTest() {
	s.Require().NoError(s.app.Close())
}

// Test: Complete game flow from the first kill to the podium
func (s *IntegrationSuite) TestCompleteGameFlow() {
	// Step 1: Alice logs in and sees her target
	session, err := s.app.AuthService.Login(s.ctx, "Alice", "A")
	s.Require().NoError(err)
	me, err := s.app.GameController.Me(s.ctx, session.Nickname)
	s.Require().NoError(err)
	s.Equal("bob", me.Target.Nickname)
	s.Equal("hand them a spoon", me.Target.Action)

	// Step 2: Alice kills Bob and inherits Carol with Bob's challenge
	result, err := s.app.GameController.Kill(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("bob", result.Victim)
	s.Equal("carol", result.Target.Nickname)
	s.Equal("make them say banana", result.Target.Action)

	// Step 3: Carol reports her own death, Alice is credited
	s.Require().NoError(s.app.GameController.ReportKilled(s.ctx, "carol"))
	me, err = s.app.GameController.Me(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("dave", me.Target.Nickname)
	s.Equal(2, me.Player.KillCount)

	// Game is still running
	podium, err := s.app.StandingsService.Podium(s.ctx)
	s.Require().NoError(err)
	s.False(podium.GameOver)

	// Step 4: Dave gives up, Alice is the last one standing
	s.Require().NoError(s.app.GameController.GiveUp(s.ctx, "dave"))
	me, err = s.app.GameController.Me(s.ctx, "alice")
	s.Require().NoError(err)
	s.Nil(me.Target)

	// Step 5: Standings
	podium, err = s.app.StandingsService.Podium(s.ctx)
	s.Require().NoError(err)
	s.True(podium.GameOver)
	s.Require().Len(podium.Entries, 3)
	s.Equal("alice", podium.Entries[0].Nickname)
	s.Equal("dave", podium.Entries[1].Nickname)
	s.Equal("carol", podium.Entries[2].Nickname)

	board, err := s.app.StandingsService.Leaderboard(s.ctx)
	s.Require().NoError(err)
	s.Len(board, 4)
	s.Equal("alice", board[0].Nickname)
	s.Equal(2, board[0].KillCount)

	medals, err := s.app.StandingsService.KillsPodium(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(medals, 1)
	s.Equal([]string{"alice"}, medals[0].Nicknames)

	// Step 6: The records hold the full history
	players, err := s.app.GameController.Players(s.ctx, model.Actor{Nickname: "boss", IsAdmin: true})
	s.Require().NoError(err)
	orders := map[string]int{}
	for _, p := range players {
		orders[p.Nickname] = p.EliminationOrder
	}
	s.Equal(map[string]int{"alice": 0, "bob": 1, "carol": 2, "dave": 3, "boss": 0}, orders)
}

// Test: An admin reseeds the chain for the players still alive
func (s *IntegrationSuite) TestAdminReseedsChain() {
	_, err := s.app.GameController.Kill(s.ctx, "alice")
	s.Require().NoError(err)

	admin := model.Actor{Nickname: "boss", IsAdmin: true}
	plan, err := s.app.GameController.SeedChain(s.ctx, admin)
	s.Require().NoError(err)
	s.Len(plan, 3)

	report, err := s.app.GameController.ChainReport(s.ctx, admin)
	s.Require().NoError(err)
	s.True(report.Healthy())
	s.True(report.SingleCycle)
}

// Test: Writes are visible to the next read through the snapshot cache
func (s *IntegrationSuite) TestWritesReachTheStore() {
	_, err := s.app.GameController.Kill(s.ctx, "alice")
	s.Require().NoError(err)

	sheet, err := s.app.Memory.ReadSheet(s.ctx)
	s.Require().NoError(err)
	s.Equal("dead", sheet.Rows[1][9])
	s.Equal("alice", sheet.Rows[1][12])
	s.Equal("carol", sheet.Rows[0][7])
}

type FactorySuite struct {
	suite.Suite
	ctx context.Context
}

func TestFactorySuite(t *testing.T) {
	suite.Run(t, new(FactorySuite))
}

func (s *FactorySuite) SetupTest() {
	s.ctx = context.Background()
}

func (s *FactorySuite) TestDefaultsToMemory() {
	app, err := New(s.ctx, Config{})
	s.Require().NoError(err)
	defer app.Close()

	s.IsType(&lock.Local{}, app.Locker)
	players, err := app.Directory.ListAllPlayers(s.ctx)
	s.Require().NoError(err)
	s.Empty(players)
}

func (s *FactorySuite) TestInvalidStorageType() {
	_, err := New(s.ctx, Config{StorageType: "floppy"})
	s.Error(err)
}

func (s *FactorySuite) TestMissingBackendSettings() {
	for _, storageType := range []string{StorageTypeRedis, StorageTypeCSV, StorageTypeSheets, StorageTypePostgres} {
		_, err := New(s.ctx, Config{StorageType: storageType})
		s.Error(err, storageType)
	}
}

func (s *FactorySuite) TestSeedCSVFillsEmptyStore() {
	path := filepath.Join(s.T().TempDir(), "players.csv")
	content := strings.Join([]string{
		"Pseudo,Mot de passe,Nom,Prénom,Cible,Action",
		"alice,a,Liddell,Alice,bob,wave",
		"bob,b,Builder,Bob,alice,clap",
	}, "\n")
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o600))

	app, err := New(s.ctx, Config{SeedCSV: path})
	s.Require().NoError(err)
	defer app.Close()

	alice, err := app.Directory.FindByNickname(s.ctx, "ALICE")
	s.Require().NoError(err)
	s.Equal("bob", alice.Target)
	s.Equal(model.StatusAlive, alice.Status)

	// Missing game columns were added at startup
	snap, err := app.Directory.FreshSnapshot(s.ctx)
	s.Require().NoError(err)
	s.Empty(snap.Layout().Missing(model.GameFields()))
}

func (s *FactorySuite) TestRedisUsesDistributedLock() {
	mr := miniredis.RunT(s.T())
	cfg := redisstorage.DefaultConfig()
	cfg.URL = "redis://" + mr.Addr()

	app, err := New(s.ctx, Config{
		StorageType: StorageTypeRedis,
		RedisConfig: &cfg,
		LockTimeout: time.Second,
	})
	s.Require().NoError(err)
	defer app.Close()

	s.IsType(&lock.Redis{}, app.Locker)
}

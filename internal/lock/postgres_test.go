package lock

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mcoot/killergame/internal/model"
)

type PostgresSuite struct {
	suite.Suite
	db  *gorm.DB
	ctx context.Context
}

func TestPostgresSuite(t *testing.T) {
	if os.Getenv("KILLER_TEST_POSTGRES_DSN") == "" {
		t.Skip("KILLER_TEST_POSTGRES_DSN not set")
	}
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupTest() {
	var err error
	s.db, err = gorm.Open(postgres.Open(os.Getenv("KILLER_TEST_POSTGRES_DSN")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	s.Require().NoError(err)
	s.ctx = context.Background()
}

func (s *PostgresSuite) TearDownTest() {
	if sqlDB, err := s.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func (s *PostgresSuite) newLock() *Postgres {
	cfg := DefaultPostgresConfig()
	cfg.Key = 4242
	cfg.Timeout = 100 * time.Millisecond
	cfg.RetryInterval = 5 * time.Millisecond
	return NewPostgres(s.db, cfg)
}

func (s *PostgresSuite) TestSecondProcessWaits() {
	first, second := s.newLock(), s.newLock()

	unlock, err := first.Lock(s.ctx)
	s.Require().NoError(err)

	_, err = second.Lock(s.ctx)
	s.ErrorIs(err, model.ErrBackendUnavailable)

	unlock()

	unlock, err = second.Lock(s.ctx)
	s.Require().NoError(err)
	unlock()
}

func (s *PostgresSuite) TestCancelledWaitGivesUp() {
	unlock, err := s.newLock().Lock(s.ctx)
	s.Require().NoError(err)
	defer unlock()

	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	_, err = s.newLock().Lock(ctx)
	s.ErrorIs(err, model.ErrBackendUnavailable)
}

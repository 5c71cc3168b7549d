package lock

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// DefaultPostgresKey is the advisory lock id shared by every server on one database
const DefaultPostgresKey int64 = 0x4b494c4c4552 // "KILLER"

// PostgresConfig controls the advisory lock
type PostgresConfig struct {
	Key int64

	// Timeout bounds how long Lock waits
	Timeout time.Duration

	// RetryInterval is the pause between acquisition attempts
	RetryInterval time.Duration
}

// DefaultPostgresConfig returns sensible defaults for the advisory lock
func DefaultPostgresConfig() PostgresConfig {
	return PostgresConfig{
		Key:           DefaultPostgresKey,
		Timeout:       10 * time.Second,
		RetryInterval: 25 * time.Millisecond,
	}
}

// Postgres is a lock shared by every server process using the same database.
// It holds a transaction-scoped advisory lock, so a crashed holder's lock goes
// away with its connection.
type Postgres struct {
	db  *gorm.DB
	cfg PostgresConfig
}

// NewPostgres creates an advisory lock
func NewPostgres(db *gorm.DB, cfg PostgresConfig) *Postgres {
	return &Postgres{db: db, cfg: cfg}
}

var _ Locker = (*Postgres)(nil)

func (l *Postgres) Lock(ctx context.Context) (func(), error) {
	// The holding transaction outlives the wait below
	tx := l.db.WithContext(context.WithoutCancel(ctx)).Begin()
	if tx.Error != nil {
		return nil, waitFailed(tx.Error)
	}

	ctx, cancel := withTimeout(ctx, l.cfg.Timeout)
	defer cancel()

	ticker := time.NewTicker(l.cfg.RetryInterval)
	defer ticker.Stop()

	for {
		var ok bool
		err := tx.WithContext(ctx).Raw("SELECT pg_try_advisory_xact_lock(?)", l.cfg.Key).Scan(&ok).Error
		if err != nil {
			tx.Rollback()
			if ctx.Err() != nil {
				return nil, waitFailed(ctx.Err())
			}
			return nil, waitFailed(err)
		}
		if ok {
			return func() { tx.Rollback() }, nil
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			tx.Rollback()
			return nil, waitFailed(ctx.Err())
		}
	}
}

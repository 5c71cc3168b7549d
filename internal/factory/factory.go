package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/killergame/internal/dependencies/clock"
	"github.com/mcoot/killergame/internal/dependencies/random"
	"github.com/mcoot/killergame/internal/events"
	"github.com/mcoot/killergame/internal/lock"
	"github.com/mcoot/killergame/internal/model"
	"github.com/mcoot/killergame/internal/services/auth"
	"github.com/mcoot/killergame/internal/services/directory"
	"github.com/mcoot/killergame/internal/services/game"
	"github.com/mcoot/killergame/internal/services/standings"
	"github.com/mcoot/killergame/internal/storage"
	"github.com/mcoot/killergame/internal/storage/csvfile"
	"github.com/mcoot/killergame/internal/storage/memory"
	"github.com/mcoot/killergame/internal/storage/postgres"
	redisstorage "github.com/mcoot/killergame/internal/storage/redis"
	"github.com/mcoot/killergame/internal/storage/sheets"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypeCSV      = "csv"
	StorageTypeSheets   = "sheets"
	StorageTypePostgres = "postgres"
)

// Defaults applied to zero Config fields
const (
	DefaultCacheTTL    = 10 * time.Second
	DefaultLockTimeout = 10 * time.Second
)

// App contains all wired application components
type App struct {
	// Storage
	Store storage.Store

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Directory        *directory.Service
	Locker           lock.Locker
	Events           *events.Hub
	GameController   *game.Controller
	StandingsService *standings.Service
	AuthService      *auth.Service

	closers []func() error
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger

	// StorageType selects the record store. If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// CSVPath is the player file (required if StorageType is "csv")
	CSVPath string
	// SheetsConfig selects the spreadsheet (required if StorageType is "sheets")
	SheetsConfig *sheets.Config
	// PostgresDSN is the connection string (required if StorageType is "postgres")
	PostgresDSN string

	// SeedCSV, if set, loads players from a CSV file into an empty store
	SeedCSV string

	// CacheTTL bounds snapshot staleness for reads
	CacheTTL time.Duration
	// LockTimeout bounds how long a transition waits for the lock
	LockTimeout time.Duration

	// AuthConfig holds configuration for the auth service. A random signing
	// secret is generated when none is given.
	AuthConfig auth.Config
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}
	lockTimeout := cfg.LockTimeout
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}

	var (
		store   storage.Store
		locker  lock.Locker = lock.NewLocal(lockTimeout)
		closers []func() error
	)
	switch storageType {
	case StorageTypeMemory:
		store = memory.New(model.CanonicalHeader())
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		lockCfg := lock.DefaultRedisConfig(redisstorage.LockKey(cfg.RedisConfig.KeyPrefix))
		lockCfg.Timeout = lockTimeout
		store, locker = redisStore, lock.NewRedis(redisStore.Client(), lockCfg)
		closers = append(closers, redisStore.Close)
	case StorageTypeCSV:
		if cfg.CSVPath == "" {
			return nil, errors.New("CSVPath required when StorageType is csv")
		}
		store = csvfile.New(cfg.CSVPath)
	case StorageTypeSheets:
		if cfg.SheetsConfig == nil {
			return nil, errors.New("SheetsConfig required when StorageType is sheets")
		}
		sheetStore, err := sheets.New(ctx, *cfg.SheetsConfig)
		if err != nil {
			return nil, err
		}
		store = sheetStore
	case StorageTypePostgres:
		if cfg.PostgresDSN == "" {
			return nil, errors.New("PostgresDSN required when StorageType is postgres")
		}
		pgStore, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		lockCfg := lock.DefaultPostgresConfig()
		lockCfg.Timeout = lockTimeout
		store, locker = pgStore, lock.NewPostgres(pgStore.DB(), lockCfg)
		closers = append(closers, pgStore.Close)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be one of memory, redis, csv, sheets, postgres", storageType)
	}

	clk := clock.New()
	rnd := random.New()

	authCfg := cfg.AuthConfig
	if len(authCfg.Secret) == 0 {
		logger.Warn("no session signing secret configured, sessions will not survive a restart")
		authCfg.Secret = []byte(rnd.String(48, random.SecretAlphabet))
	}

	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}

	app, err := newWithDependencies(store, locker, clk, rnd, cacheTTL, authCfg, logger)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, closers...)

	if cfg.SeedCSV != "" {
		if err := app.seed(ctx, cfg.SeedCSV, logger); err != nil {
			_ = app.Close()
			return nil, err
		}
	}

	// A store that is down at startup must not prevent maintenance logins
	if added, err := app.Directory.EnsureColumns(ctx); err != nil {
		logger.Warn("could not check record store columns", slog.String("error", err.Error()))
	} else if len(added) > 0 {
		logger.Info("added missing game columns", slog.Int("count", len(added)))
	}

	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Store,
	locker lock.Locker,
	clk clock.Clock,
	rnd random.Random,
	cacheTTL time.Duration,
	authCfg auth.Config,
	logger *slog.Logger,
) (*App, error) {
	dir := directory.New(store, clk, cacheTTL, logger)
	hub := events.NewHub(logger)
	gameController := game.NewController(dir, locker, hub, clk, rnd, logger)
	standingsService := standings.New(dir, logger)
	authService, err := auth.New(dir, clk, authCfg, logger)
	if err != nil {
		return nil, err
	}

	go hub.Run()

	return &App{
		Store:            store,
		Clock:            clk,
		Random:           rnd,
		Directory:        dir,
		Locker:           locker,
		Events:           hub,
		GameController:   gameController,
		StandingsService: standingsService,
		AuthService:      authService,
		closers: []func() error{func() error {
			hub.Close()
			return nil
		}},
	}, nil
}

// seed copies a CSV file into the store if the store holds no players yet
func (a *App) seed(ctx context.Context, path string, logger *slog.Logger) error {
	replacer, ok := a.Store.(storage.Replacer)
	if !ok {
		return errors.New("the selected store cannot be seeded")
	}

	current, err := a.Directory.FreshSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("checking store before seeding: %w", err)
	}
	if current.Len() > 0 {
		logger.Info("store already holds players, skipping seed", slog.Int("players", current.Len()))
		return nil
	}

	sheet, err := csvfile.New(path).ReadSheet(ctx)
	if err != nil {
		return fmt.Errorf("reading seed file: %w", err)
	}
	if _, err := directory.DetectLayout(sheet.Header); err != nil {
		return fmt.Errorf("seed file %s: %w", path, err)
	}
	if err := replacer.ReplaceSheet(ctx, sheet); err != nil {
		return fmt.Errorf("seeding store: %w", err)
	}
	a.Directory.Invalidate()

	logger.Info("store seeded", slog.String("path", path), slog.Int("rows", len(sheet.Rows)))
	return nil
}

// Close releases the store and stops the event hub
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

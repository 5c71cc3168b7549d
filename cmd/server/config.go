package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mcoot/killergame/internal/factory"
	"github.com/mcoot/killergame/internal/services/auth"
	redisstorage "github.com/mcoot/killergame/internal/storage/redis"
	"github.com/mcoot/killergame/internal/storage/sheets"
)

// Config holds every server setting. Each flag can also be set through a
// KILLER_ prefixed environment variable or a .env file.
type Config struct {
	bind    string
	port    int
	verbose bool

	storage         string
	redisURL        string
	redisPrefix     string
	csvPath         string
	sheetID         string
	sheetName       string
	credentialsFile string
	postgresDSN     string
	seedCSV         string

	cacheTTL    time.Duration
	lockTimeout time.Duration

	jwtSecret               string
	sessionDuration         time.Duration
	maintenanceNickname     string
	maintenancePasswordHash string

	publicURL     string
	secureCookies bool
}

func (c *Config) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if (c.maintenanceNickname == "") != (c.maintenancePasswordHash == "") {
		return errors.New("both --maintenance-nickname and --maintenance-password-hash must be provided together")
	}
	switch c.storage {
	case factory.StorageTypeMemory:
	case factory.StorageTypeRedis:
		if c.redisURL == "" {
			return errors.New("--redis-url is required with --storage=redis")
		}
	case factory.StorageTypeCSV:
		if c.csvPath == "" {
			return errors.New("--csv-path is required with --storage=csv")
		}
	case factory.StorageTypeSheets:
		if c.sheetID == "" {
			return errors.New("--sheet-id is required with --storage=sheets")
		}
	case factory.StorageTypePostgres:
		if c.postgresDSN == "" {
			return errors.New("--postgres-dsn is required with --storage=postgres")
		}
	default:
		return fmt.Errorf("unknown storage type: %s", c.storage)
	}
	return nil
}

// factoryConfig translates flags into the application factory's settings
func (c *Config) factoryConfig() factory.Config {
	authCfg := auth.DefaultConfig()
	authCfg.Secret = []byte(c.jwtSecret)
	if c.sessionDuration > 0 {
		authCfg.SessionDuration = c.sessionDuration
	}
	authCfg.MaintenanceNickname = c.maintenanceNickname
	authCfg.MaintenancePasswordHash = c.maintenancePasswordHash

	fc := factory.Config{
		StorageType: c.storage,
		CSVPath:     c.csvPath,
		PostgresDSN: c.postgresDSN,
		SeedCSV:     c.seedCSV,
		CacheTTL:    c.cacheTTL,
		LockTimeout: c.lockTimeout,
		AuthConfig:  authCfg,
	}
	if c.storage == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.redisURL
		if c.redisPrefix != "" {
			redisCfg.KeyPrefix = c.redisPrefix
		}
		fc.RedisConfig = &redisCfg
	}
	if c.storage == factory.StorageTypeSheets {
		sheetsCfg := sheets.DefaultConfig()
		sheetsCfg.SpreadsheetID = c.sheetID
		if c.sheetName != "" {
			sheetsCfg.SheetName = c.sheetName
		}
		sheetsCfg.CredentialsFile = c.credentialsFile
		fc.SheetsConfig = &sheetsCfg
	}
	return fc
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("KILLER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "killer-server",
		Short: "Serves the Killer game API.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: KILLER_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: KILLER_PORT)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "log at debug level (env: KILLER_VERBOSE)")

	fs.StringVar(&cfg.storage, "storage", factory.StorageTypeMemory, "record store: memory, redis, csv, sheets, postgres (env: KILLER_STORAGE)")
	fs.StringVar(&cfg.redisURL, "redis-url", "", "redis connection URL (env: KILLER_REDIS_URL)")
	fs.StringVar(&cfg.redisPrefix, "redis-prefix", "", "redis key prefix (env: KILLER_REDIS_PREFIX)")
	fs.StringVar(&cfg.csvPath, "csv-path", "", "player CSV file (env: KILLER_CSV_PATH)")
	fs.StringVar(&cfg.sheetID, "sheet-id", "", "Google spreadsheet ID (env: KILLER_SHEET_ID)")
	fs.StringVar(&cfg.sheetName, "sheet-name", "", "sheet holding the players (env: KILLER_SHEET_NAME)")
	fs.StringVar(&cfg.credentialsFile, "credentials-file", "", "service account key for Sheets (env: KILLER_CREDENTIALS_FILE)")
	fs.StringVar(&cfg.postgresDSN, "postgres-dsn", "", "postgres connection string (env: KILLER_POSTGRES_DSN)")
	fs.StringVar(&cfg.seedCSV, "seed-csv", "", "CSV file loaded into an empty store at startup (env: KILLER_SEED_CSV)")

	fs.DurationVar(&cfg.cacheTTL, "cache-ttl", factory.DefaultCacheTTL, "how long reads may serve a cached snapshot (env: KILLER_CACHE_TTL)")
	fs.DurationVar(&cfg.lockTimeout, "lock-timeout", factory.DefaultLockTimeout, "how long a transition waits for the game lock (env: KILLER_LOCK_TIMEOUT)")

	fs.StringVar(&cfg.jwtSecret, "jwt-secret", "", "session signing secret, random if empty (env: KILLER_JWT_SECRET)")
	fs.DurationVar(&cfg.sessionDuration, "session-duration", auth.DefaultConfig().SessionDuration, "session lifetime (env: KILLER_SESSION_DURATION)")
	fs.StringVar(&cfg.maintenanceNickname, "maintenance-nickname", "", "maintenance admin login (env: KILLER_MAINTENANCE_NICKNAME)")
	fs.StringVar(&cfg.maintenancePasswordHash, "maintenance-password-hash", "", "bcrypt hash of the maintenance password (env: KILLER_MAINTENANCE_PASSWORD_HASH)")

	fs.StringVar(&cfg.publicURL, "public-url", "", "URL encoded in the invite QR code (env: KILLER_PUBLIC_URL)")
	fs.BoolVar(&cfg.secureCookies, "secure-cookies", false, "mark session cookies Secure (env: KILLER_SECURE_COOKIES)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.AddCommand(newHashPasswordCmd())

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for --maintenance-password-hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashPassword(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
}

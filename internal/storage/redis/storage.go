package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/killergame/internal/storage"
)

// ErrTxContention is returned when UpdateCells lost every optimistic retry
var ErrTxContention = errors.New("redis sheet update kept conflicting")

// Storage is a Redis-backed record store. The header is a JSON string key and
// the records are a LIST of JSON arrays, one element per row.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Client exposes the connection so the distributed lock can share it
func (s *Storage) Client() *redis.Client {
	return s.client
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interfaces
var (
	_ storage.Store    = (*Storage)(nil)
	_ storage.Replacer = (*Storage)(nil)
)

func (s *Storage) ReadSheet(ctx context.Context) (*storage.Sheet, error) {
	return s.read(ctx, s.client)
}

// sheetReader is satisfied by both the client and a WATCH transaction
type sheetReader interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
}

func (s *Storage) read(ctx context.Context, c sheetReader) (*storage.Sheet, error) {
	sheet := &storage.Sheet{}
	data, err := c.Get(ctx, s.headerKey()).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
	case err != nil:
		return nil, err
	default:
		if err := json.Unmarshal(data, &sheet.Header); err != nil {
			return nil, fmt.Errorf("decoding header: %w", err)
		}
	}

	raw, err := c.LRange(ctx, s.rowsKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	sheet.Rows = make([][]string, len(raw))
	for i, r := range raw {
		if err := json.Unmarshal([]byte(r), &sheet.Rows[i]); err != nil {
			return nil, fmt.Errorf("decoding row %d: %w", i+1, err)
		}
	}
	return sheet, nil
}

func (s *Storage) UpdateCells(ctx context.Context, updates []storage.CellUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	txf := func(tx *redis.Tx) error {
		sheet, err := s.read(ctx, tx)
		if err != nil {
			return err
		}
		if err := sheet.Apply(updates); err != nil {
			return err
		}

		touched := make(map[int]bool)
		for _, u := range updates {
			touched[u.Row] = true
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for row := range touched {
				if row == 0 {
					data, err := json.Marshal(sheet.Header)
					if err != nil {
						return err
					}
					pipe.Set(ctx, s.headerKey(), data, 0)
					continue
				}
				data, err := json.Marshal(sheet.Rows[row-1])
				if err != nil {
					return err
				}
				pipe.LSet(ctx, s.rowsKey(), int64(row-1), data)
			}
			return nil
		})
		return err
	}

	for i := 0; i < s.cfg.MaxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, s.headerKey(), s.rowsKey())
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrTxContention
}

func (s *Storage) ReplaceSheet(ctx context.Context, sheet *storage.Sheet) error {
	header, err := json.Marshal(sheet.Header)
	if err != nil {
		return err
	}
	rows := make([]any, len(sheet.Rows))
	for i, r := range sheet.Rows {
		data, err := json.Marshal(r)
		if err != nil {
			return err
		}
		rows[i] = data
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.headerKey(), header, 0)
		pipe.Del(ctx, s.rowsKey())
		if len(rows) > 0 {
			pipe.RPush(ctx, s.rowsKey(), rows...)
		}
		return nil
	})
	return err
}

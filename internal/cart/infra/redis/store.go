package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/go-redis/redis/v8"
)

const maxBackoff = 30 * time.Second

// Store keeps the cart blob under a plain redis string key.
type Store struct {
	client *goredis.Client
	log    *slog.Logger
}

// NewStore accepts either a redis:// URL or a bare host:port.
func NewStore(addr string, log *slog.Logger) *Store {
	opts, err := goredis.ParseURL(addr)
	if err != nil {
		opts = &goredis.Options{
			Addr:         addr,
			MinIdleConns: 1,
			MaxRetries:   3,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     4,
		}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		client: goredis.NewClient(opts),
		log:    log,
	}
}

// Initialize pings redis until it answers, backing off exponentially between
// attempts.
func (s *Store) Initialize(ctx context.Context, attempts int) error {
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		if s.Ping(ctx) {
			s.log.Info("redis ready", slog.Int("attempt", i+1))
			return nil
		}
		if i == attempts-1 {
			break
		}

		backoff := time.Duration(1<<uint(i)) * 100 * time.Millisecond
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
		s.log.Warn("redis not ready, retrying",
			slog.Int("attempt", i+1),
			slog.Duration("backoff", backoff),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("redis unreachable after %d attempts", attempts)
}

func (s *Store) Ping(ctx context.Context) bool {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.client.Ping(pingCtx).Err(); err != nil {
		s.log.Debug("redis ping failed", slog.Any("err", err))
		return false
	}
	return true
}

func (s *Store) Load(ctx context.Context, key string) ([]byte, bool, error) {
	blob, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis GET: %w", err)
	}
	return blob, true, nil
}

func (s *Store) Save(ctx context.Context, key string, blob []byte) error {
	if err := s.client.Set(ctx, key, blob, 0).Err(); err != nil {
		return fmt.Errorf("redis SET: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/logsift/internal/source"
)

// Compile-time check: Source implements source.Provider.
var _ source.Provider = (*Source)(nil)

// Config holds connection parameters for a Redis-backed source.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
	// Prefix selects the keys holding diagnostic text. The diagnostic name
	// is the key with the prefix stripped.
	Prefix string
}

// Source serves diagnostics stored as plain string values in Redis.
// Collectors write them under Prefix; every Text call re-issues a GET so
// searches see the value a collector wrote last.
type Source struct {
	client rueidis.Client
	prefix string
}

// New creates a Redis source via rueidis.
func New(cfg Config) (*Source, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Source{client: client, prefix: cfg.Prefix}, nil
}

// Ping checks connectivity.
func (s *Source) Ping(ctx context.Context) error {
	cmd := s.client.B().Ping().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return &source.Error{Op: source.OpPing, Err: err}
	}
	return nil
}

// Close shuts down the client.
func (s *Source) Close() {
	s.client.Close()
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Source) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for redis: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

func (s *Source) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Source) b() rueidis.Builder {
	return s.client.B()
}

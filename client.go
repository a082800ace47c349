package logsift

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/kailas-cloud/logsift/internal/source"
	sourcedir "github.com/kailas-cloud/logsift/internal/source/dir"
	sourceredis "github.com/kailas-cloud/logsift/internal/source/redis"
	searchuc "github.com/kailas-cloud/logsift/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultRedisPrefix      = "logsift:diag:"
)

// Client searches diagnostics served by one or more configured sources.
// When several sources serve the same diagnostic name, in-memory diagnostics
// win over directories and directories win over Redis.
type Client struct {
	provider source.Provider
	search   *searchuc.Service
	pingers  []source.Pinger
	redis    *sourceredis.Source
}

// New creates a Client from the configured sources and verifies that a Redis
// source, if any, is reachable.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o(cfg)
	}

	providers, rds, err := buildSources(cfg)
	if err != nil {
		return nil, err
	}
	if len(providers) == 0 {
		return nil, errors.New("logsift: at least one diagnostic source required (use WithDiagnostics, WithDirectory, or WithRedis)")
	}

	if rds != nil {
		if err := rds.WaitForReady(context.Background(), defaultReadinessTimeout); err != nil {
			rds.Close()
			return nil, fmt.Errorf("logsift: redis source not ready: %w", err)
		}
	}

	pingers := make([]source.Pinger, 0, len(providers))
	for _, p := range providers {
		if pinger, ok := p.(source.Pinger); ok {
			pingers = append(pingers, pinger)
		}
	}

	provider := source.NewMulti(providers...)
	return &Client{
		provider: provider,
		search:   searchuc.New(provider).WithWorkers(cfg.workers),
		pingers:  pingers,
		redis:    rds,
	}, nil
}

func buildSources(cfg *clientConfig) ([]source.Provider, *sourceredis.Source, error) {
	var providers []source.Provider

	if len(cfg.static) > 0 {
		providers = append(providers, source.NewStatic(cfg.static))
	}

	for _, d := range cfg.dirs {
		s, err := sourcedir.New(sourcedir.Config{
			Path:     d.path,
			Pattern:  d.pattern,
			MaxBytes: cfg.maxFileBytes,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("logsift: directory source %q: %w", d.path, err)
		}
		providers = append(providers, s)
	}

	var rds *sourceredis.Source
	if len(cfg.redisAddrs) > 0 {
		prefix := cfg.redisPrefix
		if prefix == "" {
			prefix = defaultRedisPrefix
		}
		s, err := sourceredis.New(sourceredis.Config{
			Addrs:    cfg.redisAddrs,
			Username: cfg.redisUsername,
			Password: cfg.redisPassword,
			DB:       cfg.redisDB,
			Prefix:   prefix,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("logsift: redis source: %w", err)
		}
		rds = s
		providers = append(providers, s)
	}

	return providers, rds, nil
}

// Close releases source connections.
func (c *Client) Close() {
	if c.redis != nil {
		c.redis.Close()
	}
}

// Ping verifies every configured source is reachable.
func (c *Client) Ping(ctx context.Context) error {
	for _, p := range c.pingers {
		if err := p.Ping(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Diagnostics lists the names of every available diagnostic, sorted.
func (c *Client) Diagnostics(ctx context.Context) ([]string, error) {
	diags, err := c.provider.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("logsift: list diagnostics: %w", err)
	}
	names := make([]string, 0, len(diags))
	for _, d := range diags {
		names = append(names, d.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Search runs a batch search over every diagnostic the sources serve. A
// non-empty names list restricts the search to those diagnostics.
func (c *Client) Search(ctx context.Context, batch BatchSearch, names ...string) (MatchResult, error) {
	return c.search.Search(ctx, batch.set, names)
}

// First reports the first predicate match in the named diagnostic's current
// text. The boolean is false when the diagnostic has no text or nothing
// matches; an unknown name is an ErrDiagnosticNotFound error.
func (c *Client) First(ctx context.Context, name string, p Predicate) (Match, bool, error) {
	return c.search.First(ctx, name, p)
}

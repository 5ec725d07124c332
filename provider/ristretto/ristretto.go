// Package ristretto stores entries in a dgraph-io/ristretto cache. Entry
// cost is its length in bytes, so MaxCost is a memory budget.
package ristretto

import (
	"context"
	"errors"
	"time"

	rc "github.com/dgraph-io/ristretto"

	"github.com/unkn0wn-root/layout/provider"
)

type Provider struct {
	c *rc.Cache
}

var _ provider.Provider = (*Provider)(nil)

type Config struct {
	NumCounters int64 // ~10x the expected number of entries
	MaxCost     int64 // bytes
	BufferItems int64 // 64 is the ristretto recommendation
	Metrics     bool
}

func New(cfg Config) (*Provider, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 {
		return nil, errors.New("ristretto: NumCounters and MaxCost must be positive")
	}
	if cfg.BufferItems <= 0 {
		cfg.BufferItems = 64
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Provider{c: c}, nil
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := p.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	if !ok {
		p.c.Del(key)
		return nil, false, nil
	}
	return b, true, nil
}

// Set waits for ristretto's write buffer so a following Get observes the
// value. Admission may still reject it, reported as ok=false.
func (p *Provider) Set(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if ttl < 0 {
		ttl = 0
	}
	if !p.c.SetWithTTL(key, value, int64(len(value)), ttl) {
		return false, nil
	}
	p.c.Wait()
	return true, nil
}

func (p *Provider) Del(_ context.Context, key string) error {
	p.c.Del(key)
	return nil
}

func (p *Provider) Close(_ context.Context) error {
	p.c.Wait()
	p.c.Close()
	return nil
}

// Metrics exposes ristretto counters when Config.Metrics is set.
func (p *Provider) Metrics() *rc.Metrics { return p.c.Metrics }

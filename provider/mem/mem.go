// Package mem is an in-process map provider with per-entry TTL. It backs
// tests and the CLI.
package mem

import (
	"context"
	"sync"
	"time"

	"github.com/unkn0wn-root/layout/provider"
)

type entry struct {
	v   []byte
	exp time.Time // zero => no TTL
}

type Provider struct {
	mu  sync.RWMutex
	m   map[string]entry
	now func() time.Time
}

var _ provider.Provider = (*Provider)(nil)

func New() *Provider {
	return &Provider{m: make(map[string]entry), now: time.Now}
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	p.mu.RLock()
	e, ok := p.m[key]
	p.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.exp.IsZero() && p.now().After(e.exp) {
		p.mu.Lock()
		if cur, ok := p.m[key]; ok && cur.exp.Equal(e.exp) {
			delete(p.m, key)
		}
		p.mu.Unlock()
		return nil, false, nil
	}
	return e.v, true, nil
}

func (p *Provider) Set(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	var exp time.Time
	if ttl > 0 {
		exp = p.now().Add(ttl)
	}
	v := append([]byte(nil), value...)
	p.mu.Lock()
	p.m[key] = entry{v: v, exp: exp}
	p.mu.Unlock()
	return true, nil
}

func (p *Provider) Del(_ context.Context, key string) error {
	p.mu.Lock()
	delete(p.m, key)
	p.mu.Unlock()
	return nil
}

func (p *Provider) Close(context.Context) error { return nil }

// Len reports the number of stored keys, expired or not.
func (p *Provider) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.m)
}

// Put stores value under key with no TTL, bypassing any caller. Tests use it
// to plant foreign or corrupt entries.
func (p *Provider) Put(key string, value []byte) {
	p.mu.Lock()
	p.m[key] = entry{v: append([]byte(nil), value...)}
	p.mu.Unlock()
}

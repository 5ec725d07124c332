// Package badger persists entries in a dgraph-io/badger key-value store.
// Badger honours per-entry TTLs natively.
package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v3"

	"github.com/unkn0wn-root/layout/provider"
)

type Provider struct {
	db      *badger.DB
	closeDB bool
}

var _ provider.Provider = (*Provider)(nil)

type Config struct {
	// Dir is the database directory. Empty runs badger in memory.
	Dir string
	// DB, when set, is used instead of opening Dir and is not closed by Close.
	DB *badger.DB
}

func New(cfg Config) (*Provider, error) {
	if cfg.DB != nil {
		return &Provider{db: cfg.DB}, nil
	}
	opts := badger.DefaultOptions(cfg.Dir).WithLogger(nil)
	if cfg.Dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Provider{db: db, closeDB: true}, nil
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	var out []byte
	err := p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func (p *Provider) Set(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	e := badger.NewEntry([]byte(key), value)
	if ttl > 0 {
		e = e.WithTTL(ttl)
	}
	if err := p.db.Update(func(txn *badger.Txn) error { return txn.SetEntry(e) }); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Provider) Del(_ context.Context, key string) error {
	return p.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

func (p *Provider) Close(context.Context) error {
	if !p.closeDB {
		return nil
	}
	return p.db.Close()
}

// Package store keeps layout-encoded records in a byte provider.
//
// Each value is a wire entry carrying the schema fingerprint next to the
// payload. A reader whose schema differs, or who finds bytes it cannot
// decode, deletes the entry and reports a miss.
//
// Keys:
//
//	rec:<ns>:<key>
package store

import (
	"bytes"
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/unkn0wn-root/layout"
	"github.com/unkn0wn-root/layout/codec"
	"github.com/unkn0wn-root/layout/internal/wire"
	"github.com/unkn0wn-root/layout/provider"
)

const defaultTTL = 10 * time.Minute

// Schema is a layout codec that can identify its wire layout.
// *layout.Schema[T] satisfies it.
type Schema[T any] interface {
	layout.Codec[T]
	Fingerprint() uint64
}

// Options configures a Store. Namespace, Provider and Schema are required.
type Options[T any] struct {
	Namespace string // e.g. "account"; isolates keys of different record types
	Provider  provider.Provider
	Schema    Schema[T]

	TTL      time.Duration // 0 => 10m
	MaxEntry int           // max payload bytes accepted on read; 0 => unlimited
	Disabled bool          // every Get misses and every Put is dropped

	Logger layout.Logger // nil => layout.NopLogger
	Hooks  Hooks         // nil => NopHooks
}

type Store[T any] struct {
	ns       string
	provider provider.Provider
	codec    codec.Codec[T]
	verify   codec.Codec[T]
	fp       uint64
	ttl      time.Duration
	enabled  bool
	log      layout.Logger
	hooks    Hooks
}

func New[T any](opts Options[T]) (*Store[T], error) {
	if opts.Provider == nil {
		return nil, errors.New("store: provider is required")
	}
	if opts.Schema == nil {
		return nil, errors.New("store: schema is required")
	}
	if opts.Namespace == "" {
		return nil, errors.New("store: namespace is required")
	}

	return &Store[T]{
		ns:       opts.Namespace,
		provider: opts.Provider,
		codec: codec.LimitCodec[T]{
			Inner:     codec.NewLayout[T](opts.Schema),
			MaxDecode: opts.MaxEntry,
		},
		verify:  codec.NewLayout[T](opts.Schema),
		fp:      opts.Schema.Fingerprint(),
		ttl:     coalesce(opts.TTL, defaultTTL),
		enabled: !opts.Disabled,
		log:     coalesce[layout.Logger](opts.Logger, layout.NopLogger{}),
		hooks:   coalesce[Hooks](opts.Hooks, NopHooks{}),
	}, nil
}

func (s *Store[T]) Enabled() bool { return s.enabled }

func (s *Store[T]) Close(ctx context.Context) error {
	return s.provider.Close(ctx)
}

// Get returns the record stored under key. Entries written with another
// schema, or that fail to decode, are deleted and reported as a miss.
func (s *Store[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var zero T
	if !s.enabled {
		return zero, false, nil
	}
	k := s.key(key)
	raw, ok, err := s.provider.Get(ctx, k)
	if err != nil {
		return zero, false, errors.Wrapf(err, "store: get %s", k)
	}
	if !ok {
		return zero, false, nil
	}
	fp, payload, err := wire.DecodeSingle(raw)
	if err != nil {
		s.selfHeal(ctx, k, "corrupt", err)
		return zero, false, nil
	}
	if fp != s.fp {
		s.selfHeal(ctx, k, "schema", nil)
		return zero, false, nil
	}
	// decoded vectors alias their input; keep them off provider memory
	v, err := s.codec.Decode(append([]byte(nil), payload...))
	if err != nil {
		s.selfHeal(ctx, k, "decode", err)
		return zero, false, nil
	}
	return v, true, nil
}

// Put encodes rec and stores it under key for the configured TTL.
func (s *Store[T]) Put(ctx context.Context, key string, rec T) error {
	return s.PutTTL(ctx, key, rec, 0)
}

// PutTTL is Put with an explicit TTL; 0 uses the store default.
// A record whose encoding does not decode back to itself is refused with
// ErrUnreadable and nothing is written.
func (s *Store[T]) PutTTL(ctx context.Context, key string, rec T, ttl time.Duration) error {
	if !s.enabled {
		return nil
	}
	if ttl == 0 {
		ttl = s.ttl
	}
	payload, err := s.codec.Encode(rec)
	if err != nil {
		return errors.Wrapf(err, "store: encode %s", key)
	}
	if err := s.readable(payload); err != nil {
		return errors.Wrapf(err, "store: encode %s", key)
	}
	entry, err := wire.EncodeSingle(s.fp, payload)
	if err != nil {
		return errors.Wrapf(err, "store: frame %s", key)
	}
	k := s.key(key)
	ok, err := s.provider.Set(ctx, k, entry, ttl)
	if err != nil {
		return errors.Wrapf(err, "store: set %s", k)
	}
	if !ok {
		s.hooks.ProviderSetRejected(k, len(entry))
		s.log.Debug("store: set rejected by provider", layout.Fields{"key": k, "bytes": len(entry)})
	}
	return nil
}

func (s *Store[T]) Del(ctx context.Context, key string) error {
	if !s.enabled {
		return nil
	}
	k := s.key(key)
	if err := s.provider.Del(ctx, k); err != nil {
		return errors.Wrapf(err, "store: del %s", k)
	}
	return nil
}

// GetMany looks up keys one by one. Found records are keyed by their key;
// missing lists the rest in input order.
func (s *Store[T]) GetMany(ctx context.Context, keys []string) (map[string]T, []string, error) {
	out := make(map[string]T, len(keys))
	var missing []string
	for _, key := range keys {
		v, ok, err := s.Get(ctx, key)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			out[key] = v
		} else {
			missing = append(missing, key)
		}
	}
	return out, missing, nil
}

// Export snapshots the records under keys into a single bulk blob. Missing
// keys are skipped. The blob carries the schema fingerprint, so Import into
// a store with a different schema fails.
func (s *Store[T]) Export(ctx context.Context, keys []string) ([]byte, int, error) {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	items := make([]wire.BulkItem, 0, len(sorted))
	for _, key := range sorted {
		v, ok, err := s.Get(ctx, key)
		if err != nil {
			return nil, 0, err
		}
		if !ok {
			continue
		}
		payload, err := s.codec.Encode(v)
		if err != nil {
			return nil, 0, errors.Wrapf(err, "store: encode %s", key)
		}
		items = append(items, wire.BulkItem{Key: key, Payload: payload})
	}
	blob, err := wire.EncodeBulk(s.fp, items)
	if err != nil {
		return nil, 0, errors.Wrap(err, "store: export")
	}
	return blob, len(items), nil
}

// Import writes every record of an Export blob and returns how many it
// stored. Each payload is decoded before anything is written, so a bad blob
// leaves the store untouched.
func (s *Store[T]) Import(ctx context.Context, blob []byte) (int, error) {
	fp, items, err := wire.DecodeBulk(blob)
	if err != nil {
		return 0, errors.Wrap(err, "store: import")
	}
	if fp != s.fp {
		return 0, errors.Wrapf(ErrSchemaChanged, "store: import fingerprint %x, want %x", fp, s.fp)
	}
	recs := make([]T, len(items))
	for i, it := range items {
		if recs[i], err = s.codec.Decode(it.Payload); err != nil {
			return 0, errors.Wrapf(err, "store: import %s", it.Key)
		}
	}
	s.hooks.BulkImported(s.ns, len(items))
	for i, it := range items {
		if err := s.Put(ctx, it.Key, recs[i]); err != nil {
			return i, err
		}
	}
	return len(items), nil
}

// readable decodes payload and encodes the result again. An optional
// followed by bytes that can pass for its value reads back differently from
// what was written.
func (s *Store[T]) readable(payload []byte) error {
	back, err := s.verify.Decode(payload)
	if err != nil {
		return errors.Wrap(ErrUnreadable, err.Error())
	}
	again, err := s.verify.Encode(back)
	if err != nil {
		return errors.Wrap(ErrUnreadable, err.Error())
	}
	if !bytes.Equal(again, payload) {
		return ErrUnreadable
	}
	return nil
}

func (s *Store[T]) selfHeal(ctx context.Context, k, reason string, cause error) {
	s.hooks.SelfHeal(k, reason)
	fields := layout.Fields{"key": k, "reason": reason}
	if cause != nil {
		fields["err"] = cause
	}
	s.log.Debug("store: dropping entry", fields)
	if err := s.provider.Del(ctx, k); err != nil {
		s.log.Warn("store: self-heal delete failed", layout.Fields{"key": k, "err": err})
	}
}

func (s *Store[T]) key(userKey string) string {
	return "rec:" + s.ns + ":" + userKey
}

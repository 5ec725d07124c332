// Package sloghooks logs codec and store events through log/slog, with
// sampling for the noisy ones and redaction of storage keys.
package sloghooks

import (
	"log/slog"
	"strconv"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"

	"github.com/unkn0wn-root/layout"
	"github.com/unkn0wn-root/layout/store"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	OptionalAbsentEvery uint64
	SelfHealEvery       uint64
	// Optional key redactor. Defaults to a 64-bit xxhash in hex.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	absentCtr   atomic.Uint64
	selfHealCtr atomic.Uint64
}

var (
	_ layout.Hooks = (*Hooks)(nil)
	_ store.Hooks  = (*Hooks)(nil)
)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	return strconv.FormatUint(xxhash.Sum64String(k), 16)
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n <= 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) OptionalAbsent(record, field string, offset int) {
	if h.l == nil || !sample(h.opts.OptionalAbsentEvery, &h.absentCtr) {
		return
	}
	h.l.Debug("layout.optional_absent",
		"record", record,
		"field", field,
		"offset", offset)
}

func (h *Hooks) DecodeFailed(record, field string, offset int, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("layout.decode_failed",
		"record", record,
		"field", field,
		"offset", offset,
		"err", err)
}

func (h *Hooks) EncodeFailed(record, field string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("layout.encode_failed",
		"record", record,
		"field", field,
		"err", err)
}

func (h *Hooks) SelfHeal(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Debug("layout.store.self_heal",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) ProviderSetRejected(storageKey string, size int) {
	if h.l == nil {
		return
	}
	h.l.Warn("layout.store.provider_set_rejected",
		"key", h.redact(storageKey),
		"bytes", size)
}

func (h *Hooks) BulkImported(ns string, n int) {
	if h.l == nil {
		return
	}
	h.l.Info("layout.store.bulk_imported",
		"ns", ns,
		"records", n)
}

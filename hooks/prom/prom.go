// Package promhooks counts codec and store events as Prometheus metrics.
package promhooks

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/unkn0wn-root/layout"
	"github.com/unkn0wn-root/layout/store"
)

// Hooks holds the metric vectors. Labels carry record and field names,
// never storage keys, to keep cardinality bounded.
type Hooks struct {
	optionalAbsent *prometheus.CounterVec
	decodeFailed   *prometheus.CounterVec
	encodeFailed   *prometheus.CounterVec
	selfHeal       *prometheus.CounterVec
	setRejected    prometheus.Counter
	imported       *prometheus.CounterVec
}

var (
	_ layout.Hooks = (*Hooks)(nil)
	_ store.Hooks  = (*Hooks)(nil)
)

// New registers the metrics with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Hooks {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Hooks{
		optionalAbsent: f.NewCounterVec(prometheus.CounterOpts{
			Name: "layout_optional_absent_total",
			Help: "Optional fields decoded as absent",
		}, []string{"record", "field"}),
		decodeFailed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "layout_decode_failures_total",
			Help: "Record decodes that aborted",
		}, []string{"record", "field"}),
		encodeFailed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "layout_encode_failures_total",
			Help: "Record encodes that failed",
		}, []string{"record", "field"}),
		selfHeal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "layout_store_self_heal_total",
			Help: "Store entries deleted on read",
		}, []string{"reason"}),
		setRejected: f.NewCounter(prometheus.CounterOpts{
			Name: "layout_store_set_rejected_total",
			Help: "Writes dropped by the provider",
		}),
		imported: f.NewCounterVec(prometheus.CounterOpts{
			Name: "layout_store_imported_records_total",
			Help: "Records written by Import",
		}, []string{"ns"}),
	}
}

func (h *Hooks) OptionalAbsent(record, field string, _ int) {
	h.optionalAbsent.WithLabelValues(record, field).Inc()
}

func (h *Hooks) DecodeFailed(record, field string, _ int, _ error) {
	h.decodeFailed.WithLabelValues(record, field).Inc()
}

func (h *Hooks) EncodeFailed(record, field string, _ error) {
	h.encodeFailed.WithLabelValues(record, field).Inc()
}

func (h *Hooks) SelfHeal(_, reason string) { h.selfHeal.WithLabelValues(reason).Inc() }

func (h *Hooks) ProviderSetRejected(string, int) { h.setRejected.Inc() }

func (h *Hooks) BulkImported(ns string, n int) { h.imported.WithLabelValues(ns).Add(float64(n)) }

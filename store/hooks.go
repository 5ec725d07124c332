package store

// Hooks report store events worth counting. They run inline with store
// calls and must not block; wrap slow sinks with hooks/async.
type Hooks interface {
	// An entry was deleted on read. reason is "corrupt", "schema" or "decode".
	SelfHeal(storageKey, reason string)

	// The provider dropped a write under pressure.
	ProviderSetRejected(storageKey string, size int)

	// Import accepted a blob of n records.
	BulkImported(ns string, n int)
}

type NopHooks struct{}

func (NopHooks) SelfHeal(string, string)         {}
func (NopHooks) ProviderSetRejected(string, int) {}
func (NopHooks) BulkImported(string, int)        {}

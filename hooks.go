package layout

// Hooks are lightweight callbacks for decode events worth counting.
// Implementations MUST be cheap and non-blocking: they run inside Decode.
// Wrap slow sinks with hooks/async.
type Hooks interface {
	// An optional field decoded as absent.
	OptionalAbsent(record, field string, offset int)

	// A decode aborted. Reported once, by the outermost record; field is
	// the dotted path of the failing field, empty when the injection hook
	// failed.
	DecodeFailed(record, field string, offset int, err error)

	// An encode failed, e.g. a vector longer than its length field allows.
	EncodeFailed(record, field string, err error)
}

// NopHooks is the default no-op.
type NopHooks struct{}

func (NopHooks) OptionalAbsent(string, string, int)       {}
func (NopHooks) DecodeFailed(string, string, int, error) {}
func (NopHooks) EncodeFailed(string, string, error)      {}

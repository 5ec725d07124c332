package store

import "github.com/pkg/errors"

// ErrSchemaChanged means a blob was written by a schema with a different
// fingerprint.
var ErrSchemaChanged = errors.New("store: schema fingerprint mismatch")

// ErrUnreadable means a record encodes to bytes its own schema decodes to
// something else, so a stored entry could never be read back.
var ErrUnreadable = errors.New("store: record does not decode back to its encoding")

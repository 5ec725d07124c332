// Package layout encodes and decodes little-endian binary records described
// by a schema: an ordered list of named fields, each bound to a codec.
//
// Wire format:
//   - integers are fixed width little-endian (u8 ... u128, i8 ... i128)
//   - bool is one byte; any nonzero byte decodes as true
//   - vectors are a 1, 2, 4 or 8 byte length followed by that many bytes
//   - optionals occupy zero bytes when absent, else the inner encoding
//   - nested records are inlined, with no framing of their own
//
// Fields are written in declaration order. Excluded fields and virtual
// fields never touch the wire; an InjectFunc fills them after decode.
//
// An absent optional leaves no trace, so the bytes of the fields after it
// are tried as its value first. Put optionals last unless what follows can
// never decode as the inner codec.
//
// Declaring a schema:
//
//	type Account struct {
//		ID      uint64
//		Data    []byte
//		Balance *uint32
//	}
//
//	var accountSchema = layout.MustSchema(layout.Options[Account]{Name: "Account"},
//		layout.Bind("id", layout.U64, func(a *Account) *uint64 { return &a.ID }),
//		layout.Bind("data", layout.VecU8, func(a *Account) *[]byte { return &a.Data }),
//		layout.Bind("balance", layout.Optional(layout.U32), func(a *Account) **uint32 { return &a.Balance }),
//	)
//
//	b, err := accountSchema.Marshal(acc)
//	acc, err = accountSchema.Unmarshal(b)
//
// Decode errors are *FieldError values carrying the dotted field path and
// the byte offset; errors.Is reaches the sentinel underneath.
//
// A Schema is itself a Codec, so records nest. Schemas are immutable after
// NewSchema and safe for concurrent use; a Cursor is not.
package layout

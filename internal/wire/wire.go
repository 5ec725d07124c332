// Package wire frames store entries. Entries are themselves layout records:
//
//	single: magic u32 | version u8 | kind u8 | fingerprint u64 | payload vec<4>
//	bulk:   magic u32 | version u8 | kind u8 | fingerprint u64 | n u32 |
//	        (key vec<2> | payload vec<4>) * n
//
// The fingerprint is the record schema's; readers compare it to their own
// and treat a difference as a miss.
package wire

import (
	"errors"
	"fmt"

	"github.com/unkn0wn-root/layout"
)

const (
	Magic      uint32 = 0x4F59414C // "LAYO" little-endian
	version    byte   = 1
	kindSingle byte   = 1
	kindBulk   byte   = 2
)

var ErrCorrupt = errors.New("layout: corrupt entry")

type header struct {
	Magic   uint32
	Version uint8
	Kind    uint8
}

var headerSchema = layout.MustSchema(layout.Options[header]{
	Name: "header",
	Inject: func(_ *layout.Schema[header], h *header) error {
		if h.Magic != Magic || h.Version != version {
			return ErrCorrupt
		}
		return nil
	},
},
	layout.Bind("magic", layout.U32, func(h *header) *uint32 { return &h.Magic }),
	layout.Bind("version", layout.U8, func(h *header) *uint8 { return &h.Version }),
	layout.Bind("kind", layout.U8, func(h *header) *uint8 { return &h.Kind }),
)

type single struct {
	Header      header
	Fingerprint uint64
	Payload     []byte
}

var singleSchema = layout.MustSchema(layout.Options[single]{Name: "single"},
	layout.Bind("header", layout.Codec[header](headerSchema), func(s *single) *header { return &s.Header }),
	layout.Bind("fingerprint", layout.U64, func(s *single) *uint64 { return &s.Fingerprint }),
	layout.Bind("payload", layout.VecU8, func(s *single) *[]byte { return &s.Payload }),
)

func EncodeSingle(fingerprint uint64, payload []byte) ([]byte, error) {
	return singleSchema.Marshal(single{
		Header:      header{Magic: Magic, Version: version, Kind: kindSingle},
		Fingerprint: fingerprint,
		Payload:     payload,
	})
}

// DecodeSingle returns the fingerprint and a payload slice aliasing b.
func DecodeSingle(b []byte) (fingerprint uint64, payload []byte, err error) {
	s, err := singleSchema.Unmarshal(b)
	if err != nil {
		return 0, nil, corrupt(err)
	}
	if s.Header.Kind != kindSingle {
		return 0, nil, fmt.Errorf("%w: kind %d", ErrCorrupt, s.Header.Kind)
	}
	return s.Fingerprint, s.Payload, nil
}

// BulkItem is one member of a bulk entry. Keys are 1..65535 bytes.
type BulkItem struct {
	Key     string
	Payload []byte
}

var itemSchema = layout.MustSchema(layout.Options[BulkItem]{Name: "item"},
	layout.BindFunc("key", layout.Vector(2),
		func(it *BulkItem) ([]byte, error) {
			if it.Key == "" {
				return nil, fmt.Errorf("%w: empty key", ErrCorrupt)
			}
			return []byte(it.Key), nil
		},
		func(it *BulkItem, b []byte) error {
			if len(b) == 0 {
				return fmt.Errorf("%w: empty key", ErrCorrupt)
			}
			it.Key = string(b)
			return nil
		}),
	layout.Bind("payload", layout.VecU8, func(it *BulkItem) *[]byte { return &it.Payload }),
)

// items is a u32 count followed by that many items.
type items struct{}

// smallest encoded item: 2-byte key length, 1 key byte, 4-byte payload length
const minItem = 2 + 1 + 4

func (items) Kind() layout.Kind { return layout.KindVector }

func (items) Decode(c *layout.Cursor) ([]BulkItem, error) {
	n, err := layout.U32.Decode(c)
	if err != nil {
		return nil, err
	}
	if uint64(n)*minItem > uint64(c.Len()) {
		return nil, fmt.Errorf("%w: %d items in %d bytes", layout.ErrInsufficientBytes, n, c.Len())
	}
	out := make([]BulkItem, 0, n)
	for i := uint32(0); i < n; i++ {
		it, err := itemSchema.Decode(c)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, nil
}

func (items) Append(dst []byte, v []BulkItem) ([]byte, error) {
	dst, _ = layout.U32.Append(dst, uint32(len(v)))
	for _, it := range v {
		var err error
		if dst, err = itemSchema.Append(dst, it); err != nil {
			return dst, err
		}
	}
	return dst, nil
}

type bulk struct {
	Header      header
	Fingerprint uint64
	Items       []BulkItem
}

var bulkSchema = layout.MustSchema(layout.Options[bulk]{Name: "bulk"},
	layout.Bind("header", layout.Codec[header](headerSchema), func(b *bulk) *header { return &b.Header }),
	layout.Bind("fingerprint", layout.U64, func(b *bulk) *uint64 { return &b.Fingerprint }),
	layout.Bind("items", layout.Codec[[]BulkItem](items{}), func(b *bulk) *[]BulkItem { return &b.Items }),
)

func EncodeBulk(fingerprint uint64, its []BulkItem) ([]byte, error) {
	return bulkSchema.Marshal(bulk{
		Header:      header{Magic: Magic, Version: version, Kind: kindBulk},
		Fingerprint: fingerprint,
		Items:       its,
	})
}

// DecodeBulk returns the fingerprint and items; payloads alias b.
func DecodeBulk(b []byte) (uint64, []BulkItem, error) {
	v, err := bulkSchema.Unmarshal(b)
	if err != nil {
		return 0, nil, corrupt(err)
	}
	if v.Header.Kind != kindBulk {
		return 0, nil, fmt.Errorf("%w: kind %d", ErrCorrupt, v.Header.Kind)
	}
	return v.Fingerprint, v.Items, nil
}

func corrupt(err error) error {
	if errors.Is(err, ErrCorrupt) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrCorrupt, err)
}

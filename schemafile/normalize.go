package schemafile

import (
	"encoding/json"
	"maps"
	"math"
	"math/big"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/unkn0wn-root/layout"
	"github.com/unkn0wn-root/layout/codec"
)

// Normalize converts loosely typed input, as produced by JSON or YAML
// decoders, into a Record of the exact types the named record encodes.
//
// Integers may be Go integers, integral floats, json.Number or decimal and
// 0x strings. Vectors may be 0x hex strings, plain strings (taken as UTF-8)
// or lists of byte values. Absent optionals and excluded fields may be
// omitted; any other missing or unknown field is an ErrSchemaMismatch.
// Virtual fields are copied through unchanged.
func (r *Registry) Normalize(name string, in map[string]any) (Record, error) {
	rec, ok := r.records[name]
	if !ok {
		_, err := r.Lookup(name)
		return nil, err
	}
	return r.normalize(rec, in)
}

func (r *Registry) normalize(rec *record, in map[string]any) (Record, error) {
	out := r.zero(rec)
	declared := make(map[string]bool, len(rec.types))
	for i, t := range rec.types {
		name := rec.decl.Fields[i].Name
		declared[name] = true
		v, present := in[name]
		switch {
		case t.virtual != "":
			if present {
				out[name] = v
			}
			continue
		case !present && t.kind == layout.KindOptional:
			out[name] = nil
			continue
		case !present && rec.excluded[name]:
			continue
		case !present:
			return nil, errors.Wrapf(layout.ErrSchemaMismatch, "%s.%s: missing", rec.decl.Name, name)
		}
		x, err := r.value(t, v)
		if err != nil {
			return nil, errors.Wrapf(err, "%s.%s", rec.decl.Name, name)
		}
		out[name] = x
	}
	for _, k := range slices.Sorted(maps.Keys(in)) {
		if !declared[k] {
			return nil, errors.Wrapf(layout.ErrSchemaMismatch, "%s has no field %q", rec.decl.Name, k)
		}
	}
	return out, nil
}

func (r *Registry) value(t fieldType, v any) (any, error) {
	switch t.kind {
	case layout.KindBool:
		return toBool(v)
	case layout.KindUint8:
		return convert(v, toUint, 8, func(u uint64) uint8 { return uint8(u) })
	case layout.KindUint16:
		return convert(v, toUint, 16, func(u uint64) uint16 { return uint16(u) })
	case layout.KindUint32:
		return convert(v, toUint, 32, func(u uint64) uint32 { return uint32(u) })
	case layout.KindUint64:
		return convert(v, toUint, 64, func(u uint64) uint64 { return u })
	case layout.KindInt8:
		return convert(v, toInt, 8, func(n int64) int8 { return int8(n) })
	case layout.KindInt16:
		return convert(v, toInt, 16, func(n int64) int16 { return int16(n) })
	case layout.KindInt32:
		return convert(v, toInt, 32, func(n int64) int32 { return int32(n) })
	case layout.KindInt64:
		return convert(v, toInt, 64, func(n int64) int64 { return n })
	case layout.KindUint128:
		x, err := toBig(v)
		if err != nil {
			return nil, err
		}
		u, ok := layout.Uint128FromBig(x)
		if !ok {
			return nil, outOfRange(x, "u128")
		}
		return u, nil
	case layout.KindInt128:
		x, err := toBig(v)
		if err != nil {
			return nil, err
		}
		n, ok := layout.Int128FromBig(x)
		if !ok {
			return nil, outOfRange(x, "i128")
		}
		return n, nil
	case layout.KindVector:
		return toBytes(v)
	case layout.KindOptional:
		if v == nil {
			return nil, nil
		}
		return r.value(*t.elem, v)
	case layout.KindComposite:
		switch m := v.(type) {
		case Record:
			return r.normalize(r.records[t.record], m)
		case map[string]any:
			return r.normalize(r.records[t.record], m)
		}
		return nil, errors.Wrapf(layout.ErrSchemaMismatch, "%s wants a map, got %T", t.record, v)
	}
	return nil, errors.Wrapf(layout.ErrUnsupportedFieldType, "%s", t)
}

func convert[N, V any](v any, parse func(any, int) (N, error), bits int, to func(N) V) (any, error) {
	n, err := parse(v, bits)
	if err != nil {
		return nil, err
	}
	return to(n), nil
}

func toUint(v any, bits int) (uint64, error) {
	x, err := toBig(v)
	if err != nil {
		return 0, err
	}
	if x.Sign() < 0 || x.BitLen() > bits {
		return 0, outOfRange(x, "u"+strconv.Itoa(bits))
	}
	return x.Uint64(), nil
}

func toInt(v any, bits int) (int64, error) {
	x, err := toBig(v)
	if err != nil {
		return 0, err
	}
	if !x.IsInt64() {
		return 0, outOfRange(x, "i"+strconv.Itoa(bits))
	}
	n := x.Int64()
	if lim := int64(1) << (bits - 1); bits < 64 && (n < -lim || n >= lim) {
		return 0, outOfRange(x, "i"+strconv.Itoa(bits))
	}
	return n, nil
}

func toBig(v any) (*big.Int, error) {
	switch x := v.(type) {
	case int:
		return big.NewInt(int64(x)), nil
	case int8:
		return big.NewInt(int64(x)), nil
	case int16:
		return big.NewInt(int64(x)), nil
	case int32:
		return big.NewInt(int64(x)), nil
	case int64:
		return big.NewInt(x), nil
	case uint:
		return new(big.Int).SetUint64(uint64(x)), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(x)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(x)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(x)), nil
	case uint64:
		return new(big.Int).SetUint64(x), nil
	case layout.Uint128:
		return x.Big(), nil
	case layout.Int128:
		return x.Big(), nil
	case float64:
		if math.IsInf(x, 0) || math.IsNaN(x) || x != math.Trunc(x) {
			return nil, errors.Wrapf(layout.ErrSchemaMismatch, "%v is not an integer", x)
		}
		n, _ := big.NewFloat(x).Int(nil)
		return n, nil
	case json.Number:
		return parseBig(string(x))
	case string:
		return parseBig(x)
	}
	return nil, errors.Wrapf(layout.ErrSchemaMismatch, "want an integer, got %T", v)
}

// parseBig accepts decimal and 0x, 0o, 0b prefixed integers.
func parseBig(s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(strings.TrimSpace(s), 0)
	if !ok {
		return nil, errors.Wrapf(layout.ErrSchemaMismatch, "%q is not an integer", s)
	}
	return n, nil
}

func outOfRange(x *big.Int, typ string) error {
	return errors.Wrapf(layout.ErrSchemaMismatch, "%s out of range for %s", x, typ)
}

func toBool(v any) (any, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		if err != nil {
			return nil, errors.Wrapf(layout.ErrSchemaMismatch, "%q is not a bool", x)
		}
		return b, nil
	}
	n, err := toBig(v)
	if err != nil {
		return nil, err
	}
	return n.Sign() != 0, nil
}

func toBytes(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return []byte(nil), nil
	case []byte:
		return x, nil
	case string:
		if strings.HasPrefix(x, "0x") || strings.HasPrefix(x, "0X") {
			b, err := codec.Hex{}.Decode([]byte(x))
			if err != nil {
				return nil, errors.Wrapf(layout.ErrSchemaMismatch, "bad hex: %v", err)
			}
			return b, nil
		}
		return []byte(x), nil
	case []any:
		b := make([]byte, len(x))
		for i, e := range x {
			u, err := toUint(e, 8)
			if err != nil {
				return nil, errors.Wrapf(err, "byte %d", i)
			}
			b[i] = byte(u)
		}
		return b, nil
	}
	return nil, errors.Wrapf(layout.ErrSchemaMismatch, "want bytes, got %T", v)
}

// Plain converts a decoded record into values every interchange format can
// carry: vectors become 0x hex strings, 128-bit integers decimal strings and
// nested records plain maps. Absent optionals stay nil.
func Plain(rec Record) map[string]any {
	out := make(map[string]any, len(rec))
	for k, v := range rec {
		out[k] = plain(v)
	}
	return out
}

func plain(v any) any {
	switch x := v.(type) {
	case []byte:
		h, _ := codec.Hex{}.Encode(x)
		return "0x" + string(h)
	case layout.Uint128:
		return x.String()
	case layout.Int128:
		return x.String()
	case Record:
		return Plain(x)
	case map[string]any:
		return Plain(Record(x))
	}
	return v
}

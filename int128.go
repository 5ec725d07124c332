package layout

import (
	"encoding/binary"
	"math/big"
)

// Uint128 is an unsigned 128-bit integer carried as two 64-bit halves.
// The codec treats it as an opaque 16-byte little-endian value.
type Uint128 struct {
	Lo, Hi uint64
}

func Uint128From64(v uint64) Uint128 { return Uint128{Lo: v} }

// Big returns u as a big.Int.
func (u Uint128) Big() *big.Int {
	var b [16]byte
	binary.BigEndian.PutUint64(b[:8], u.Hi)
	binary.BigEndian.PutUint64(b[8:], u.Lo)
	return new(big.Int).SetBytes(b[:])
}

func (u Uint128) String() string { return u.Big().String() }

// Uint128FromBig converts x, which must be in [0, 2^128).
func Uint128FromBig(x *big.Int) (Uint128, bool) {
	if x.Sign() < 0 || x.BitLen() > 128 {
		return Uint128{}, false
	}
	var b [16]byte
	x.FillBytes(b[:])
	return Uint128{Hi: binary.BigEndian.Uint64(b[:8]), Lo: binary.BigEndian.Uint64(b[8:])}, true
}

// Int128 is a two's complement signed 128-bit integer.
type Int128 struct {
	Lo uint64
	Hi int64
}

// Int128From64 sign-extends v.
func Int128From64(v int64) Int128 {
	return Int128{Lo: uint64(v), Hi: v >> 63}
}

var two128 = new(big.Int).Lsh(big.NewInt(1), 128)

func (i Int128) Big() *big.Int {
	x := Uint128{Lo: i.Lo, Hi: uint64(i.Hi)}.Big()
	if i.Hi < 0 {
		x.Sub(x, two128)
	}
	return x
}

func (i Int128) String() string { return i.Big().String() }

// Int128FromBig converts x, which must be in [-2^127, 2^127).
func Int128FromBig(x *big.Int) (Int128, bool) {
	if x.Sign() >= 0 {
		u, ok := Uint128FromBig(x)
		if !ok || u.Hi>>63 != 0 {
			return Int128{}, false
		}
		return Int128{Lo: u.Lo, Hi: int64(u.Hi)}, true
	}
	y := new(big.Int).Add(x, two128)
	u, ok := Uint128FromBig(y)
	if !ok || u.Hi>>63 == 0 {
		return Int128{}, false
	}
	return Int128{Lo: u.Lo, Hi: int64(u.Hi)}, true
}

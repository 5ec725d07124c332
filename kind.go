package layout

import "strconv"

// Kind is the type tag of a codec family.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindInt128
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindUint128
	KindOptional
	KindVector
	KindComposite
)

var kindNames = [...]string{
	KindInvalid:   "invalid",
	KindBool:      "bool",
	KindInt8:      "i8",
	KindInt16:     "i16",
	KindInt32:     "i32",
	KindInt64:     "i64",
	KindInt128:    "i128",
	KindUint8:     "u8",
	KindUint16:    "u16",
	KindUint32:    "u32",
	KindUint64:    "u64",
	KindUint128:   "u128",
	KindOptional:  "option",
	KindVector:    "vec",
	KindComposite: "struct",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Valid reports whether k names a known codec family.
func (k Kind) Valid() bool { return k > KindInvalid && k <= KindComposite }

// Fixed reports whether values of kind k always occupy the same number of bytes.
func (k Kind) Fixed() bool { return k >= KindBool && k <= KindUint128 }

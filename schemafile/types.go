package schemafile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/unkn0wn-root/layout"
)

// Virtual field types. Neither touches the wire.
const (
	typeConst = "const" // set to FieldDecl.Value after decode
	typeCopy  = "copy"  // set to the value of FieldDecl.From after decode
)

var primitives = map[string]layout.Kind{
	"bool": layout.KindBool,
	"u8":   layout.KindUint8,
	"u16":  layout.KindUint16,
	"u32":  layout.KindUint32,
	"u64":  layout.KindUint64,
	"u128": layout.KindUint128,
	"i8":   layout.KindInt8,
	"i16":  layout.KindInt16,
	"i32":  layout.KindInt32,
	"i64":  layout.KindInt64,
	"i128": layout.KindInt128,
}

// fieldType is a parsed type expression.
type fieldType struct {
	kind    layout.Kind
	width   int        // vector length prefix
	elem    *fieldType // option element
	record  string     // referenced record
	virtual string     // typeConst or typeCopy
}

func (t fieldType) String() string {
	switch {
	case t.virtual != "":
		return t.virtual
	case t.kind == layout.KindVector:
		return "vec<" + strconv.Itoa(t.width) + ">"
	case t.kind == layout.KindOptional:
		return "option<" + t.elem.String() + ">"
	case t.kind == layout.KindComposite:
		return t.record
	}
	return t.kind.String()
}

// refs appends the records t depends on.
func (t fieldType) refs(dst []string) []string {
	switch t.kind {
	case layout.KindComposite:
		return append(dst, t.record)
	case layout.KindOptional:
		return t.elem.refs(dst)
	}
	return dst
}

// parseType parses
//
//	bool | u8 ... u128 | i8 ... i128 | vec | vec<N> | option<T> | const | copy | RecordName
func parseType(s string) (fieldType, error) {
	s = strings.TrimSpace(s)
	if k, ok := primitives[s]; ok {
		return fieldType{kind: k}, nil
	}
	switch s {
	case "":
		return fieldType{}, fmt.Errorf("%w: empty type", layout.ErrUnsupportedFieldType)
	case "vec":
		return fieldType{kind: layout.KindVector, width: 4}, nil
	case typeConst, typeCopy:
		return fieldType{virtual: s}, nil
	}
	if arg, ok := generic(s, "vec"); ok {
		w, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil || (w != 1 && w != 2 && w != 4 && w != 8) {
			return fieldType{}, fmt.Errorf("%w: %q, vector length width must be 1, 2, 4 or 8", layout.ErrUnsupportedFieldType, s)
		}
		return fieldType{kind: layout.KindVector, width: w}, nil
	}
	if arg, ok := generic(s, "option"); ok {
		elem, err := parseType(arg)
		if err != nil {
			return fieldType{}, err
		}
		if elem.virtual != "" {
			return fieldType{}, fmt.Errorf("%w: %q, option of a virtual type", layout.ErrUnsupportedFieldType, s)
		}
		return fieldType{kind: layout.KindOptional, elem: &elem}, nil
	}
	if !isIdent(s) {
		return fieldType{}, fmt.Errorf("%w: %q", layout.ErrUnsupportedFieldType, s)
	}
	return fieldType{kind: layout.KindComposite, record: s}, nil
}

func generic(s, name string) (string, bool) {
	if !strings.HasPrefix(s, name+"<") || !strings.HasSuffix(s, ">") {
		return "", false
	}
	return s[len(name)+1 : len(s)-1], true
}

func isIdent(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return s != ""
}

func reserved(name string) bool {
	if _, ok := primitives[name]; ok {
		return true
	}
	switch name {
	case "vec", "option", typeConst, typeCopy:
		return true
	}
	return false
}

package schemafile_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/unkn0wn-root/layout"
	"github.com/unkn0wn-root/layout/schemafile"
)

const nestedYAML = `
records:
  - name: Outer
    fields:
      - {name: uint8,  type: u8}
      - {name: nested, type: Nested}
      - {name: uint64, type: u64}
  - name: Nested
    fields:
      - {name: uint16, type: u16}
      - {name: uint32, type: u32}
`

const recordYAML = `
records:
  - name: UIntTest
    exclude: [uint16]
    fields:
      - {name: vecu8,   type: vec}
      - {name: uint128, type: u128}
      - {name: uint8,   type: u8}
      - {name: uint16,  type: u16}
      - {name: uint32,  type: option<u32>}
      - {name: uint64,  type: u64}
      - {name: int32,   type: i32}
      - {name: bool,    type: bool}
      - {name: string,  type: const, value: test}
      - {name: again,   type: copy,  from: uint8}
`

var outerBytes = []byte{1, 0, 0, 3, 0, 0, 0, 1, 3, 0, 3, 1, 0, 0, 1}

var recordBytes = []byte{
	3, 0, 0, 0, 1, 2, 3,
	4, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	1,
	3, 0, 0, 0,
	1, 3, 0, 3, 1, 0, 0, 1,
	1, 0, 0, 1,
	0,
}

func compile(t *testing.T, src string) *schemafile.Registry {
	t.Helper()
	f, err := schemafile.Parse([]byte(src))
	require.NoError(t, err)
	r, err := schemafile.Compile(f, schemafile.Options{})
	require.NoError(t, err)
	return r
}

func TestNestedRecordsInAnyOrder(t *testing.T) {
	r := compile(t, nestedYAML)
	assert.Equal(t, []string{"Outer", "Nested"}, r.Names())

	s, err := r.Lookup("Outer")
	require.NoError(t, err)
	size, ok := s.Size()
	require.True(t, ok)
	assert.Equal(t, len(outerBytes), size)

	rec, err := s.Unmarshal(outerBytes)
	require.NoError(t, err)
	assert.Equal(t, schemafile.Record{
		"uint8":  uint8(1),
		"nested": schemafile.Record{"uint16": uint16(0), "uint32": uint32(3)},
		"uint64": uint64(72057598383227649),
	}, rec)

	enc, err := s.Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t, outerBytes, enc)

	_, err = s.Unmarshal(outerBytes[:3])
	require.ErrorIs(t, err, layout.ErrInsufficientBytes)
	var fe *layout.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "nested.uint32", fe.Field())
	assert.Equal(t, 3, fe.Offset)
}

type nested struct {
	U16 uint16
	U32 uint32
}

func TestFingerprintMatchesStaticSchema(t *testing.T) {
	static := layout.MustSchema(layout.Options[nested]{Name: "Nested"},
		layout.Bind("uint16", layout.U16, func(n *nested) *uint16 { return &n.U16 }),
		layout.Bind("uint32", layout.U32, func(n *nested) *uint32 { return &n.U32 }),
	)
	s, ok := compile(t, nestedYAML).Schema("Nested")
	require.True(t, ok)
	assert.Equal(t, static.Fingerprint(), s.Fingerprint())
	assert.Equal(t, static.Fields(), s.Fields())
}

func TestExcludeConstAndCopy(t *testing.T) {
	s, err := compile(t, recordYAML).Lookup("UIntTest")
	require.NoError(t, err)

	rec, err := s.Unmarshal(recordBytes)
	require.NoError(t, err)
	assert.Equal(t, schemafile.Record{
		"vecu8":   []byte{1, 2, 3},
		"uint128": layout.Uint128From64(4),
		"uint8":   uint8(1),
		"uint16":  uint16(0),
		"uint32":  uint32(3),
		"uint64":  uint64(72057598383227649),
		"int32":   int32(16777217),
		"bool":    false,
		"string":  "test",
		"again":   uint8(1),
	}, rec)

	enc, err := s.Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t, recordBytes, enc)

	desc := s.Fields()
	require.Len(t, desc, 10)
	assert.True(t, desc[3].Excluded)
	assert.Equal(t, "option<u32>", desc[4].Type)
	assert.Equal(t, "vec<4>", desc[0].Type)
	assert.True(t, desc[8].Virtual)
}

func TestOptionalAbsentIsNil(t *testing.T) {
	r := compile(t, `
records:
  - name: R
    fields:
      - {name: a, type: u8}
      - {name: b, type: option<Inner>}
  - name: Inner
    fields:
      - {name: x, type: u16}
`)
	s, _ := r.Schema("R")

	rec, err := s.Unmarshal([]byte{7})
	require.NoError(t, err)
	assert.Equal(t, schemafile.Record{"a": uint8(7), "b": nil}, rec)

	rec, err = s.Unmarshal([]byte{7, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, schemafile.Record{"x": uint16(1)}, rec["b"])

	enc, err := s.Marshal(schemafile.Record{"a": uint8(7), "b": nil})
	require.NoError(t, err)
	assert.Equal(t, []byte{7}, enc)
}

func TestCompileErrors(t *testing.T) {
	cases := []struct {
		name   string
		src    string
		target error
	}{
		{"unknown type", `
records:
  - name: R
    fields: [{name: a, type: u24}]`, layout.ErrUnsupportedFieldType},
		{"bad vector width", `
records:
  - name: R
    fields: [{name: a, type: vec<3>}]`, layout.ErrUnsupportedFieldType},
		{"option of virtual", `
records:
  - name: R
    fields: [{name: a, type: option<const>}]`, layout.ErrUnsupportedFieldType},
		{"unknown record", `
records:
  - name: R
    fields: [{name: a, type: Missing}]`, layout.ErrUnsupportedFieldType},
		{"self cycle", `
records:
  - name: R
    fields: [{name: a, type: option<R>}]`, schemafile.ErrSchemaCycle},
		{"cycle", `
records:
  - name: A
    fields: [{name: b, type: B}]
  - name: B
    fields: [{name: a, type: A}]`, schemafile.ErrSchemaCycle},
		{"duplicate record", `
records:
  - name: A
    fields: [{name: a, type: u8}]
  - name: A
    fields: [{name: a, type: u8}]`, schemafile.ErrDuplicateRecord},
		{"builtin name", `
records:
  - name: u8
    fields: [{name: a, type: u8}]`, schemafile.ErrDuplicateRecord},
		{"duplicate field", `
records:
  - name: A
    fields: [{name: a, type: u8}, {name: a, type: u16}]`, layout.ErrDuplicateField},
		{"unknown exclusion", `
records:
  - name: A
    exclude: [b]
    fields: [{name: a, type: u8}]`, layout.ErrSchemaMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := schemafile.Parse([]byte(tc.src))
			require.NoError(t, err)
			_, err = schemafile.Compile(f, schemafile.Options{})
			require.ErrorIs(t, err, tc.target)
		})
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := schemafile.Parse([]byte("records:\n  - name: R\n    feilds: []\n"))
	require.Error(t, err)
}

func TestCopyFromUnknownFieldFailsDecode(t *testing.T) {
	s, _ := compile(t, `
records:
  - name: R
    fields:
      - {name: a, type: u8}
      - {name: b, type: copy, from: nope}
`).Schema("R")
	_, err := s.Unmarshal([]byte{1})
	require.ErrorIs(t, err, layout.ErrSchemaMismatch)
}

func TestEncodeTypeErrors(t *testing.T) {
	s, _ := compile(t, nestedYAML).Schema("Outer")

	_, err := s.Marshal(schemafile.Record{"uint8": 1, "nested": schemafile.Record{}, "uint64": uint64(1)})
	require.ErrorIs(t, err, layout.ErrSchemaMismatch)

	_, err = s.Marshal(schemafile.Record{"uint8": uint8(1), "uint64": uint64(1)})
	require.ErrorIs(t, err, layout.ErrSchemaMismatch)
}

func TestNormalizeJSON(t *testing.T) {
	r := compile(t, recordYAML)
	in := `{
		"vecu8": "0x010203",
		"uint128": "4",
		"uint8": 1,
		"uint32": 3,
		"uint64": 72057598383227649,
		"int32": "0x1000001",
		"bool": false
	}`
	dec := json.NewDecoder(strings.NewReader(in))
	dec.UseNumber()
	var m map[string]any
	require.NoError(t, dec.Decode(&m))

	rec, err := r.Normalize("UIntTest", m)
	require.NoError(t, err)
	assert.Equal(t, uint16(0), rec["uint16"])

	s, _ := r.Schema("UIntTest")
	enc, err := s.Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t, recordBytes, enc)
}

func TestNormalizeYAML(t *testing.T) {
	r := compile(t, nestedYAML)
	var m map[string]any
	require.NoError(t, yaml.Unmarshal([]byte("uint8: 1\nnested: {uint16: 0, uint32: 3}\nuint64: 72057598383227649\n"), &m))

	rec, err := r.Normalize("Outer", m)
	require.NoError(t, err)
	s, _ := r.Schema("Outer")
	enc, err := s.Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t, outerBytes, enc)
}

func TestNormalizeErrors(t *testing.T) {
	r := compile(t, `
records:
  - name: R
    fields:
      - {name: a, type: u8}
      - {name: b, type: i8}
      - {name: c, type: vec<1>}
      - {name: d, type: option<u128>}
`)
	ok := map[string]any{"a": 1, "b": -1, "c": []any{1, 2}}
	rec, err := r.Normalize("R", ok)
	require.NoError(t, err)
	assert.Equal(t, schemafile.Record{"a": uint8(1), "b": int8(-1), "c": []byte{1, 2}, "d": nil}, rec)

	cases := map[string]map[string]any{
		"u8 overflow":  {"a": 256, "b": 0, "c": ""},
		"u8 negative":  {"a": -1, "b": 0, "c": ""},
		"i8 overflow":  {"a": 0, "b": 128, "c": ""},
		"fraction":     {"a": 1.5, "b": 0, "c": ""},
		"bad hex":      {"a": 0, "b": 0, "c": "0xzz"},
		"bad byte":     {"a": 0, "b": 0, "c": []any{300}},
		"missing":      {"a": 0, "c": ""},
		"unknown":      {"a": 0, "b": 0, "c": "", "e": 1},
		"u128 too big": {"a": 0, "b": 0, "c": "", "d": "340282366920938463463374607431768211456"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := r.Normalize("R", in)
			require.ErrorIs(t, err, layout.ErrSchemaMismatch)
		})
	}

	_, err = r.Normalize("Nope", ok)
	require.Error(t, err)
}

func TestNodeKeepsFieldOrder(t *testing.T) {
	r := compile(t, nestedYAML)
	s, _ := r.Schema("Outer")
	rec, err := s.Unmarshal(outerBytes)
	require.NoError(t, err)

	n, err := r.Node("Outer", rec)
	require.NoError(t, err)
	out, err := yaml.Marshal(n)
	require.NoError(t, err)
	assert.Equal(t, "uint8: 1\nnested:\n    uint16: 0\n    uint32: 3\nuint64: 72057598383227649\n", string(out))

	r = compile(t, `
records:
  - name: R
    fields:
      - {name: z, type: u8}
      - {name: b, type: option<Inner>}
      - {name: a, type: u8}
  - name: Inner
    fields:
      - {name: m, type: u16}
      - {name: k, type: u16}
`)
	n, err = r.Node("R", schemafile.Record{"z": uint8(1), "b": schemafile.Record{"m": uint16(2), "k": uint16(3)}, "a": uint8(4)})
	require.NoError(t, err)
	out, err = yaml.Marshal(n)
	require.NoError(t, err)
	assert.Equal(t, "z: 1\nb:\n    m: 2\n    k: 3\na: 4\n", string(out))

	_, err = r.Node("Missing", nil)
	assert.Error(t, err)
}

func TestPlainRoundTrip(t *testing.T) {
	r := compile(t, recordYAML)
	s, _ := r.Schema("UIntTest")
	rec, err := s.Unmarshal(recordBytes)
	require.NoError(t, err)

	p := schemafile.Plain(rec)
	assert.Equal(t, "0x010203", p["vecu8"])
	assert.Equal(t, "4", p["uint128"])

	js, err := json.Marshal(p)
	require.NoError(t, err)
	var m map[string]any
	dec := json.NewDecoder(strings.NewReader(string(js)))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&m))

	back, err := r.Normalize("UIntTest", m)
	require.NoError(t, err)
	enc, err := s.Marshal(back)
	require.NoError(t, err)
	assert.Equal(t, recordBytes, enc)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(nestedYAML), 0o600))

	r, err := schemafile.Load(path, schemafile.Options{})
	require.NoError(t, err)
	_, ok := r.Schema("Nested")
	assert.True(t, ok)

	_, err = schemafile.Load(filepath.Join(t.TempDir(), "missing.yaml"), schemafile.Options{})
	require.Error(t, err)
}

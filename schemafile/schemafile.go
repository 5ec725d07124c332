// Package schemafile compiles record layouts declared in YAML into
// layout schemas over untyped records.
//
//	records:
//	  - name: Nested
//	    fields:
//	      - {name: a, type: u16}
//	  - name: Outer
//	    exclude: [b]
//	    fields:
//	      - {name: n, type: Nested}
//	      - {name: b, type: option<vec<2>>}
//	      - {name: tag, type: const, value: v1}
//
// Records reference each other by name in any order; cycles are rejected.
package schemafile

import (
	"bytes"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/unkn0wn-root/layout"
)

var (
	ErrSchemaCycle     = errors.New("schemafile: record cycle")
	ErrDuplicateRecord = errors.New("schemafile: duplicate record")
)

// Record is a decoded dynamic record keyed by field name. Values are the
// exact codec types: bool, uint8 ... uint64, int8 ... int64, layout.Uint128,
// layout.Int128, []byte, nested Record, or nil for an absent optional.
type Record map[string]any

type File struct {
	Records []RecordDecl `yaml:"records"`
}

type RecordDecl struct {
	Name    string      `yaml:"name"`
	Exclude []string    `yaml:"exclude,omitempty"`
	Fields  []FieldDecl `yaml:"fields"`
}

type FieldDecl struct {
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`
	Value any    `yaml:"value,omitempty"` // const
	From  string `yaml:"from,omitempty"`  // copy
}

// Parse decodes a schema file. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, errors.Wrap(err, "schemafile: parse")
	}
	return &f, nil
}

type Options struct {
	Logger layout.Logger
	Hooks  layout.Hooks
}

// Load reads, parses and compiles the schema file at path.
func Load(path string, opts Options) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "schemafile: read")
	}
	f, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	r, err := Compile(f, opts)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return r, nil
}

type record struct {
	decl     RecordDecl
	types    []fieldType
	excluded map[string]bool
	schema   *layout.Schema[Record]
}

// Registry holds the compiled records of one schema file. It is immutable
// and safe for concurrent use.
type Registry struct {
	names   []string
	records map[string]*record
}

// Compile type-checks f and builds one schema per record, dependencies first.
func Compile(f *File, opts Options) (*Registry, error) {
	r := &Registry{records: make(map[string]*record, len(f.Records))}
	for _, d := range f.Records {
		switch {
		case !isIdent(d.Name):
			return nil, errors.Errorf("schemafile: invalid record name %q", d.Name)
		case reserved(d.Name):
			return nil, errors.Wrapf(ErrDuplicateRecord, "%s shadows a builtin type", d.Name)
		case r.records[d.Name] != nil:
			return nil, errors.Wrap(ErrDuplicateRecord, d.Name)
		}
		rec := &record{decl: d, excluded: make(map[string]bool, len(d.Exclude))}
		for _, x := range d.Exclude {
			rec.excluded[x] = true
		}
		for _, fd := range d.Fields {
			t, err := parseType(fd.Type)
			if err != nil {
				return nil, errors.Wrapf(err, "%s.%s", d.Name, fd.Name)
			}
			if t.virtual == typeCopy && fd.From == "" {
				return nil, errors.Errorf("schemafile: %s.%s: copy without from", d.Name, fd.Name)
			}
			rec.types = append(rec.types, t)
		}
		r.names = append(r.names, d.Name)
		r.records[d.Name] = rec
	}

	order, err := r.sort()
	if err != nil {
		return nil, err
	}
	for _, name := range order {
		if err := r.build(r.records[name], opts); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// sort orders records so that every record follows the records it embeds.
func (r *Registry) sort() ([]string, error) {
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[string]int, len(r.records))
	order := make([]string, 0, len(r.records))

	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return errors.Wrapf(ErrSchemaCycle, "%v", append(path, name))
		}
		state[name] = visiting
		rec := r.records[name]
		for i, t := range rec.types {
			for _, dep := range t.refs(nil) {
				if r.records[dep] == nil {
					return errors.Wrapf(layout.ErrUnsupportedFieldType, "%s.%s: unknown record %q", name, rec.decl.Fields[i].Name, dep)
				}
				if err := visit(dep, append(path, name)); err != nil {
					return err
				}
			}
		}
		state[name] = done
		order = append(order, name)
		return nil
	}
	for _, name := range r.names {
		if err := visit(name, nil); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func (r *Registry) build(rec *record, opts Options) error {
	fields := make([]layout.Field[Record], 0, len(rec.types))
	var virtual []int
	for i, t := range rec.types {
		name := rec.decl.Fields[i].Name
		get := func(m *Record) (any, error) { return (*m)[name], nil }
		set := func(m *Record, v any) error {
			(*m)[name] = v
			return nil
		}
		if t.virtual != "" {
			fields = append(fields, layout.VirtualFunc(name, get, set))
			virtual = append(virtual, i)
			continue
		}
		fields = append(fields, layout.BindFunc(name, r.codec(t), get, set))
	}

	s, err := layout.NewSchema(layout.Options[Record]{
		Name:    rec.decl.Name,
		Exclude: rec.decl.Exclude,
		New:     func() Record { return r.zero(rec) },
		Inject:  inject(rec, virtual),
		Logger:  opts.Logger,
		Hooks:   opts.Hooks,
	}, fields...)
	if err != nil {
		return err
	}
	rec.schema = s
	return nil
}

// inject fills virtual fields in declaration order, so a copy may read a
// const declared before it.
func inject(rec *record, virtual []int) layout.InjectFunc[Record] {
	if len(virtual) == 0 {
		return nil
	}
	return func(s *layout.Schema[Record], m *Record) error {
		for _, i := range virtual {
			fd := rec.decl.Fields[i]
			v := fd.Value
			if rec.types[i].virtual == typeCopy {
				var err error
				if v, err = s.Get(m, fd.From); err != nil {
					return err
				}
			}
			if err := s.Set(m, fd.Name, v); err != nil {
				return err
			}
		}
		return nil
	}
}

func (r *Registry) codec(t fieldType) layout.Codec[any] {
	switch t.kind {
	case layout.KindBool:
		return wrap(layout.Bool)
	case layout.KindUint8:
		return wrap(layout.U8)
	case layout.KindUint16:
		return wrap(layout.U16)
	case layout.KindUint32:
		return wrap(layout.U32)
	case layout.KindUint64:
		return wrap(layout.U64)
	case layout.KindUint128:
		return wrap(layout.U128)
	case layout.KindInt8:
		return wrap(layout.I8)
	case layout.KindInt16:
		return wrap(layout.I16)
	case layout.KindInt32:
		return wrap(layout.I32)
	case layout.KindInt64:
		return wrap(layout.I64)
	case layout.KindInt128:
		return wrap(layout.I128)
	case layout.KindVector:
		return wrap(layout.Vector(t.width))
	case layout.KindOptional:
		return optionalAny{layout.Optional(r.codec(*t.elem))}
	case layout.KindComposite:
		return nested(r.records[t.record].schema)
	}
	panic("schemafile: unhandled kind " + t.kind.String())
}

// zero returns a record holding the zero value of every excluded field.
// Decoding never writes those fields, so this is what they read as.
func (r *Registry) zero(rec *record) Record {
	m := make(Record, len(rec.types))
	for i, t := range rec.types {
		if name := rec.decl.Fields[i].Name; rec.excluded[name] && t.virtual == "" {
			m[name] = r.zeroValue(t)
		}
	}
	return m
}

func (r *Registry) zeroValue(t fieldType) any {
	switch t.kind {
	case layout.KindBool:
		return false
	case layout.KindUint8:
		return uint8(0)
	case layout.KindUint16:
		return uint16(0)
	case layout.KindUint32:
		return uint32(0)
	case layout.KindUint64:
		return uint64(0)
	case layout.KindUint128:
		return layout.Uint128{}
	case layout.KindInt8:
		return int8(0)
	case layout.KindInt16:
		return int16(0)
	case layout.KindInt32:
		return int32(0)
	case layout.KindInt64:
		return int64(0)
	case layout.KindInt128:
		return layout.Int128{}
	case layout.KindVector:
		return []byte(nil)
	case layout.KindComposite:
		dep := r.records[t.record]
		m := make(Record, len(dep.types))
		for i, ft := range dep.types {
			if ft.virtual == "" {
				m[dep.decl.Fields[i].Name] = r.zeroValue(ft)
			}
		}
		return m
	}
	return nil
}

// Names returns the record names in declaration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Schema returns the compiled schema of the named record.
func (r *Registry) Schema(name string) (*layout.Schema[Record], bool) {
	rec, ok := r.records[name]
	if !ok {
		return nil, false
	}
	return rec.schema, true
}

// Lookup is Schema with an error naming the known records.
func (r *Registry) Lookup(name string) (*layout.Schema[Record], error) {
	if s, ok := r.Schema(name); ok {
		return s, nil
	}
	return nil, errors.Errorf("schemafile: unknown record %q (have %v)", name, r.names)
}

// Node renders rec as a YAML mapping in the field order of the named
// record, nested records included. Fields missing from rec are skipped.
func (r *Registry) Node(name string, rec Record) (*yaml.Node, error) {
	d, ok := r.records[name]
	if !ok {
		return nil, errors.Errorf("schemafile: unknown record %q (have %v)", name, r.names)
	}
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for i, f := range d.decl.Fields {
		v, ok := rec[f.Name]
		if !ok {
			continue
		}
		val, err := r.node(d.types[i], v)
		if err != nil {
			return nil, errors.Wrapf(err, "schemafile: render %s.%s", name, f.Name)
		}
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Name}
		n.Content = append(n.Content, key, val)
	}
	return n, nil
}

func (r *Registry) node(t fieldType, v any) (*yaml.Node, error) {
	if t.kind == layout.KindOptional && t.elem != nil && v != nil {
		t = *t.elem
	}
	if t.kind == layout.KindComposite {
		switch m := v.(type) {
		case Record:
			return r.Node(t.record, m)
		case map[string]any:
			return r.Node(t.record, Record(m))
		}
	}
	n := new(yaml.Node)
	if err := n.Encode(plain(v)); err != nil {
		return nil, err
	}
	return n, nil
}

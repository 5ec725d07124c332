package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Field binds one named member of a record type T to the codec that reads
// and writes it. Build fields with Bind, BindFunc, Virtual and VirtualFunc;
// their order in NewSchema is the wire order.
type Field[T any] struct {
	name    string
	codec   any
	kind    Kind
	width   int
	virtual bool

	decode func(c *Cursor, rec *T) (absent bool, err error)
	encode func(dst []byte, rec *T) ([]byte, error)
	get    func(rec *T) (any, error)
	set    func(rec *T, v any) error
}

// Name returns the field name.
func (f Field[T]) Name() string { return f.name }

// Absenter is implemented by codecs that decode a missing value to a
// marker instead of failing, as Optional does.
type Absenter[V any] interface {
	Absent(v V) bool
}

// Bind declares a physical field stored at *ptr(rec).
func Bind[T, V any](name string, c Codec[V], ptr func(*T) *V) Field[T] {
	return BindFunc(name, c,
		func(rec *T) (V, error) { return *ptr(rec), nil },
		func(rec *T, v V) error {
			*ptr(rec) = v
			return nil
		})
}

// BindFunc declares a physical field reached through a getter and a setter.
// Either may fail, e.g. when T is a map holding a value of the wrong type.
func BindFunc[T, V any](name string, c Codec[V], get func(*T) (V, error), set func(*T, V) error) Field[T] {
	f := Field[T]{name: name, width: -1}
	if c == nil {
		return f
	}
	f.codec = c
	f.kind = c.Kind()
	f.width = WidthOf(c)
	ab, _ := any(c).(Absenter[V])
	f.decode = func(cur *Cursor, rec *T) (bool, error) {
		v, err := c.Decode(cur)
		if err != nil {
			return false, err
		}
		return ab != nil && ab.Absent(v), set(rec, v)
	}
	f.encode = func(dst []byte, rec *T) ([]byte, error) {
		v, err := get(rec)
		if err != nil {
			return dst, err
		}
		return c.Append(dst, v)
	}
	f.get, f.set = access(name, get, set)
	return f
}

// Virtual declares a field that is never read from or written to the wire.
// It exists so an InjectFunc can fill it by name after decode.
func Virtual[T, V any](name string, ptr func(*T) *V) Field[T] {
	return VirtualFunc(name,
		func(rec *T) (V, error) { return *ptr(rec), nil },
		func(rec *T, v V) error {
			*ptr(rec) = v
			return nil
		})
}

// VirtualFunc is Virtual with a getter and a setter.
func VirtualFunc[T, V any](name string, get func(*T) (V, error), set func(*T, V) error) Field[T] {
	f := Field[T]{name: name, virtual: true, width: 0}
	f.get, f.set = access(name, get, set)
	return f
}

func access[T, V any](name string, get func(*T) (V, error), set func(*T, V) error) (func(*T) (any, error), func(*T, any) error) {
	getAny := func(rec *T) (any, error) { return get(rec) }
	setAny := func(rec *T, v any) error {
		if v == nil {
			var zero V
			return set(rec, zero)
		}
		x, ok := v.(V)
		if !ok {
			var want V
			return mismatch("field %q holds %T, got %T", name, want, v)
		}
		return set(rec, x)
	}
	return getAny, setAny
}

// InjectFunc runs once after every field of a record was decoded. It fills
// virtual or excluded fields through Schema.Get and Schema.Set. A non-nil
// error aborts the decode.
type InjectFunc[T any] func(s *Schema[T], rec *T) error

// Options configures a Schema. The zero value is usable.
type Options[T any] struct {
	// Name identifies the record in errors, logs and descriptors.
	// Defaults to the Go type name of T.
	Name string

	// Exclude lists fields that are skipped on the wire in both directions.
	// Decoded records keep whatever New put in them.
	Exclude []string

	Inject InjectFunc[T]

	// New returns a fresh record for each decode. Defaults to the zero T.
	New func() T

	Logger Logger
	Hooks  Hooks
}

// FieldDescriptor describes one field of a Schema.
type FieldDescriptor struct {
	Name     string
	Kind     Kind
	Type     string // codec type, e.g. "u16", "vec<4>", "option<u32>" or a record name
	Width    int    // fixed wire width, -1 when variable, 0 when virtual
	Excluded bool
	Virtual  bool
}

// Schema is the composite codec for records of type T. It is immutable after
// NewSchema and safe for concurrent use. Schema implements Codec[T], so
// schemas nest.
type Schema[T any] struct {
	name     string
	fields   []Field[T]
	excluded []bool
	index    map[string]int
	inject   InjectFunc[T]
	newRec   func() T
	size     int
	fp       uint64

	log   Logger
	hooks Hooks
}

// NewSchema validates the field table and returns the schema.
func NewSchema[T any](opts Options[T], fields ...Field[T]) (*Schema[T], error) {
	s := &Schema[T]{
		name:     opts.Name,
		fields:   fields,
		excluded: make([]bool, len(fields)),
		index:    make(map[string]int, len(fields)),
		inject:   opts.Inject,
		newRec:   opts.New,
		log:      coalesce[Logger](opts.Logger, NopLogger{}),
		hooks:    coalesce[Hooks](opts.Hooks, NopHooks{}),
	}
	if s.name == "" {
		s.name = typeName[T]()
	}
	if s.newRec == nil {
		s.newRec = func() T {
			var zero T
			return zero
		}
	}

	for i, f := range fields {
		if _, dup := s.index[f.name]; dup {
			return nil, s.regError(f.name, ErrDuplicateField)
		}
		if !f.virtual {
			if f.codec == nil {
				return nil, s.regError(f.name, fmt.Errorf("%w: no codec", ErrUnsupportedFieldType))
			}
			if !f.kind.Valid() {
				return nil, s.regError(f.name, fmt.Errorf("%w: %s", ErrUnsupportedFieldType, f.kind))
			}
		}
		s.index[f.name] = i
	}
	for _, name := range opts.Exclude {
		i, ok := s.index[name]
		if !ok {
			return nil, s.regError(name, mismatch("excluded field is not declared"))
		}
		s.excluded[i] = true
	}

	s.size = 0
	for i, f := range fields {
		if f.virtual || s.excluded[i] {
			continue
		}
		if f.width < 0 {
			s.size = -1
			break
		}
		s.size += f.width
	}
	s.fp = s.fingerprint()

	s.log.Debug("layout: schema registered", Fields{
		"record":      s.name,
		"fields":      len(fields),
		"excluded":    len(opts.Exclude),
		"fingerprint": strconv.FormatUint(s.fp, 16),
	})
	return s, nil
}

// MustSchema is NewSchema that panics on error. Use it for package-level
// schema variables.
func MustSchema[T any](opts Options[T], fields ...Field[T]) *Schema[T] {
	s, err := NewSchema(opts, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema[T]) regError(field string, err error) error {
	return &FieldError{Op: "register", Record: s.name, Path: []string{field}, Offset: -1, Err: err}
}

func (s *Schema[T]) Name() string   { return s.name }
func (s *Schema[T]) String() string { return s.name }
func (s *Schema[T]) Kind() Kind     { return KindComposite }

// Size reports the encoded size of every record when all included physical
// fields are fixed width.
func (s *Schema[T]) Size() (int, bool) { return s.size, s.size >= 0 }

// Width implements Fixed. It is -1 when the encoded size varies.
func (s *Schema[T]) Width() int { return s.size }

// Fingerprint identifies the wire layout: field names, types, exclusions and,
// recursively, the layout of nested records. Two schemas with equal
// fingerprints read each other's bytes.
func (s *Schema[T]) Fingerprint() uint64 { return s.fp }

func (s *Schema[T]) fingerprint() uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(s.name)
	for i, f := range s.fields {
		_, _ = d.WriteString("\x00" + f.name + "\x00" + describe(f.codec))
		switch {
		case f.virtual:
			_, _ = d.WriteString("\x00v")
		case s.excluded[i]:
			_, _ = d.WriteString("\x00x")
		}
		if n, ok := f.codec.(interface{ Fingerprint() uint64 }); ok {
			_, _ = d.WriteString("\x00" + strconv.FormatUint(n.Fingerprint(), 16))
		}
	}
	return d.Sum64()
}

// Fields returns the field table in wire order.
func (s *Schema[T]) Fields() []FieldDescriptor {
	out := make([]FieldDescriptor, len(s.fields))
	for i, f := range s.fields {
		out[i] = FieldDescriptor{
			Name:     f.name,
			Kind:     f.kind,
			Type:     describe(f.codec),
			Width:    f.width,
			Excluded: s.excluded[i],
			Virtual:  f.virtual,
		}
		if f.virtual {
			out[i].Type = "virtual"
			out[i].Width = 0
		}
	}
	return out
}

// Codec returns the codec bound to a physical field, or nil.
func (s *Schema[T]) Codec(name string) any {
	i, ok := s.index[name]
	if !ok {
		return nil
	}
	return s.fields[i].codec
}

// Get reads field name from rec.
func (s *Schema[T]) Get(rec *T, name string) (any, error) {
	i, ok := s.index[name]
	if !ok {
		return nil, mismatch("%s has no field %q", s.name, name)
	}
	return s.fields[i].get(rec)
}

// Set writes v to field name of rec. v must have the field's Go type;
// nil sets the zero value.
func (s *Schema[T]) Set(rec *T, name string, v any) error {
	i, ok := s.index[name]
	if !ok {
		return mismatch("%s has no field %q", s.name, name)
	}
	return s.fields[i].set(rec, v)
}

type stringer interface{ String() string }

func describe(c any) string {
	if c == nil {
		return ""
	}
	if s, ok := c.(stringer); ok {
		return s.String()
	}
	if k, ok := c.(interface{ Kind() Kind }); ok {
		return k.Kind().String()
	}
	return fmt.Sprintf("%T", c)
}

func typeName[T any]() string {
	var zero T
	name := fmt.Sprintf("%T", zero)
	if name == "<nil>" {
		name = fmt.Sprintf("%T", &zero)[1:]
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 && !strings.ContainsAny(name[i:], "[]") {
		name = name[i+1:]
	}
	return name
}

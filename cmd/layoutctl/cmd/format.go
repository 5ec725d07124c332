package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/unkn0wn-root/layout/codec"
	"github.com/unkn0wn-root/layout/schemafile"
)

// Binary interchange formats travel as hex text on the terminal.
var (
	cborCodec    = codec.MustCBOR[map[string]any](true)
	msgpackCodec = codec.Msgpack[map[string]any]{}
	protoCodec   = codec.Struct{}
)

// render prints rec in format, ending with a newline. YAML keeps the field
// order of the named record.
func render(w io.Writer, format string, reg *schemafile.Registry, name string, rec schemafile.Record) error {
	p := schemafile.Plain(rec)
	var (
		out []byte
		err error
	)
	switch format {
	case "json":
		out, err = codec.JSON[map[string]any]{Indent: "  "}.Encode(p)
	case "yaml":
		var n *yaml.Node
		if n, err = reg.Node(name, rec); err == nil {
			out, err = yaml.Marshal(n)
		}
	case "cbor":
		out, err = hexEncode[map[string]any](cborCodec, p)
	case "msgpack":
		out, err = hexEncode[map[string]any](msgpackCodec, p)
	case "proto":
		out, err = hexEncode[map[string]any](protoCodec, p)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", format, err)
	}
	_, err = fmt.Fprintf(w, "%s\n", bytes.TrimRight(out, "\n"))
	return err
}

func hexEncode[V any](c codec.Codec[V], v V) ([]byte, error) {
	b, err := c.Encode(v)
	if err != nil {
		return nil, err
	}
	return codec.Hex{}.Encode(b)
}

// parseValues reads a value map written in format. Binary formats are
// expected as hex text.
func parseValues(format string, data []byte) (map[string]any, error) {
	var (
		m   map[string]any
		err error
	)
	switch format {
	case "json":
		m, err = codec.JSON[map[string]any]{}.Decode(data)
	case "yaml":
		err = yaml.Unmarshal(data, &m)
	case "cbor":
		m, err = hexDecode[map[string]any](cborCodec, data)
	case "msgpack":
		m, err = hexDecode[map[string]any](msgpackCodec, data)
	case "proto":
		m, err = hexDecode[map[string]any](protoCodec, data)
	default:
		return nil, fmt.Errorf("unknown input format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", format, err)
	}
	if m == nil {
		return nil, fmt.Errorf("parse %s: no values", format)
	}
	return m, nil
}

func hexDecode[V any](c codec.Codec[V], data []byte) (V, error) {
	b, err := codec.Hex{}.Decode(data)
	if err != nil {
		var zero V
		return zero, err
	}
	return c.Decode(b)
}

// inputFormat picks the value format from the flag or the file extension.
func inputFormat(flag, path string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json", nil
	case ".yaml", ".yml":
		return "yaml", nil
	}
	return "", fmt.Errorf("cannot tell the format of %q: pass --from", path)
}

// readInput returns the contents of path, or of stdin for "-".
func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// recordBytes returns the record bytes given as --hex or read from --in.
// A file is read as raw bytes unless hex is set.
func recordBytes(stdin io.Reader, hexArg, path string, hexFile bool) ([]byte, error) {
	if hexArg != "" {
		return codec.Hex{}.Decode([]byte(hexArg))
	}
	data, err := readInput(stdin, path)
	if err != nil {
		return nil, err
	}
	if hexFile {
		return codec.Hex{}.Decode(data)
	}
	return data, nil
}

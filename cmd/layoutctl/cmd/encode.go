package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/layout/codec"
	"github.com/unkn0wn-root/layout/schemafile"
)

func newEncodeCmd(a *app) *cobra.Command {
	var (
		in   string
		from string
		raw  bool
	)
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode values into record bytes",
		Long: `Read the values of one record from JSON or YAML (or hex-encoded
CBOR, MessagePack or protobuf) and print the record bytes as hex.
Integers may be written as numbers, decimal strings or 0x strings;
vectors as 0x hex, plain strings or lists of bytes.`,
		Example: `  layoutctl encode -s records.yaml -r Outer --in outer.json
  cat outer.yaml | layoutctl encode -s records.yaml -r Outer --in - --from yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, s, err := a.record()
			if err != nil {
				return err
			}
			rec, err := readRecord(cmd, reg, a.cfg.Record, in, from)
			if err != nil {
				return err
			}
			b, err := s.Marshal(rec)
			if err != nil {
				return err
			}
			if raw {
				_, err = cmd.OutOrStdout().Write(b)
				return err
			}
			h, _ := codec.Hex{}.Encode(b)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", h)
			return err
		},
	}
	valueFlags(cmd, &in, &from)
	cmd.Flags().BoolVar(&raw, "raw", false, "write raw bytes instead of hex")
	return cmd
}

func valueFlags(cmd *cobra.Command, in, from *string) {
	cmd.Flags().StringVar(in, "in", "", "values file, - for stdin")
	cmd.Flags().StringVar(from, "from", "", "values format: json, yaml, cbor, msgpack or proto (default from extension)")
	_ = cmd.MarkFlagRequired("in")
}

// readRecord reads and normalizes the values of record from path.
func readRecord(cmd *cobra.Command, reg *schemafile.Registry, record, path, from string) (schemafile.Record, error) {
	format, err := inputFormat(from, path)
	if err != nil {
		return nil, err
	}
	data, err := readInput(cmd.InOrStdin(), path)
	if err != nil {
		return nil, err
	}
	m, err := parseValues(format, data)
	if err != nil {
		return nil, err
	}
	return reg.Normalize(record, m)
}

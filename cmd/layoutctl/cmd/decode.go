package cmd

import (
	"github.com/spf13/cobra"
)

func newDecodeCmd(a *app) *cobra.Command {
	var (
		hexArg  string
		in      string
		hexFile bool
	)
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode record bytes and print the values",
		Long: `Decode one record from hex or from a file and print its values.
Vectors print as 0x hex and 128-bit integers as decimal strings. The
binary output formats (cbor, msgpack, proto) print as hex.`,
		Example: `  layoutctl decode -s records.yaml -r Outer --hex 010000030000000103000301000001
  layoutctl decode -s records.yaml -r Outer --in record.bin -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, s, err := a.record()
			if err != nil {
				return err
			}
			raw, err := recordBytes(cmd.InOrStdin(), hexArg, in, hexFile)
			if err != nil {
				return err
			}
			rec, err := s.Unmarshal(raw)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), a.cfg.Output, reg, a.cfg.Record, rec)
		},
	}
	f := cmd.Flags()
	f.StringVar(&hexArg, "hex", "", "record bytes as hex")
	f.StringVar(&in, "in", "", "file holding the record bytes, - for stdin")
	f.BoolVar(&hexFile, "hex-file", false, "the --in file holds hex text")
	f.StringP("output", "o", "", "output format: json, yaml, cbor, msgpack or proto")
	cmd.MarkFlagsMutuallyExclusive("hex", "in")
	cmd.MarkFlagsOneRequired("hex", "in")
	return cmd
}

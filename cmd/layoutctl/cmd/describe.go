package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/layout"
)

func newDescribeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "describe [record]",
		Short: "Print the wire layout of records",
		Long: `Print the field table of one record, or of every record in the
schema file: field names in wire order, their types and fixed widths.`,
		Example: `  layoutctl describe -s records.yaml
  layoutctl describe -s records.yaml Account`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}
			names := reg.Names()
			switch {
			case len(args) == 1:
				names = args
			case a.cfg.Record != "":
				names = []string{a.cfg.Record}
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for i, name := range names {
				s, err := reg.Lookup(name)
				if err != nil {
					return err
				}
				if i > 0 {
					fmt.Fprintln(w)
				}
				size := "variable"
				if n, ok := s.Size(); ok {
					size = strconv.Itoa(n)
				}
				fmt.Fprintf(w, "%s\tsize %s\tfingerprint %016x\n", s.Name(), size, s.Fingerprint())
				for _, f := range s.Fields() {
					fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", f.Name, f.Type, width(f), notes(f))
				}
			}
			return w.Flush()
		},
	}
}

func width(f layout.FieldDescriptor) string {
	if f.Width < 0 {
		return "-"
	}
	return strconv.Itoa(f.Width)
}

func notes(f layout.FieldDescriptor) string {
	var n []string
	if f.Virtual {
		n = append(n, "virtual")
	}
	if f.Excluded {
		n = append(n, "excluded")
	}
	return strings.Join(n, ",")
}

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/layout"
	"github.com/unkn0wn-root/layout/codec"
	"github.com/unkn0wn-root/layout/provider"
	"github.com/unkn0wn-root/layout/provider/badger"
	"github.com/unkn0wn-root/layout/provider/mem"
	"github.com/unkn0wn-root/layout/schemafile"
	"github.com/unkn0wn-root/layout/store"
)

// openStore opens the configured provider. Records of each type live in
// their own namespace, "<namespace>.<record>".
func (a *app) openStore(s *layout.Schema[schemafile.Record]) (*store.Store[schemafile.Record], error) {
	p := a.provider
	if p == nil {
		var err error
		if p, err = a.newProvider(); err != nil {
			return nil, err
		}
	}
	st, err := store.New(store.Options[schemafile.Record]{
		Namespace: a.cfg.Store.Namespace + "." + s.Name(),
		Provider:  p,
		Schema:    s,
		TTL:       a.cfg.Store.TTL,
		Logger:    a.logger(),
	})
	if err != nil {
		_ = p.Close(context.Background())
		return nil, err
	}
	return st, nil
}

func (a *app) newProvider() (provider.Provider, error) {
	switch a.cfg.Store.Provider {
	case "mem":
		return mem.New(), nil
	case "badger":
		p, err := badger.New(badger.Config{Dir: a.cfg.Store.Dir})
		if err != nil {
			return nil, fmt.Errorf("failed to open store at %s: %w", a.cfg.Store.Dir, err)
		}
		return p, nil
	}
	return nil, fmt.Errorf("unknown store provider %q", a.cfg.Store.Provider)
}

// withStore runs fn against the store of the selected record.
func (a *app) withStore(cmd *cobra.Command, fn func(*schemafile.Registry, *store.Store[schemafile.Record]) error) error {
	reg, s, err := a.record()
	if err != nil {
		return err
	}
	st, err := a.openStore(s)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(cmd.Context()); err != nil {
			a.log.Warn("close store", zap.Error(err))
		}
	}()
	return fn(reg, st)
}

func newPutCmd(a *app) *cobra.Command {
	var in, from string
	cmd := &cobra.Command{
		Use:     "put <key>",
		Short:   "Store a record under a key",
		Example: `  layoutctl put -s records.yaml -r Outer alice --in outer.json`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(reg *schemafile.Registry, st *store.Store[schemafile.Record]) error {
				rec, err := readRecord(cmd, reg, a.cfg.Record, in, from)
				if err != nil {
					return err
				}
				if err := st.Put(cmd.Context(), args[0], rec); err != nil {
					return err
				}
				a.log.Info("stored record", zap.String("key", args[0]))
				return nil
			})
		},
	}
	valueFlags(cmd, &in, &from)
	return cmd
}

func newGetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "get <key>",
		Short:   "Print the record stored under a key",
		Example: `  layoutctl get -s records.yaml -r Outer alice -o yaml`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(reg *schemafile.Registry, st *store.Store[schemafile.Record]) error {
				rec, ok, err := st.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("%s: not found", args[0])
				}
				return render(cmd.OutOrStdout(), a.cfg.Output, reg, a.cfg.Record, rec)
			})
		},
	}
	cmd.Flags().StringP("output", "o", "", "output format: json, yaml, cbor, msgpack or proto")
	return cmd
}

func newDelCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "del <key>...",
		Short: "Delete stored records",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(_ *schemafile.Registry, st *store.Store[schemafile.Record]) error {
				for _, key := range args {
					if err := st.Del(cmd.Context(), key); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <key>...",
		Short: "Print stored records as one hex bulk blob",
		Long: `Snapshot the records under the given keys into a bulk blob that
import reads back. Missing keys are skipped. The blob is tied to the
record layout: importing it under a changed schema fails.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(_ *schemafile.Registry, st *store.Store[schemafile.Record]) error {
				blob, n, err := st.Export(cmd.Context(), args)
				if err != nil {
					return err
				}
				a.log.Info("exported records", zap.Int("records", n))
				h, _ := codec.Hex{}.Encode(blob)
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", h)
				return err
			})
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	var in string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Store every record of a hex bulk blob",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd, func(_ *schemafile.Registry, st *store.Store[schemafile.Record]) error {
				blob, err := recordBytes(cmd.InOrStdin(), "", in, true)
				if err != nil {
					return err
				}
				n, err := st.Import(cmd.Context(), blob)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d\n", n)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "file holding the hex blob, - for stdin")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

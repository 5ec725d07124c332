// Package cmd implements the layoutctl commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unkn0wn-root/layout"
	"github.com/unkn0wn-root/layout/internal/config"
	zaplog "github.com/unkn0wn-root/layout/log/zap"
	"github.com/unkn0wn-root/layout/provider"
	"github.com/unkn0wn-root/layout/schemafile"
)

// app is the state shared by the commands of one invocation.
type app struct {
	cfg *config.Config
	log *zap.Logger

	// provider, when set, replaces the configured store provider.
	provider provider.Provider
}

// NewRootCmd returns the layoutctl command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{})
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "layoutctl",
		Short: "Inspect, decode and encode layout records",
		Long: `layoutctl works with little-endian binary records described by a
YAML schema file. It prints record layouts, decodes record bytes into
JSON, YAML, CBOR, MessagePack or protobuf, encodes values back into
record bytes, and keeps records in a local store.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (YAML)")
	pf.String("log-level", "", "log level: debug, info, warn or error")
	pf.StringP("schema", "s", "", "schema file (YAML)")
	pf.StringP("record", "r", "", "record name")

	root.AddCommand(
		newDescribeCmd(a),
		newDecodeCmd(a),
		newEncodeCmd(a),
		newPutCmd(a),
		newGetCmd(a),
		newDelCmd(a),
		newExportCmd(a),
		newImportCmd(a),
	)
	return root
}

// Execute runs layoutctl with os.Args and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the config file, applies flag overrides and builds the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg := config.DefaultConfig()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	override(cmd, "schema", &cfg.Schema)
	override(cmd, "record", &cfg.Record)
	override(cmd, "output", &cfg.Output)
	override(cmd, "log-level", &cfg.Logging.Level)
	if err := cfg.Validate(); err != nil {
		return err
	}

	lvl, err := zapcore.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.DisableStacktrace = true
	if a.log, err = zc.Build(); err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	a.cfg = cfg
	return nil
}

func override(cmd *cobra.Command, flag string, dst *string) {
	if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
		*dst = f.Value.String()
	}
}

func (a *app) logger() layout.Logger { return zaplog.New(a.log) }

func (a *app) registry() (*schemafile.Registry, error) {
	if a.cfg.Schema == "" {
		return nil, fmt.Errorf("no schema file: pass --schema or set schema in the config")
	}
	return schemafile.Load(a.cfg.Schema, schemafile.Options{Logger: a.logger()})
}

// record returns the registry and the schema selected with --record.
func (a *app) record() (*schemafile.Registry, *layout.Schema[schemafile.Record], error) {
	reg, err := a.registry()
	if err != nil {
		return nil, nil, err
	}
	if a.cfg.Record == "" {
		return nil, nil, fmt.Errorf("no record: pass --record or set record in the config")
	}
	s, err := reg.Lookup(a.cfg.Record)
	if err != nil {
		return nil, nil, err
	}
	return reg, s, nil
}

// Package cli implements the slotstore command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jacentio/slotstore/internal/settings"
	"github.com/jacentio/slotstore/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Config  string
	Backend string
	Format  string // "json" | "text"
	Verbose bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the slotstore CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "slotstore",
		Short:         "Type-keyed object store over a key-value substrate",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "", "path to YAML settings")
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", "", "substrate override (memory|dir|sqlite|dynamodb)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewSaveCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewFindCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// openStore loads settings, opens the substrate, initializes the engine and
// registers the configured types. With create set, the given types are
// initialized too, creating their slots. Otherwise a given type is registered
// only if its slot already exists, so commands on unknown types fail with
// STORE_NOT_INITIALIZED instead of creating them. The returned close function
// is never nil.
func openStore(ctx context.Context, cmd *cobra.Command, opts *RootOptions, create bool, types ...string) (*store.Store, func() error, error) {
	cfg, err := settings.Load(opts.Config)
	if err != nil {
		return nil, func() error { return nil }, err
	}
	if opts.Backend != "" {
		cfg.Backend = settings.Backend(opts.Backend)
	}

	sub, closeFn, err := cfg.Open(ctx)
	if err != nil {
		return nil, closeFn, err
	}

	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	s := store.New(sub, cfg.StoreConfig(), store.WithLogger(logger))
	if err := s.Init(ctx); err != nil {
		return nil, closeFn, err
	}
	for _, typ := range cfg.Types {
		if err := s.InitObjectStore(ctx, typ); err != nil {
			return nil, closeFn, err
		}
	}
	for _, typ := range types {
		if s.Registry().Has(typ) {
			continue
		}
		if !create {
			_, ok, err := sub.Get(ctx, typ)
			if err != nil {
				return nil, closeFn, fmt.Errorf("look up object store %s: %w", typ, err)
			}
			if !ok {
				logger.Debug("object store not initialized", "type", typ)
				continue
			}
		}
		if err := s.InitObjectStore(ctx, typ); err != nil {
			return nil, closeFn, err
		}
	}
	return s, closeFn, nil
}

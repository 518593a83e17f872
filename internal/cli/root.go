package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roach88/auditlens/internal/config"
	"github.com/roach88/auditlens/internal/logging"
	"github.com/roach88/auditlens/internal/service"
	"github.com/roach88/auditlens/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string
	DSN        string
	Driver     string

	viper    *viper.Viper
	traceIDs service.TraceIDGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the auditlens CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(service.UUIDv7{})
}

func newRootCommand(ids service.TraceIDGenerator) *cobra.Command {
	opts := &RootOptions{viper: viper.New(), traceIDs: ids}

	cmd := &cobra.Command{
		Use:   "auditlens",
		Short: "auditlens - provenance over an audited shop database",
		Long: `Answer why, how and where questions about changes recorded in the
per-entity audit tables and the field-level Audit_Log.

Settings come from auditlens.yaml, AUDITLENS_* environment variables
(a .env file is loaded first) and the global flags, in rising order of
precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	// Global flags
	pf := cmd.PersistentFlags()
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (debug logging)")
	pf.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	pf.StringVar(&opts.ConfigFile, "config", "", "config file (default ./auditlens.yaml if present)")
	pf.StringVar(&opts.DSN, "db", "", "database path (sqlite3) or connection string (pgx)")
	pf.StringVar(&opts.Driver, "driver", "", "database driver (sqlite3|pgx)")
	_ = opts.viper.BindPFlag("database.dsn", pf.Lookup("db"))
	_ = opts.viper.BindPFlag("database.driver", pf.Lookup("driver"))

	// Add subcommands
	cmd.AddCommand(NewWhyCommand(opts))
	cmd.AddCommand(NewHowCommand(opts))
	cmd.AddCommand(NewWhereCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewSummaryCommand(opts))
	cmd.AddCommand(NewLineageCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

// session is the per-invocation state shared by every subcommand: resolved
// config, logger, open store and output formatter.
type session struct {
	cfg   config.Config
	log   zerolog.Logger
	store *store.Store
	svc   *service.Service
	out   *OutputFormatter
}

func (s *session) Close() {
	if s.store != nil {
		_ = s.store.Close()
	}
}

// formatter builds the output formatter without touching config or store,
// so errors before the store opens still honor --format.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
		TraceID:   o.traceIDs.Generate(),
	}
}

// open resolves configuration, builds the logger and opens the store.
// pretty selects console logs over JSON lines.
func (o *RootOptions) open(cmd *cobra.Command, pretty bool) (*session, error) {
	out := o.formatter(cmd)

	cfg, err := config.Load(o.viper, config.Options{File: o.ConfigFile})
	if err != nil {
		_ = out.Error(service.CodeInvalidInput, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}

	log, err := logging.New(cmd.ErrOrStderr(), logging.Verbose(cfg.Log.Level, o.Verbose), pretty)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to build logger", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := store.Open(ctx, store.Config{
		Driver:     cfg.Database.Driver,
		DSN:        cfg.Database.DSN,
		LogQueries: cfg.Log.Queries,
		Logger:     log,
	})
	if err != nil {
		return nil, out.Fail("open database", err)
	}
	out.VerboseLog("opened %s database %s", cfg.Database.Driver, cfg.Database.DSN)

	return &session{
		cfg:   cfg,
		log:   log,
		store: st,
		svc: service.New(st, service.Options{
			Timeout:    cfg.Query.Timeout,
			MaxRecords: cfg.Display.MaxRecords,
			Logger:     log,
		}),
		out: out,
	}, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

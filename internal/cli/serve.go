package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/auditlens/internal/httpapi"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the audit operations over HTTP",
		Long: `Start a read-only JSON API over the configured database.

Routes:
  GET /v1/why|how|where?from=&to=
  GET /v1/history/{kind}
  GET /v1/summary
  GET /v1/customers/{id}/lineage
  GET /v1/trace/{kind}/{id}?narrative=true
  GET /healthz
  GET /metrics

Examples:
  auditlens serve --db ./shop.db --addr :8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides http.addr)")
	_ = opts.viper.BindPFlag("http.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	sess, err := opts.open(cmd, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := httpapi.New(sess.svc, httpapi.WithLogger(sess.log), httpapi.WithTraceIDs(opts.traceIDs))
	if err := srv.ListenAndServe(ctx, sess.cfg.HTTP.Addr); err != nil {
		return WrapExitError(ExitCommandError, "server stopped", err)
	}
	sess.log.Info().Msg("server stopped")
	return nil
}

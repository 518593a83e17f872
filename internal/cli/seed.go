package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/auditlens/internal/service"
	"github.com/roach88/auditlens/internal/store"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	Fixture string
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a YAML fixture of entities and audit records",
		Long: `Validate a YAML fixture and write its users, entities, audit records
and Audit_Log entries into the database. Every audit record is appended
through the same path a live writer uses, so no-op updates are rejected.

Examples:
  auditlens seed --db ./shop.db --fixture ./testdata/shop.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Fixture, "fixture", "", "path to YAML fixture (required)")
	_ = cmd.MarkFlagRequired("fixture")

	return cmd
}

func runSeed(opts *SeedOptions, cmd *cobra.Command) error {
	fx, err := store.LoadFixtureFile(opts.Fixture)
	if err != nil {
		_ = opts.formatter(cmd).Error(service.CodeInvalidInput, err.Error(), nil)
		return WrapExitError(ExitFailure, "invalid fixture", err)
	}

	sess, err := opts.open(cmd, true)
	if err != nil {
		return err
	}
	defer sess.Close()

	res, err := sess.store.Seed(commandContext(cmd), fx)
	if err != nil {
		return sess.out.Fail("seed", err)
	}
	sess.log.Info().
		Int("entities", res.Entities).
		Int("audit_records", res.AuditRecords).
		Int("log_entries", res.LogEntries).
		Msg("fixture loaded")

	return sess.out.Success(res, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Seeded %d entities, %d audit records, %d log entries from %s\n",
			res.Entities, res.AuditRecords, res.LogEntries, opts.Fixture)
		return err
	})
}

package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/auditlens/internal/audit"
	"github.com/roach88/auditlens/internal/service"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Narrative bool
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <product|order|customer|payment> <id>",
		Short: "Show the complete history of one entity",
		Long: `Show every audit record of a single entity, oldest first.

With --narrative, each record is rendered as a sentence: who created,
updated or deleted the entity, which fields changed and the stated reason.

Examples:
  auditlens trace product 1 --db ./shop.db
  auditlens trace order 101 --db ./shop.db --narrative
  auditlens trace customer 1 --db ./shop.db --format json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd, args)
		},
	}

	cmd.Flags().BoolVar(&opts.Narrative, "narrative", false, "render the history as narrative lines")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command, args []string) error {
	kind := audit.Kind(args[0])
	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return opts.formatter(cmd).Fail("trace", fmt.Errorf("entity id %q: %w", args[1], service.ErrInvalidInput))
	}

	sess, err := opts.open(cmd, true)
	if err != nil {
		return err
	}
	defer sess.Close()

	res, err := sess.svc.Trace(commandContext(cmd), kind, id, opts.Narrative)
	if err != nil {
		return sess.out.Fail("trace", err)
	}
	return sess.out.Success(res, func(w io.Writer) error {
		return renderTrace(w, res)
	})
}

func renderTrace(w io.Writer, res service.TraceResult) error {
	fmt.Fprintf(w, "%s #%d\n\n", res.Kind.Label(), res.EntityID)
	if res.Narrative != nil {
		for _, line := range res.Narrative {
			fmt.Fprintln(w, line)
		}
		return nil
	}
	if len(res.Entries) == 0 {
		_, err := fmt.Fprintln(w, "No history.")
		return err
	}
	t := newTable(w, "AUDIT ID", "OPERATION", "CHANGED AT", "CHANGED BY", "CHANGES")
	for _, e := range res.Entries {
		meta := e.Record.Meta()
		by := e.ChangedBy
		if by == "" {
			by = "system"
		}
		t.row(fmt.Sprint(meta.AuditID), string(meta.Operation), ts(meta.ChangedAt), by, changeList(e.Record))
	}
	return t.flush()
}

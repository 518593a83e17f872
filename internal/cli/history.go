package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/auditlens/internal/audit"
	"github.com/roach88/auditlens/internal/provenance"
	"github.com/roach88/auditlens/internal/service"
	"github.com/roach88/auditlens/internal/trace"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	rng := &RangeOptions{}
	cmd := &cobra.Command{
		Use:   "history <product|order|customer|payment>",
		Short: "List the raw audit records of one entity kind",
		Long: `List every audit record of one entity kind, newest first, with the
changed fields of each record.

Examples:
  auditlens history products --db ./shop.db
  auditlens history order --db ./shop.db --from 2024-01-05 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := audit.Kind(args[0])
			return runView(rootOpts, rng, cmd, "history", func(sess *session, dr audit.DateRange) (any, func(io.Writer) error, error) {
				page, err := sess.svc.History(commandContext(cmd), kind, dr)
				return page, func(w io.Writer) error { return renderHistory(w, page) }, err
			})
		},
	}
	rng.bind(cmd)
	return cmd
}

func renderHistory(w io.Writer, page service.Page[provenance.HistoryRow]) error {
	if len(page.Rows) == 0 {
		_, err := fmt.Fprintln(w, "No audit records found.")
		return err
	}
	t := newTable(w, "AUDIT ID", "ENTITY", "OPERATION", "CHANGED AT", "CHANGED BY", "CHANGES")
	for _, r := range page.Rows {
		meta := r.Record.Meta()
		t.row(fmt.Sprint(meta.AuditID), fmt.Sprint(r.Record.EntityID()), string(meta.Operation), ts(meta.ChangedAt), actor(r.Username), changeList(r.Record))
	}
	if err := t.flush(); err != nil {
		return err
	}
	footer(w, len(page.Rows), page.Total, page.Truncated)
	return nil
}

// changeList renders the differing fields of rec as "Label: old → new; ...".
func changeList(rec audit.Record) string {
	changes := audit.Changes(rec)
	if len(changes) == 0 {
		return "-"
	}
	parts := make([]string, len(changes))
	for i, c := range changes {
		parts[i] = fmt.Sprintf("%s: %s → %s", c.Label, trace.FormatValue(c.Old), trace.FormatValue(c.New))
	}
	return strings.Join(parts, "; ")
}

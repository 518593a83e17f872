package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/auditlens/internal/audit"
	"github.com/roach88/auditlens/internal/service"
)

// NewSummaryCommand creates the summary command.
func NewSummaryCommand(rootOpts *RootOptions) *cobra.Command {
	rng := &RangeOptions{}
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Count changes by table and operation, and by user",
		Long: `Summarize Audit_Log: the number of field changes per table and
operation, and the number of changes attributed to each user. Users with
no changes in the range are listed with zero.

Examples:
  auditlens summary --db ./shop.db
  auditlens summary --db ./shop.db --from 2024-01-04 --to 2024-01-04`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(rootOpts, rng, cmd, "summary", func(sess *session, dr audit.DateRange) (any, func(io.Writer) error, error) {
				sum, err := sess.svc.Summary(commandContext(cmd), dr)
				return sum, func(w io.Writer) error { return renderSummary(w, sum) }, err
			})
		},
	}
	rng.bind(cmd)
	return cmd
}

func renderSummary(w io.Writer, sum service.Summary) error {
	fmt.Fprintln(w, "Changes by table:")
	if len(sum.Changes) == 0 {
		fmt.Fprintln(w, "  none")
	} else {
		t := newTable(w, "TABLE", "OPERATION", "CHANGES")
		for _, c := range sum.Changes {
			t.row(c.TableName, string(c.Operation), fmt.Sprint(c.Count))
		}
		if err := t.flush(); err != nil {
			return err
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Changes by user:")
	if len(sum.Users) == 0 {
		_, err := fmt.Fprintln(w, "  none")
		return err
	}
	t := newTable(w, "USER", "ROLE", "CHANGES")
	for _, u := range sum.Users {
		t.row(u.Username, u.Role, fmt.Sprint(u.TotalChanges))
	}
	return t.flush()
}

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/auditlens/internal/audit"
	"github.com/roach88/auditlens/internal/provenance"
	"github.com/roach88/auditlens/internal/service"
)

// RangeOptions holds the --from/--to flags shared by the range commands.
type RangeOptions struct {
	From string
	To   string
}

func (r *RangeOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.From, "from", "", "first day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&r.To, "to", "", "last day to include (YYYY-MM-DD)")
}

// parse validates the flags before any store is opened.
func (r *RangeOptions) parse(out *OutputFormatter) (audit.DateRange, error) {
	dr, err := audit.ParseDateRange(r.From, r.To)
	if err != nil {
		return audit.DateRange{}, out.Fail("parse date range", err)
	}
	return dr, nil
}

// NewWhyCommand creates the why command.
func NewWhyCommand(rootOpts *RootOptions) *cobra.Command {
	rng := &RangeOptions{}
	cmd := &cobra.Command{
		Use:   "why",
		Short: "Show product price changes and their reasons",
		Long: `Show every product update that moved the price, newest first, with the
old and new price, the difference, who made the change and why.

Examples:
  auditlens why --db ./shop.db
  auditlens why --db ./shop.db --from 2024-01-01 --to 2024-01-31 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(rootOpts, rng, cmd, "why", func(sess *session, dr audit.DateRange) (any, func(io.Writer) error, error) {
				page, err := sess.svc.Why(commandContext(cmd), dr)
				return page, func(w io.Writer) error { return renderWhy(w, page) }, err
			})
		},
	}
	rng.bind(cmd)
	return cmd
}

// NewHowCommand creates the how command.
func NewHowCommand(rootOpts *RootOptions) *cobra.Command {
	rng := &RangeOptions{}
	cmd := &cobra.Command{
		Use:   "how",
		Short: "Show order status transitions and time spent in each status",
		Long: `Show every order audit record grouped by order, oldest first, with the
hours the order spent in its previous status.

Examples:
  auditlens how --db ./shop.db
  auditlens how --db ./shop.db --from 2024-01-04`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(rootOpts, rng, cmd, "how", func(sess *session, dr audit.DateRange) (any, func(io.Writer) error, error) {
				page, err := sess.svc.How(commandContext(cmd), dr)
				return page, func(w io.Writer) error { return renderHow(w, page) }, err
			})
		},
	}
	rng.bind(cmd)
	return cmd
}

// NewWhereCommand creates the where command.
func NewWhereCommand(rootOpts *RootOptions) *cobra.Command {
	rng := &RangeOptions{}
	cmd := &cobra.Command{
		Use:   "where",
		Short: "Show field-level changes with the acting user and role",
		Long: `Show every field-level change to products, orders, customers and
payments recorded in Audit_Log, newest first.

Examples:
  auditlens where --db ./shop.db --from 2024-01-04 --to 2024-01-04`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(rootOpts, rng, cmd, "where", func(sess *session, dr audit.DateRange) (any, func(io.Writer) error, error) {
				page, err := sess.svc.Where(commandContext(cmd), dr)
				return page, func(w io.Writer) error { return renderWhere(w, page) }, err
			})
		},
	}
	rng.bind(cmd)
	return cmd
}

type viewFunc func(sess *session, dr audit.DateRange) (data any, render func(io.Writer) error, err error)

func runView(opts *RootOptions, rng *RangeOptions, cmd *cobra.Command, name string, view viewFunc) error {
	dr, err := rng.parse(opts.formatter(cmd))
	if err != nil {
		return err
	}

	sess, err := opts.open(cmd, true)
	if err != nil {
		return err
	}
	defer sess.Close()

	data, render, err := view(sess, dr)
	if err != nil {
		return sess.out.Fail(name, err)
	}
	return sess.out.Success(data, render)
}

func renderWhy(w io.Writer, page service.Page[provenance.WhyRow]) error {
	if len(page.Rows) == 0 {
		_, err := fmt.Fprintln(w, "No price changes found.")
		return err
	}
	t := newTable(w, "CHANGED AT", "PRODUCT", "OLD PRICE", "NEW PRICE", "CHANGE", "CHANGED BY", "REASON")
	for _, r := range page.Rows {
		t.row(ts(r.ChangedAt), r.EntityName, money(r.OldPrice), money(r.NewPrice), signedMoney(r.PriceChange), actor(r.ChangedBy), str(r.Reason))
	}
	if err := t.flush(); err != nil {
		return err
	}
	footer(w, len(page.Rows), page.Total, page.Truncated)
	return nil
}

func renderHow(w io.Writer, page service.Page[provenance.HowRow]) error {
	if len(page.Rows) == 0 {
		_, err := fmt.Fprintln(w, "No order transitions found.")
		return err
	}
	t := newTable(w, "ORDER", "CHANGED AT", "OPERATION", "FROM", "TO", "HOURS IN PREVIOUS", "CHANGED BY", "REASON")
	for _, r := range page.Rows {
		t.row(fmt.Sprint(r.OrderID), ts(r.ChangedAt), string(r.Operation), str(r.OldStatus), str(r.NewStatus), hours(r.HoursInPreviousStatus), actor(r.ChangedBy), str(r.Reason))
	}
	if err := t.flush(); err != nil {
		return err
	}
	footer(w, len(page.Rows), page.Total, page.Truncated)
	return nil
}

func renderWhere(w io.Writer, page service.Page[provenance.WhereRow]) error {
	if len(page.Rows) == 0 {
		_, err := fmt.Fprintln(w, "No field changes found.")
		return err
	}
	t := newTable(w, "CHANGED AT", "TABLE", "RECORD", "OPERATION", "FIELD", "OLD", "NEW", "USER", "ROLE")
	for _, r := range page.Rows {
		t.row(ts(r.ChangedAt), r.TableName, fmt.Sprint(r.RecordID), string(r.Operation), str(r.FieldName), str(r.OldValue), str(r.NewValue), actor(r.Username), str(r.Role))
	}
	if err := t.flush(); err != nil {
		return err
	}
	footer(w, len(page.Rows), page.Total, page.Truncated)
	return nil
}

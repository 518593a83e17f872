package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/auditlens/internal/lineage"
	"github.com/roach88/auditlens/internal/service"
)

// LineageOptions holds flags for the lineage command.
type LineageOptions struct {
	*RootOptions
	CustomerID int64
}

// NewLineageCommand creates the lineage command.
func NewLineageCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LineageOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "lineage",
		Short: "Show a customer's journey across customer, order and payment audits",
		Long: `Merge the audit history of a customer, the customer's orders and the
payments on those orders into one chronological journey. Events at the
same instant are ordered customer, order, payment.

Examples:
  auditlens lineage --db ./shop.db --customer 1
  auditlens lineage --db ./shop.db --customer 1 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLineage(opts, cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.CustomerID, "customer", 0, "customer id (required)")
	_ = cmd.MarkFlagRequired("customer")

	return cmd
}

func runLineage(opts *LineageOptions, cmd *cobra.Command) error {
	sess, err := opts.open(cmd, true)
	if err != nil {
		return err
	}
	defer sess.Close()

	page, err := sess.svc.Lineage(commandContext(cmd), opts.CustomerID)
	if err != nil {
		return sess.out.Fail("lineage", err)
	}
	return sess.out.Success(page, func(w io.Writer) error {
		return renderLineage(w, opts.CustomerID, page)
	})
}

func renderLineage(w io.Writer, customerID int64, page service.Page[lineage.Event]) error {
	if len(page.Rows) == 0 {
		_, err := fmt.Fprintf(w, "No journey found for customer %d.\n", customerID)
		return err
	}
	t := newTable(w, "CHANGED AT", "ENTITY", "NAME", "OPERATION", "DETAILS")
	for _, e := range page.Rows {
		t.row(ts(e.ChangedAt), e.EntityType.String(), e.EntityName, string(e.Operation), e.ChangeDetails)
	}
	if err := t.flush(); err != nil {
		return err
	}
	footer(w, len(page.Rows), page.Total, page.Truncated)
	return nil
}

package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/roach88/auditlens/internal/audit"
	"github.com/roach88/auditlens/internal/trace"
)

const na = "N/A"

// table writes tab-aligned rows under an upper-case header.
type table struct {
	tw *tabwriter.Writer
}

func newTable(w io.Writer, header ...string) *table {
	t := &table{tw: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
	t.row(header...)
	return t
}

func (t *table) row(cells ...string) {
	fmt.Fprintln(t.tw, strings.Join(cells, "\t"))
}

func (t *table) flush() error {
	return t.tw.Flush()
}

// footer notes a capped result.
func footer(w io.Writer, shown, total int, truncated bool) {
	if truncated {
		fmt.Fprintf(w, "(showing %d of %d rows)\n", shown, total)
	}
}

func ts(t time.Time) string {
	return t.UTC().Format(trace.TimeLayout)
}

func str(n audit.NullString) string {
	return n.Or(na)
}

func money(n audit.NullMoney) string {
	if !n.Valid {
		return na
	}
	return trace.FormatMoney(n.Money)
}

func signedMoney(n audit.NullMoney) string {
	if !n.Valid {
		return na
	}
	if n.Money > 0 {
		return "+" + trace.FormatMoney(n.Money)
	}
	return trace.FormatMoney(n.Money)
}

func actor(n audit.NullString) string {
	return n.Or("system")
}

func hours(h *float64) string {
	if h == nil {
		return "-"
	}
	return strconv.FormatFloat(*h, 'f', 2, 64)
}

package trace

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/auditlens/internal/audit"
)

// TimeLayout is the timestamp layout used in narrative lines.
const TimeLayout = "2006-01-02 15:04:05"

const systemActor = "system"

var printer = message.NewPrinter(language.English)

// Narrate renders entries as narrative lines, one per record plus an
// indented reason line for justified updates. Only fields whose snapshots
// differ are listed for an UPDATE.
func Narrate(kind audit.Kind, entries []Entry) []string {
	if len(entries) == 0 {
		return []string{"No history."}
	}
	label := kind.Label()

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		meta := e.Record.Meta()
		ts := meta.ChangedAt.UTC().Format(TimeLayout)
		actor := e.ChangedBy
		if actor == "" {
			actor = systemActor
		}

		switch meta.Operation {
		case audit.OpInsert:
			lines = append(lines, fmt.Sprintf("%s: %s created by `%s`", ts, label, actor))
		case audit.OpDelete:
			lines = append(lines, fmt.Sprintf("%s: %s deleted by `%s`", ts, label, actor))
		default:
			line := fmt.Sprintf("%s: Updated by `%s`", ts, actor)
			if changes := audit.Changes(e.Record); len(changes) > 0 {
				parts := make([]string, len(changes))
				for i, c := range changes {
					parts[i] = fmt.Sprintf("%s: %s → %s", c.Label, FormatValue(c.Old), FormatValue(c.New))
				}
				line += " - " + strings.Join(parts, ", ")
			}
			lines = append(lines, line)
			if reason := e.Record.Justification(); reason.Valid && strings.TrimSpace(reason.String) != "" {
				lines = append(lines, "  - Reason: "+reason.String)
			}
		}
	}
	return lines
}

// FormatValue renders one snapshot value: N/A for null, $1,234.50 for money.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "N/A"
	case audit.Money:
		return FormatMoney(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case string:
		return x
	}
	return fmt.Sprint(v)
}

// FormatMoney renders m with a dollar sign and thousands separators.
func FormatMoney(m audit.Money) string {
	v := int64(m)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s$%s.%02d", sign, printer.Sprintf("%d", v/100), v%100)
}

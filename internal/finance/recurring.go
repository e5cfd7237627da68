package finance

import (
	"fmt"
	"strings"
	"time"

	"bilancio/internal/core"
)

// RecurringSuffix marks virtual instances for display; editing code strips it
// before showing the template description.
const RecurringSuffix = " (Recurring)"

const virtualIDPrefix = "recurring_"

// ProjectionOptions tunes the recurring expansion. The zero value reproduces
// the observed behavior: templates keep projecting after their end date and
// no dedupe is performed against same-month actuals. HonorEndDate drops
// templates whose end date falls before the target month.
type ProjectionOptions struct {
	HonorEndDate bool
}

// ExpensesForMonth returns every transaction belonging to the target month:
// stored entries dated inside the month verbatim, plus one virtual instance
// per recurring template anchored strictly before the month. Virtual
// instances are derived on every read and never persisted.
func ExpensesForMonth(txs []core.Transaction, target time.Time) []core.Transaction {
	return ExpensesForMonthWith(txs, target, ProjectionOptions{})
}

// ExpensesForMonthWith is ExpensesForMonth with explicit projection options.
func ExpensesForMonthWith(txs []core.Transaction, target time.Time, opts ProjectionOptions) []core.Transaction {
	monthStart := core.MonthStart(target)

	var out []core.Transaction
	for _, tx := range txs {
		if core.SameMonth(tx.Date, target) {
			out = append(out, tx)
		}
	}
	for _, tx := range txs {
		if !tx.IsRecurring {
			continue
		}
		// A template cannot project into its own anchor month or earlier;
		// its stored row already covers the anchor month.
		if !tx.Date.Before(monthStart) {
			continue
		}
		if opts.HonorEndDate && !tx.RecurringEndDate.IsZero() && tx.RecurringEndDate.Before(monthStart) {
			continue
		}
		out = append(out, virtualInstance(tx, target))
	}
	return out
}

func virtualInstance(tmpl core.Transaction, target time.Time) core.Transaction {
	v := tmpl
	v.ID = VirtualID(tmpl.ID, target)
	v.Date = core.ClampDay(target.Year(), target.Month(), tmpl.Date.Day())
	v.Description = tmpl.Description + RecurringSuffix
	return v
}

// VirtualID synthesizes the id of a virtual instance from its template id and
// the target month. The month index is 0-based. Stored ids are uuids, so the
// prefix keeps virtual ids collision-free, and the id is stable across
// repeated reads of the same month/template pair.
func VirtualID(templateID string, target time.Time) string {
	return fmt.Sprintf("%s%s_%d_%d", virtualIDPrefix, templateID, target.Year(), int(target.Month())-1)
}

// IsVirtualID reports whether an id denotes a derived, non-persisted instance.
func IsVirtualID(id string) bool {
	return strings.HasPrefix(id, virtualIDPrefix)
}

// StripRecurringSuffix undoes the display suffix of a virtual instance.
func StripRecurringSuffix(description string) string {
	return strings.TrimSuffix(description, RecurringSuffix)
}

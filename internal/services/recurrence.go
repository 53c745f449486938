// Package services orchestrates the domain logic against the record store
// and the export event publisher. Pure computations stay in internal/core;
// this package owns persistence ordering, optimistic updates and reloads.
package services

import (
	"fmt"

	"contas/internal/core"
)

// TargetMonths resolves the months a debt definition expands into, as an
// ordered subsequence of the known months:
//
//   - none:   just the month the user was viewing
//   - fixed:  every known month at submission time (months created later
//     are not retroactively included)
//   - ranged: the inclusive slice between the bounds, by position in the
//     known-months ordering
//
// A ranged bound that is missing from the known list, or bounds in the
// wrong order, yield an empty result; the caller reports that, nothing is
// persisted.
func TargetMonths(rec core.Recurrence, known []core.MonthKey, current core.MonthKey) []core.MonthKey {
	switch rec.Type {
	case core.RecurrenceFixed:
		out := make([]core.MonthKey, len(known))
		copy(out, known)
		return out
	case core.RecurrenceRanged:
		start, end := -1, -1
		for i, k := range known {
			if k == rec.StartMonth {
				start = i
			}
			if k == rec.EndMonth {
				end = i
			}
		}
		if start < 0 || end < 0 || start > end {
			return nil
		}
		out := make([]core.MonthKey, end-start+1)
		copy(out, known[start:end+1])
		return out
	default:
		return []core.MonthKey{current}
	}
}

// PlanChain materializes one debt row per target month from a template.
// Every row starts Pendente with its due date computed against its own
// month; chain links (OriginalID) are filled in after the anchor insert
// assigns an id.
func PlanChain(tpl core.DebtTemplate, targets []core.MonthKey) ([]core.Debt, error) {
	isRecurrent := tpl.Recurrence.Type == core.RecurrenceFixed || tpl.Recurrence.Type == core.RecurrenceRanged
	rows := make([]core.Debt, 0, len(targets))
	for _, month := range targets {
		dueDate, err := core.DBDateString(month, tpl.DueDay)
		if err != nil {
			return nil, fmt.Errorf("due date for %q: %w", month, err)
		}
		rows = append(rows, core.Debt{
			Name:        tpl.Name,
			Amount:      tpl.Amount,
			Status:      core.DebtPending,
			Category:    tpl.Category,
			DueDate:     dueDate,
			IsRecurrent: isRecurrent,
			CardID:      tpl.CardID,
			MonthKey:    month,
			Recurrence:  tpl.Recurrence,
		})
	}
	return rows, nil
}

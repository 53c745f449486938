// Installment status engine. Everything here is a pure function of the
// record and an explicit "today"; the results are recomputed at every load
// boundary and after every paid-count mutation, never trusted from storage.
package core

import (
	"fmt"
	"time"
)

// NextDueDate returns firstDueDate advanced by months whole calendar months,
// clamping the day to the length of the target month (Jan 31 + 1 month is
// the last day of February). time.AddDate normalizes overflow forward, which
// is the wrong behavior for due dates, so the clamp is explicit.
func NextDueDate(firstDueDate string, months int) (string, error) {
	t, err := ParseCivilDate(firstDueDate)
	if err != nil {
		return "", err
	}
	year, month, day := t.Date()
	total := year*12 + int(month) - 1 + months
	targetYear := total / 12
	targetMonth := time.Month(total%12 + 1)
	if last := daysInMonth(targetYear, targetMonth); day > last {
		day = last
	}
	return time.Date(targetYear, targetMonth, day, 0, 0, 0, 0, time.UTC).Format(CivilDateLayout), nil
}

// StatusOf derives the installment status from its counters and next due
// date. Concluído wins over everything once all installments are paid, even
// with a past next due date. today must be a civil date (midnight).
func StatusOf(totalInstallments, paidInstallments int, nextDueDate string, today time.Time) (InstallmentStatus, error) {
	if paidInstallments >= totalInstallments {
		return InstallmentDone, nil
	}
	next, err := ParseCivilDate(nextDueDate)
	if err != nil {
		return "", err
	}
	if next.Before(today) {
		return InstallmentOverdue, nil
	}
	return InstallmentActive, nil
}

// Reproject recomputes NextDueDate and Status from the authoritative fields.
// A Cancelado record is returned untouched: that status is user-authored and
// the engine must never overwrite it.
func Reproject(in Installment, today time.Time) (Installment, error) {
	if in.Status == InstallmentCancelled {
		return in, nil
	}
	next, err := NextDueDate(in.FirstDueDate, in.PaidInstallments)
	if err != nil {
		return in, fmt.Errorf("reproject installment %d: %w", in.ID, err)
	}
	status, err := StatusOf(in.TotalInstallments, in.PaidInstallments, next, today)
	if err != nil {
		return in, fmt.Errorf("reproject installment %d: %w", in.ID, err)
	}
	in.NextDueDate = next
	in.Status = status
	return in, nil
}

// MarkThroughCount computes the new paid counter after the user clicks
// installment marker number clicked (1-based). Clicking at or below the
// current boundary un-pays that marker and everything after it; clicking
// above pays through it. The result is clamped to [0, total].
func MarkThroughCount(currentPaid, clicked, total int) int {
	newPaid := clicked
	if clicked <= currentPaid {
		newPaid = clicked - 1
	}
	if newPaid < 0 {
		newPaid = 0
	}
	if newPaid > total {
		newPaid = total
	}
	return newPaid
}

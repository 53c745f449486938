// List pipelines: pure, stateless transforms from an entity slice to the
// displayed slice. The input is never mutated; callers keep the
// authoritative list and re-run the pipeline when controls change.
package core

import (
	"sort"
	"strings"
)

// ListControls are the shared search/filter/sort knobs of every list screen.
// Empty Search/Category/Status mean "no filtering". Descending flips the
// sort direction.
type ListControls struct {
	Search     string
	Category   string
	Status     string
	SortKey    string
	Descending bool
}

// installmentStatusRank orders installment rows by urgency when sorting by
// status: overdue first, finished and cancelled last.
var installmentStatusRank = map[InstallmentStatus]int{
	InstallmentOverdue:   0,
	InstallmentActive:    1,
	InstallmentDone:      2,
	InstallmentCancelled: 3,
}

// FilterDebts applies the controls to a debt list. Sort keys: "name",
// "amount", "dueDate" (default), "status" (pending before paid).
func FilterDebts(debts []Debt, c ListControls) []Debt {
	out := make([]Debt, 0, len(debts))
	for _, d := range debts {
		if c.Search != "" && !containsFold(d.Name, c.Search) {
			continue
		}
		if c.Category != "" && d.Category != c.Category {
			continue
		}
		if c.Status != "" && string(d.Status) != c.Status {
			continue
		}
		out = append(out, d)
	}
	key := c.SortKey
	if key == "" {
		key = "dueDate"
	}
	less := func(i, j int) bool {
		a, b := out[i], out[j]
		switch key {
		case "name":
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		case "amount":
			return a.Amount.Cents < b.Amount.Cents
		case "status":
			rank := func(s DebtStatus) int {
				if s == DebtPending {
					return 0
				}
				return 1
			}
			return rank(a.Status) < rank(b.Status)
		default: // dueDate
			return a.DueDate < b.DueDate
		}
	}
	if c.Descending {
		sort.SliceStable(out, func(i, j int) bool { return less(j, i) })
	} else {
		sort.SliceStable(out, less)
	}
	return out
}

// FilterInstallments applies the controls to an installment list. Sort keys:
// "name", "totalAmount", "nextDueDate" (default), "status" (by urgency).
func FilterInstallments(list []Installment, c ListControls) []Installment {
	out := make([]Installment, 0, len(list))
	for _, in := range list {
		if c.Search != "" && !containsFold(in.Name, c.Search) {
			continue
		}
		if c.Category != "" && in.Category != c.Category {
			continue
		}
		if c.Status != "" && string(in.Status) != c.Status {
			continue
		}
		out = append(out, in)
	}
	key := c.SortKey
	if key == "" {
		key = "nextDueDate"
	}
	less := func(i, j int) bool {
		a, b := out[i], out[j]
		switch key {
		case "name":
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		case "totalAmount":
			return a.TotalAmount.Cents < b.TotalAmount.Cents
		case "status":
			return installmentStatusRank[a.Status] < installmentStatusRank[b.Status]
		default:
			return a.NextDueDate < b.NextDueDate
		}
	}
	if c.Descending {
		sort.SliceStable(out, func(i, j int) bool { return less(j, i) })
	} else {
		sort.SliceStable(out, less)
	}
	return out
}

// FilterSubscriptions applies the controls to a subscription list. Sort
// keys: "name" (default), "amount", "nextBillingDate".
func FilterSubscriptions(list []Subscription, c ListControls) []Subscription {
	out := make([]Subscription, 0, len(list))
	for _, s := range list {
		if c.Search != "" && !containsFold(s.Name, c.Search) {
			continue
		}
		if c.Category != "" && s.Category != c.Category {
			continue
		}
		if c.Status != "" && string(s.Status) != c.Status {
			continue
		}
		out = append(out, s)
	}
	key := c.SortKey
	if key == "" {
		key = "name"
	}
	less := func(i, j int) bool {
		a, b := out[i], out[j]
		switch key {
		case "amount":
			return a.Amount.Cents < b.Amount.Cents
		case "nextBillingDate":
			return a.NextBillingDate < b.NextBillingDate
		default:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	}
	if c.Descending {
		sort.SliceStable(out, func(i, j int) bool { return less(j, i) })
	} else {
		sort.SliceStable(out, less)
	}
	return out
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

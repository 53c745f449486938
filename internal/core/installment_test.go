package core

import (
	"testing"
	"time"
)

func civil(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextDueDate(t *testing.T) {
	cases := []struct {
		first  string
		months int
		want   string
	}{
		{"2026-01-15", 0, "2026-01-15"},
		{"2026-01-15", 1, "2026-02-15"},
		{"2026-01-15", 12, "2027-01-15"},
		{"2026-01-31", 1, "2026-02-28"}, // clamps to February's length
		{"2024-01-31", 1, "2024-02-29"}, // leap year keeps the 29th
		{"2026-01-31", 2, "2026-03-31"},
		{"2025-11-30", 3, "2026-02-28"},
	}
	for _, tc := range cases {
		got, err := NextDueDate(tc.first, tc.months)
		if err != nil {
			t.Fatalf("(%s +%dm): %v", tc.first, tc.months, err)
		}
		if got != tc.want {
			t.Fatalf("(%s +%dm): got %s, want %s", tc.first, tc.months, got, tc.want)
		}
	}
	if _, err := NextDueDate("bogus", 1); err == nil {
		t.Fatal("expected error for unparseable date")
	}
}

func TestStatusOf(t *testing.T) {
	today := civil(2026, time.March, 10)
	cases := []struct {
		name    string
		total   int
		paid    int
		nextDue string
		want    InstallmentStatus
	}{
		{"all paid is done even when overdue", 12, 12, "2020-01-01", InstallmentDone},
		{"overpaid still done", 12, 13, "2020-01-01", InstallmentDone},
		{"past due date", 12, 3, "2026-03-09", InstallmentOverdue},
		{"due today is not overdue", 12, 3, "2026-03-10", InstallmentActive},
		{"future due date", 12, 3, "2026-04-10", InstallmentActive},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := StatusOf(tc.total, tc.paid, tc.nextDue, today)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Fatalf("got %s, want %s", got, tc.want)
			}
		})
	}
}

// Walking the paid counter from 0 to total never moves the status backward
// from Concluído, and reaches it exactly at the last installment.
func TestStatusMonotonicOverPaidCount(t *testing.T) {
	const total = 12
	today := civil(2026, time.June, 1)
	seenDone := false
	for paid := 0; paid <= total; paid++ {
		next, err := NextDueDate("2026-01-15", paid)
		if err != nil {
			t.Fatal(err)
		}
		status, err := StatusOf(total, paid, next, today)
		if err != nil {
			t.Fatal(err)
		}
		if seenDone && status != InstallmentDone {
			t.Fatalf("paid=%d: status regressed from Concluído to %s", paid, status)
		}
		if status == InstallmentDone {
			seenDone = true
			if paid != total {
				t.Fatalf("paid=%d: Concluído before all installments paid", paid)
			}
		}
	}
	if !seenDone {
		t.Fatal("never reached Concluído")
	}
}

func TestMarkThroughCount(t *testing.T) {
	cases := []struct {
		name    string
		paid    int
		clicked int
		total   int
		want    int
	}{
		{"pay forward", 2, 5, 12, 5},
		{"unpay boundary", 5, 5, 12, 4},
		{"unpay middle unwinds after it", 5, 3, 12, 2},
		{"first marker unpay", 1, 1, 12, 0},
		{"clamp above total", 2, 99, 12, 12},
		{"clicking next after unpaid first", 0, 1, 12, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MarkThroughCount(tc.paid, tc.clicked, tc.total); got != tc.want {
				t.Fatalf("got %d, want %d", got, tc.want)
			}
		})
	}
}

// Re-clicking the paid boundary oscillates between N and N-1 with no drift.
func TestMarkThroughReToggleStable(t *testing.T) {
	const total, n = 12, 7
	paid := MarkThroughCount(0, n, total)
	if paid != n {
		t.Fatalf("first click: got %d, want %d", paid, n)
	}
	for i := 0; i < 10; i++ {
		paid = MarkThroughCount(paid, n, total)
		want := n - 1
		if i%2 == 1 {
			want = n
		}
		if paid != want {
			t.Fatalf("toggle %d: got %d, want %d", i, paid, want)
		}
	}
}

func TestReproject(t *testing.T) {
	today := civil(2026, time.March, 10)
	in := Installment{
		ID:                1,
		Name:              "Notebook",
		TotalAmount:       Money{Cents: 360000},
		TotalInstallments: 12,
		PaidInstallments:  1,
		FirstDueDate:      "2026-01-31",
		NextDueDate:       "1999-01-01", // stale stored value, must be overwritten
		Status:            InstallmentActive,
	}
	got, err := Reproject(in, today)
	if err != nil {
		t.Fatal(err)
	}
	if got.NextDueDate != "2026-02-28" {
		t.Fatalf("nextDueDate: got %s", got.NextDueDate)
	}
	if got.Status != InstallmentOverdue {
		t.Fatalf("status: got %s", got.Status)
	}

	cancelled := in
	cancelled.Status = InstallmentCancelled
	got, err = Reproject(cancelled, today)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != InstallmentCancelled || got.NextDueDate != "1999-01-01" {
		t.Fatalf("cancelled record was modified: %+v", got)
	}
}

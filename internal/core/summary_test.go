package core

import "testing"

func TestSummarizeMonth(t *testing.T) {
	key := MonthKey("Março de 2026")
	debts := []Debt{
		{Amount: Money{Cents: 150000}, Status: DebtPaid, Category: "Moradia"},
		{Amount: Money{Cents: 9900}, Status: DebtPending, Category: "Moradia"},
		{Amount: Money{Cents: 5000}, Status: DebtPending},
	}
	s := SummarizeMonth(key, debts)

	if s.Count != 3 || s.PaidCount != 1 {
		t.Fatalf("counts: %d/%d", s.PaidCount, s.Count)
	}
	if s.Total.Cents != 164900 || s.Paid.Cents != 150000 || s.Pending.Cents != 14900 {
		t.Fatalf("amounts: total=%d paid=%d pending=%d", s.Total.Cents, s.Paid.Cents, s.Pending.Cents)
	}
	if s.AllPaid {
		t.Fatal("AllPaid should be false")
	}
	if len(s.ByCategory) != 2 {
		t.Fatalf("categories: %+v", s.ByCategory)
	}
	if s.ByCategory[0].Name != "Moradia" || s.ByCategory[0].Amount.Cents != 159900 {
		t.Fatalf("first category: %+v", s.ByCategory[0])
	}
	if s.ByCategory[1].Name != "Outros" {
		t.Fatalf("uncategorized bucket: %+v", s.ByCategory[1])
	}
}

func TestSummarizeMonthAllPaid(t *testing.T) {
	s := SummarizeMonth("Abril de 2026", []Debt{
		{Amount: Money{Cents: 100}, Status: DebtPaid},
	})
	if !s.AllPaid {
		t.Fatal("expected AllPaid")
	}
	// an empty month is never "all paid"
	if SummarizeMonth("Abril de 2026", nil).AllPaid {
		t.Fatal("empty month should not be AllPaid")
	}
}

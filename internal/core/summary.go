package core

// CategoryAmount is an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// MonthSummary is the compact dashboard projection for one month. It is
// derived from the flat debt list at read time and never stored.
type MonthSummary struct {
	MonthKey   MonthKey
	Total      Money
	Paid       Money
	Pending    Money
	Count      int
	PaidCount  int
	AllPaid    bool
	ByCategory []CategoryAmount
}

// SummarizeMonth folds a month's debts into its dashboard summary.
// Categories keep first-appearance order so the breakdown is stable across
// reloads.
func SummarizeMonth(key MonthKey, debts []Debt) MonthSummary {
	s := MonthSummary{MonthKey: key}
	byCat := make(map[string]int)
	for _, d := range debts {
		s.Count++
		s.Total.Cents += d.Amount.Cents
		if d.Status == DebtPaid {
			s.PaidCount++
			s.Paid.Cents += d.Amount.Cents
		} else {
			s.Pending.Cents += d.Amount.Cents
		}
		cat := d.Category
		if cat == "" {
			cat = "Outros"
		}
		if i, ok := byCat[cat]; ok {
			s.ByCategory[i].Amount.Cents += d.Amount.Cents
		} else {
			byCat[cat] = len(s.ByCategory)
			s.ByCategory = append(s.ByCategory, CategoryAmount{Name: cat, Amount: d.Amount})
		}
	}
	s.AllPaid = s.Count > 0 && s.PaidCount == s.Count
	return s
}

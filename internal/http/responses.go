package http

import "contas/internal/core"

// Response DTOs. Amounts go out as decimal reais; every name is snake_case
// to match what the client and the storage layer use.

type debtJSON struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Amount         float64 `json:"amount"`
	Status         string  `json:"status"`
	Category       string  `json:"category,omitempty"`
	DueDate        string  `json:"due_date"`
	PaidDate       string  `json:"paid_date,omitempty"`
	IsRecurrent    bool    `json:"is_recurrent"`
	OriginalID     int64   `json:"original_id,omitempty"`
	CardID         int64   `json:"card_id,omitempty"`
	MonthKey       string  `json:"month_key"`
	RecurrenceType string  `json:"recurrence_type,omitempty"`
	StartMonth     string  `json:"start_month,omitempty"`
	EndMonth       string  `json:"end_month,omitempty"`
}

func toDebtJSON(d core.Debt) debtJSON {
	return debtJSON{
		ID:             d.ID,
		Name:           d.Name,
		Amount:         d.Amount.Reais(),
		Status:         string(d.Status),
		Category:       d.Category,
		DueDate:        d.DueDate,
		PaidDate:       d.PaidDate,
		IsRecurrent:    d.IsRecurrent,
		OriginalID:     d.OriginalID,
		CardID:         d.CardID,
		MonthKey:       string(d.MonthKey),
		RecurrenceType: string(d.Recurrence.Type),
		StartMonth:     string(d.Recurrence.StartMonth),
		EndMonth:       string(d.Recurrence.EndMonth),
	}
}

func toDebtListJSON(debts []core.Debt) []debtJSON {
	out := make([]debtJSON, len(debts))
	for i, d := range debts {
		out[i] = toDebtJSON(d)
	}
	return out
}

type installmentJSON struct {
	ID                int64   `json:"id"`
	Name              string  `json:"name"`
	TotalAmount       float64 `json:"total_amount"`
	InstallmentAmount float64 `json:"installment_amount"`
	TotalInstallments int     `json:"total_installments"`
	PaidInstallments  int     `json:"paid_installments"`
	FirstDueDate      string  `json:"first_due_date"`
	NextDueDate       string  `json:"next_due_date,omitempty"`
	Category          string  `json:"category,omitempty"`
	PaymentMethod     string  `json:"payment_method,omitempty"`
	Status            string  `json:"status"`
	Description       string  `json:"description,omitempty"`
	CardID            int64   `json:"card_id,omitempty"`
}

func toInstallmentJSON(in core.Installment) installmentJSON {
	return installmentJSON{
		ID:                in.ID,
		Name:              in.Name,
		TotalAmount:       in.TotalAmount.Reais(),
		InstallmentAmount: in.InstallmentAmount.Reais(),
		TotalInstallments: in.TotalInstallments,
		PaidInstallments:  in.PaidInstallments,
		FirstDueDate:      in.FirstDueDate,
		NextDueDate:       in.NextDueDate,
		Category:          in.Category,
		PaymentMethod:     in.PaymentMethod,
		Status:            string(in.Status),
		Description:       in.Description,
		CardID:            in.CardID,
	}
}

func toInstallmentListJSON(list []core.Installment) []installmentJSON {
	out := make([]installmentJSON, len(list))
	for i, in := range list {
		out[i] = toInstallmentJSON(in)
	}
	return out
}

type subscriptionJSON struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Plan            string  `json:"plan,omitempty"`
	Amount          float64 `json:"amount"`
	Category        string  `json:"category,omitempty"`
	BillingCycle    string  `json:"billing_cycle"`
	PaymentMethod   string  `json:"payment_method,omitempty"`
	Status          string  `json:"status"`
	NextBillingDate string  `json:"next_billing_date"`
	StartDate       string  `json:"start_date,omitempty"`
}

func toSubscriptionJSON(s core.Subscription) subscriptionJSON {
	return subscriptionJSON{
		ID:              s.ID,
		Name:            s.Name,
		Plan:            s.Plan,
		Amount:          s.Amount.Reais(),
		Category:        s.Category,
		BillingCycle:    string(s.BillingCycle),
		PaymentMethod:   s.PaymentMethod,
		Status:          string(s.Status),
		NextBillingDate: s.NextBillingDate,
		StartDate:       s.StartDate,
	}
}

func toSubscriptionListJSON(list []core.Subscription) []subscriptionJSON {
	out := make([]subscriptionJSON, len(list))
	for i, s := range list {
		out[i] = toSubscriptionJSON(s)
	}
	return out
}

type cardJSON struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	LastFourDigits string  `json:"last_four_digits"`
	Flag           string  `json:"flag,omitempty"`
	Type           string  `json:"type,omitempty"`
	Issuer         string  `json:"issuer,omitempty"`
	Limit          float64 `json:"limit"`
	UsedAmount     float64 `json:"used_amount"`
	ClosingDay     int     `json:"closing_day,omitempty"`
	DueDay         int     `json:"due_day,omitempty"`
	Status         string  `json:"status"`
}

func toCardJSON(c core.Card) cardJSON {
	return cardJSON{
		ID:             c.ID,
		Name:           c.Name,
		LastFourDigits: c.LastFourDigits,
		Flag:           c.Flag,
		Type:           c.Type,
		Issuer:         c.Issuer,
		Limit:          c.Limit.Reais(),
		UsedAmount:     c.UsedAmount.Reais(),
		ClosingDay:     c.ClosingDay,
		DueDay:         c.DueDay,
		Status:         string(c.Status),
	}
}

func toCardListJSON(list []core.Card) []cardJSON {
	out := make([]cardJSON, len(list))
	for i, c := range list {
		out[i] = toCardJSON(c)
	}
	return out
}

type categoryAmountJSON struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type summaryJSON struct {
	MonthKey   string               `json:"month_key"`
	Total      float64              `json:"total"`
	Paid       float64              `json:"paid"`
	Pending    float64              `json:"pending"`
	Count      int                  `json:"count"`
	PaidCount  int                  `json:"paid_count"`
	AllPaid    bool                 `json:"all_paid"`
	ByCategory []categoryAmountJSON `json:"by_category"`
}

func toSummaryJSON(s core.MonthSummary) summaryJSON {
	byCat := make([]categoryAmountJSON, len(s.ByCategory))
	for i, c := range s.ByCategory {
		byCat[i] = categoryAmountJSON{Name: c.Name, Amount: c.Amount.Reais()}
	}
	return summaryJSON{
		MonthKey:   string(s.MonthKey),
		Total:      s.Total.Reais(),
		Paid:       s.Paid.Reais(),
		Pending:    s.Pending.Reais(),
		Count:      s.Count,
		PaidCount:  s.PaidCount,
		AllPaid:    s.AllPaid,
		ByCategory: byCat,
	}
}

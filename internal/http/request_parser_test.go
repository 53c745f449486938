package http

import (
	"net/url"
	"testing"

	"contas/internal/core"
)

func TestDebtPayloadToTemplate(t *testing.T) {
	payload := debtPayload{
		Name:           "  Aluguel  ",
		Amount:         1500.50,
		Category:       "Moradia",
		DueDay:         5,
		IsRecurrent:    true,
		RecurrenceType: "ranged",
		StartMonth:     "Janeiro de 2026",
		EndMonth:       "Março de 2026",
		CurrentMonth:   "Fevereiro de 2026",
	}

	tpl, current := payload.toTemplate()
	if tpl.Name != "Aluguel" {
		t.Errorf("Name = %q, want trimmed", tpl.Name)
	}
	if tpl.Amount.Cents != 150050 {
		t.Errorf("Amount = %d cents, want 150050", tpl.Amount.Cents)
	}
	if tpl.Recurrence.Type != core.RecurrenceRanged {
		t.Errorf("Recurrence.Type = %q", tpl.Recurrence.Type)
	}
	if tpl.Recurrence.StartMonth != "Janeiro de 2026" || tpl.Recurrence.EndMonth != "Março de 2026" {
		t.Errorf("bounds = %q..%q", tpl.Recurrence.StartMonth, tpl.Recurrence.EndMonth)
	}
	if current != "Fevereiro de 2026" {
		t.Errorf("current = %q", current)
	}
}

func TestDebtPayloadRecurrenceDefaults(t *testing.T) {
	tests := []struct {
		name    string
		payload debtPayload
		want    core.RecurrenceType
	}{
		{"non-recurrent defaults to none", debtPayload{}, core.RecurrenceNone},
		{"recurrent defaults to fixed", debtPayload{IsRecurrent: true}, core.RecurrenceFixed},
		{"explicit type wins", debtPayload{IsRecurrent: true, RecurrenceType: "ranged"}, core.RecurrenceRanged},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl, _ := tt.payload.toTemplate()
			if tpl.Recurrence.Type != tt.want {
				t.Errorf("Recurrence.Type = %q, want %q", tpl.Recurrence.Type, tt.want)
			}
		})
	}
}

func TestInstallmentPayloadConversion(t *testing.T) {
	payload := installmentPayload{
		Name:              "Celular",
		TotalAmount:       2400.00,
		TotalInstallments: 12,
		FirstDueDate:      "2026-01-15",
		PaymentMethod:     "Cartão",
	}
	in := payload.toInstallment(9)
	if in.ID != 9 {
		t.Errorf("ID = %d", in.ID)
	}
	if in.TotalAmount.Cents != 240000 {
		t.Errorf("TotalAmount = %d cents", in.TotalAmount.Cents)
	}
	if in.PaidInstallments != 0 || in.InstallmentAmount.Cents != 0 {
		t.Error("progress fields must not come from the payload")
	}
}

func TestParseListControls(t *testing.T) {
	query := url.Values{}
	query.Set("search", " net ")
	query.Set("category", "Casa")
	query.Set("status", "Pendente")
	query.Set("sort", "amount")
	query.Set("desc", "true")

	c := parseListControls(query)
	if c.Search != "net" || c.Category != "Casa" || c.Status != "Pendente" {
		t.Errorf("controls = %+v", c)
	}
	if c.SortKey != "amount" || !c.Descending {
		t.Errorf("sort = %q desc=%v", c.SortKey, c.Descending)
	}

	empty := parseListControls(url.Values{})
	if empty != (core.ListControls{}) {
		t.Errorf("empty query should yield zero controls, got %+v", empty)
	}
}

func TestParseDays(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 30},
		{"7", 7},
		{"0", 30},
		{"-3", 30},
		{"abc", 30},
		{"9000", 365},
	}
	for _, tt := range tests {
		query := url.Values{}
		if tt.raw != "" {
			query.Set("days", tt.raw)
		}
		if got := parseDays(query); got != tt.want {
			t.Errorf("parseDays(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

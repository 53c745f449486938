package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"contas/internal/core"
)

const maxBodyBytes = 1 << 20

var errBadBody = errors.New("malformed request body")

// decodeJSON reads the request body into dst. The body is capped at 1MB.
func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	return nil
}

// parseID reads the {id} path segment.
func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad id %q", errBadBody, r.PathValue("id"))
	}
	return id, nil
}

// parseListControls maps the shared list query parameters onto the filter
// pipeline controls.
func parseListControls(query url.Values) core.ListControls {
	return core.ListControls{
		Search:     strings.TrimSpace(query.Get("search")),
		Category:   strings.TrimSpace(query.Get("category")),
		Status:     strings.TrimSpace(query.Get("status")),
		SortKey:    strings.TrimSpace(query.Get("sort")),
		Descending: query.Get("desc") == "true",
	}
}

// parseDays reads the ?days window for upcoming queries, defaulting to 30
// and capping at a year.
func parseDays(query url.Values) int {
	days := 30
	if v := strings.TrimSpace(query.Get("days")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			days = n
		}
	}
	if days > 365 {
		days = 365
	}
	return days
}

// debtPayload is the creation body for a debt definition. Amounts travel as
// decimal reais and are converted to centavos at this boundary.
type debtPayload struct {
	Name           string  `json:"name"`
	Amount         float64 `json:"amount"`
	Category       string  `json:"category"`
	CardID         int64   `json:"card_id"`
	DueDay         int     `json:"due_day"`
	IsRecurrent    bool    `json:"is_recurrent"`
	RecurrenceType string  `json:"recurrence_type"`
	StartMonth     string  `json:"start_month"`
	EndMonth       string  `json:"end_month"`
	CurrentMonth   string  `json:"current_month"`
}

func (p debtPayload) toTemplate() (core.DebtTemplate, core.MonthKey) {
	recType := core.RecurrenceType(p.RecurrenceType)
	if p.RecurrenceType == "" {
		recType = core.RecurrenceNone
		if p.IsRecurrent {
			recType = core.RecurrenceFixed
		}
	}
	tpl := core.DebtTemplate{
		Name:     strings.TrimSpace(p.Name),
		Amount:   core.CentsFromReais(p.Amount),
		Category: strings.TrimSpace(p.Category),
		CardID:   p.CardID,
		DueDay:   p.DueDay,
		Recurrence: core.Recurrence{
			Type:       recType,
			StartMonth: core.MonthKey(p.StartMonth),
			EndMonth:   core.MonthKey(p.EndMonth),
		},
	}
	return tpl, core.MonthKey(p.CurrentMonth)
}

// debtUpdatePayload is the edit body for a single debt row.
type debtUpdatePayload struct {
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Status   string  `json:"status"`
	DueDate  string  `json:"due_date"`
	Category string  `json:"category"`
	CardID   int64   `json:"card_id"`
}

func (p debtUpdatePayload) toUpdate() core.DebtUpdate {
	return core.DebtUpdate{
		Name:     strings.TrimSpace(p.Name),
		Amount:   core.CentsFromReais(p.Amount),
		Status:   core.DebtStatus(p.Status),
		DueDate:  strings.TrimSpace(p.DueDate),
		Category: strings.TrimSpace(p.Category),
		CardID:   p.CardID,
	}
}

type installmentPayload struct {
	Name              string  `json:"name"`
	TotalAmount       float64 `json:"total_amount"`
	TotalInstallments int     `json:"total_installments"`
	FirstDueDate      string  `json:"first_due_date"`
	Category          string  `json:"category"`
	PaymentMethod     string  `json:"payment_method"`
	Description       string  `json:"description"`
	CardID            int64   `json:"card_id"`
}

func (p installmentPayload) toInstallment(id int64) core.Installment {
	return core.Installment{
		ID:                id,
		Name:              strings.TrimSpace(p.Name),
		TotalAmount:       core.CentsFromReais(p.TotalAmount),
		TotalInstallments: p.TotalInstallments,
		FirstDueDate:      strings.TrimSpace(p.FirstDueDate),
		Category:          strings.TrimSpace(p.Category),
		PaymentMethod:     strings.TrimSpace(p.PaymentMethod),
		Description:       strings.TrimSpace(p.Description),
		CardID:            p.CardID,
	}
}

// markPayload carries the clicked installment number for mark-through.
type markPayload struct {
	InstallmentNumber int `json:"installment_number"`
}

type subscriptionPayload struct {
	Name            string  `json:"name"`
	Plan            string  `json:"plan"`
	Amount          float64 `json:"amount"`
	Category        string  `json:"category"`
	BillingCycle    string  `json:"billing_cycle"`
	PaymentMethod   string  `json:"payment_method"`
	Status          string  `json:"status"`
	NextBillingDate string  `json:"next_billing_date"`
	StartDate       string  `json:"start_date"`
}

func (p subscriptionPayload) toSubscription(id int64) core.Subscription {
	return core.Subscription{
		ID:              id,
		Name:            strings.TrimSpace(p.Name),
		Plan:            strings.TrimSpace(p.Plan),
		Amount:          core.CentsFromReais(p.Amount),
		Category:        strings.TrimSpace(p.Category),
		BillingCycle:    core.BillingCycle(p.BillingCycle),
		PaymentMethod:   strings.TrimSpace(p.PaymentMethod),
		Status:          core.SubscriptionStatus(p.Status),
		NextBillingDate: strings.TrimSpace(p.NextBillingDate),
		StartDate:       strings.TrimSpace(p.StartDate),
	}
}

type cardPayload struct {
	Name           string  `json:"name"`
	LastFourDigits string  `json:"last_four_digits"`
	Flag           string  `json:"flag"`
	Type           string  `json:"type"`
	Issuer         string  `json:"issuer"`
	Limit          float64 `json:"limit"`
	UsedAmount     float64 `json:"used_amount"`
	ClosingDay     int     `json:"closing_day"`
	DueDay         int     `json:"due_day"`
	Status         string  `json:"status"`
}

func (p cardPayload) toCard(id int64) core.Card {
	return core.Card{
		ID:             id,
		Name:           strings.TrimSpace(p.Name),
		LastFourDigits: strings.TrimSpace(p.LastFourDigits),
		Flag:           strings.TrimSpace(p.Flag),
		Type:           strings.TrimSpace(p.Type),
		Issuer:         strings.TrimSpace(p.Issuer),
		Limit:          core.CentsFromReais(p.Limit),
		UsedAmount:     core.CentsFromReais(p.UsedAmount),
		ClosingDay:     p.ClosingDay,
		DueDay:         p.DueDay,
		Status:         core.CardStatus(p.Status),
	}
}

// monthsPayload registers new month partitions.
type monthsPayload struct {
	Keys []string `json:"keys"`
}

func (p monthsPayload) toKeys() []core.MonthKey {
	keys := make([]core.MonthKey, 0, len(p.Keys))
	for _, k := range p.Keys {
		keys = append(keys, core.MonthKey(strings.TrimSpace(k)))
	}
	return keys
}

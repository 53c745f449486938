package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"contas/internal/core"
	"contas/internal/services"
)

// fakeStore is an in-memory stand-in for the SQLite repository, satisfying
// every store interface the services consume.
type fakeStore struct {
	months        []core.MonthKey
	debts         []core.Debt
	installments  []core.Installment
	subscriptions []core.Subscription
	cards         []core.Card
	nextID        int64
}

func newFakeStore(months ...core.MonthKey) *fakeStore {
	return &fakeStore{months: months}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) ListMonths(context.Context) ([]core.MonthKey, error) {
	return append([]core.MonthKey(nil), f.months...), nil
}

func (f *fakeStore) AddMonths(_ context.Context, keys []core.MonthKey) error {
	f.months = append(f.months, keys...)
	return nil
}

func (f *fakeStore) DeleteMonth(_ context.Context, key core.MonthKey) error {
	for i, k := range f.months {
		if k == key {
			f.months = append(f.months[:i], f.months[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (f *fakeStore) ListDebts(context.Context) ([]core.Debt, error) {
	return append([]core.Debt(nil), f.debts...), nil
}

func (f *fakeStore) InsertDebt(_ context.Context, d core.Debt) (int64, error) {
	d.ID = f.id()
	f.debts = append(f.debts, d)
	return d.ID, nil
}

func (f *fakeStore) InsertDebts(_ context.Context, debts []core.Debt) error {
	for _, d := range debts {
		d.ID = f.id()
		f.debts = append(f.debts, d)
	}
	return nil
}

func (f *fakeStore) SetDebtOriginalID(_ context.Context, id, originalID int64) error {
	for i := range f.debts {
		if f.debts[i].ID == id {
			f.debts[i].OriginalID = originalID
			return nil
		}
	}
	return core.ErrNotFound
}

func (f *fakeStore) UpdateDebt(_ context.Context, id int64, upd core.DebtUpdate) error {
	for i := range f.debts {
		if f.debts[i].ID == id {
			f.debts[i].Name = upd.Name
			f.debts[i].Amount = upd.Amount
			f.debts[i].Status = upd.Status
			f.debts[i].DueDate = upd.DueDate
			f.debts[i].Category = upd.Category
			f.debts[i].CardID = upd.CardID
			return nil
		}
	}
	return core.ErrNotFound
}

func (f *fakeStore) UpdateDebtStatus(_ context.Context, id int64, status core.DebtStatus, paidDate string) error {
	for i := range f.debts {
		if f.debts[i].ID == id {
			f.debts[i].Status = status
			f.debts[i].PaidDate = paidDate
			return nil
		}
	}
	return core.ErrNotFound
}

func (f *fakeStore) DeleteDebt(_ context.Context, id int64) error {
	for i := range f.debts {
		if f.debts[i].ID == id {
			f.debts = append(f.debts[:i], f.debts[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (f *fakeStore) DeleteDebtChain(_ context.Context, anchorID int64) error {
	kept := f.debts[:0]
	for _, d := range f.debts {
		if d.ID != anchorID && d.OriginalID != anchorID {
			kept = append(kept, d)
		}
	}
	f.debts = kept
	return nil
}

func (f *fakeStore) DeleteDebtsByMonth(_ context.Context, key core.MonthKey) error {
	kept := f.debts[:0]
	for _, d := range f.debts {
		if d.MonthKey != key {
			kept = append(kept, d)
		}
	}
	f.debts = kept
	return nil
}

func (f *fakeStore) ListInstallments(context.Context) ([]core.Installment, error) {
	return append([]core.Installment(nil), f.installments...), nil
}

func (f *fakeStore) GetInstallment(_ context.Context, id int64) (core.Installment, error) {
	for _, in := range f.installments {
		if in.ID == id {
			return in, nil
		}
	}
	return core.Installment{}, core.ErrNotFound
}

func (f *fakeStore) InsertInstallment(_ context.Context, in core.Installment) (int64, error) {
	in.ID = f.id()
	f.installments = append(f.installments, in)
	return in.ID, nil
}

func (f *fakeStore) UpdateInstallment(_ context.Context, in core.Installment) error {
	for i := range f.installments {
		if f.installments[i].ID == in.ID {
			f.installments[i] = in
			return nil
		}
	}
	return core.ErrNotFound
}

func (f *fakeStore) UpdateInstallmentProgress(_ context.Context, id int64, paid int, nextDueDate string, status core.InstallmentStatus) error {
	for i := range f.installments {
		if f.installments[i].ID == id {
			f.installments[i].PaidInstallments = paid
			f.installments[i].NextDueDate = nextDueDate
			f.installments[i].Status = status
			return nil
		}
	}
	return core.ErrNotFound
}

func (f *fakeStore) DeleteInstallment(_ context.Context, id int64) error {
	for i := range f.installments {
		if f.installments[i].ID == id {
			f.installments = append(f.installments[:i], f.installments[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (f *fakeStore) ListSubscriptions(context.Context) ([]core.Subscription, error) {
	return append([]core.Subscription(nil), f.subscriptions...), nil
}

func (f *fakeStore) GetSubscription(_ context.Context, id int64) (core.Subscription, error) {
	for _, sub := range f.subscriptions {
		if sub.ID == id {
			return sub, nil
		}
	}
	return core.Subscription{}, core.ErrNotFound
}

func (f *fakeStore) InsertSubscription(_ context.Context, sub core.Subscription) (int64, error) {
	sub.ID = f.id()
	f.subscriptions = append(f.subscriptions, sub)
	return sub.ID, nil
}

func (f *fakeStore) UpdateSubscription(_ context.Context, sub core.Subscription) error {
	for i := range f.subscriptions {
		if f.subscriptions[i].ID == sub.ID {
			f.subscriptions[i] = sub
			return nil
		}
	}
	return core.ErrNotFound
}

func (f *fakeStore) UpdateSubscriptionBilling(_ context.Context, id int64, nextBillingDate string) error {
	for i := range f.subscriptions {
		if f.subscriptions[i].ID == id {
			f.subscriptions[i].NextBillingDate = nextBillingDate
			return nil
		}
	}
	return core.ErrNotFound
}

func (f *fakeStore) DeleteSubscription(_ context.Context, id int64) error {
	for i := range f.subscriptions {
		if f.subscriptions[i].ID == id {
			f.subscriptions = append(f.subscriptions[:i], f.subscriptions[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (f *fakeStore) ListCards(context.Context) ([]core.Card, error) {
	return append([]core.Card(nil), f.cards...), nil
}

func (f *fakeStore) GetCard(_ context.Context, id int64) (core.Card, error) {
	for _, c := range f.cards {
		if c.ID == id {
			return c, nil
		}
	}
	return core.Card{}, core.ErrNotFound
}

func (f *fakeStore) InsertCard(_ context.Context, card core.Card) (int64, error) {
	card.ID = f.id()
	f.cards = append(f.cards, card)
	return card.ID, nil
}

func (f *fakeStore) UpdateCard(_ context.Context, card core.Card) error {
	for i := range f.cards {
		if f.cards[i].ID == card.ID {
			f.cards[i] = card
			return nil
		}
	}
	return core.ErrNotFound
}

func (f *fakeStore) DeleteCard(_ context.Context, id int64) error {
	for i := range f.cards {
		if f.cards[i].ID == id {
			f.cards = append(f.cards[:i], f.cards[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func newTestServer(t *testing.T) (*Server, *fakeStore) {
	t.Helper()
	store := newFakeStore("Janeiro de 2026", "Fevereiro de 2026", "Março de 2026")

	debts := services.NewDebtService(store, nil)
	if err := debts.Reload(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}

	s := NewServer(":0", Deps{
		Debts:         debts,
		Installments:  services.NewInstallmentService(store, nil),
		Subscriptions: services.NewSubscriptionService(store, nil),
		Cards:         services.NewCardService(store, nil),
	})
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s, store
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func monthPath(key, suffix string) string {
	return "/api/months/" + url.PathEscape(key) + suffix
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if decodeBody(t, rec)["status"] != "ok" {
		t.Fatal("health body should report ok")
	}
}

func TestCreateDebtExpandsAcrossMonths(t *testing.T) {
	s, store := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/debts", debtPayload{
		Name:         "Aluguel",
		Amount:       1500,
		DueDay:       5,
		IsRecurrent:  true,
		CurrentMonth: "Fevereiro de 2026",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if got := decodeBody(t, rec)["created"]; got != float64(3) {
		t.Fatalf("created = %v, want 3", got)
	}
	if len(store.debts) != 3 {
		t.Fatalf("store holds %d debts, want 3", len(store.debts))
	}

	rec = doJSON(t, s, http.MethodGet, monthPath("Fevereiro de 2026", "/debts"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	debts := decodeBody(t, rec)["debts"].([]any)
	if len(debts) != 1 {
		t.Fatalf("month holds %d debts, want 1", len(debts))
	}
	row := debts[0].(map[string]any)
	if row["name"] != "Aluguel" || row["due_date"] != "2026-02-05" {
		t.Fatalf("row = %v", row)
	}
}

func TestCreateDebtRangedMissingBound(t *testing.T) {
	s, store := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/debts", debtPayload{
		Name:           "Curso",
		Amount:         200,
		DueDay:         10,
		IsRecurrent:    true,
		RecurrenceType: "ranged",
		StartMonth:     "Janeiro de 2026",
		EndMonth:       "Junho de 2026", // not a known month
		CurrentMonth:   "Janeiro de 2026",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if len(store.debts) != 0 {
		t.Fatal("nothing should be persisted")
	}
}

func TestToggleDebtRefreshesSummary(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/debts", debtPayload{
		Name:         "Internet",
		Amount:       99.90,
		DueDay:       10,
		CurrentMonth: "Março de 2026",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}

	// Prime the summary cache.
	rec = doJSON(t, s, http.MethodGet, monthPath("Março de 2026", "/summary"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary status = %d", rec.Code)
	}
	before := decodeBody(t, rec)
	if before["all_paid"] != false || before["pending"] != 99.9 {
		t.Fatalf("summary before toggle = %v", before)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/debts/1/toggle", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle status = %d body=%s", rec.Code, rec.Body.String())
	}
	toggled := decodeBody(t, rec)
	if toggled["status"] != string(core.DebtPaid) {
		t.Fatalf("toggled status = %v", toggled["status"])
	}
	if toggled["paid_date"] == nil || toggled["paid_date"] == "" {
		t.Fatal("toggle to Pago should stamp paid_date")
	}

	// The cached entry must have been evicted by the toggle.
	rec = doJSON(t, s, http.MethodGet, monthPath("Março de 2026", "/summary"), nil)
	after := decodeBody(t, rec)
	if after["all_paid"] != true || after["paid"] != 99.9 {
		t.Fatalf("summary after toggle = %v", after)
	}
}

func TestToggleUnknownDebt(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/api/debts/404/toggle", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestDeleteDebtChain(t *testing.T) {
	s, store := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/debts", debtPayload{
		Name:         "Financiamento",
		Amount:       800,
		DueDay:       1,
		IsRecurrent:  true,
		CurrentMonth: "Janeiro de 2026",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/debts/2?chain=true", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if len(store.debts) != 0 {
		t.Fatalf("chain delete left %d rows", len(store.debts))
	}
}

func TestInstallmentMarkAndCancel(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/installments", installmentPayload{
		Name:              "Celular",
		TotalAmount:       2400,
		TotalInstallments: 12,
		FirstDueDate:      "2099-01-15",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d body=%s", rec.Code, rec.Body.String())
	}
	id := int64(decodeBody(t, rec)["id"].(float64))

	rec = doJSON(t, s, http.MethodPost, fmt.Sprintf("/api/installments/%d/mark", id), markPayload{InstallmentNumber: 5})
	if rec.Code != http.StatusOK {
		t.Fatalf("mark status = %d body=%s", rec.Code, rec.Body.String())
	}
	marked := decodeBody(t, rec)
	if marked["paid_installments"] != float64(5) {
		t.Fatalf("paid_installments = %v, want 5", marked["paid_installments"])
	}
	if marked["installment_amount"] != 200.0 {
		t.Fatalf("installment_amount = %v, want 200", marked["installment_amount"])
	}

	rec = doJSON(t, s, http.MethodPost, fmt.Sprintf("/api/installments/%d/cancel", id), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel status = %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodPost, fmt.Sprintf("/api/installments/%d/mark", id), markPayload{InstallmentNumber: 6})
	if rec.Code != http.StatusConflict {
		t.Fatalf("marking a cancelled installment: status = %d, want 409", rec.Code)
	}
}

func TestSubscriptionValidation(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/subscriptions", subscriptionPayload{
		Name:            "Streaming",
		Amount:          39.90,
		BillingCycle:    "Quinzenal",
		NextBillingDate: "2026-09-01",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown cycle: status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/subscriptions", subscriptionPayload{
		Name:            "Streaming",
		Amount:          39.90,
		BillingCycle:    "Mensal",
		NextBillingDate: "2026-09-01",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d body=%s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodGet, "/api/subscriptions", nil)
	subs := decodeBody(t, rec)["subscriptions"].([]any)
	if len(subs) != 1 {
		t.Fatalf("list holds %d subscriptions, want 1", len(subs))
	}
	if subs[0].(map[string]any)["status"] != string(core.SubscriptionActive) {
		t.Fatal("new subscription should default to Ativa")
	}
}

func TestCardLifecycle(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/cards", cardPayload{
		Name:           "Nubank",
		LastFourDigits: "12ab",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad ending: status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/cards", cardPayload{
		Name:           "Nubank",
		LastFourDigits: "4242",
		Limit:          5000,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d body=%s", rec.Code, rec.Body.String())
	}
	id := int64(decodeBody(t, rec)["id"].(float64))

	rec = doJSON(t, s, http.MethodDelete, fmt.Sprintf("/api/cards/%d", id), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/cards/%d", id), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: status = %d, want 404", rec.Code)
	}
}

func TestUpcomingAggregation(t *testing.T) {
	s, store := newTestServer(t)

	store.subscriptions = append(store.subscriptions, core.Subscription{
		ID:              store.id(),
		Name:            "Streaming",
		Amount:          core.Money{Cents: 3990},
		BillingCycle:    core.BillingMonthly,
		Status:          core.SubscriptionActive,
		NextBillingDate: core.TodayInBrazil().AddDate(0, 0, 3).Format(core.CivilDateLayout),
	})

	rec := doJSON(t, s, http.MethodGet, "/api/upcoming?days=7", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["days"] != float64(7) {
		t.Fatalf("days = %v", body["days"])
	}
	if len(body["subscriptions"].([]any)) != 1 {
		t.Fatal("subscription billing within window should be listed")
	}
}

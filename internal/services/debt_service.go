package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"contas/internal/core"
)

// DebtStore is the slice of the record store the debt lifecycle needs.
// *storage.SQLiteRepository satisfies it.
type DebtStore interface {
	ListMonths(ctx context.Context) ([]core.MonthKey, error)
	AddMonths(ctx context.Context, keys []core.MonthKey) error
	DeleteMonth(ctx context.Context, key core.MonthKey) error

	ListDebts(ctx context.Context) ([]core.Debt, error)
	InsertDebt(ctx context.Context, d core.Debt) (int64, error)
	InsertDebts(ctx context.Context, debts []core.Debt) error
	SetDebtOriginalID(ctx context.Context, id, originalID int64) error
	UpdateDebt(ctx context.Context, id int64, upd core.DebtUpdate) error
	UpdateDebtStatus(ctx context.Context, id int64, status core.DebtStatus, paidDate string) error
	DeleteDebt(ctx context.Context, id int64) error
	DeleteDebtChain(ctx context.Context, anchorID int64) error
	DeleteDebtsByMonth(ctx context.Context, key core.MonthKey) error
}

// EventPublisher emits record-change events for the export pipeline.
// Publishing is fire-and-forget: failures are logged, never propagated into
// the mutation result.
type EventPublisher interface {
	PublishRecordChange(ctx context.Context, collection string, id int64) error
}

// DebtService is the debt lifecycle manager. It keeps a derived index
// (month key → ordered debts) rebuilt from the flat authoritative
// collection on every reload; the grouped structure is never the source of
// truth.
type DebtService struct {
	store  DebtStore
	events EventPublisher // may be nil
	now    func() time.Time

	mu      sync.RWMutex
	months  []core.MonthKey
	byMonth map[core.MonthKey][]core.Debt
}

func NewDebtService(store DebtStore, events EventPublisher) *DebtService {
	return &DebtService{
		store:   store,
		events:  events,
		now:     core.NowInBrazil,
		byMonth: make(map[core.MonthKey][]core.Debt),
	}
}

// Reload rebuilds the month index from the store. Every mutation except the
// optimistic status toggle ends with a full reload; there is no fine-grained
// cache invalidation.
func (s *DebtService) Reload(ctx context.Context) error {
	months, err := s.store.ListMonths(ctx)
	if err != nil {
		return fmt.Errorf("list months: %w", err)
	}
	core.SortMonthKeys(months)

	debts, err := s.store.ListDebts(ctx)
	if err != nil {
		return fmt.Errorf("list debts: %w", err)
	}

	byMonth := make(map[core.MonthKey][]core.Debt, len(months))
	for _, key := range months {
		byMonth[key] = nil
	}
	for _, d := range debts {
		byMonth[d.MonthKey] = append(byMonth[d.MonthKey], d)
	}

	s.mu.Lock()
	s.months = months
	s.byMonth = byMonth
	s.mu.Unlock()
	return nil
}

// Months returns the known month keys in chronological order.
func (s *DebtService) Months() []core.MonthKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.MonthKey, len(s.months))
	copy(out, s.months)
	return out
}

// DebtsFor returns a copy of the month's debts.
func (s *DebtService) DebtsFor(key core.MonthKey) []core.Debt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Debt, len(s.byMonth[key]))
	copy(out, s.byMonth[key])
	return out
}

// Summary projects the month's dashboard summary from the index.
func (s *DebtService) Summary(key core.MonthKey) core.MonthSummary {
	return core.SummarizeMonth(key, s.DebtsFor(key))
}

// FindDebt looks a debt up in the index by id, returning the debt and the
// month it lives in.
func (s *DebtService) FindDebt(id int64) (core.Debt, core.MonthKey, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for key, debts := range s.byMonth {
		for _, d := range debts {
			if d.ID == id {
				return d, key, true
			}
		}
	}
	return core.Debt{}, "", false
}

// UpcomingDebts returns pending debts due within the next days days,
// across all months.
func (s *DebtService) UpcomingDebts(days int) []core.Debt {
	today := core.TodayInBrazil()
	limit := today.AddDate(0, 0, days)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Debt
	for _, debts := range s.byMonth {
		for _, d := range debts {
			if d.Status != core.DebtPending {
				continue
			}
			due, err := core.ParseCivilDate(d.DueDate)
			if err != nil {
				continue
			}
			if !due.Before(today) && !due.After(limit) {
				out = append(out, d)
			}
		}
	}
	return core.FilterDebts(out, core.ListControls{SortKey: "dueDate"})
}

// SaveNew expands a debt template into its chain and persists it: the
// anchor row first, then the self-referencing chain link, then the sibling
// rows in one bulk insert. Returns the number of rows created.
//
// An empty target set (ranged bounds missing or inverted) aborts with
// core.ErrNoTargetMonths before anything is written.
func (s *DebtService) SaveNew(ctx context.Context, tpl core.DebtTemplate, current core.MonthKey) (int, error) {
	if err := tpl.Validate(); err != nil {
		return 0, err
	}

	known := s.Months()
	// Fixed and ranged recurrences derive their targets from the known
	// list; only the single-month path can reference a month that was
	// never registered.
	if tpl.Recurrence.Type == core.RecurrenceNone && !containsMonth(known, current) {
		return 0, fmt.Errorf("%w: %q", core.ErrUnknownMonth, current)
	}
	targets := TargetMonths(tpl.Recurrence, known, current)
	if len(targets) == 0 {
		return 0, core.ErrNoTargetMonths
	}
	rows, err := PlanChain(tpl, targets)
	if err != nil {
		return 0, err
	}

	anchorID, err := s.store.InsertDebt(ctx, rows[0])
	if err != nil {
		return 0, fmt.Errorf("insert debt: %w", err)
	}

	created := 1
	if rows[0].IsRecurrent {
		// The anchor links to itself so chain membership is a single
		// field check everywhere downstream.
		if err := s.store.SetDebtOriginalID(ctx, anchorID, anchorID); err != nil {
			return created, fmt.Errorf("link anchor %d: %w", anchorID, err)
		}
		if len(rows) > 1 {
			siblings := rows[1:]
			for i := range siblings {
				siblings[i].OriginalID = anchorID
			}
			if err := s.store.InsertDebts(ctx, siblings); err != nil {
				// The anchor row is already committed; the chain is left
				// incomplete rather than crashing. The siblings
				// themselves are all-or-nothing.
				slog.ErrorContext(ctx, "bulk insert of recurring chain failed",
					"anchor_id", anchorID,
					"missing_rows", len(siblings),
					"error", err)
				return created, fmt.Errorf("insert chain rows: %w", err)
			}
			created += len(siblings)
		}
	}

	s.publish(ctx, "debts", anchorID)
	if err := s.Reload(ctx); err != nil {
		return created, err
	}
	slog.InfoContext(ctx, "debt chain created",
		"anchor_id", anchorID,
		"months", created,
		"recurrence", string(tpl.Recurrence.Type))
	return created, nil
}

// Update edits a single existing row. Recurrence restructuring is out of
// scope for edit: a chain-wide change means delete and recreate.
func (s *DebtService) Update(ctx context.Context, id int64, upd core.DebtUpdate) error {
	if strings.TrimSpace(upd.Name) == "" {
		return core.ErrEmptyName
	}
	if err := upd.Amount.Validate(); err != nil {
		return err
	}
	if err := upd.Status.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateDebt(ctx, id, upd); err != nil {
		return fmt.Errorf("update debt %d: %w", id, err)
	}
	s.publish(ctx, "debts", id)
	return s.Reload(ctx)
}

// ToggleStatus flips a debt between Pendente and Pago. Moving to Pago
// stamps PaidDate with today's Brasília civil date; moving back clears it.
// The index is updated optimistically and fully restored from a snapshot if
// the store rejects the write.
func (s *DebtService) ToggleStatus(ctx context.Context, key core.MonthKey, id int64) error {
	s.mu.Lock()
	debts, ok := s.byMonth[key]
	idx := -1
	for i, d := range debts {
		if d.ID == id {
			idx = i
			break
		}
	}
	if !ok || idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("toggle debt %d in %q: %w", id, key, core.ErrNotFound)
	}

	newStatus := core.DebtPaid
	if debts[idx].Status == core.DebtPaid {
		newStatus = core.DebtPending
	}
	paidDate := ""
	if newStatus == core.DebtPaid {
		paidDate = s.now().Format(core.CivilDateLayout)
	}

	err := optimistic(
		func() func() {
			snapshot := make([]core.Debt, len(debts))
			copy(snapshot, debts)
			updated := make([]core.Debt, len(debts))
			copy(updated, debts)
			updated[idx].Status = newStatus
			updated[idx].PaidDate = paidDate
			s.byMonth[key] = updated
			s.mu.Unlock()
			return func() {
				s.mu.Lock()
				s.byMonth[key] = snapshot
				s.mu.Unlock()
			}
		},
		func() error {
			return s.store.UpdateDebtStatus(ctx, id, newStatus, paidDate)
		},
	)
	if err != nil {
		slog.ErrorContext(ctx, "status toggle rolled back",
			"debt_id", id,
			"month_key", string(key),
			"error", err)
		return fmt.Errorf("toggle debt %d: %w", id, err)
	}
	s.publish(ctx, "debts", id)
	return nil
}

// Delete removes a single row, or the whole chain when wholeChain is set
// and the debt is recurrent. The chain resolves through the anchor id even
// when the deleted row is the anchor itself, since the anchor self-links.
func (s *DebtService) Delete(ctx context.Context, debt core.Debt, wholeChain bool) error {
	if wholeChain && debt.IsRecurrent {
		anchor := debt.Chain().AnchorID
		if err := s.store.DeleteDebtChain(ctx, anchor); err != nil {
			return fmt.Errorf("delete chain %d: %w", anchor, err)
		}
		s.publish(ctx, "debts", anchor)
	} else {
		if err := s.store.DeleteDebt(ctx, debt.ID); err != nil {
			return fmt.Errorf("delete debt %d: %w", debt.ID, err)
		}
		s.publish(ctx, "debts", debt.ID)
	}
	return s.Reload(ctx)
}

// AddMonths registers new month keys, skipping ones that already exist.
func (s *DebtService) AddMonths(ctx context.Context, keys []core.MonthKey) error {
	existing := make(map[core.MonthKey]bool)
	for _, k := range s.Months() {
		existing[k] = true
	}
	var fresh []core.MonthKey
	for _, k := range keys {
		if _, _, err := k.Parse(); err != nil {
			return err
		}
		if !existing[k] {
			fresh = append(fresh, k)
		}
	}
	if len(fresh) == 0 {
		return nil
	}
	if err := s.store.AddMonths(ctx, fresh); err != nil {
		return fmt.Errorf("add months: %w", err)
	}
	return s.Reload(ctx)
}

// DeleteMonth cascades: all debts in the month go first, then the month
// record itself.
func (s *DebtService) DeleteMonth(ctx context.Context, key core.MonthKey) error {
	if err := s.store.DeleteDebtsByMonth(ctx, key); err != nil {
		return fmt.Errorf("delete debts of %q: %w", key, err)
	}
	if err := s.store.DeleteMonth(ctx, key); err != nil {
		return fmt.Errorf("delete month %q: %w", key, err)
	}
	return s.Reload(ctx)
}

func containsMonth(keys []core.MonthKey, key core.MonthKey) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

func (s *DebtService) publish(ctx context.Context, collection string, id int64) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishRecordChange(ctx, collection, id); err != nil {
		slog.ErrorContext(ctx, "failed to publish record change",
			"collection", collection,
			"id", id,
			"error", err)
	}
}

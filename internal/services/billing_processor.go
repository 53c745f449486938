package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"contas/internal/core"
)

// BillingProcessor rolls the next billing date of active subscriptions
// forward once the date has passed. It runs periodically from the billing
// worker; each run is idempotent because an already-future date is left
// alone.
type BillingProcessor struct {
	store SubscriptionStore
}

func NewBillingProcessor(store SubscriptionStore) *BillingProcessor {
	return &BillingProcessor{store: store}
}

// ProcessDueBillings advances every active subscription whose next billing
// date is strictly before today, stepping one cycle at a time until the
// date lands today or later. Returns how many subscriptions were advanced.
func (p *BillingProcessor) ProcessDueBillings(ctx context.Context, today time.Time) (int, error) {
	if p.store == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	subs, err := p.store.ListSubscriptions(ctx)
	if err != nil {
		return 0, fmt.Errorf("list subscriptions: %w", err)
	}

	slog.InfoContext(ctx, "processing subscription billings",
		"total", len(subs),
		"processing_date", today.Format(core.CivilDateLayout))

	advanced := 0
	for _, sub := range subs {
		if sub.Status != core.SubscriptionActive {
			continue
		}
		next, err := rollForward(sub, today)
		if err != nil {
			slog.ErrorContext(ctx, "failed to compute next billing date",
				"subscription_id", sub.ID,
				"error", err)
			continue
		}
		if next == sub.NextBillingDate {
			continue
		}
		if err := p.store.UpdateSubscriptionBilling(ctx, sub.ID, next); err != nil {
			slog.ErrorContext(ctx, "failed to advance billing date",
				"subscription_id", sub.ID,
				"error", err)
			continue
		}
		advanced++
		slog.InfoContext(ctx, "advanced subscription billing",
			"subscription_id", sub.ID,
			"name", sub.Name,
			"from", sub.NextBillingDate,
			"to", next,
			"cycle", string(sub.BillingCycle))
	}

	slog.InfoContext(ctx, "subscription billing processing complete",
		"advanced", advanced,
		"total_checked", len(subs))
	return advanced, nil
}

// rollForward steps the billing date by whole cycles until it is not in the
// past. A date already today or later comes back unchanged. Every candidate
// is computed from the stored date with a cumulative offset so a
// day-of-month clamp in one short month does not stick to later cycles.
func rollForward(sub core.Subscription, today time.Time) (string, error) {
	months, err := sub.BillingCycle.MonthsPerCycle()
	if err != nil {
		return "", err
	}
	current := sub.NextBillingDate
	date, err := core.ParseCivilDate(current)
	if err != nil {
		return "", err
	}
	for offset := months; date.Before(today); offset += months {
		current, err = core.NextDueDate(sub.NextBillingDate, offset)
		if err != nil {
			return "", err
		}
		date, err = core.ParseCivilDate(current)
		if err != nil {
			return "", err
		}
	}
	return current, nil
}

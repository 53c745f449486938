package services

import (
	"context"
	"fmt"
	"log/slog"

	"contas/internal/core"
)

// SubscriptionStore is the record-store slice for subscriptions.
type SubscriptionStore interface {
	ListSubscriptions(ctx context.Context) ([]core.Subscription, error)
	GetSubscription(ctx context.Context, id int64) (core.Subscription, error)
	InsertSubscription(ctx context.Context, sub core.Subscription) (int64, error)
	UpdateSubscription(ctx context.Context, sub core.Subscription) error
	UpdateSubscriptionBilling(ctx context.Context, id int64, nextBillingDate string) error
	DeleteSubscription(ctx context.Context, id int64) error
}

// SubscriptionService manages the flat subscription records. Unlike debts,
// subscriptions never expand into per-month rows; the billing worker just
// rolls NextBillingDate forward.
type SubscriptionService struct {
	store  SubscriptionStore
	events EventPublisher // may be nil
}

func NewSubscriptionService(store SubscriptionStore, events EventPublisher) *SubscriptionService {
	return &SubscriptionService{store: store, events: events}
}

func (s *SubscriptionService) List(ctx context.Context) ([]core.Subscription, error) {
	list, err := s.store.ListSubscriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return list, nil
}

func (s *SubscriptionService) Get(ctx context.Context, id int64) (core.Subscription, error) {
	sub, err := s.store.GetSubscription(ctx, id)
	if err != nil {
		return core.Subscription{}, fmt.Errorf("get subscription %d: %w", id, err)
	}
	return sub, nil
}

func (s *SubscriptionService) SaveNew(ctx context.Context, sub core.Subscription) (int64, error) {
	if sub.Status == "" {
		sub.Status = core.SubscriptionActive
	}
	if err := sub.Validate(); err != nil {
		return 0, err
	}
	id, err := s.store.InsertSubscription(ctx, sub)
	if err != nil {
		return 0, fmt.Errorf("insert subscription: %w", err)
	}
	s.publish(ctx, "subscriptions", id)
	slog.InfoContext(ctx, "subscription created",
		"subscription_id", id,
		"billing_cycle", string(sub.BillingCycle))
	return id, nil
}

func (s *SubscriptionService) Update(ctx context.Context, sub core.Subscription) error {
	if err := sub.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateSubscription(ctx, sub); err != nil {
		return fmt.Errorf("update subscription %d: %w", sub.ID, err)
	}
	s.publish(ctx, "subscriptions", sub.ID)
	return nil
}

func (s *SubscriptionService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteSubscription(ctx, id); err != nil {
		return fmt.Errorf("delete subscription %d: %w", id, err)
	}
	s.publish(ctx, "subscriptions", id)
	return nil
}

// UpcomingBillings returns active subscriptions billing within the next
// days days, ordered by billing date.
func (s *SubscriptionService) UpcomingBillings(ctx context.Context, days int) ([]core.Subscription, error) {
	list, err := s.store.ListSubscriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	today := core.TodayInBrazil()
	limit := today.AddDate(0, 0, days)
	var out []core.Subscription
	for _, sub := range list {
		if sub.Status != core.SubscriptionActive {
			continue
		}
		due, err := core.ParseCivilDate(sub.NextBillingDate)
		if err != nil {
			continue
		}
		if !due.Before(today) && !due.After(limit) {
			out = append(out, sub)
		}
	}
	return core.FilterSubscriptions(out, core.ListControls{SortKey: "nextBillingDate"}), nil
}

func (s *SubscriptionService) publish(ctx context.Context, collection string, id int64) {
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

package services

import (
	"context"
	"fmt"
	"log/slog"

	"contas/internal/core"
)

// CardStore is the record-store slice for payment cards.
type CardStore interface {
	ListCards(ctx context.Context) ([]core.Card, error)
	GetCard(ctx context.Context, id int64) (core.Card, error)
	InsertCard(ctx context.Context, card core.Card) (int64, error)
	UpdateCard(ctx context.Context, card core.Card) error
	DeleteCard(ctx context.Context, id int64) error
}

// CardService manages payment card records.
type CardService struct {
	store  CardStore
	events EventPublisher // may be nil
}

func NewCardService(store CardStore, events EventPublisher) *CardService {
	return &CardService{store: store, events: events}
}

func (s *CardService) List(ctx context.Context) ([]core.Card, error) {
	list, err := s.store.ListCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return list, nil
}

func (s *CardService) Get(ctx context.Context, id int64) (core.Card, error) {
	card, err := s.store.GetCard(ctx, id)
	if err != nil {
		return core.Card{}, fmt.Errorf("get card %d: %w", id, err)
	}
	return card, nil
}

func (s *CardService) SaveNew(ctx context.Context, card core.Card) (int64, error) {
	if card.Status == "" {
		card.Status = core.CardActive
	}
	if err := card.Validate(); err != nil {
		return 0, err
	}
	id, err := s.store.InsertCard(ctx, card)
	if err != nil {
		return 0, fmt.Errorf("insert card: %w", err)
	}
	s.publish(ctx, "cards", id)
	slog.InfoContext(ctx, "card created", "card_id", id, "ending", card.LastFourDigits)
	return id, nil
}

func (s *CardService) Update(ctx context.Context, card core.Card) error {
	if err := card.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateCard(ctx, card); err != nil {
		return fmt.Errorf("update card %d: %w", card.ID, err)
	}
	s.publish(ctx, "cards", card.ID)
	return nil
}

func (s *CardService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteCard(ctx, id); err != nil {
		return fmt.Errorf("delete card %d: %w", id, err)
	}
	s.publish(ctx, "cards", id)
	return nil
}

func (s *CardService) publish(ctx context.Context, collection string, id int64) {
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

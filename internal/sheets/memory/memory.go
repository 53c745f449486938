// Package memory is an in-memory ReportWriter for tests and local runs
// without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"contas/internal/core"
)

type Store struct {
	mu            sync.Mutex
	debts         []core.Debt
	installments  []core.Installment
	subscriptions []core.Subscription
	cards         []core.Card
}

func New() *Store {
	return &Store{}
}

func (s *Store) AppendDebt(_ context.Context, d core.Debt) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debts = append(s.debts, d)
	return fmt.Sprintf("mem:debts:%d", len(s.debts)), nil
}

func (s *Store) AppendInstallment(_ context.Context, in core.Installment) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.installments = append(s.installments, in)
	return fmt.Sprintf("mem:installments:%d", len(s.installments)), nil
}

func (s *Store) AppendSubscription(_ context.Context, sub core.Subscription) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions = append(s.subscriptions, sub)
	return fmt.Sprintf("mem:subscriptions:%d", len(s.subscriptions)), nil
}

func (s *Store) AppendCard(_ context.Context, c core.Card) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards = append(s.cards, c)
	return fmt.Sprintf("mem:cards:%d", len(s.cards)), nil
}

// Debts returns a copy of the appended debts.
func (s *Store) Debts() []core.Debt {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Debt, len(s.debts))
	copy(out, s.debts)
	return out
}

// Installments returns a copy of the appended installments.
func (s *Store) Installments() []core.Installment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Installment, len(s.installments))
	copy(out, s.installments)
	return out
}

// Subscriptions returns a copy of the appended subscriptions.
func (s *Store) Subscriptions() []core.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Subscription, len(s.subscriptions))
	copy(out, s.subscriptions)
	return out
}

// Cards returns a copy of the appended cards.
func (s *Store) Cards() []core.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Card, len(s.cards))
	copy(out, s.cards)
	return out
}

package memory

import (
	"context"
	"testing"

	"contas/internal/core"
	"contas/internal/sheets"
)

var _ sheets.ReportWriter = (*Store)(nil)

func TestAppendCollections(t *testing.T) {
	ctx := context.Background()
	s := New()

	ref, err := s.AppendDebt(ctx, core.Debt{ID: 1, Name: "Aluguel"})
	if err != nil {
		t.Fatal(err)
	}
	if ref != "mem:debts:1" {
		t.Fatalf("ref = %s", ref)
	}
	if _, err := s.AppendInstallment(ctx, core.Installment{ID: 2, Name: "Celular"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AppendSubscription(ctx, core.Subscription{ID: 3, Name: "Streaming"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AppendCard(ctx, core.Card{ID: 4, Name: "Nubank"}); err != nil {
		t.Fatal(err)
	}

	if len(s.Debts()) != 1 || len(s.Installments()) != 1 ||
		len(s.Subscriptions()) != 1 || len(s.Cards()) != 1 {
		t.Fatal("each collection should hold one record")
	}
}

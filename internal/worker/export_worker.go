// Package worker mirrors finance records to the spreadsheet backup. It
// consumes record-change events and runs a periodic full export as a
// backstop for lost messages.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"contas/internal/amqp"
	"contas/internal/core"
	"contas/internal/sheets"
)

// RecordReader is the slice of the record store the export worker reads
// from. *storage.SQLiteRepository satisfies it.
type RecordReader interface {
	GetDebt(ctx context.Context, id int64) (core.Debt, error)
	GetInstallment(ctx context.Context, id int64) (core.Installment, error)
	GetSubscription(ctx context.Context, id int64) (core.Subscription, error)
	GetCard(ctx context.Context, id int64) (core.Card, error)

	ListDebts(ctx context.Context) ([]core.Debt, error)
	ListInstallments(ctx context.Context) ([]core.Installment, error)
	ListSubscriptions(ctx context.Context) ([]core.Subscription, error)
	ListCards(ctx context.Context) ([]core.Card, error)
}

type ExportWorker struct {
	store  RecordReader
	writer sheets.ReportWriter
}

func NewExportWorker(store RecordReader, writer sheets.ReportWriter) *ExportWorker {
	return &ExportWorker{store: store, writer: writer}
}

// HandleChange exports the record a change event points at. A record that
// no longer exists is not an error; the deletion just never reaches the
// mirror.
func (w *ExportWorker) HandleChange(ctx context.Context, msg *amqp.RecordChangeMessage) error {
	slog.InfoContext(ctx, "processing record change",
		"collection", msg.Collection,
		"id", msg.ID)

	ref, err := w.exportRecord(ctx, msg.Collection, msg.ID)
	if errors.Is(err, core.ErrNotFound) {
		slog.WarnContext(ctx, "record gone before export, skipping",
			"collection", msg.Collection,
			"id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("export %s/%d: %w", msg.Collection, msg.ID, err)
	}

	slog.InfoContext(ctx, "record exported",
		"collection", msg.Collection,
		"id", msg.ID,
		"sheets_ref", ref)
	return nil
}

func (w *ExportWorker) exportRecord(ctx context.Context, collection string, id int64) (string, error) {
	switch collection {
	case "debts":
		d, err := w.store.GetDebt(ctx, id)
		if err != nil {
			return "", err
		}
		return w.writer.AppendDebt(ctx, d)
	case "installments":
		in, err := w.store.GetInstallment(ctx, id)
		if err != nil {
			return "", err
		}
		return w.writer.AppendInstallment(ctx, in)
	case "subscriptions":
		sub, err := w.store.GetSubscription(ctx, id)
		if err != nil {
			return "", err
		}
		return w.writer.AppendSubscription(ctx, sub)
	case "cards":
		c, err := w.store.GetCard(ctx, id)
		if err != nil {
			return "", err
		}
		return w.writer.AppendCard(ctx, c)
	default:
		return "", fmt.Errorf("unknown collection %q", collection)
	}
}

// FullExport mirrors every record of every collection. It runs at startup
// and on a timer so records whose change events were lost still land in
// the backup eventually. Per-record failures are logged and counted, not
// fatal.
func (w *ExportWorker) FullExport(ctx context.Context) error {
	exported, failed := 0, 0

	debts, err := w.store.ListDebts(ctx)
	if err != nil {
		return fmt.Errorf("list debts: %w", err)
	}
	for _, d := range debts {
		if _, err := w.writer.AppendDebt(ctx, d); err != nil {
			slog.ErrorContext(ctx, "failed to export debt", "id", d.ID, "error", err)
			failed++
			continue
		}
		exported++
	}

	installments, err := w.store.ListInstallments(ctx)
	if err != nil {
		return fmt.Errorf("list installments: %w", err)
	}
	for _, in := range installments {
		if _, err := w.writer.AppendInstallment(ctx, in); err != nil {
			slog.ErrorContext(ctx, "failed to export installment", "id", in.ID, "error", err)
			failed++
			continue
		}
		exported++
	}

	subs, err := w.store.ListSubscriptions(ctx)
	if err != nil {
		return fmt.Errorf("list subscriptions: %w", err)
	}
	for _, sub := range subs {
		if _, err := w.writer.AppendSubscription(ctx, sub); err != nil {
			slog.ErrorContext(ctx, "failed to export subscription", "id", sub.ID, "error", err)
			failed++
			continue
		}
		exported++
	}

	cards, err := w.store.ListCards(ctx)
	if err != nil {
		return fmt.Errorf("list cards: %w", err)
	}
	for _, c := range cards {
		if _, err := w.writer.AppendCard(ctx, c); err != nil {
			slog.ErrorContext(ctx, "failed to export card", "id", c.ID, "error", err)
			failed++
			continue
		}
		exported++
	}

	slog.InfoContext(ctx, "full export completed",
		"exported", exported,
		"failed", failed)
	return nil
}

package services

import (
	"context"
	"fmt"
	"log/slog"

	"contas/internal/core"
)

// InstallmentStore is the record-store slice for installment purchases.
type InstallmentStore interface {
	ListInstallments(ctx context.Context) ([]core.Installment, error)
	GetInstallment(ctx context.Context, id int64) (core.Installment, error)
	InsertInstallment(ctx context.Context, in core.Installment) (int64, error)
	UpdateInstallment(ctx context.Context, in core.Installment) error
	UpdateInstallmentProgress(ctx context.Context, id int64, paid int, nextDueDate string, status core.InstallmentStatus) error
	DeleteInstallment(ctx context.Context, id int64) error
}

// InstallmentService manages installment purchases. Status and next due
// date are derived values: they are recomputed against today's date on
// every read, never trusted from storage. Cancelado is the one exception,
// it is user-authored and survives reprojection.
type InstallmentService struct {
	store  InstallmentStore
	events EventPublisher // may be nil
}

func NewInstallmentService(store InstallmentStore, events EventPublisher) *InstallmentService {
	return &InstallmentService{store: store, events: events}
}

// List returns all installments reprojected to today.
func (s *InstallmentService) List(ctx context.Context) ([]core.Installment, error) {
	list, err := s.store.ListInstallments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list installments: %w", err)
	}
	today := core.TodayInBrazil()
	for i := range list {
		projected, err := core.Reproject(list[i], today)
		if err != nil {
			slog.ErrorContext(ctx, "skipping reprojection of malformed installment",
				"installment_id", list[i].ID,
				"error", err)
			continue
		}
		list[i] = projected
	}
	return list, nil
}

// Get returns one installment reprojected to today.
func (s *InstallmentService) Get(ctx context.Context, id int64) (core.Installment, error) {
	in, err := s.store.GetInstallment(ctx, id)
	if err != nil {
		return core.Installment{}, fmt.Errorf("get installment %d: %w", id, err)
	}
	return core.Reproject(in, core.TodayInBrazil())
}

// Upcoming returns unfinished installments whose next due date falls within
// the next days days, ordered by due date.
func (s *InstallmentService) Upcoming(ctx context.Context, days int) ([]core.Installment, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	today := core.TodayInBrazil()
	limit := today.AddDate(0, 0, days)
	var out []core.Installment
	for _, in := range list {
		if in.Status != core.InstallmentActive && in.Status != core.InstallmentOverdue {
			continue
		}
		due, err := core.ParseCivilDate(in.NextDueDate)
		if err != nil {
			continue
		}
		if !due.After(limit) {
			out = append(out, in)
		}
	}
	return core.FilterInstallments(out, core.ListControls{SortKey: "nextDueDate"}), nil
}

// SaveNew creates an installment purchase. The per-installment amount is
// fixed here, at creation, with half-up rounding; later edits to the total
// do not recompute it.
func (s *InstallmentService) SaveNew(ctx context.Context, in core.Installment) (int64, error) {
	in.PaidInstallments = 0
	perInstallment, err := core.PerInstallment(in.TotalAmount, in.TotalInstallments)
	if err != nil {
		return 0, err
	}
	in.InstallmentAmount = perInstallment
	if err := in.Validate(); err != nil {
		return 0, err
	}
	if in, err = core.Reproject(in, core.TodayInBrazil()); err != nil {
		return 0, err
	}

	id, err := s.store.InsertInstallment(ctx, in)
	if err != nil {
		return 0, fmt.Errorf("insert installment: %w", err)
	}
	s.publish(ctx, "installments", id)
	slog.InfoContext(ctx, "installment created",
		"installment_id", id,
		"total_installments", in.TotalInstallments)
	return id, nil
}

// Update edits the descriptive fields of an installment. The payment
// progress and the per-installment amount are preserved from the stored
// row; MarkThrough is the only way progress moves.
func (s *InstallmentService) Update(ctx context.Context, in core.Installment) error {
	stored, err := s.store.GetInstallment(ctx, in.ID)
	if err != nil {
		return fmt.Errorf("get installment %d: %w", in.ID, err)
	}
	in.PaidInstallments = stored.PaidInstallments
	in.InstallmentAmount = stored.InstallmentAmount
	if err := in.Validate(); err != nil {
		return err
	}
	if stored.Status == core.InstallmentCancelled {
		in.Status = core.InstallmentCancelled
	} else if in, err = core.Reproject(in, core.TodayInBrazil()); err != nil {
		return err
	}

	if err := s.store.UpdateInstallment(ctx, in); err != nil {
		return fmt.Errorf("update installment %d: %w", in.ID, err)
	}
	s.publish(ctx, "installments", in.ID)
	return nil
}

// MarkThrough records payment up to the clicked installment number.
// Clicking at or below the current count steps back by one instead, so the
// same tap undoes a mistake. Progress, next due date and status land in a
// single store write.
func (s *InstallmentService) MarkThrough(ctx context.Context, id int64, clicked int) (core.Installment, error) {
	in, err := s.store.GetInstallment(ctx, id)
	if err != nil {
		return core.Installment{}, fmt.Errorf("get installment %d: %w", id, err)
	}
	if in.Status == core.InstallmentCancelled {
		return core.Installment{}, core.ErrInstallmentCancelled
	}

	newPaid := core.MarkThroughCount(in.PaidInstallments, clicked, in.TotalInstallments)
	in.PaidInstallments = newPaid
	in, err = core.Reproject(in, core.TodayInBrazil())
	if err != nil {
		return core.Installment{}, err
	}

	if err := s.store.UpdateInstallmentProgress(ctx, id, newPaid, in.NextDueDate, in.Status); err != nil {
		return core.Installment{}, fmt.Errorf("mark installment %d: %w", id, err)
	}
	s.publish(ctx, "installments", id)
	return in, nil
}

// Cancel marks an installment Cancelado. Reprojection never touches it
// afterwards.
func (s *InstallmentService) Cancel(ctx context.Context, id int64) error {
	in, err := s.store.GetInstallment(ctx, id)
	if err != nil {
		return fmt.Errorf("get installment %d: %w", id, err)
	}
	if err := s.store.UpdateInstallmentProgress(ctx, id, in.PaidInstallments, in.NextDueDate, core.InstallmentCancelled); err != nil {
		return fmt.Errorf("cancel installment %d: %w", id, err)
	}
	s.publish(ctx, "installments", id)
	return nil
}

// Delete removes an installment.
func (s *InstallmentService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteInstallment(ctx, id); err != nil {
		return fmt.Errorf("delete installment %d: %w", id, err)
	}
	s.publish(ctx, "installments", id)
	return nil
}

func (s *InstallmentService) publish(ctx context.Context, collection string, id int64) {
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

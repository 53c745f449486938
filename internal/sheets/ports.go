// Package sheets defines the outbound ports for exporting finance records
// to a spreadsheet backup.
package sheets

import (
	"context"

	"contas/internal/core"
)

// ReportWriter appends records to the export destination, one sheet per
// collection. Appends are best-effort mirrors; the database stays the
// source of truth.
type ReportWriter interface {
	AppendDebt(ctx context.Context, d core.Debt) (rowRef string, err error)
	AppendInstallment(ctx context.Context, in core.Installment) (rowRef string, err error)
	AppendSubscription(ctx context.Context, sub core.Subscription) (rowRef string, err error)
	AppendCard(ctx context.Context, c core.Card) (rowRef string, err error)
}

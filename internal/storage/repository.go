// Package storage persists the finance records in SQLite. One repository
// serves every collection; the service layer narrows it through its own
// store interfaces.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"contas/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- months ---

func (r *SQLiteRepository) ListMonths(ctx context.Context) ([]core.MonthKey, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT month_key FROM months`)
	if err != nil {
		return nil, fmt.Errorf("query months: %w", err)
	}
	defer rows.Close()

	var out []core.MonthKey
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan month: %w", err)
		}
		out = append(out, core.MonthKey(key))
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) AddMonths(ctx context.Context, keys []core.MonthKey) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, key := range keys {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO months (month_key) VALUES (?)`, string(key)); err != nil {
			return fmt.Errorf("insert month %q: %w", key, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRepository) DeleteMonth(ctx context.Context, key core.MonthKey) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM months WHERE month_key = ?`, string(key))
	if err != nil {
		return fmt.Errorf("delete month %q: %w", key, err)
	}
	return nil
}

// --- debts ---

const debtColumns = `id, name, amount_cents, status, category, due_date, paid_date,
	is_recurrent, original_id, card_id, month_key,
	recurrence_type, recurrence_start_month, recurrence_end_month`

func scanDebt(s interface{ Scan(...any) error }) (core.Debt, error) {
	var d core.Debt
	var status, recType, recStart, recEnd string
	err := s.Scan(&d.ID, &d.Name, &d.Amount.Cents, &status, &d.Category,
		&d.DueDate, &d.PaidDate, &d.IsRecurrent, &d.OriginalID, &d.CardID,
		&d.MonthKey, &recType, &recStart, &recEnd)
	if err != nil {
		return core.Debt{}, err
	}
	d.Status = core.DebtStatus(status)
	d.Recurrence = core.Recurrence{
		Type:       core.RecurrenceType(recType),
		StartMonth: core.MonthKey(recStart),
		EndMonth:   core.MonthKey(recEnd),
	}
	return d, nil
}

func (r *SQLiteRepository) ListDebts(ctx context.Context) ([]core.Debt, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+debtColumns+` FROM debts ORDER BY due_date, id`)
	if err != nil {
		return nil, fmt.Errorf("query debts: %w", err)
	}
	defer rows.Close()

	var out []core.Debt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan debt: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func insertDebtExec(ctx context.Context, execer interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}, d core.Debt) (int64, error) {
	res, err := execer.ExecContext(ctx, `
		INSERT INTO debts (name, amount_cents, status, category, due_date, paid_date,
			is_recurrent, original_id, card_id, month_key,
			recurrence_type, recurrence_start_month, recurrence_end_month)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.Name, d.Amount.Cents, string(d.Status), d.Category, d.DueDate, d.PaidDate,
		d.IsRecurrent, d.OriginalID, d.CardID, string(d.MonthKey),
		string(d.Recurrence.Type), string(d.Recurrence.StartMonth), string(d.Recurrence.EndMonth))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SQLiteRepository) InsertDebt(ctx context.Context, d core.Debt) (int64, error) {
	id, err := insertDebtExec(ctx, r.db, d)
	if err != nil {
		return 0, fmt.Errorf("insert debt: %w", err)
	}
	return id, nil
}

// InsertDebts writes all rows in one transaction: either every sibling of a
// recurring chain lands or none do.
func (r *SQLiteRepository) InsertDebts(ctx context.Context, debts []core.Debt) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, d := range debts {
		if _, err := insertDebtExec(ctx, tx, d); err != nil {
			return fmt.Errorf("insert debt %q for %q: %w", d.Name, d.MonthKey, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRepository) SetDebtOriginalID(ctx context.Context, id, originalID int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE debts SET original_id = ? WHERE id = ?`, originalID, id)
	if err != nil {
		return fmt.Errorf("set original id: %w", err)
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) UpdateDebt(ctx context.Context, id int64, upd core.DebtUpdate) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE debts
		SET name = ?, amount_cents = ?, status = ?, due_date = ?, category = ?, card_id = ?
		WHERE id = ?`,
		upd.Name, upd.Amount.Cents, string(upd.Status), upd.DueDate, upd.Category, upd.CardID, id)
	if err != nil {
		return fmt.Errorf("update debt: %w", err)
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) UpdateDebtStatus(ctx context.Context, id int64, status core.DebtStatus, paidDate string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE debts SET status = ?, paid_date = ? WHERE id = ?`,
		string(status), paidDate, id)
	if err != nil {
		return fmt.Errorf("update debt status: %w", err)
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) DeleteDebt(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM debts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete debt: %w", err)
	}
	return nil
}

// DeleteDebtChain removes the anchor row and every member pointing at it.
// The anchor matches both predicates since it links to itself.
func (r *SQLiteRepository) DeleteDebtChain(ctx context.Context, anchorID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM debts WHERE id = ? OR original_id = ?`, anchorID, anchorID)
	if err != nil {
		return fmt.Errorf("delete debt chain: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteDebtsByMonth(ctx context.Context, key core.MonthKey) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM debts WHERE month_key = ?`, string(key))
	if err != nil {
		return fmt.Errorf("delete debts by month: %w", err)
	}
	return nil
}

// --- installments ---

const installmentColumns = `id, name, total_amount_cents, installment_amount_cents,
	total_installments, paid_installments, first_due_date, next_due_date,
	category, payment_method, status, description, card_id`

func scanInstallment(s interface{ Scan(...any) error }) (core.Installment, error) {
	var in core.Installment
	var status string
	err := s.Scan(&in.ID, &in.Name, &in.TotalAmount.Cents, &in.InstallmentAmount.Cents,
		&in.TotalInstallments, &in.PaidInstallments, &in.FirstDueDate, &in.NextDueDate,
		&in.Category, &in.PaymentMethod, &status, &in.Description, &in.CardID)
	if err != nil {
		return core.Installment{}, err
	}
	in.Status = core.InstallmentStatus(status)
	return in, nil
}

func (r *SQLiteRepository) ListInstallments(ctx context.Context) ([]core.Installment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+installmentColumns+` FROM installments ORDER BY next_due_date, id`)
	if err != nil {
		return nil, fmt.Errorf("query installments: %w", err)
	}
	defer rows.Close()

	var out []core.Installment
	for rows.Next() {
		in, err := scanInstallment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan installment: %w", err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetInstallment(ctx context.Context, id int64) (core.Installment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+installmentColumns+` FROM installments WHERE id = ?`, id)
	in, err := scanInstallment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Installment{}, core.ErrNotFound
	}
	if err != nil {
		return core.Installment{}, fmt.Errorf("get installment: %w", err)
	}
	return in, nil
}

func (r *SQLiteRepository) InsertInstallment(ctx context.Context, in core.Installment) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO installments (name, total_amount_cents, installment_amount_cents,
			total_installments, paid_installments, first_due_date, next_due_date,
			category, payment_method, status, description, card_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Name, in.TotalAmount.Cents, in.InstallmentAmount.Cents,
		in.TotalInstallments, in.PaidInstallments, in.FirstDueDate, in.NextDueDate,
		in.Category, in.PaymentMethod, string(in.Status), in.Description, in.CardID)
	if err != nil {
		return 0, fmt.Errorf("insert installment: %w", err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepository) UpdateInstallment(ctx context.Context, in core.Installment) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE installments
		SET name = ?, total_amount_cents = ?, installment_amount_cents = ?,
			total_installments = ?, paid_installments = ?, first_due_date = ?,
			next_due_date = ?, category = ?, payment_method = ?, status = ?,
			description = ?, card_id = ?
		WHERE id = ?`,
		in.Name, in.TotalAmount.Cents, in.InstallmentAmount.Cents,
		in.TotalInstallments, in.PaidInstallments, in.FirstDueDate,
		in.NextDueDate, in.Category, in.PaymentMethod, string(in.Status),
		in.Description, in.CardID, in.ID)
	if err != nil {
		return fmt.Errorf("update installment: %w", err)
	}
	return requireAffected(res)
}

// UpdateInstallmentProgress writes the paid counter together with its
// derived fields in a single statement so a mark never lands half-applied.
func (r *SQLiteRepository) UpdateInstallmentProgress(ctx context.Context, id int64, paid int, nextDueDate string, status core.InstallmentStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE installments SET paid_installments = ?, next_due_date = ?, status = ? WHERE id = ?`,
		paid, nextDueDate, string(status), id)
	if err != nil {
		return fmt.Errorf("update installment progress: %w", err)
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) DeleteInstallment(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM installments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete installment: %w", err)
	}
	return nil
}

// --- subscriptions ---

const subscriptionColumns = `id, name, plan, amount_cents, category, billing_cycle,
	payment_method, status, next_billing_date, start_date`

func scanSubscription(s interface{ Scan(...any) error }) (core.Subscription, error) {
	var sub core.Subscription
	var cycle, status string
	err := s.Scan(&sub.ID, &sub.Name, &sub.Plan, &sub.Amount.Cents, &sub.Category,
		&cycle, &sub.PaymentMethod, &status, &sub.NextBillingDate, &sub.StartDate)
	if err != nil {
		return core.Subscription{}, err
	}
	sub.BillingCycle = core.BillingCycle(cycle)
	sub.Status = core.SubscriptionStatus(status)
	return sub, nil
}

func (r *SQLiteRepository) ListSubscriptions(ctx context.Context) ([]core.Subscription, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("query subscriptions: %w", err)
	}
	defer rows.Close()

	var out []core.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetSubscription(ctx context.Context, id int64) (core.Subscription, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = ?`, id)
	sub, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Subscription{}, core.ErrNotFound
	}
	if err != nil {
		return core.Subscription{}, fmt.Errorf("get subscription: %w", err)
	}
	return sub, nil
}

func (r *SQLiteRepository) InsertSubscription(ctx context.Context, sub core.Subscription) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO subscriptions (name, plan, amount_cents, category, billing_cycle,
			payment_method, status, next_billing_date, start_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.Name, sub.Plan, sub.Amount.Cents, sub.Category, string(sub.BillingCycle),
		sub.PaymentMethod, string(sub.Status), sub.NextBillingDate, sub.StartDate)
	if err != nil {
		return 0, fmt.Errorf("insert subscription: %w", err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepository) UpdateSubscription(ctx context.Context, sub core.Subscription) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions
		SET name = ?, plan = ?, amount_cents = ?, category = ?, billing_cycle = ?,
			payment_method = ?, status = ?, next_billing_date = ?, start_date = ?
		WHERE id = ?`,
		sub.Name, sub.Plan, sub.Amount.Cents, sub.Category, string(sub.BillingCycle),
		sub.PaymentMethod, string(sub.Status), sub.NextBillingDate, sub.StartDate, sub.ID)
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) UpdateSubscriptionBilling(ctx context.Context, id int64, nextBillingDate string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE subscriptions SET next_billing_date = ? WHERE id = ?`, nextBillingDate, id)
	if err != nil {
		return fmt.Errorf("update subscription billing: %w", err)
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) DeleteSubscription(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	return nil
}

// --- cards ---

const cardColumns = `id, name, last_four_digits, flag, type, issuer,
	limit_cents, used_amount_cents, closing_day, due_day, status`

func scanCard(s interface{ Scan(...any) error }) (core.Card, error) {
	var c core.Card
	var status string
	err := s.Scan(&c.ID, &c.Name, &c.LastFourDigits, &c.Flag, &c.Type, &c.Issuer,
		&c.Limit.Cents, &c.UsedAmount.Cents, &c.ClosingDay, &c.DueDay, &status)
	if err != nil {
		return core.Card{}, err
	}
	c.Status = core.CardStatus(status)
	return c, nil
}

func (r *SQLiteRepository) ListCards(ctx context.Context) ([]core.Card, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+cardColumns+` FROM cards ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	defer rows.Close()

	var out []core.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetCard(ctx context.Context, id int64) (core.Card, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE id = ?`, id)
	c, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Card{}, core.ErrNotFound
	}
	if err != nil {
		return core.Card{}, fmt.Errorf("get card: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) InsertCard(ctx context.Context, c core.Card) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO cards (name, last_four_digits, flag, type, issuer,
			limit_cents, used_amount_cents, closing_day, due_day, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Name, c.LastFourDigits, c.Flag, c.Type, c.Issuer,
		c.Limit.Cents, c.UsedAmount.Cents, c.ClosingDay, c.DueDay, string(c.Status))
	if err != nil {
		return 0, fmt.Errorf("insert card: %w", err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepository) UpdateCard(ctx context.Context, c core.Card) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE cards
		SET name = ?, last_four_digits = ?, flag = ?, type = ?, issuer = ?,
			limit_cents = ?, used_amount_cents = ?, closing_day = ?, due_day = ?, status = ?
		WHERE id = ?`,
		c.Name, c.LastFourDigits, c.Flag, c.Type, c.Issuer,
		c.Limit.Cents, c.UsedAmount.Cents, c.ClosingDay, c.DueDay, string(c.Status), c.ID)
	if err != nil {
		return fmt.Errorf("update card: %w", err)
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) DeleteCard(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	return nil
}

// --- debts by id, used by the export worker ---

func (r *SQLiteRepository) GetDebt(ctx context.Context, id int64) (core.Debt, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+debtColumns+` FROM debts WHERE id = ?`, id)
	d, err := scanDebt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Debt{}, core.ErrNotFound
	}
	if err != nil {
		return core.Debt{}, fmt.Errorf("get debt: %w", err)
	}
	return d, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

package core

import (
	"errors"
	"fmt"
	"strings"
)

// Debt statuses.
const (
	DebtPending DebtStatus = "Pendente"
	DebtPaid    DebtStatus = "Pago"
)

// Recurrence modes for a debt definition.
const (
	RecurrenceNone   RecurrenceType = "none"
	RecurrenceFixed  RecurrenceType = "fixed"
	RecurrenceRanged RecurrenceType = "ranged"
)

// Installment statuses. Concluído and Cancelado are terminal; Cancelado is
// only ever set by explicit user action and is never derived.
const (
	InstallmentActive    InstallmentStatus = "Ativo"
	InstallmentOverdue   InstallmentStatus = "Atrasado"
	InstallmentDone      InstallmentStatus = "Concluído"
	InstallmentCancelled InstallmentStatus = "Cancelado"
)

// Subscription statuses and billing cycles.
const (
	SubscriptionActive    SubscriptionStatus = "Ativa"
	SubscriptionPaused    SubscriptionStatus = "Pausada"
	SubscriptionCancelled SubscriptionStatus = "Cancelada"

	BillingMonthly    BillingCycle = "Mensal"
	BillingQuarterly  BillingCycle = "Trimestral"
	BillingSemiannual BillingCycle = "Semestral"
	BillingAnnual     BillingCycle = "Anual"
)

// Card statuses.
const (
	CardActive    CardStatus = "Ativo"
	CardBlocked   CardStatus = "Bloqueado"
	CardExpired   CardStatus = "Expirado"
	CardCancelled CardStatus = "Cancelado"
)

type (
	DebtStatus         string
	RecurrenceType     string
	InstallmentStatus  string
	SubscriptionStatus string
	BillingCycle       string
	CardStatus         string

	// Recurrence describes how a debt definition expands over months.
	// StartMonth/EndMonth are set only for RecurrenceRanged.
	Recurrence struct {
		Type       RecurrenceType
		StartMonth MonthKey
		EndMonth   MonthKey
	}

	// Debt is one obligation instance scoped to exactly one MonthKey.
	// OriginalID links the rows of a recurring chain: zero on standalone
	// rows, self-referencing on the chain anchor, and pointing at the
	// anchor on every other member.
	Debt struct {
		ID          int64
		Name        string
		Amount      Money
		Status      DebtStatus
		Category    string
		DueDate     string // YYYY-MM-DD, derived from (MonthKey, due day)
		PaidDate    string // set only while Status is Pago
		IsRecurrent bool
		OriginalID  int64
		CardID      int64 // 0 when the debt is not tied to a card
		MonthKey    MonthKey
		Recurrence  Recurrence
	}

	// DebtTemplate is the user-submitted definition a recurrence expansion
	// starts from. DueDay is the day-of-month applied to every target month.
	DebtTemplate struct {
		Name       string
		Amount     Money
		Category   string
		CardID     int64
		DueDay     int
		Recurrence Recurrence
	}

	// DebtUpdate carries the editable fields of a single existing row.
	// Editing never restructures a chain.
	DebtUpdate struct {
		Name     string
		Amount   Money
		Status   DebtStatus
		DueDate  string
		Category string
		CardID   int64
	}

	// Installment is a multi-payment purchase or contract. NextDueDate and
	// Status are derived from the other fields and recomputed on every load;
	// they are never authored independently.
	Installment struct {
		ID                int64
		Name              string
		TotalAmount       Money
		InstallmentAmount Money // fixed at creation: TotalAmount / TotalInstallments
		TotalInstallments int
		PaidInstallments  int
		FirstDueDate      string // YYYY-MM-DD
		NextDueDate       string // derived
		Category          string
		PaymentMethod     string
		Status            InstallmentStatus // derived, except Cancelado
		Description       string
		CardID            int64
	}

	// Subscription is a flat recurring service record.
	Subscription struct {
		ID              int64
		Name            string
		Plan            string
		Amount          Money
		Category        string
		BillingCycle    BillingCycle
		PaymentMethod   string
		Status          SubscriptionStatus
		NextBillingDate string // YYYY-MM-DD
		StartDate       string // YYYY-MM-DD
	}

	// Card is a payment card the user charges debts and installments to.
	Card struct {
		ID             int64
		Name           string
		LastFourDigits string
		Flag           string
		Type           string
		Issuer         string
		Limit          Money
		UsedAmount     Money
		ClosingDay     int // 0 when unset
		DueDay         int // 0 when unset
		Status         CardStatus
	}
)

// ChainLink classifies a debt row's position in a recurring chain,
// replacing the two overloaded meanings of OriginalID with an explicit tag.
type ChainLink struct {
	Kind     ChainLinkKind
	AnchorID int64
}

type ChainLinkKind int

const (
	ChainStandalone ChainLinkKind = iota
	ChainAnchor
	ChainMember
)

// Chain derives the row's chain position. The anchor carries a
// self-referencing OriginalID (written at creation), so membership checks
// never need to scan siblings.
func (d Debt) Chain() ChainLink {
	switch {
	case d.OriginalID == 0:
		return ChainLink{Kind: ChainStandalone, AnchorID: d.ID}
	case d.OriginalID == d.ID:
		return ChainLink{Kind: ChainAnchor, AnchorID: d.ID}
	default:
		return ChainLink{Kind: ChainMember, AnchorID: d.OriginalID}
	}
}

var (
	ErrEmptyName            = errors.New("empty name")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidRecurrence    = errors.New("invalid recurrence")
	ErrNoTargetMonths       = errors.New("no months selected")
	ErrInvalidInstallments  = errors.New("total installments must be positive")
	ErrInvalidPaidCount     = errors.New("paid installments out of range")
	ErrInstallmentCancelled = errors.New("installment is cancelled")
	ErrInvalidStatus        = errors.New("unknown status")
	ErrInvalidBillingCycle  = errors.New("unknown billing cycle")
	ErrUnknownMonth         = errors.New("month is not registered")
	ErrInvalidCardEnding    = errors.New("card ending must be 4 digits")
	ErrInvalidClosingDay    = errors.New("closing day must be between 1 and 31")
	ErrNotFound             = errors.New("record not found")
)

// Validate checks a debt template before any expansion happens. Validation
// is advisory and client-facing; it blocks submission, never the store.
func (t DebtTemplate) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.DueDay < 1 || t.DueDay > 31 {
		return ErrInvalidDueDay
	}
	switch t.Recurrence.Type {
	case RecurrenceNone, RecurrenceFixed:
	case RecurrenceRanged:
		if t.Recurrence.StartMonth == "" || t.Recurrence.EndMonth == "" {
			return fmt.Errorf("%w: ranged recurrence needs both bounds", ErrInvalidRecurrence)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidRecurrence, t.Recurrence.Type)
	}
	return nil
}

func (s DebtStatus) Validate() error {
	switch s {
	case DebtPending, DebtPaid:
		return nil
	}
	return fmt.Errorf("%w: debt status %q", ErrInvalidStatus, s)
}

// Validate checks the user-authored fields of an installment. Derived fields
// are not checked here; they are overwritten on load anyway.
func (in Installment) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrEmptyName
	}
	if err := in.TotalAmount.Validate(); err != nil {
		return err
	}
	if in.TotalInstallments <= 0 {
		return ErrInvalidInstallments
	}
	if in.PaidInstallments < 0 || in.PaidInstallments > in.TotalInstallments {
		return ErrInvalidPaidCount
	}
	if _, err := ParseCivilDate(in.FirstDueDate); err != nil {
		return err
	}
	return nil
}

// MonthsPerCycle returns how many calendar months one billing cycle spans.
func (c BillingCycle) MonthsPerCycle() (int, error) {
	switch c {
	case BillingMonthly:
		return 1, nil
	case BillingQuarterly:
		return 3, nil
	case BillingSemiannual:
		return 6, nil
	case BillingAnnual:
		return 12, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidBillingCycle, c)
}

func (s Subscription) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if err := s.Amount.Validate(); err != nil {
		return err
	}
	if _, err := s.BillingCycle.MonthsPerCycle(); err != nil {
		return err
	}
	if _, err := ParseCivilDate(s.NextBillingDate); err != nil {
		return err
	}
	return nil
}

func (c Card) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.LastFourDigits) != 4 {
		return ErrInvalidCardEnding
	}
	for _, r := range c.LastFourDigits {
		if r < '0' || r > '9' {
			return ErrInvalidCardEnding
		}
	}
	if c.ClosingDay != 0 && (c.ClosingDay < 1 || c.ClosingDay > 31) {
		return ErrInvalidClosingDay
	}
	if c.DueDay != 0 && (c.DueDay < 1 || c.DueDay > 31) {
		return ErrInvalidDueDay
	}
	return nil
}

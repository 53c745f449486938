// Package google is the Google Sheets adapter for the export worker. It
// authenticates with a service account and appends one row per record to a
// per-collection sheet.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"contas/internal/core"
	ports "contas/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc                *gsheet.Service
	spreadsheetID      string
	debtsSheet         string
	installmentsSheet  string
	subscriptionsSheet string
	cardsSheet         string
}

var _ ports.ReportWriter = (*Client)(nil)

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID plus service account credentials
// (GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS). Sheet names default to "Dividas",
// "Parcelamentos", "Assinaturas" and "Cartoes".
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:                svc,
		spreadsheetID:      spreadsheetID,
		debtsSheet:         envOrDefault("GOOGLE_DEBTS_SHEET_NAME", "Dividas"),
		installmentsSheet:  envOrDefault("GOOGLE_INSTALLMENTS_SHEET_NAME", "Parcelamentos"),
		subscriptionsSheet: envOrDefault("GOOGLE_SUBSCRIPTIONS_SHEET_NAME", "Assinaturas"),
		cardsSheet:         envOrDefault("GOOGLE_CARDS_SHEET_NAME", "Cartoes"),
	}, nil
}

func envOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (c *Client) AppendDebt(ctx context.Context, d core.Debt) (string, error) {
	return c.appendRow(ctx, c.debtsSheet, []any{
		d.ID, d.Name, d.Amount.Reais(), string(d.Status), d.Category,
		d.DueDate, d.PaidDate, string(d.MonthKey), d.IsRecurrent, d.OriginalID,
	})
}

func (c *Client) AppendInstallment(ctx context.Context, in core.Installment) (string, error) {
	return c.appendRow(ctx, c.installmentsSheet, []any{
		in.ID, in.Name, in.TotalAmount.Reais(), in.InstallmentAmount.Reais(),
		in.PaidInstallments, in.TotalInstallments, in.NextDueDate,
		string(in.Status), in.Category,
	})
}

func (c *Client) AppendSubscription(ctx context.Context, sub core.Subscription) (string, error) {
	return c.appendRow(ctx, c.subscriptionsSheet, []any{
		sub.ID, sub.Name, sub.Plan, sub.Amount.Reais(), string(sub.BillingCycle),
		string(sub.Status), sub.NextBillingDate, sub.Category,
	})
}

func (c *Client) AppendCard(ctx context.Context, card core.Card) (string, error) {
	return c.appendRow(ctx, c.cardsSheet, []any{
		card.ID, card.Name, card.LastFourDigits, card.Flag, card.Type,
		card.Limit.Reais(), card.UsedAmount.Reais(), card.ClosingDay, card.DueDay,
		string(card.Status),
	})
}

func (c *Client) appendRow(ctx context.Context, sheetName string, row []any) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:A", sheetName)
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", sheetName, err)
	}
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		return resp.Updates.UpdatedRange, nil
	}
	return sheetName, nil
}

// Package sheets appends approved claims to a Google Sheet so the
// finance team has a running export outside the application.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"expenseflow/internal/core"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// New creates an exporter. With an empty credentialsJSON the client
// falls back to Application Default Credentials.
func New(ctx context.Context, spreadsheetID, sheetName, credentialsJSON string) (*Exporter, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if sheetName = strings.TrimSpace(sheetName); sheetName == "" {
		sheetName = "Approved"
	}

	opts := []goption.ClientOption{goption.WithScopes(gsheet.SpreadsheetsScope)}
	if credentialsJSON != "" {
		opts = append(opts, goption.WithCredentialsJSON([]byte(credentialsJSON)))
	}
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Exporter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// AppendApproved appends one approved claim as a row:
// date, owner, category, description, amount, decided by.
func (x *Exporter) AppendApproved(ctx context.Context, e core.Expense, decidedBy string) error {
	if x.svc == nil {
		return errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:F", x.sheetName)
	vr := &gsheet.ValueRange{Values: [][]any{{
		e.Date.Format("2006-01-02"),
		e.Owner,
		string(e.Category),
		e.Description,
		float64(e.Amount.Cents) / 100.0,
		decidedBy,
	}}}

	_, err := x.svc.Spreadsheets.Values.Append(x.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to sheet %s: %w", x.sheetName, err)
	}
	return nil
}

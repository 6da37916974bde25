package ledger

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// DefaultSheetsRange is the append range when none is configured.
const DefaultSheetsRange = "Sheet1!A:C"

// SheetsConfig configures the Google Sheets backend.
type SheetsConfig struct {
	SpreadsheetID   string
	Range           string
	CredentialsFile string
	// Endpoint overrides the API base URL.
	Endpoint string
}

// SheetsRecorder appends one row per entry to a spreadsheet.
type SheetsRecorder struct {
	svc           *sheets.Service
	spreadsheetID string
	writeRange    string
}

// NewSheetsRecorder creates a Sheets client from cfg. Extra options are
// appended after those derived from cfg.
func NewSheetsRecorder(ctx context.Context, cfg SheetsConfig, opts ...option.ClientOption) (*SheetsRecorder, error) {
	if cfg.SpreadsheetID == "" {
		return nil, errors.New("sheets spreadsheet id is required")
	}
	if cfg.Range == "" {
		cfg.Range = DefaultSheetsRange
	}

	var clientOpts []option.ClientOption
	if cfg.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(cfg.Endpoint))
	}
	clientOpts = append(clientOpts, opts...)

	svc, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &SheetsRecorder{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		writeRange:    cfg.Range,
	}, nil
}

// Record appends e as a raw row.
func (r *SheetsRecorder) Record(ctx context.Context, e Entry) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{e.Row()}}

	_, err := r.svc.Spreadsheets.Values.
		Append(r.spreadsheetID, r.writeRange, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append sheet row: %w", err)
	}
	return nil
}

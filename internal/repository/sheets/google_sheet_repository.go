package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/bahsow/fleetdesk/internal/config"
)

// Repository defines the export operations supported by the Google Sheets
// adapter. Monthly reports are appended as rows; ReadRange exists so operators
// can verify what was exported.
type Repository interface {
	AppendRows(ctx context.Context, sheetRange string, rows [][]interface{}) error
	ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error)
}

// GoogleSheetRepository implements Repository using the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// AppendRows appends the provided rows to the supplied sheet range.
func (r *GoogleSheetRepository) AppendRows(ctx context.Context, sheetRange string, rows [][]interface{}) error {
	if sheetRange == "" {
		return fmt.Errorf("sheetRange must not be empty")
	}
	if len(rows) == 0 {
		return nil
	}

	payload := &sheetsapi.ValueRange{Values: rows}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append %d rows into range %s: %w", len(rows), sheetRange, err)
	}

	r.logger.Debug("rows appended to sheet", zap.String("range", sheetRange), zap.Int("rows", len(rows)))
	return nil
}

// ReadRange fetches a rectangular data range from the spreadsheet.
func (r *GoogleSheetRepository) ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error) {
	if sheetRange == "" {
		return nil, fmt.Errorf("sheetRange must not be empty")
	}

	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, sheetRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", sheetRange, err)
	}

	return resp.Values, nil
}

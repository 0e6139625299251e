package google

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	driveapi "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

const spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

// SheetsService implements the cloudsync sheet store on the Sheets API, with
// the Drive API for discovery by title.
type SheetsService struct {
	sheets *sheetsapi.Service
	drive  *driveapi.Service
}

// NewSheetsService builds sheet and drive clients from the user's token source.
func NewSheetsService(ctx context.Context, ts oauth2.TokenSource) (*SheetsService, error) {
	sheetsSvc, err := sheetsapi.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	driveSvc, err := driveapi.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &SheetsService{sheets: sheetsSvc, drive: driveSvc}, nil
}

// Read returns the cell values of a range as strings.
func (s *SheetsService) Read(ctx context.Context, spreadsheetID, a1Range string) ([][]string, error) {
	resp, err := s.sheets.Spreadsheets.Values.Get(spreadsheetID, a1Range).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read range %q: %w", a1Range, err)
	}
	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = fmt.Sprint(cell)
		}
		rows[i] = cells
	}
	return rows, nil
}

// Update overwrites a range with raw values.
func (s *SheetsService) Update(ctx context.Context, spreadsheetID, a1Range string, values [][]string) error {
	_, err := s.sheets.Spreadsheets.Values.Update(spreadsheetID, a1Range, valueRange(values)).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update range %q: %w", a1Range, err)
	}
	return nil
}

// Append adds rows after the last data row of a range.
func (s *SheetsService) Append(ctx context.Context, spreadsheetID, a1Range string, values [][]string) error {
	_, err := s.sheets.Spreadsheets.Values.Append(spreadsheetID, a1Range, valueRange(values)).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append to range %q: %w", a1Range, err)
	}
	return nil
}

// Clear empties a range without touching formatting.
func (s *SheetsService) Clear(ctx context.Context, spreadsheetID, a1Range string) error {
	_, err := s.sheets.Spreadsheets.Values.Clear(spreadsheetID, a1Range, &sheetsapi.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to clear range %q: %w", a1Range, err)
	}
	return nil
}

// EnsureSheet creates the named tab if missing. Hidden tabs hold machine
// payloads the user should not edit by hand.
func (s *SheetsService) EnsureSheet(ctx context.Context, spreadsheetID, title string, hidden bool) error {
	meta, err := s.sheets.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet metadata: %w", err)
	}
	for _, sheet := range meta.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == title {
			return nil
		}
	}

	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			AddSheet: &sheetsapi.AddSheetRequest{
				Properties: &sheetsapi.SheetProperties{Title: title, Hidden: hidden},
			},
		}},
	}
	if _, err := s.sheets.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do(); err != nil {
		// A concurrent save may have created it between the read and the write.
		if strings.Contains(err.Error(), "already exists") {
			return nil
		}
		return fmt.Errorf("failed to add sheet %q: %w", title, err)
	}
	return nil
}

// CreateSpreadsheet creates a new spreadsheet and returns its id.
func (s *SheetsService) CreateSpreadsheet(ctx context.Context, title string) (string, error) {
	created, err := s.sheets.Spreadsheets.Create(&sheetsapi.Spreadsheet{
		Properties: &sheetsapi.SpreadsheetProperties{Title: title},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create spreadsheet: %w", err)
	}
	return created.SpreadsheetId, nil
}

// FindSpreadsheet locates an app-created spreadsheet by exact title. Returns
// empty when none exists.
func (s *SheetsService) FindSpreadsheet(ctx context.Context, title string) (string, error) {
	query := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false",
		strings.ReplaceAll(title, "'", `\'`), spreadsheetMimeType)
	resp, err := s.drive.Files.List().
		Q(query).
		Spaces("drive").
		Fields("files(id)").
		PageSize(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to search drive: %w", err)
	}
	if len(resp.Files) == 0 {
		return "", nil
	}
	return resp.Files[0].Id, nil
}

// Verify confirms a cached spreadsheet id still resolves.
func (s *SheetsService) Verify(ctx context.Context, spreadsheetID string) error {
	_, err := s.sheets.Spreadsheets.Get(spreadsheetID).
		Fields("spreadsheetId").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to verify spreadsheet %q: %w", spreadsheetID, err)
	}
	return nil
}

func valueRange(values [][]string) *sheetsapi.ValueRange {
	rows := make([][]any, len(values))
	for i, row := range values {
		cells := make([]any, len(row))
		for j, cell := range row {
			cells[j] = cell
		}
		rows[i] = cells
	}
	return &sheetsapi.ValueRange{Values: rows}
}

package dataprocessing

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// NewSheetsService creates a read-only Google Sheets client. Either a
// service-account credentials file or an API key must be provided.
func NewSheetsService(ctx context.Context, credentialsFile, apiKey string) (*sheets.Service, error) {
	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsReadonlyScope)}
	switch {
	case credentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	case apiKey != "":
		opts = append(opts, option.WithAPIKey(apiKey))
	default:
		return nil, fmt.Errorf("google sheets: credentials file or api key required")
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return svc, nil
}

// LoadGoogleSheet downloads every sheet of a spreadsheet into memory.
// Values are requested unformatted with dates as serial numbers, so numeric
// and date cells both arrive as numbers.
func LoadGoogleSheet(ctx context.Context, svc *sheets.Service, spreadsheetID string) (*MemoryWorkbook, error) {
	ss, err := svc.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get spreadsheet %s: %w", spreadsheetID, err)
	}

	titles := make([]string, 0, len(ss.Sheets))
	ranges := make([]string, 0, len(ss.Sheets))
	for _, s := range ss.Sheets {
		if s.Properties == nil {
			continue
		}
		titles = append(titles, s.Properties.Title)
		ranges = append(ranges, "'"+strings.ReplaceAll(s.Properties.Title, "'", "''")+"'")
	}

	wb := NewMemoryWorkbook()
	if len(ranges) == 0 {
		return wb, nil
	}

	resp, err := svc.Spreadsheets.Values.BatchGet(spreadsheetID).
		Ranges(ranges...).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read values of %s: %w", spreadsheetID, err)
	}
	if len(resp.ValueRanges) != len(titles) {
		return nil, fmt.Errorf("google sheets returned %d ranges for %d sheets", len(resp.ValueRanges), len(titles))
	}

	for i, vr := range resp.ValueRanges {
		wb.AddSheet(titles[i], sheetCells(vr.Values))
	}
	return wb, nil
}

func sheetCells(values [][]interface{}) [][]Cell {
	width := 0
	for _, r := range values {
		width = max(width, len(r))
	}
	rows := make([][]Cell, len(values))
	for r, vals := range values {
		cells := make([]Cell, width)
		for c, v := range vals {
			cells[c] = sheetsValue(v)
		}
		rows[r] = cells
	}
	return rows
}

func sheetsValue(v interface{}) Cell {
	switch x := v.(type) {
	case nil:
		return EmptyCell()
	case float64:
		return NumberCell(x)
	case string:
		if x == "" {
			return EmptyCell()
		}
		return TextCell(x)
	case bool:
		if x {
			return TextCell("TRUE")
		}
		return TextCell("FALSE")
	default:
		return TextCell(fmt.Sprint(x))
	}
}

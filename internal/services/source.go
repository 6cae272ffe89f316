package services

import (
	"context"
	"fmt"

	"google.golang.org/api/sheets/v4"

	"divcli/internal/config"
	"divcli/internal/dataprocessing"
)

// WorkbookSource opens the spreadsheet screens and lookups read from. A
// returned workbook that implements io.Closer is closed by the caller.
type WorkbookSource interface {
	Open(ctx context.Context) (dataprocessing.Workbook, error)
	Describe() string
}

// ExcelSource reads a local .xlsx file.
type ExcelSource struct {
	Path string
}

func (s ExcelSource) Open(ctx context.Context) (dataprocessing.Workbook, error) {
	wb, err := dataprocessing.OpenExcel(s.Path)
	if err != nil {
		return nil, err
	}
	return wb, nil
}

func (s ExcelSource) Describe() string { return "excel:" + s.Path }

// SheetsSource downloads a Google spreadsheet on every Open.
type SheetsSource struct {
	Service       *sheets.Service
	SpreadsheetID string
}

func (s SheetsSource) Open(ctx context.Context) (dataprocessing.Workbook, error) {
	return dataprocessing.LoadGoogleSheet(ctx, s.Service, s.SpreadsheetID)
}

func (s SheetsSource) Describe() string { return "sheets:" + s.SpreadsheetID }

// StaticSource serves an already loaded workbook.
type StaticSource struct {
	Workbook dataprocessing.Workbook
}

func (s StaticSource) Open(context.Context) (dataprocessing.Workbook, error) {
	if s.Workbook == nil {
		return nil, fmt.Errorf("no workbook loaded")
	}
	return s.Workbook, nil
}

func (s StaticSource) Describe() string { return "memory" }

// NewWorkbookSource picks Google Sheets when a spreadsheet id is configured
// and the local data file otherwise.
func NewWorkbookSource(ctx context.Context, cfg *config.Config) (WorkbookSource, error) {
	if cfg.Sheets.SpreadsheetID != "" {
		svc, err := dataprocessing.NewSheetsService(ctx, cfg.Sheets.CredentialsFile, cfg.Sheets.APIKey)
		if err != nil {
			return nil, err
		}
		return SheetsSource{Service: svc, SpreadsheetID: cfg.Sheets.SpreadsheetID}, nil
	}

	paths, err := cfg.ResolvedPaths()
	if err != nil {
		return nil, err
	}
	return ExcelSource{Path: paths.DataFile}, nil
}

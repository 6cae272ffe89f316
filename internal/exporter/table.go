package exporter

import (
	"fmt"
	"log/slog"
	"strings"

	"divcli/internal/dataprocessing"
	"divcli/pkg/contracts/domain"
)

// TableExporter writes screening tables and their data-quality reports.
type TableExporter struct {
	writer *CSVWriter
	logger *slog.Logger
}

// NewTableExporter creates a table exporter that writes through w.
func NewTableExporter(w *CSVWriter, logger *slog.Logger) *TableExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &TableExporter{writer: w, logger: logger.With("component", "table_exporter")}
}

// ExportTable writes the table with its headers in positional order.
// Duplicate headers are kept and missing values are written as empty cells.
func (e *TableExporter) ExportTable(filePath string, table *dataprocessing.Table) error {
	if err := e.writer.WriteCSV(filePath, WriteOptions{
		Headers:   table.Headers(),
		Records:   TableRecords(table),
		BOMPrefix: true,
	}); err != nil {
		return fmt.Errorf("failed to export table: %w", err)
	}

	e.logger.Info("Exported table",
		slog.String("file_path", filePath),
		slog.Int("rows", table.NumRows()),
		slog.Int("columns", table.NumColumns()))
	return nil
}

// ExportIssues writes one line per data-quality issue.
func (e *TableExporter) ExportIssues(filePath string, issues []dataprocessing.DataQualityIssue) error {
	records := make([][]string, len(issues))
	for i, is := range issues {
		records[i] = []string{formatInt(is.Row), strings.Join(is.Columns, ";"), is.Reason}
	}
	return e.writer.WriteCSV(filePath, WriteOptions{
		Headers:   []string{"row", "columns", "reason"},
		Records:   records,
		BOMPrefix: true,
	})
}

// TableRecords renders every row of table as text.
func TableRecords(table *dataprocessing.Table) [][]string {
	cols := table.Columns()
	records := make([][]string, table.NumRows())
	for r := range records {
		row := make([]string, len(cols))
		for c, col := range cols {
			row[c] = col.Format(r)
		}
		records[r] = row
	}
	return records
}

// SeriesExporter writes forecast series as a day-indexed CSV.
type SeriesExporter struct {
	writer *CSVWriter
}

// NewSeriesExporter creates a series exporter that writes through w.
func NewSeriesExporter(w *CSVWriter) *SeriesExporter {
	return &SeriesExporter{writer: w}
}

// ExportSeries writes a "day" column followed by one column per series.
// Days are taken from the longest series; shorter series leave their
// cells empty.
func (e *SeriesExporter) ExportSeries(filePath string, series []domain.Series) error {
	headers := make([]string, 0, len(series)+1)
	headers = append(headers, "day")
	longest := 0
	for i, s := range series {
		headers = append(headers, s.Name)
		if len(s.Points) > len(series[longest].Points) {
			longest = i
		}
	}

	stream, err := e.writer.CreateStreamWriter(filePath, headers)
	if err != nil {
		return err
	}
	if len(series) == 0 {
		return stream.Close()
	}

	for i, p := range series[longest].Points {
		record := make([]string, 0, len(headers))
		record = append(record, formatInt(p.Day))
		for _, s := range series {
			if i < len(s.Points) {
				record = append(record, formatFloat(s.Points[i].CumulativeGain))
			} else {
				record = append(record, "")
			}
		}
		if err := stream.WriteRecord(record); err != nil {
			stream.Close()
			return fmt.Errorf("failed to write day %d: %w", p.Day, err)
		}
	}
	return stream.Close()
}

// Package exporter writes screening results and forecast series as CSV.
//
// CSVWriter is the core writer, with optional UTF-8 BOM for Excel and a
// streaming mode for long series. TableExporter writes screened tables and
// data-quality reports; SeriesExporter writes forecast curves one day per row.
//
//	w := exporter.NewCSVWriter(paths.OutputDir, logger)
//	err := exporter.NewTableExporter(w, logger).ExportTable("screen.csv", table)
package exporter

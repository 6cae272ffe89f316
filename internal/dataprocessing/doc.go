// Package dataprocessing turns spreadsheet worksheets into typed tables.
//
// A worksheet is read through a Workbook (an xlsx file, a Google Sheet or an
// in-memory grid). The first two rows are ignored, the third row holds the
// column headers and every following row describes one company:
//
//	wb, err := dataprocessing.OpenExcel("U.S.DividendChampions.xlsx")
//	if err != nil {
//	    return err
//	}
//	defer wb.Close()
//
//	table, err := dataprocessing.NewBuilder(logger).Build(ctx, wb, "All")
//
// Each column is either numeric or textual, decided by its first non-empty
// value. Missing values are kept as gaps and reported through
// Table.Issues rather than dropping the row.
package dataprocessing

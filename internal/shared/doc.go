// Package shared holds code used across divcli packages that belongs to no
// single layer.
//
// # Test Utilities
//
// The testutil subpackage provides:
//
//   - NewTestLogger, a slog logger whose records are captured for assertions
//   - WriteWorkbook, which writes a temporary .xlsx file from sheet rows
//   - ChampionsSheet, a small dividend sheet with every screened column
//
// Example usage:
//
//	func TestScreen(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    path := testutil.WriteWorkbook(t, []string{"All"}, map[string][][]any{
//	        "All": testutil.ChampionsSheet(),
//	    })
//	    ...
//	    testutil.AssertLogged(t, logs, slog.LevelInfo, "Screen completed")
//	}
//
// Nothing here is imported by production code.
package shared

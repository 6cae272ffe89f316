package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"divcli/internal/dataprocessing"
)

// TablePrinter prints tables as aligned text columns.
type TablePrinter struct {
	// MaxRows limits the rows printed; zero prints every row.
	MaxRows int
}

// Print writes the header and up to MaxRows rows of table to w, followed
// by a shape line.
func (p TablePrinter) Print(w io.Writer, table *dataprocessing.Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintln(tw, strings.Join(table.Headers(), "\t")); err != nil {
		return err
	}

	rows := table.NumRows()
	shown := rows
	if p.MaxRows > 0 && rows > p.MaxRows {
		shown = p.MaxRows
	}
	cols := table.Columns()
	cells := make([]string, len(cols))
	for r := 0; r < shown; r++ {
		for c, col := range cols {
			cells[c] = col.Format(r)
		}
		if _, err := fmt.Fprintln(tw, strings.Join(cells, "\t")); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if shown < rows {
		if _, err := fmt.Fprintf(w, "... %d more rows\n", rows-shown); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "shape: (%d, %d)\n", rows, table.NumColumns())
	return err
}

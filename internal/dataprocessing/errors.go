package dataprocessing

import (
	"errors"
	"fmt"
)

// ErrCategoryNotFound is returned when the workbook has no sheet with the
// requested name.
var ErrCategoryNotFound = errors.New("category not found")

// TableAssemblyError reports a column whose length differs from the table's
// row count.
type TableAssemblyError struct {
	Column   string
	Position int
	Expected int
	Actual   int
}

func (e *TableAssemblyError) Error() string {
	return fmt.Sprintf("table assembly: column %q at position %d has %d values, expected %d",
		e.Column, e.Position, e.Actual, e.Expected)
}

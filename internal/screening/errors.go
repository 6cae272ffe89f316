package screening

import (
	"errors"
	"fmt"

	"divcli/internal/dataprocessing"
)

var (
	// ErrMissingColumn matches every MissingColumnError.
	ErrMissingColumn = errors.New("missing column")

	// ErrSymbolNotFound is returned when a symbol has no row in the table.
	ErrSymbolNotFound = errors.New("symbol not found")
)

// MissingColumnError reports a column a stage needs but the table lacks, or
// has with a non-numeric type.
type MissingColumnError struct {
	Stage  string
	Column string
	Kind   *dataprocessing.ColumnKind
}

func (e *MissingColumnError) Error() string {
	if e.Kind != nil {
		return fmt.Sprintf("%s: column %q is %s, expected float", e.Stage, e.Column, *e.Kind)
	}
	return fmt.Sprintf("%s: missing column %q", e.Stage, e.Column)
}

func (e *MissingColumnError) Is(target error) bool { return target == ErrMissingColumn }

// floatColumns resolves the named numeric columns in order.
func floatColumns(stage string, table *dataprocessing.Table, names ...string) ([]*dataprocessing.Column, error) {
	cols := make([]*dataprocessing.Column, len(names))
	for i, name := range names {
		c, ok := table.Column(name)
		if !ok {
			return nil, &MissingColumnError{Stage: stage, Column: name}
		}
		if c.Kind() != dataprocessing.ColumnFloat {
			kind := c.Kind()
			return nil, &MissingColumnError{Stage: stage, Column: name, Kind: &kind}
		}
		cols[i] = c
	}
	return cols, nil
}

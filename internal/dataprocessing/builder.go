package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
)

const (
	// skippedRows precede the header row in every category sheet.
	skippedRows = 2
	headerRow   = skippedRows
)

// Workbook is a source of named worksheets made of tagged cells.
type Workbook interface {
	SheetNames() []string
	Rows(sheet string) ([][]Cell, error)
}

// Builder assembles typed tables from workbook sheets.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder creates a builder; a nil logger falls back to slog.Default.
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{logger: logger.With("component", "table_builder")}
}

// Build reads the sheet named category and returns its rows as a table.
func (b *Builder) Build(ctx context.Context, wb Workbook, category string) (*Table, error) {
	if !slices.Contains(wb.SheetNames(), category) {
		return nil, fmt.Errorf("%w: %q", ErrCategoryNotFound, category)
	}

	rows, err := wb.Rows(category)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", category, err)
	}
	if len(rows) <= headerRow {
		b.logger.WarnContext(ctx, "Sheet has no header row",
			"sheet", category,
			"rows", len(rows))
		return EmptyTable(), nil
	}

	header := rows[headerRow]
	builders := make([]*columnBuilder, len(header))
	for i, cell := range header {
		name := cell.String()
		if cell.IsBlank() {
			name = BlendedColumnName
		}
		builders[i] = &columnBuilder{name: name}
	}

	// Blank rows after the last value are sheet padding, not data. Blank rows
	// in between are kept with every value missing.
	end := len(rows)
	for end > headerRow+1 && isBlankRow(rows[end-1], len(builders)) {
		end--
	}
	trailing := len(rows) - end

	var (
		issues []DataQualityIssue
		kept   int
	)
	for r := headerRow + 1; r < end; r++ {
		row := rows[r]
		sheetRow := r + 1

		var missing []string
		for i, cb := range builders {
			cell := EmptyCell()
			if i < len(row) {
				cell = row[i]
			}
			present, reason := cb.add(cell)
			if reason != "" {
				issues = append(issues, DataQualityIssue{Row: sheetRow, Columns: []string{cb.name}, Reason: reason})
				b.logger.WarnContext(ctx, "Value does not match column type",
					"sheet", category,
					"row", sheetRow,
					"column", cb.name,
					"reason", reason)
			}
			if !present {
				missing = append(missing, cb.name)
			}
		}
		kept++

		if len(missing) > 0 {
			issues = append(issues, DataQualityIssue{Row: sheetRow, Columns: missing, Reason: "missing values"})
			b.logger.WarnContext(ctx, "Row has missing values",
				"sheet", category,
				"row", sheetRow,
				"columns", missing)
		}
	}

	columns := make([]*Column, len(builders))
	for i, cb := range builders {
		columns[i] = cb.column()
	}

	table, err := NewTable(columns...)
	if err != nil {
		return nil, err
	}
	if len(columns) > 0 && table.NumRows() != kept {
		return nil, &TableAssemblyError{Column: columns[0].name, Expected: kept, Actual: table.NumRows()}
	}
	table.issues = issues

	b.logger.InfoContext(ctx, "Table built",
		"sheet", category,
		"columns", table.NumColumns(),
		"rows", table.NumRows(),
		"trailing_blank_rows", trailing,
		"data_quality_issues", len(issues))

	return table, nil
}

// Build reads a sheet with a default builder.
func Build(ctx context.Context, wb Workbook, category string) (*Table, error) {
	return NewBuilder(nil).Build(ctx, wb, category)
}

func isBlankRow(row []Cell, width int) bool {
	for i := 0; i < len(row) && i < width; i++ {
		if !row[i].IsBlank() {
			return false
		}
	}
	return true
}

type columnState int

const (
	stateUnknown columnState = iota
	stateFloat
	stateText
)

// columnBuilder accumulates one column. Its kind is fixed by the first
// non-missing value; gaps seen before that are back-filled.
type columnBuilder struct {
	name    string
	state   columnState
	pending int
	floats  []*float64
	texts   []*string
}

// add appends cell and reports whether a value was stored. reason is set
// when the cell could not be represented in the column type.
func (c *columnBuilder) add(cell Cell) (present bool, reason string) {
	switch cell.Kind {
	case CellNumber, CellTimestamp:
		switch c.state {
		case stateUnknown:
			c.become(stateFloat)
			c.appendFloat(cell.Number)
		case stateFloat:
			c.appendFloat(cell.Number)
		case stateText:
			c.appendText(formatNumber(cell.Number))
		}
		return true, ""

	case CellText:
		if cell.IsBlank() {
			c.appendMissing()
			return false, ""
		}
		switch c.state {
		case stateUnknown:
			c.become(stateText)
			c.appendText(cell.Text)
		case stateText:
			c.appendText(cell.Text)
		case stateFloat:
			v, err := strconv.ParseFloat(strings.TrimSpace(cell.Text), 64)
			if err != nil {
				c.appendMissing()
				return false, fmt.Sprintf("text %q in numeric column", cell.Text)
			}
			c.appendFloat(v)
		}
		return true, ""

	default:
		c.appendMissing()
		return false, ""
	}
}

func (c *columnBuilder) become(state columnState) {
	c.state = state
	if state == stateFloat {
		c.floats = make([]*float64, c.pending)
	} else {
		c.texts = make([]*string, c.pending)
	}
	c.pending = 0
}

func (c *columnBuilder) appendFloat(v float64) { c.floats = append(c.floats, &v) }
func (c *columnBuilder) appendText(s string)   { c.texts = append(c.texts, &s) }

func (c *columnBuilder) appendMissing() {
	switch c.state {
	case stateUnknown:
		c.pending++
	case stateFloat:
		c.floats = append(c.floats, nil)
	case stateText:
		c.texts = append(c.texts, nil)
	}
}

func (c *columnBuilder) column() *Column {
	switch c.state {
	case stateText:
		return NewTextColumn(c.name, c.texts)
	case stateFloat:
		return NewFloatColumn(c.name, c.floats)
	default:
		return NewFloatColumn(c.name, make([]*float64, c.pending))
	}
}

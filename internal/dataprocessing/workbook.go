package dataprocessing

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// MemoryWorkbook is a Workbook backed by in-memory grids, keyed by sheet name.
type MemoryWorkbook struct {
	names  []string
	sheets map[string][][]Cell
}

// NewMemoryWorkbook creates an empty in-memory workbook.
func NewMemoryWorkbook() *MemoryWorkbook {
	return &MemoryWorkbook{sheets: make(map[string][][]Cell)}
}

// AddSheet adds or replaces a sheet.
func (m *MemoryWorkbook) AddSheet(name string, rows [][]Cell) *MemoryWorkbook {
	if _, ok := m.sheets[name]; !ok {
		m.names = append(m.names, name)
	}
	m.sheets[name] = rows
	return m
}

func (m *MemoryWorkbook) SheetNames() []string { return m.names }

func (m *MemoryWorkbook) Rows(sheet string) ([][]Cell, error) {
	rows, ok := m.sheets[sheet]
	if !ok {
		return nil, fmt.Errorf("sheet %q does not exist", sheet)
	}
	return rows, nil
}

// excelEpoch is day zero of the 1900 date system as used by serial dates.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// builtinDateFormats are the built-in number format ids that render dates.
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	45: true, 46: true, 47: true,
}

// ExcelWorkbook reads xlsx files through excelize.
type ExcelWorkbook struct {
	file       *excelize.File
	dateStyles map[int]bool
}

// OpenExcel opens an xlsx workbook. The caller must Close it.
func OpenExcel(path string) (*ExcelWorkbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return NewExcelWorkbook(f), nil
}

// NewExcelWorkbook wraps an already opened excelize file.
func NewExcelWorkbook(f *excelize.File) *ExcelWorkbook {
	return &ExcelWorkbook{file: f, dateStyles: make(map[int]bool)}
}

func (w *ExcelWorkbook) Close() error { return w.file.Close() }

func (w *ExcelWorkbook) SheetNames() []string { return w.file.GetSheetList() }

// Rows returns the sheet as tagged cells, padded to the widest row.
func (w *ExcelWorkbook) Rows(sheet string) ([][]Cell, error) {
	raw, err := w.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	width := 0
	for _, r := range raw {
		width = max(width, len(r))
	}

	rows := make([][]Cell, len(raw))
	for r, values := range raw {
		cells := make([]Cell, width)
		for c, value := range values {
			cell, err := w.cell(sheet, c, r, value)
			if err != nil {
				return nil, err
			}
			cells[c] = cell
		}
		rows[r] = cells
	}
	return rows, nil
}

func (w *ExcelWorkbook) cell(sheet string, col, row int, value string) (Cell, error) {
	if value == "" {
		return EmptyCell(), nil
	}
	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return Cell{}, err
	}
	typ, err := w.file.GetCellType(sheet, axis)
	if err != nil {
		return Cell{}, fmt.Errorf("cell %s: %w", axis, err)
	}

	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return TextCell(value), nil
		}
		if w.isDate(sheet, axis) {
			return TimestampCell(v), nil
		}
		return NumberCell(v), nil
	case excelize.CellTypeDate:
		t, err := time.Parse(time.RFC3339, value)
		if err != nil {
			if t, err = time.Parse("2006-01-02T15:04:05", value); err != nil {
				return TextCell(value), nil
			}
		}
		return TimestampCell(t.Sub(excelEpoch).Hours() / 24), nil
	case excelize.CellTypeBool:
		if value == "1" {
			return TextCell("TRUE"), nil
		}
		return TextCell("FALSE"), nil
	default:
		return TextCell(value), nil
	}
}

func (w *ExcelWorkbook) isDate(sheet, axis string) bool {
	id, err := w.file.GetCellStyle(sheet, axis)
	if err != nil || id == 0 {
		return false
	}
	if isDate, ok := w.dateStyles[id]; ok {
		return isDate
	}
	style, err := w.file.GetStyle(id)
	isDate := false
	if err == nil && style != nil {
		isDate = builtinDateFormats[style.NumFmt]
		if style.CustomNumFmt != nil {
			f := strings.ToLower(*style.CustomNumFmt)
			isDate = strings.Contains(f, "yy") || strings.Contains(f, "dd") || strings.Contains(f, "mmm")
		}
	}
	w.dateStyles[id] = isDate
	return isDate
}

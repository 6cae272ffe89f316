package dataprocessing

import (
	"strconv"
	"strings"
)

// CellKind tags the value held by a Cell.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellNumber
	CellText
	CellTimestamp
)

func (k CellKind) String() string {
	switch k {
	case CellNumber:
		return "number"
	case CellText:
		return "text"
	case CellTimestamp:
		return "timestamp"
	default:
		return "empty"
	}
}

// Cell is a single raw spreadsheet value. Timestamps carry the spreadsheet
// serial date in Number.
type Cell struct {
	Kind   CellKind
	Number float64
	Text   string
}

func NumberCell(v float64) Cell { return Cell{Kind: CellNumber, Number: v} }

func TextCell(s string) Cell { return Cell{Kind: CellText, Text: s} }

func TimestampCell(serial float64) Cell { return Cell{Kind: CellTimestamp, Number: serial} }

func EmptyCell() Cell { return Cell{} }

// IsBlank reports whether the cell carries no value at all.
func (c Cell) IsBlank() bool {
	switch c.Kind {
	case CellEmpty:
		return true
	case CellText:
		return strings.TrimSpace(c.Text) == ""
	default:
		return false
	}
}

// String renders the cell the way it is written to text columns and CSV.
func (c Cell) String() string {
	switch c.Kind {
	case CellNumber, CellTimestamp:
		return formatNumber(c.Number)
	case CellText:
		return c.Text
	default:
		return ""
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

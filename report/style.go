// Package report renders analysis and geo-fencing results as xlsx workbooks.
package report

import (
	"fmt"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

const (
	headerBlue  = "4472C4"
	headerGreen = "70AD47"

	minColWidth = 15
	maxColWidth = 50
)

type styles struct {
	blue, green, body int
}

func newStyles(x *excelize.File) (*styles, error) {
	header := func(fill string) (int, error) {
		return x.NewStyle(&excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{fill}},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		})
	}
	var s styles
	var err error
	if s.blue, err = header(headerBlue); err != nil {
		return nil, fmt.Errorf("report: header style: %w", err)
	}
	if s.green, err = header(headerGreen); err != nil {
		return nil, fmt.Errorf("report: header style: %w", err)
	}
	if s.body, err = x.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	}); err != nil {
		return nil, fmt.Errorf("report: body style: %w", err)
	}
	return &s, nil
}

// block is a header plus rows placed at a column offset on a sheet.
type block struct {
	header []string
	rows   [][]any
	col    int // first column, 1-based
	style  int // header style
}

// put writes b onto sheet name and returns the rendered width of each column.
func put(x *excelize.File, name string, b block, st *styles) ([]int, error) {
	widths := make([]int, len(b.header))
	set := func(c, r int, v any) error {
		cell, err := excelize.CoordinatesToCellName(b.col+c, r+1)
		if err != nil {
			return err
		}
		var s string
		switch t := v.(type) {
		case string:
			s = t
			err = x.SetCellStr(name, cell, t)
		default:
			s = fmt.Sprint(t)
			err = x.SetCellValue(name, cell, t)
		}
		if c < len(widths) {
			widths[c] = max(widths[c], utf8.RuneCountInString(s))
		}
		return err
	}

	for c, h := range b.header {
		if err := set(c, 0, h); err != nil {
			return nil, err
		}
	}
	for r, row := range b.rows {
		for c, v := range row {
			if err := set(c, r+1, v); err != nil {
				return nil, err
			}
		}
	}

	if len(b.header) == 0 {
		return widths, nil
	}
	first, _ := excelize.CoordinatesToCellName(b.col, 1)
	last, _ := excelize.CoordinatesToCellName(b.col+len(b.header)-1, 1)
	if err := x.SetCellStyle(name, first, last, b.style); err != nil {
		return nil, err
	}
	if len(b.rows) > 0 {
		top, _ := excelize.CoordinatesToCellName(b.col, 2)
		bottom, _ := excelize.CoordinatesToCellName(b.col+len(b.header)-1, len(b.rows)+1)
		if err := x.SetCellStyle(name, top, bottom, st.body); err != nil {
			return nil, err
		}
	}
	return widths, nil
}

// fitColumns sets each column to its longest rendered value, clamped.
func fitColumns(x *excelize.File, name string, firstCol int, widths []int) error {
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(firstCol + i)
		if err != nil {
			return err
		}
		w = min(max(w+2, minColWidth), maxColWidth)
		if err := x.SetColWidth(name, col, col, float64(w)); err != nil {
			return err
		}
	}
	return nil
}

// addSheet writes blocks onto a new sheet and fits its columns.
func addSheet(x *excelize.File, name string, st *styles, blocks ...block) error {
	if _, err := x.NewSheet(name); err != nil {
		return fmt.Errorf("report: sheet %q: %w", name, err)
	}
	for _, b := range blocks {
		widths, err := put(x, name, b, st)
		if err != nil {
			return fmt.Errorf("report: sheet %q: %w", name, err)
		}
		if err := fitColumns(x, name, b.col, widths); err != nil {
			return fmt.Errorf("report: sheet %q: %w", name, err)
		}
	}
	return nil
}

// finish drops the default sheet and activates the first one.
func finish(x *excelize.File) error {
	if err := x.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	x.SetActiveSheet(0)
	return nil
}

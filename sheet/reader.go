// Package sheet reads uploaded CDR exports (xlsx or csv) into typed rows.
package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrEmptyFile         = errors.New("empty file: no data rows found")
	ErrUnsupportedFormat = errors.New("unsupported file format: upload an .xlsx or .csv export")
)

// Table is the first worksheet of an upload, before header detection.
type Table struct {
	Sheet string
	Rows  [][]Cell
}

// Read loads the whole upload into memory. Format is sniffed from the content
// (xlsx is a zip archive) with the file name as a tie-breaker.
func Read(r io.Reader, filename string) (*Table, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, ErrEmptyFile
	}

	name := strings.ToLower(filename)
	switch {
	case bytes.HasPrefix(b, []byte("PK")):
		return readXLSX(b)
	case strings.HasSuffix(name, ".xls"), bytes.HasPrefix(b, []byte{0xD0, 0xCF, 0x11, 0xE0}):
		// legacy BIFF workbooks
		return nil, ErrUnsupportedFormat
	default:
		return readCSV(b)
	}
}

func readXLSX(b []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	list := f.GetSheetList()
	if len(list) == 0 {
		return nil, ErrEmptyFile
	}
	name := list[0]
	raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}
	return newTable(name, raw)
}

func readCSV(b []byte) (*Table, error) {
	b = bytes.TrimPrefix(b, []byte("\xef\xbb\xbf"))
	cr := csv.NewReader(bytes.NewReader(b))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var raw [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		raw = append(raw, rec)
	}
	return newTable("csv", raw)
}

func newTable(name string, raw [][]string) (*Table, error) {
	t := &Table{Sheet: name, Rows: make([][]Cell, 0, len(raw))}
	for _, rec := range raw {
		row := make([]Cell, len(rec))
		for i, v := range rec {
			row[i] = Classify(v)
		}
		t.Rows = append(t.Rows, row)
	}
	if len(t.Rows) == 0 {
		return nil, ErrEmptyFile
	}
	return t, nil
}

// TextRows renders up to limit rows as plain strings (limit <= 0 means all).
func (t *Table) TextRows(limit int) [][]string {
	n := len(t.Rows)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([][]string, n)
	for i := 0; i < n; i++ {
		out[i] = make([]string, len(t.Rows[i]))
		for j, c := range t.Rows[i] {
			out[i][j] = c.String()
		}
	}
	return out
}

/* ──────────── framed rows (after header detection) ──────────── */

// Frame is a table split at its header row. Blank rows are dropped.
type Frame struct {
	HeaderIndex int
	Header      []string
	Rows        [][]Cell
}

// Frame splits the table at headerIdx. A frame with no data rows is an error.
func (t *Table) Frame(headerIdx int) (*Frame, error) {
	if headerIdx < 0 || headerIdx >= len(t.Rows) {
		return nil, ErrEmptyFile
	}
	hdr := t.Rows[headerIdx]
	fr := &Frame{HeaderIndex: headerIdx, Header: make([]string, len(hdr))}
	for i, c := range hdr {
		h := c.String()
		if h == "" {
			h = fmt.Sprintf("Column %d", i+1)
		}
		fr.Header[i] = h
	}
	for _, row := range t.Rows[headerIdx+1:] {
		if blank(row) {
			continue
		}
		fr.Rows = append(fr.Rows, row)
	}
	if len(fr.Rows) == 0 {
		return nil, ErrEmptyFile
	}
	return fr, nil
}

func blank(row []Cell) bool {
	for _, c := range row {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// At returns the cell in column col of row, or an empty cell when the row is short.
func At(row []Cell, col int) Cell {
	if col < 0 || col >= len(row) {
		return Cell{}
	}
	return row[col]
}

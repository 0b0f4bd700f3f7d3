package report

import (
	"bytes"

	"github.com/xuri/excelize/v2"

	"github.com/jalad-shrimali/cdr-analyzer/geofence"
)

// BuildGeofence lays out the single-sheet geo-fencing workbook: matched raw
// rows on the left, the per-number summary to their right after one blank
// column.
func BuildGeofence(res *geofence.Result) (*excelize.File, error) {
	x := excelize.NewFile()
	st, err := newStyles(x)
	if err != nil {
		x.Close()
		return nil, err
	}

	dates := dateColumns(res.Header)
	raw := block{header: res.Header, col: 1, style: st.blue}
	for _, r := range res.Rows {
		raw.rows = append(raw.rows, cleanRow(r, len(res.Header), dates))
	}

	sum := block{
		header: []string{"S#", "Mobile Number", "Total Count", "First Seen", "Last Seen"},
		col:    len(res.Header) + 2,
		style:  st.green,
	}
	for i, s := range res.Summary {
		first, last := span(s.Span)
		sum.rows = append(sum.rows, []any{i + 1, s.Number, s.Count, first, last})
	}

	if err := addSheet(x, SheetGeofence, st, raw, sum); err != nil {
		x.Close()
		return nil, err
	}
	if err := finish(x); err != nil {
		x.Close()
		return nil, err
	}
	return x, nil
}

// WriteGeofence renders the geo-fencing workbook into a buffer.
func WriteGeofence(res *geofence.Result) (*bytes.Buffer, error) {
	x, err := BuildGeofence(res)
	if err != nil {
		return nil, err
	}
	defer x.Close()
	return x.WriteToBuffer()
}

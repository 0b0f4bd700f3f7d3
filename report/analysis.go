package report

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jalad-shrimali/cdr-analyzer/aggregate"
	"github.com/jalad-shrimali/cdr-analyzer/enrich"
	"github.com/jalad-shrimali/cdr-analyzer/normalize"
	"github.com/jalad-shrimali/cdr-analyzer/sheet"
)

// Sheet names, in workbook order.
const (
	SheetNumbers   = "Mobile Numbers"
	SheetCallLogs  = "Call Logs Summary"
	SheetAddresses = "Address Summary"
	SheetIMEIs     = "IMEI Summary"
	SheetRaw       = "Cleaned Raw Data"
	SheetGeofence  = "Geo Fencing"
)

// Analysis is everything the analysis workbook is built from.
type Analysis struct {
	Result aggregate.Result
	// Enrichment is aligned with Result.Numbers; it may be shorter.
	Enrichment []enrich.Record
	Lookup     bool // add Name, CNIC, Address columns
	CallerID   bool // add Caller ID Names column
	Raw        *sheet.Frame
}

// BuildAnalysis lays out the analysis workbook.
func BuildAnalysis(a Analysis) (*excelize.File, error) {
	x := excelize.NewFile()
	st, err := newStyles(x)
	if err != nil {
		x.Close()
		return nil, err
	}

	sheets := []struct {
		name string
		b    block
		skip bool
	}{
		{SheetNumbers, numbersBlock(a), false},
		{SheetCallLogs, callLogsBlock(a.Result.Numbers), false},
		{SheetAddresses, keyBlock("Address", a.Result.Addresses), len(a.Result.Addresses) == 0},
		{SheetIMEIs, keyBlock("IMEI", a.Result.IMEIs), len(a.Result.IMEIs) == 0},
		{SheetRaw, rawBlock(a.Raw), a.Raw == nil},
	}
	for _, s := range sheets {
		if s.skip {
			continue
		}
		s.b.col, s.b.style = 1, st.blue
		if err := addSheet(x, s.name, st, s.b); err != nil {
			x.Close()
			return nil, err
		}
	}
	if err := finish(x); err != nil {
		x.Close()
		return nil, err
	}
	return x, nil
}

// WriteAnalysis renders the analysis workbook into a buffer.
func WriteAnalysis(a Analysis) (*bytes.Buffer, error) {
	x, err := BuildAnalysis(a)
	if err != nil {
		return nil, err
	}
	defer x.Close()
	return x.WriteToBuffer()
}

/* ──────────── sheets ──────────── */

func numbersBlock(a Analysis) block {
	header := []string{"S#", "Mobile Number", "Count", "First Seen", "Last Seen"}
	if a.Lookup {
		header = append(header, "Name", "CNIC", "Address")
	}
	if a.CallerID {
		header = append(header, "Caller ID Names")
	}

	rows := make([][]any, 0, len(a.Result.Numbers))
	for i, n := range a.Result.Numbers {
		first, last := span(n.Span)
		row := []any{i + 1, n.Number, n.Count, first, last}
		var rec enrich.Record
		if i < len(a.Enrichment) {
			rec = a.Enrichment[i]
		}
		if a.Lookup {
			row = append(row, rec.Name, rec.CNIC, rec.Address)
		}
		if a.CallerID {
			row = append(row, rec.CallerNames)
		}
		rows = append(rows, row)
	}
	return block{header: header, rows: rows}
}

func callLogsBlock(nums []aggregate.NumberStat) block {
	header := []string{
		"S#", "Mobile Number", "Total", "Incoming Calls", "Outgoing Calls",
		"Incoming SMS", "Outgoing SMS", "First Seen", "Last Seen",
	}
	rows := make([][]any, 0, len(nums))
	for i, n := range nums {
		first, last := span(n.Span)
		rows = append(rows, []any{
			i + 1, n.Number, n.Count,
			n.Tally.InCall, n.Tally.OutCall, n.Tally.InSMS, n.Tally.OutSMS,
			first, last,
		})
	}
	return block{header: header, rows: rows}
}

func keyBlock(label string, stats []aggregate.KeyStat) block {
	rows := make([][]any, 0, len(stats))
	for i, s := range stats {
		first, last := span(s.Span)
		rows = append(rows, []any{i + 1, s.Key, s.Count, first, last})
	}
	return block{header: []string{"S#", label, "Count", "First Seen", "Last Seen"}, rows: rows}
}

func rawBlock(fr *sheet.Frame) block {
	if fr == nil {
		return block{}
	}
	dates := dateColumns(fr.Header)
	rows := make([][]any, 0, len(fr.Rows))
	for _, r := range fr.Rows {
		rows = append(rows, cleanRow(r, len(fr.Header), dates))
	}
	return block{header: fr.Header, rows: rows}
}

/* ──────────── helpers ──────────── */

func span(s aggregate.Span) (first, last string) {
	if !s.Valid() {
		return "", ""
	}
	return normalize.FormatDisplay(s.First), normalize.FormatDisplay(s.Last)
}

// dateColumns marks headers mentioning a date or time, but not a duration.
func dateColumns(header []string) map[int]bool {
	out := map[int]bool{}
	for i, h := range header {
		l := strings.ToLower(h)
		if (strings.Contains(l, "date") || strings.Contains(l, "time")) && !strings.Contains(l, "duration") {
			out[i] = true
		}
	}
	return out
}

// cleanRow renders a raw row for re-export: date columns in display format,
// long digit strings guarded by a leading space so spreadsheet apps keep them
// as text.
func cleanRow(r []sheet.Cell, width int, dates map[int]bool) []any {
	out := make([]any, width)
	for i := range out {
		c := sheet.At(r, i)
		if dates[i] {
			if t, ok := normalize.ParseCell(c); ok {
				out[i] = normalize.FormatDisplay(t)
				continue
			}
		}
		s := c.String()
		if len(s) >= 11 && allDigits(s) {
			out[i] = " " + s
			continue
		}
		if c.Kind == sheet.Number {
			out[i] = c.Num
			continue
		}
		out[i] = s
	}
	return out
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

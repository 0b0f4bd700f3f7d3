package geofence

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/jalad-shrimali/cdr-analyzer/aggregate"
	"github.com/jalad-shrimali/cdr-analyzer/headers"
	"github.com/jalad-shrimali/cdr-analyzer/normalize"
	"github.com/jalad-shrimali/cdr-analyzer/sheet"
)

// NoMatchError means no row fell inside the window.
type NoMatchError struct {
	Window Window
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no records found between %s; check the date/time format of the upload", e.Window)
}

type Options struct {
	Window   Window
	IncludeB bool           // also summarise B-party numbers
	Location *time.Location // zone the sheet's wall clock is read in; nil means time.Local
}

// Summary is one number active in the window. Count and Span cover the whole
// upload, not only the matched rows.
type Summary struct {
	Number string
	Count  int
	Span   aggregate.Span
}

type Result struct {
	Header  []string
	Rows    [][]sheet.Cell // matched rows, ordered by time
	Summary []Summary      // by descending Count, ties in first-matched order
	Scanned int
}

type entry struct {
	cells []sheet.Cell
	ts    time.Time
	hasTS bool
	nums  []string
}

// Run filters fr to opts.Window. The A-party and date columns are required,
// plus the B-party column when IncludeB is set.
func Run(fr *sheet.Frame, opts Options) (*Result, error) {
	required := []headers.Field{headers.ANumber, headers.Date}
	if opts.IncludeB {
		required = append(required, headers.BNumber)
	}
	cols, err := headers.Resolve(fr.Header, required...)
	if err != nil {
		return nil, err
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	hist := map[string]*Summary{}
	entries := make([]entry, 0, len(fr.Rows))
	for _, row := range fr.Rows {
		e := entry{cells: row}
		e.ts, e.hasTS = normalize.ParseCellIn(sheet.At(row, cols.Date.Index), loc)
		e.nums = rowNumbers(row, cols, opts.IncludeB)
		for _, n := range e.nums {
			s, ok := hist[n]
			if !ok {
				s = &Summary{Number: n}
				hist[n] = s
			}
			s.Count++
			if e.hasTS {
				s.Span.Observe(e.ts)
			}
		}
		entries = append(entries, e)
	}

	slices.SortStableFunc(entries, func(a, b entry) int {
		switch {
		case a.hasTS && b.hasTS:
			return a.ts.Compare(b.ts)
		case a.hasTS:
			return -1
		case b.hasTS:
			return 1
		}
		return 0
	})

	res := &Result{Header: fr.Header, Scanned: len(fr.Rows)}
	seen := map[string]bool{}
	for _, e := range entries {
		if !e.hasTS || !opts.Window.Contains(normalize.MinuteOfDay(e.ts)) {
			continue
		}
		res.Rows = append(res.Rows, e.cells)
		for _, n := range e.nums {
			if !seen[n] {
				seen[n] = true
				res.Summary = append(res.Summary, *hist[n])
			}
		}
	}
	if len(res.Rows) == 0 {
		return nil, &NoMatchError{Window: opts.Window}
	}
	slices.SortStableFunc(res.Summary, func(a, b Summary) int { return cmp.Compare(b.Count, a.Count) })
	return res, nil
}

// rowNumbers returns the distinct canonical numbers a row contributes.
func rowNumbers(row []sheet.Cell, cols headers.ColumnMap, includeB bool) []string {
	var out []string
	if a, ok := normalize.PhoneLoose(sheet.At(row, cols.ANumber.Index).String()); ok {
		out = append(out, a)
	}
	if includeB {
		if b, ok := normalize.PhoneLoose(sheet.At(row, cols.BNumber.Index).String()); ok && !slices.Contains(out, b) {
			out = append(out, b)
		}
	}
	return out
}

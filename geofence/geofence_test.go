package geofence

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jalad-shrimali/cdr-analyzer/headers"
	"github.com/jalad-shrimali/cdr-analyzer/normalize"
	"github.com/jalad-shrimali/cdr-analyzer/sheet"
)

func frame(t *testing.T, header []string, rows ...[]string) *sheet.Frame {
	t.Helper()
	tbl := &sheet.Table{}
	for _, r := range append([][]string{header}, rows...) {
		cells := make([]sheet.Cell, len(r))
		for i, v := range r {
			cells[i] = sheet.Classify(v)
		}
		tbl.Rows = append(tbl.Rows, cells)
	}
	fr, err := tbl.Frame(0)
	require.NoError(t, err)
	return fr
}

func nineToFive(t *testing.T) Window {
	t.Helper()
	w, err := ParseWindow("09:00", "AM", "05:00", "PM")
	require.NoError(t, err)
	return w
}

func TestParseWindow(t *testing.T) {
	tests := []struct {
		from, fromP, to, toP string
		want                 Window
	}{
		{"09:00", "AM", "05:00", "PM", Window{540, 1020}},
		{"12:00", "am", "12:30", "pm", Window{0, 750}},
		{"9:15", "AM", "11:59", "PM", Window{555, 1439}},
		{"13:00", "", "23:45", "", Window{780, 1425}},
		{"10:00", "PM", "02:00", "AM", Window{1320, 120}},
	}
	for _, tt := range tests {
		t.Run(tt.from+tt.fromP+"-"+tt.to+tt.toP, func(t *testing.T) {
			w, err := ParseWindow(tt.from, tt.fromP, tt.to, tt.toP)
			require.NoError(t, err)
			assert.Equal(t, tt.want, w)
		})
	}
}

func TestParseWindowInvalid(t *testing.T) {
	bad := [][4]string{
		{"", "AM", "05:00", "PM"},
		{"9", "AM", "05:00", "PM"},
		{"13:00", "PM", "05:00", "PM"},
		{"00:30", "AM", "05:00", "PM"},
		{"09:60", "AM", "05:00", "PM"},
		{"09:00", "XM", "05:00", "PM"},
		{"09:00", "AM", "24:00", ""},
		{"09:00", "AM", "5:0", "PM"},
	}
	for _, b := range bad {
		_, err := ParseWindow(b[0], b[1], b[2], b[3])
		assert.True(t, errors.Is(err, ErrInvalidWindow), "%v", b)
	}
}

func TestWindowString(t *testing.T) {
	assert.Equal(t, "09:00 AM - 05:00 PM", nineToFive(t).String())
	assert.Equal(t, "12:00 AM - 12:30 PM", Window{0, 750}.String())
}

func TestWindowDoesNotWrap(t *testing.T) {
	w := Window{Start: 1320, End: 120}
	assert.False(t, w.Contains(1380))
	assert.False(t, w.Contains(60))
}

func TestScenarioC(t *testing.T) {
	fr := frame(t, []string{"A Number", "B Number", "Start Time"},
		[]string{"03001234567", "3110000000", "2023-03-15 08:59:00"},
		[]string{"03001234567", "3110000000", "2023-03-15 09:01:00"},
		[]string{"923001234567", "3220000000", "2023-03-16 20:00:00"},
	)
	res, err := Run(fr, Options{Window: nineToFive(t), Location: time.UTC})
	require.NoError(t, err)

	require.Len(t, res.Rows, 1)
	assert.Equal(t, "2023-03-15 09:01:00", res.Rows[0][2].String())

	require.Len(t, res.Summary, 1)
	s := res.Summary[0]
	assert.Equal(t, "3001234567", s.Number)
	assert.Equal(t, 3, s.Count, "history spans the whole upload")
	assert.Equal(t, "2023-03-15 08:59:00", normalize.FormatDisplay(s.Span.First))
	assert.Equal(t, "2023-03-16 20:00:00", normalize.FormatDisplay(s.Span.Last))
	assert.Equal(t, 3, res.Scanned)
}

func TestRunIncludeB(t *testing.T) {
	fr := frame(t, []string{"A Number", "B Number", "Start Time"},
		[]string{"3001234567", "3110000000", "45000.5"},
		[]string{"3001234567", "3220000000", "45000.4"},
		[]string{"3001234567", "3001234567", "45001.45"},
		[]string{"3330000000", "3220000000", "45000.1"},
	)
	res, err := Run(fr, Options{Window: nineToFive(t), IncludeB: true, Location: time.UTC})
	require.NoError(t, err)

	require.Len(t, res.Rows, 3)
	// sorted by time: 45000.4 (09:36), 45000.5 (12:00), 45001.45 (10:48 next day)
	assert.Equal(t, "3220000000", res.Rows[0][1].String())
	assert.Equal(t, "3110000000", res.Rows[1][1].String())

	got := map[string]int{}
	var order []string
	for _, s := range res.Summary {
		got[s.Number] = s.Count
		order = append(order, s.Number)
	}
	assert.Equal(t, map[string]int{"3001234567": 3, "3220000000": 2, "3110000000": 1}, got)
	assert.Equal(t, []string{"3001234567", "3220000000", "3110000000"}, order)
}

func TestRunLooseNumbers(t *testing.T) {
	fr := frame(t, []string{"A Number", "Start Time"},
		[]string{"3.001234567E9", "2023-03-15 10:00:00"},
		[]string{"0092-300-1234567", "2023-03-15 11:00:00"},
	)
	res, err := Run(fr, Options{Window: nineToFive(t), Location: time.UTC})
	require.NoError(t, err)
	require.Len(t, res.Summary, 1)
	assert.Equal(t, "3001234567", res.Summary[0].Number)
	assert.Equal(t, 2, res.Summary[0].Count)
}

func TestRunNoMatch(t *testing.T) {
	fr := frame(t, []string{"A Number", "Start Time"},
		[]string{"3001234567", "2023-03-15 08:00:00"},
		[]string{"3001234567", "not a date"},
	)
	_, err := Run(fr, Options{Window: nineToFive(t), Location: time.UTC})
	var nm *NoMatchError
	require.True(t, errors.As(err, &nm))
	assert.Contains(t, err.Error(), "09:00 AM - 05:00 PM")
}

func TestRunReversedWindowMatchesNothing(t *testing.T) {
	w, err := ParseWindow("10:00", "PM", "02:00", "AM")
	require.NoError(t, err)

	fr := frame(t, []string{"A Number", "Start Time"},
		[]string{"3001234567", "2023-03-15 23:00:00"},
		[]string{"3001234567", "2023-03-16 01:00:00"},
	)
	_, err = Run(fr, Options{Window: w, Location: time.UTC})
	var nm *NoMatchError
	require.True(t, errors.As(err, &nm))
	assert.False(t, errors.Is(err, ErrInvalidWindow))
}

func TestRunMissingColumns(t *testing.T) {
	fr := frame(t, []string{"A Number", "Start Time"}, []string{"3001234567", "2023-03-15 10:00:00"})
	_, err := Run(fr, Options{Window: nineToFive(t), IncludeB: true})
	var mc *headers.MissingColumnError
	require.True(t, errors.As(err, &mc))
	assert.Equal(t, headers.BNumber, mc.Field)

	fr = frame(t, []string{"B Number", "Start Time"}, []string{"3001234567", "2023-03-15 10:00:00"})
	_, err = Run(fr, Options{Window: nineToFive(t)})
	require.True(t, errors.As(err, &mc))
	assert.Equal(t, headers.ANumber, mc.Field)
}

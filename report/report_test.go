package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jalad-shrimali/cdr-analyzer/aggregate"
	"github.com/jalad-shrimali/cdr-analyzer/enrich"
	"github.com/jalad-shrimali/cdr-analyzer/geofence"
	"github.com/jalad-shrimali/cdr-analyzer/sheet"
)

func spanOf(ts ...time.Time) aggregate.Span {
	var s aggregate.Span
	for _, t := range ts {
		s.Observe(t)
	}
	return s
}

func reopen(t *testing.T, buf *bytes.Buffer) *excelize.File {
	t.Helper()
	x, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	t.Cleanup(func() { x.Close() })
	return x
}

func sampleAnalysis() Analysis {
	d1 := time.Date(2023, 3, 15, 12, 0, 0, 0, time.UTC)
	d2 := time.Date(2023, 3, 15, 14, 24, 0, 0, time.UTC)
	return Analysis{
		Result: aggregate.Result{
			Numbers: []aggregate.NumberStat{
				{Number: "3001234567", Count: 2, Span: spanOf(d1, d2), Tally: aggregate.Tally{InCall: 1, OutCall: 1}},
				{Number: "3117654321", Count: 1, Tally: aggregate.Tally{OutSMS: 1}},
			},
			IMEIs: []aggregate.KeyStat{{Key: "356789012345678", Count: 3, Span: spanOf(d1)}},
		},
		Enrichment: []enrich.Record{{Name: "Ali Khan", CNIC: "35202-1234567-1", Address: "Lahore", CallerNames: "Ali | Ali K"}},
		Lookup:     true,
		CallerID:   true,
		Raw: &sheet.Frame{
			Header: []string{"B Number", "Start Time", "Call Duration", "Site Address"},
			Rows: [][]sheet.Cell{
				{sheet.Classify("923001234567"), sheet.Classify("45000.5"), sheet.Classify("45000.5"), sheet.Classify(strings.Repeat("x", 80))},
				{sheet.Classify("03117654321"), sheet.Classify("garbage")},
			},
		},
	}
}

func TestAnalysisSheets(t *testing.T) {
	buf, err := WriteAnalysis(sampleAnalysis())
	require.NoError(t, err)
	x := reopen(t, buf)

	assert.Equal(t, []string{SheetNumbers, SheetCallLogs, SheetIMEIs, SheetRaw}, x.GetSheetList(),
		"no address data, no address sheet")
	assert.Equal(t, 0, x.GetActiveSheetIndex())
}

func TestAnalysisNumbersSheet(t *testing.T) {
	buf, err := WriteAnalysis(sampleAnalysis())
	require.NoError(t, err)
	rows, err := reopen(t, buf).GetRows(SheetNumbers)
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"S#", "Mobile Number", "Count", "First Seen", "Last Seen", "Name", "CNIC", "Address", "Caller ID Names"}, rows[0])
	assert.Equal(t, []string{"1", "3001234567", "2", "2023-03-15 12:00:00", "2023-03-15 14:24:00", "Ali Khan", "35202-1234567-1", "Lahore", "Ali | Ali K"}, rows[1])
	// no enrichment record and no timestamps: trailing cells stay empty
	assert.Equal(t, []string{"2", "3117654321", "1"}, rows[2])
}

func TestAnalysisWithoutEnrichmentColumns(t *testing.T) {
	a := sampleAnalysis()
	a.Lookup, a.CallerID = false, false
	buf, err := WriteAnalysis(a)
	require.NoError(t, err)
	rows, err := reopen(t, buf).GetRows(SheetNumbers)
	require.NoError(t, err)
	assert.Equal(t, []string{"S#", "Mobile Number", "Count", "First Seen", "Last Seen"}, rows[0])
}

func TestAnalysisCallLogs(t *testing.T) {
	buf, err := WriteAnalysis(sampleAnalysis())
	require.NoError(t, err)
	rows, err := reopen(t, buf).GetRows(SheetCallLogs)
	require.NoError(t, err)
	assert.Equal(t, []string{"S#", "Mobile Number", "Total", "Incoming Calls", "Outgoing Calls", "Incoming SMS", "Outgoing SMS", "First Seen", "Last Seen"}, rows[0])
	assert.Equal(t, []string{"1", "3001234567", "2", "1", "1", "0", "0", "2023-03-15 12:00:00", "2023-03-15 14:24:00"}, rows[1])
	assert.Equal(t, []string{"2", "3117654321", "1", "0", "0", "0", "1"}, rows[2])
}

func TestAnalysisCleanedRaw(t *testing.T) {
	buf, err := WriteAnalysis(sampleAnalysis())
	require.NoError(t, err)
	x := reopen(t, buf)
	rows, err := x.GetRows(SheetRaw)
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, " 923001234567", rows[1][0], "long digit strings are guarded")
	assert.Equal(t, "2023-03-15 12:00:00", rows[1][1], "date column reformatted")
	assert.Equal(t, "45000.5", rows[1][2], "duration column left alone")
	assert.Equal(t, " 03117654321", rows[2][0])
	assert.Equal(t, "garbage", rows[2][1], "unparseable dates kept")

	w, err := x.GetColWidth(SheetRaw, "D")
	require.NoError(t, err)
	assert.Equal(t, float64(maxColWidth), w)
	w, err = x.GetColWidth(SheetRaw, "C")
	require.NoError(t, err)
	assert.Equal(t, float64(minColWidth), w)
}

func TestHeaderStyling(t *testing.T) {
	buf, err := WriteAnalysis(sampleAnalysis())
	require.NoError(t, err)
	x := reopen(t, buf)

	hdr, err := x.GetCellStyle(SheetNumbers, "A1")
	require.NoError(t, err)
	body, err := x.GetCellStyle(SheetNumbers, "B2")
	require.NoError(t, err)
	assert.NotEqual(t, hdr, body)

	s, err := x.GetStyle(hdr)
	require.NoError(t, err)
	require.NotNil(t, s.Font)
	assert.True(t, s.Font.Bold)
	require.NotNil(t, s.Alignment)
	assert.Equal(t, "center", s.Alignment.Horizontal)

	s, err = x.GetStyle(body)
	require.NoError(t, err)
	require.NotNil(t, s.Alignment)
	assert.Equal(t, "center", s.Alignment.Horizontal)
}

func TestGeofenceWorkbook(t *testing.T) {
	d1 := time.Date(2023, 3, 15, 9, 1, 0, 0, time.UTC)
	res := &geofence.Result{
		Header: []string{"A Number", "Start Time"},
		Rows: [][]sheet.Cell{
			{sheet.Classify("3001234567"), sheet.Classify("2023-03-15 09:01:00")},
		},
		Summary: []geofence.Summary{{Number: "3001234567", Count: 4, Span: spanOf(d1)}},
	}
	buf, err := WriteGeofence(res)
	require.NoError(t, err)
	x := reopen(t, buf)

	assert.Equal(t, []string{SheetGeofence}, x.GetSheetList())
	rows, err := x.GetRows(SheetGeofence)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"A Number", "Start Time", "", "S#", "Mobile Number", "Total Count", "First Seen", "Last Seen"}, rows[0])
	assert.Equal(t, []string{"3001234567", "2023-03-15 09:01:00", "", "1", "3001234567", "4", "2023-03-15 09:01:00", "2023-03-15 09:01:00"}, rows[1])

	raw, err := x.GetCellStyle(SheetGeofence, "A1")
	require.NoError(t, err)
	sum, err := x.GetCellStyle(SheetGeofence, "D1")
	require.NoError(t, err)
	assert.NotEqual(t, raw, sum, "summary header is styled apart")
}

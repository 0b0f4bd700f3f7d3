package sheet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		in   string
		kind Kind
		str  string
	}{
		{"", Empty, ""},
		{"   ", Empty, ""},
		{"03001234567", Text, "03001234567"},
		{"+923001234567", Text, "+923001234567"},
		{"3001234567", Number, "3001234567"},
		{"45000.5", Number, "45000.5"},
		{"0.25", Number, "0.25"},
		{"3.0012345678E11", Number, "300123456780"},
		{"3520112345678901", Text, "3520112345678901"},
		{"NaN", Text, "NaN"},
		{"Incoming Call", Text, "Incoming Call"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c := Classify(tt.in)
			assert.Equal(t, tt.kind, c.Kind)
			assert.Equal(t, tt.str, c.String())
		})
	}
}

func TestReadCSV(t *testing.T) {
	data := "\xef\xbb\xbfCall Detail Record\n\nS#,B Number,Start Time\n1,03001234567,45000.5\n,,\n2,923001234567,15/03/2023 14:00:00\n"
	tbl, err := Read(strings.NewReader(data), "export.csv")
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 5, "encoding/csv skips empty lines")
	assert.Equal(t, "Call Detail Record", tbl.Rows[0][0].String())

	fr, err := tbl.Frame(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"S#", "B Number", "Start Time"}, fr.Header)
	require.Len(t, fr.Rows, 2, "blank rows are dropped")
	assert.Equal(t, Text, At(fr.Rows[0], 1).Kind)
	assert.Equal(t, Number, At(fr.Rows[0], 2).Kind)
	assert.Equal(t, Empty, At(fr.Rows[0], 9).Kind)
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"B Number", "Start Time", "IMEI"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"03001234567", 45000.5, "356789012345678"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{3001234567, 45000.75, ""}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	tbl, err := Read(&buf, "upload.bin")
	require.NoError(t, err)
	assert.Equal(t, "Sheet1", tbl.Sheet)

	fr, err := tbl.Frame(0)
	require.NoError(t, err)
	require.Len(t, fr.Rows, 2)
	assert.Equal(t, "03001234567", At(fr.Rows[0], 0).String())
	assert.Equal(t, Number, At(fr.Rows[0], 1).Kind)
	assert.InDelta(t, 45000.5, At(fr.Rows[0], 1).Num, 1e-9)
	assert.Equal(t, "356789012345678", At(fr.Rows[0], 2).String())
	assert.Equal(t, "3001234567", At(fr.Rows[1], 0).String())
}

func TestReadEmpty(t *testing.T) {
	_, err := Read(strings.NewReader("  \n"), "x.csv")
	assert.ErrorIs(t, err, ErrEmptyFile)

	tbl, err := Read(strings.NewReader("B Number,Start Time\n"), "x.csv")
	require.NoError(t, err)
	_, err = tbl.Frame(0)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestReadLegacyXLS(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1}), "old.xls")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFrameNamesBlankHeaders(t *testing.T) {
	tbl := &Table{Rows: [][]Cell{
		{TextCell("B Number"), {}, TextCell("Date")},
		{TextCell("3001234567"), TextCell("x"), NumberCell(45000)},
	}}
	fr, err := tbl.Frame(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"B Number", "Column 2", "Date"}, fr.Header)
}

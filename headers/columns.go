// Package headers finds the real header row of a CDR export and maps the
// semantic fields the pipeline needs to whatever the operator called them.
package headers

import (
	"embed"
	"encoding/csv"
	"fmt"
	"regexp"
	"strings"
)

// Field is a semantic CDR column.
type Field string

const (
	BNumber   Field = "bnumber"
	ANumber   Field = "anumber"
	Date      Field = "date"
	Type      Field = "type"
	Direction Field = "direction"
	Address   Field = "address"
	IMEI      Field = "imei"
	CellID    Field = "cellid"
)

var labels = map[Field]string{
	BNumber:   "B-party number",
	ANumber:   "A-party number",
	Date:      "date/time",
	Type:      "call type",
	Direction: "call direction",
	Address:   "site address",
	IMEI:      "IMEI",
	CellID:    "cell ID",
}

// Label is the human name used in error messages.
func (f Field) Label() string {
	if l, ok := labels[f]; ok {
		return l
	}
	return string(f)
}

/* ──────────── synonym table (data/synonyms.csv) ──────────── */

//go:embed data/synonyms.csv
var dataFS embed.FS

// synonyms keeps aliases per field in file order.
var synonyms = map[Field][]string{}

func init() {
	f, err := dataFS.Open("data/synonyms.csv")
	if err != nil {
		panic(fmt.Errorf("synonym table missing: %w", err))
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		panic(fmt.Errorf("synonym table unreadable: %w", err))
	}
	for i, r := range rows {
		if i == 0 || len(r) < 2 {
			continue
		}
		field := Field(norm(r[0]))
		synonyms[field] = append(synonyms[field], strings.TrimSpace(r[1]))
	}
}

// candidates returns the known header names for a field.
func candidates(f Field) []string {
	return append([]string(nil), synonyms[f]...)
}

var spaceRE = regexp.MustCompile(`\s+`)

func norm(s string) string { return spaceRE.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ") }

/* ──────────── column lookup ──────────── */

// Column is a resolved header: its text and position.
type Column struct {
	Name  string
	Index int
}

// FindColumn returns the first header (left to right) equal to any candidate,
// ignoring case and surrounding/duplicate whitespace. nil means not found.
func FindColumn(header []string, names []string) *Column {
	want := make(map[string]bool, len(names))
	for _, c := range names {
		want[norm(c)] = true
	}
	for i, h := range header {
		if want[norm(h)] {
			return &Column{Name: h, Index: i}
		}
	}
	return nil
}

// ColumnMap is the resolved schema of one upload; nil fields are absent.
type ColumnMap struct {
	BNumber   *Column
	ANumber   *Column
	Date      *Column
	Type      *Column
	Direction *Column
	Address   *Column
	IMEI      *Column
	CellID    *Column
}

// Get returns the column bound to f.
func (m ColumnMap) Get(f Field) *Column {
	switch f {
	case BNumber:
		return m.BNumber
	case ANumber:
		return m.ANumber
	case Date:
		return m.Date
	case Type:
		return m.Type
	case Direction:
		return m.Direction
	case Address:
		return m.Address
	case IMEI:
		return m.IMEI
	case CellID:
		return m.CellID
	}
	return nil
}

// MissingColumnError names a required field the header row did not provide.
type MissingColumnError struct {
	Field Field
}

func (e *MissingColumnError) Error() string {
	hint := ""
	if c := candidates(e.Field); len(c) > 0 {
		hint = fmt.Sprintf(" (expected a header such as %q)", c[0])
	}
	return fmt.Sprintf("required column not found: %s%s", e.Field.Label(), hint)
}

// Resolve maps every known field against header once. The first missing
// required field is reported as a *MissingColumnError.
func Resolve(header []string, required ...Field) (ColumnMap, error) {
	m := ColumnMap{
		BNumber:   FindColumn(header, synonyms[BNumber]),
		ANumber:   FindColumn(header, synonyms[ANumber]),
		Date:      FindColumn(header, synonyms[Date]),
		Type:      FindColumn(header, synonyms[Type]),
		Direction: FindColumn(header, synonyms[Direction]),
		Address:   FindColumn(header, synonyms[Address]),
		IMEI:      FindColumn(header, synonyms[IMEI]),
		CellID:    FindColumn(header, synonyms[CellID]),
	}
	for _, f := range required {
		if m.Get(f) == nil {
			return m, &MissingColumnError{Field: f}
		}
	}
	return m, nil
}

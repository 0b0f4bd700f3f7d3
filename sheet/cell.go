package sheet

import (
	"strconv"
	"strings"
	"time"
)

// Kind is the closed set of values a spreadsheet cell can hold once read.
type Kind uint8

const (
	Empty Kind = iota
	Text
	Number
	Date
)

// Cell is one typed spreadsheet value. Kind decides which field is meaningful.
type Cell struct {
	Kind Kind
	Raw  string
	Num  float64
	Time time.Time
}

// maxExactDigits is the longest digit run a float64 holds without loss.
const maxExactDigits = 15

func TextCell(s string) Cell { return Cell{Kind: Text, Raw: s} }

func NumberCell(f float64) Cell {
	return Cell{Kind: Number, Raw: strconv.FormatFloat(f, 'f', -1, 64), Num: f}
}

// Classify decides the kind of a raw cell string. Values that would lose
// information as a float (leading zeros, a plus sign, long digit runs) stay
// text so phone numbers and IMEIs survive untouched.
func Classify(raw string) Cell {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Cell{Kind: Empty, Raw: raw}
	}
	if keepAsText(s) {
		return TextCell(raw)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return TextCell(raw)
	}
	return NumberCell(f)
}

func keepAsText(s string) bool {
	if s[0] == '+' {
		return true
	}
	if len(s) > 1 && s[0] == '0' && s[1] != '.' {
		return true
	}
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	if n > maxExactDigits && !strings.ContainsAny(s, "eE") {
		return true
	}
	// NaN, Inf and friends parse as floats; they are words in a CDR.
	lower := strings.ToLower(s)
	return strings.Contains(lower, "n") || strings.Contains(lower, "x")
}

// IsEmpty reports whether the cell carries no value.
func (c Cell) IsEmpty() bool {
	return c.Kind == Empty || (c.Kind == Text && strings.TrimSpace(c.Raw) == "")
}

// String renders the cell as text. Numbers never use exponent notation.
func (c Cell) String() string {
	switch c.Kind {
	case Text:
		return strings.TrimSpace(c.Raw)
	case Number:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case Date:
		if c.Time.IsZero() {
			return ""
		}
		return c.Time.Format("2006-01-02 15:04:05")
	}
	return ""
}

package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jalad-shrimali/cdr-analyzer/sheet"
)

// DisplayLayout is the fixed format written back into reports.
const DisplayLayout = "2006-01-02 15:04:05"

// maxSerial is 9999-12-31 in the 1900 date system.
const maxSerial = 2958465

// Day-first forms are listed before month-first ones; operators here export D/M/Y.
var textLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006 3:04:05 PM",
	"2/1/2006 3:04 PM",
	"2/1/2006",
	"2-1-2006 15:04:05",
	"2-1-2006 15:04",
	"2-1-2006",
	"2-Jan-2006 15:04:05",
	"2-Jan-2006 3:04:05 PM",
	"2-Jan-06 15:04:05",
	"2-Jan-06 3:04:05 PM",
	"2-Jan-2006",
	"2 Jan 2006 15:04:05",
	"Jan 2, 2006 3:04:05 PM",
}

// ParseCell decodes a date/time cell into a naive wall-clock time (UTC location).
// ok is false when the value carries no usable date.
func ParseCell(c sheet.Cell) (time.Time, bool) {
	return ParseCellIn(c, time.UTC)
}

// ParseCellIn is ParseCell with the wall clock placed in loc, so the hour and
// minute fields match what the spreadsheet displayed whatever the server zone.
func ParseCellIn(c sheet.Cell, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	switch c.Kind {
	case sheet.Date:
		return c.Time, !c.Time.IsZero()
	case sheet.Number:
		return FromSerial(c.Num, loc)
	case sheet.Text:
		s := strings.TrimSpace(c.Raw)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range textLayouts {
			if t, err := time.ParseInLocation(layout, s, loc); err == nil {
				return t, true
			}
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return FromSerial(f, loc)
		}
		return ParseText(s, loc)
	}
	return time.Time{}, false
}

// FromSerial decodes a spreadsheet serial number. The integer part is the day
// (1900 system, leap-year quirk included); the fraction is the time of day,
// rounded to the nearest second.
func FromSerial(v float64, loc *time.Location) (time.Time, bool) {
	if math.IsNaN(v) || v <= 0 || v > maxSerial {
		return time.Time{}, false
	}
	whole := math.Floor(v)
	day, err := excelize.ExcelDateToTime(whole, false)
	if err != nil {
		return time.Time{}, false
	}
	secs := int(math.Round((v - whole) * 86400))
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, 0, secs, 0, loc), true
}

/* ──────────── free-text fallback ──────────── */

var tokenRE = regexp.MustCompile(`[0-9]+|[A-Za-z]+`)

var monthNames = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"may": time.May, "jun": time.June, "jul": time.July, "aug": time.August,
	"sep": time.September, "oct": time.October, "nov": time.November, "dec": time.December,
}

type numTok struct {
	v   int
	len int
}

// ParseText is the last-resort tokenizer for free-text dates such as
// "15.3.2023 2:05 pm" or "2023 Mar 15 14:05". A token above 31 (or four
// digits long) is the year; day and month are told apart by whichever
// exceeds 12, defaulting to day-first.
func ParseText(s string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	var (
		nums   []numTok
		month  time.Month
		am, pm bool
	)
	for _, tok := range tokenRE.FindAllString(s, -1) {
		if tok[0] >= '0' && tok[0] <= '9' {
			v, err := strconv.Atoi(tok)
			if err != nil {
				return time.Time{}, false
			}
			nums = append(nums, numTok{v, len(tok)})
			continue
		}
		l := strings.ToLower(tok)
		switch {
		case l == "am":
			am = true
		case l == "pm":
			pm = true
		case len(l) >= 3 && month == 0:
			if m, ok := monthNames[l[:3]]; ok {
				month = m
			}
		}
	}

	var y, mo, d int
	var rest []numTok
	if month != 0 {
		if len(nums) < 2 {
			return time.Time{}, false
		}
		a, b := nums[0], nums[1]
		if isYear(a) {
			y, d = a.v, b.v
		} else {
			d, y = a.v, b.v
		}
		mo = int(month)
		rest = nums[2:]
	} else {
		if len(nums) < 3 {
			return time.Time{}, false
		}
		a, b, c := nums[0], nums[1], nums[2]
		if isYear(a) {
			y, mo, d = a.v, b.v, c.v
		} else {
			y = c.v
			switch {
			case a.v > 12:
				d, mo = a.v, b.v
			case b.v > 12:
				mo, d = a.v, b.v
			default:
				d, mo = a.v, b.v
			}
		}
		rest = nums[3:]
	}
	if y < 100 {
		y += 2000
	}

	var clock [3]int
	for i := 0; i < len(rest) && i < 3; i++ {
		clock[i] = rest[i].v
	}
	h, mi, sec := clock[0], clock[1], clock[2]
	if pm && h < 12 {
		h += 12
	}
	if am && h == 12 {
		h = 0
	}

	if mo < 1 || mo > 12 || d < 1 || d > 31 || h > 23 || mi > 59 || sec > 59 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(mo), d, h, mi, sec, 0, loc)
	if t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

func isYear(n numTok) bool { return n.v > 31 || n.len == 4 }

// FormatDisplay renders t in DisplayLayout.
func FormatDisplay(t time.Time) string { return t.Format(DisplayLayout) }

// MinuteOfDay returns hour*60+minute of t's wall clock.
func MinuteOfDay(t time.Time) int { return t.Hour()*60 + t.Minute() }

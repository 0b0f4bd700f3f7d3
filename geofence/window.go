// Package geofence filters a CDR to the calls placed inside a time-of-day
// window and summarises the numbers active in it.
package geofence

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidWindow is returned for clock values that cannot be parsed.
var ErrInvalidWindow = errors.New("invalid time window")

// Window is an inclusive minute-of-day range. Start > End is kept as given
// and matches nothing; windows do not wrap past midnight.
type Window struct {
	Start int
	End   int
}

// Contains reports whether minute m (0..1439) lies in the window.
func (w Window) Contains(m int) bool { return w.Start <= m && m <= w.End }

func (w Window) String() string { return clock(w.Start) + " - " + clock(w.End) }

func clock(m int) string {
	h, mm := m/60, m%60
	period := "AM"
	if h >= 12 {
		period = "PM"
	}
	h %= 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%02d:%02d %s", h, mm, period)
}

// ParseWindow builds a Window from "hh:mm" clocks and AM/PM periods. An empty
// period reads the clock as 24-hour.
func ParseWindow(fromTime, fromPeriod, toTime, toPeriod string) (Window, error) {
	start, err := minutes(fromTime, fromPeriod)
	if err != nil {
		return Window{}, fmt.Errorf("%w: from %q %q: %v", ErrInvalidWindow, fromTime, fromPeriod, err)
	}
	end, err := minutes(toTime, toPeriod)
	if err != nil {
		return Window{}, fmt.Errorf("%w: to %q %q: %v", ErrInvalidWindow, toTime, toPeriod, err)
	}
	return Window{Start: start, End: end}, nil
}

func minutes(clock, period string) (int, error) {
	hs, ms, ok := strings.Cut(strings.TrimSpace(clock), ":")
	if !ok {
		return 0, errors.New("expected hh:mm")
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return 0, errors.New("bad hour")
	}
	m, err := strconv.Atoi(ms)
	if err != nil || len(ms) != 2 || m < 0 || m > 59 {
		return 0, errors.New("bad minute")
	}

	switch strings.ToUpper(strings.TrimSpace(period)) {
	case "":
		if h < 0 || h > 23 {
			return 0, errors.New("hour out of range")
		}
	case "AM":
		if h < 1 || h > 12 {
			return 0, errors.New("hour out of range")
		}
		h %= 12
	case "PM":
		if h < 1 || h > 12 {
			return 0, errors.New("hour out of range")
		}
		h = h%12 + 12
	default:
		return 0, errors.New("period must be AM or PM")
	}
	return h*60 + m, nil
}

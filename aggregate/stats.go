package aggregate

import (
	"time"

	"github.com/jalad-shrimali/cdr-analyzer/normalize"
)

// Span is an optional first/last timestamp pair. The zero value has seen nothing.
type Span struct {
	First time.Time
	Last  time.Time
	valid bool
}

// Observe widens the span to include t.
func (s *Span) Observe(t time.Time) {
	if !s.valid {
		s.First, s.Last, s.valid = t, t, true
		return
	}
	if t.Before(s.First) {
		s.First = t
	}
	if t.After(s.Last) {
		s.Last = t
	}
}

// Valid reports whether any timestamp was observed.
func (s Span) Valid() bool { return s.valid }

// Tally is the per-number call/SMS breakdown.
type Tally struct {
	InSMS   int
	OutSMS  int
	InCall  int
	OutCall int
}

func (t *Tally) Add(ct normalize.CallType) {
	switch ct {
	case normalize.InSMS:
		t.InSMS++
	case normalize.OutSMS:
		t.OutSMS++
	case normalize.InCall:
		t.InCall++
	case normalize.OutCall:
		t.OutCall++
	}
}

func (t Tally) Total() int { return t.InSMS + t.OutSMS + t.InCall + t.OutCall }

// NumberStat aggregates one canonical B-party number.
type NumberStat struct {
	Number string
	Count  int
	Span   Span
	Tally  Tally
}

// KeyStat aggregates one address or IMEI string.
type KeyStat struct {
	Key   string
	Count int
	Span  Span
}

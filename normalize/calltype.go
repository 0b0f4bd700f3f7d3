package normalize

import (
	"regexp"
	"strings"
)

// CallType is the tally bucket a CDR row contributes to.
type CallType string

const (
	CallUnknown CallType = ""
	InSMS       CallType = "inSms"
	OutSMS      CallType = "outSms"
	InCall      CallType = "inCall"
	OutCall     CallType = "outCall"
)

/* ──────────── keyword tables (checked in this order) ──────────── */

// Keywords are compared after collapse, so "sms-mo", "SMS/MO" and "sms mo"
// are the same key. No keyword of a later bucket may contain one of an
// earlier bucket, or the earlier bucket would always win.
var callTypeKeywords = []struct {
	kind     CallType
	keywords []string
}{
	{InSMS, []string{
		"incoming sms", "sms incoming", "sms in", "in sms", "sms-mt", "mt-sms",
		"sms_mt", "sms received", "sms terminated",
	}},
	{OutSMS, []string{
		"outgoing sms", "sms outgoing", "sms out", "out sms", "sms-mo", "mo-sms",
		"sms_mo", "sms sent", "sms originated",
	}},
	{InCall, []string{
		"incoming call", "call incoming", "incoming", "call in", "in call", "voice in",
		"mtc", "mt", "a_in", "received", "terminated",
	}},
	{OutCall, []string{
		"outgoing call", "call outgoing", "outgoing", "call out", "out call", "voice out",
		"moc", "mo", "a_out", "out", "dialed", "originated",
	}},
}

// exactCallTypes are keys too short to match as substrings ("in" sits inside
// "outgoing").
var exactCallTypes = map[string]CallType{
	"in": InCall,
}

var separatorRE = regexp.MustCompile(`[^a-z0-9]+`)

// collapse lowercases s and drops every non-alphanumeric character.
func collapse(s string) string {
	return separatorRE.ReplaceAllString(strings.ToLower(s), "")
}

type compiledKeywords struct {
	kind     CallType
	patterns []string
}

var compiledCallTypes = func() []compiledKeywords {
	out := make([]compiledKeywords, 0, len(callTypeKeywords))
	for _, set := range callTypeKeywords {
		c := compiledKeywords{kind: set.kind}
		seen := map[string]bool{}
		for _, kw := range set.keywords {
			p := collapse(kw)
			if !seen[p] {
				seen[p] = true
				c.patterns = append(c.patterns, p)
			}
		}
		out = append(out, c)
	}
	return out
}()

// ClassifyCallType maps a free-text call type (usually direction and type
// joined with a space) to a tally bucket. Keywords match as substrings of the
// collapsed text, SMS buckets first, so "IncomingSMS", "VOICE/MO" and
// "Voice(MT)" all classify.
func ClassifyCallType(text string) CallType {
	t := collapse(text)
	if t == "" {
		return CallUnknown
	}
	for _, set := range compiledCallTypes {
		for _, p := range set.patterns {
			if strings.Contains(t, p) {
				return set.kind
			}
		}
	}
	if ct, ok := exactCallTypes[t]; ok {
		return ct
	}
	return CallUnknown
}

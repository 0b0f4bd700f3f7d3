// Package normalize holds the leaf helpers shared by the CDR analyzer and the
// geo-fencing job: phone canonicalisation, call-type classification and
// spreadsheet date decoding.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	nonDigit = regexp.MustCompile(`\D`)
	sciRE    = regexp.MustCompile(`^[+-]?\d+(\.\d+)?[eE][+-]?\d+$`)
)

func digits(s string) string { return nonDigit.ReplaceAllString(s, "") }

// valid reports whether d is a canonical local mobile number: 10 digits, leading 3.
func valid(d string) bool { return len(d) == 10 && d[0] == '3' }

// Phone canonicalises a B-party value to the 10-digit local form (3XXXXXXXXX).
// 923XXXXXXXXX and 03XXXXXXXXX are accepted; anything else is rejected.
func Phone(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, ".0")
	d := digits(s)

	switch {
	case len(d) == 12 && strings.HasPrefix(d, "923"):
		d = d[2:]
	case len(d) == 11 && strings.HasPrefix(d, "03"):
		d = d[1:]
	}
	if !valid(d) {
		return "", false
	}
	return d, true
}

// PhoneLoose is the permissive variant used for A/B parties in geo-fencing.
// Scientific-notation cells are expanded first, then 92 and 0 prefixes are
// peeled off until the number is 10 digits long.
func PhoneLoose(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if sciRE.MatchString(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			s = strconv.FormatFloat(f, 'f', 0, 64)
		}
	}
	s = strings.TrimSuffix(s, ".0")
	d := digits(s)

	for len(d) > 10 {
		switch {
		case strings.HasPrefix(d, "92"):
			d = d[2:]
		case strings.HasPrefix(d, "0"):
			d = d[1:]
		default:
			return "", false
		}
	}
	if !valid(d) {
		return "", false
	}
	return d, true
}

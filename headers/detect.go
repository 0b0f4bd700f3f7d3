package headers

import "strings"

// MaxScanRows bounds how far DetectHeaderRow looks for the header.
const MaxScanRows = 20

// minKeywordHits is how many cells must look like header text.
const minKeywordHits = 2

var headerKeywords = []string{
	"call", "type", "msisdn", "bnumber", "a number", "imei", "start", "end", "party",
}

// DetectHeaderRow returns the index and content of the first row (within the
// first MaxScanRows) in which at least two cells contain a header keyword.
// Title banners and blank lines above the header are skipped this way; when
// nothing qualifies, row 0 is assumed.
func DetectHeaderRow(rows [][]string) (int, []string) {
	for i, row := range rows {
		if i >= MaxScanRows {
			break
		}
		if keywordHits(row) >= minKeywordHits {
			return i, row
		}
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return 0, rows[0]
}

func keywordHits(row []string) int {
	hits := 0
	for _, cell := range row {
		c := strings.ToLower(cell)
		if c == "" {
			continue
		}
		for _, kw := range headerKeywords {
			if strings.Contains(c, kw) {
				hits++
				break
			}
		}
	}
	return hits
}

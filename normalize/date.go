package normalize

import "regexp"

// datePatterns are tried in order; the first match wins. Conflicting dates
// further down the list are never consulted.
var datePatterns = []*regexp.Regexp{
	// closing formula: "Sala das Sessões, 10 de maio de 2020"
	regexp.MustCompile(`(?i)Sala das Sessões,?\s*(\d{1,2}\s+de\s+[\p{L}\p{N}_]+\s+de\s+\d{4})`),
	// filing header: "PROJETO DE LEI 01-00123/2020 DE 10/05/2020"
	regexp.MustCompile(`(?i)PROJETO DE LEI.*?DE\s+(\d{2}/\d{2}/\d{4})`),
	// autuação stamp: "autuado por Fulano em 10/05/2020"
	regexp.MustCompile(`(?i)autuado por .*? em\s+(\d{2}/\d{2}/\d{4})`),
}

// PresentationDate returns the first date found by the ordered heuristics,
// or the empty string when none matches.
func PresentationDate(raw string) string {
	for _, re := range datePatterns {
		if m := re.FindStringSubmatch(raw); m != nil {
			return m[1]
		}
	}
	return ""
}

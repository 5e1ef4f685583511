package normalize

import (
	"regexp"
	"strings"
)

// DefaultNoise removes letterhead, filing stamps, page numbers, typographic
// glyphs and administrative codes. The patterns target disjoint text, so
// their order does not matter.
var DefaultNoise = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^\s*Palácio Anchieta.*$`),
	regexp.MustCompile(`(?im)^\s*PROJETO DE LEI Nº?.*$`),
	regexp.MustCompile(`(?m)^_+$`),
	regexp.MustCompile(`(?im)Matéria PL .*? conferida em.*$`),
	regexp.MustCompile(`(?im)autuado por .*$`),
	regexp.MustCompile(`(?i)fls\.\s*\d+`),
	regexp.MustCompile(`(?i)Impresso n[oó] .*? da CMSP`),
	regexp.MustCompile("[«»”'´`‘]"),
	regexp.MustCompile(`(?i)cod\.\s*\d+`),
}

var (
	hyphenBreak = regexp.MustCompile(`-\n`)
	lineBreak   = regexp.MustCompile(`\s*\n\s*`)
	spaceRun    = regexp.MustCompile(`\s{2,}`)
)

// Clean deletes every match of the noise patterns from text and trims the result.
func Clean(text string, noise []*regexp.Regexp) string {
	for _, re := range noise {
		text = re.ReplaceAllString(text, "")
	}
	return strings.TrimSpace(text)
}

// Reflow joins hyphenated line wraps, turns the remaining line breaks into
// single spaces and collapses whitespace runs. The result has no line breaks.
func Reflow(text string) string {
	text = hyphenBreak.ReplaceAllString(text, "")
	text = lineBreak.ReplaceAllString(text, " ")
	text = spaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Truncate caps text at max characters (runes, not bytes).
// A max of zero or less disables the cap.
func Truncate(text string, max int) string {
	if max <= 0 {
		return text
	}
	count := 0
	for i := range text {
		if count == max {
			return text[:i]
		}
		count++
	}
	return text
}

package source

import (
	"strconv"
	"strings"
)

// ParsedTitle is the information carried by a title of the form "PL 123/2024".
type ParsedTitle struct {
	Type   string
	Number *int
	Year   *int
}

// ParseTitle splits a title into its type, number and year. The type is the
// first word. Number and year are set only when the second word is exactly
// two integers separated by a slash.
func ParseTitle(title string) ParsedTitle {
	parts := strings.Fields(title)
	if len(parts) == 0 {
		return ParsedTitle{}
	}
	parsed := ParsedTitle{Type: parts[0]}
	if len(parts) < 2 {
		return parsed
	}
	pieces := strings.Split(parts[1], "/")
	if len(pieces) != 2 {
		return parsed
	}
	number, err := strconv.Atoi(pieces[0])
	if err != nil {
		return parsed
	}
	year, err := strconv.Atoi(pieces[1])
	if err != nil {
		return parsed
	}
	parsed.Number = &number
	parsed.Year = &year
	return parsed
}

// titleParts returns the raw type, number and year words of a title without
// requiring them to be numeric. The year is empty when there is no slash.
func titleParts(title string) (typ, number, year string) {
	parts := strings.Fields(title)
	if len(parts) < 2 {
		return "", "", ""
	}
	typ = strings.ToUpper(parts[0])
	number, year, _ = strings.Cut(parts[1], "/")
	return typ, number, year
}

// SplitAuthors splits a comma separated author list. Blank names are dropped.
func SplitAuthors(s string) []string {
	authors := []string{}
	for _, a := range strings.Split(s, ",") {
		if a = strings.TrimSpace(a); a != "" {
			authors = append(authors, a)
		}
	}
	return authors
}

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

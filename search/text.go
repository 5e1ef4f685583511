package search

import "strings"

// Portuguese stop words ignored when checking for verbatim matches
var stopWords = map[string]bool{
	"a": true, "o": true, "as": true, "os": true, "um": true, "uma": true,
	"de": true, "do": true, "da": true, "dos": true, "das": true, "em": true,
	"no": true, "na": true, "nos": true, "nas": true, "ao": true, "aos": true,
	"à": true, "às": true, "por": true, "pelo": true, "pela": true, "pelos": true,
	"pelas": true, "para": true, "com": true, "sem": true, "sobre": true, "entre": true,
	"e": true, "ou": true, "que": true, "se": true, "é": true, "não": true,
	"mais": true, "como": true, "mas": true, "seu": true, "sua": true, "seus": true,
	"suas": true, "ser": true, "este": true, "esta": true, "esse": true, "essa": true,
	"isso": true, "isto": true, "ele": true, "ela": true, "eles": true, "elas": true,
	"num": true, "numa": true, "até": true, "quando": true, "qual": true, "quem": true,
}

// tokenizeAndFilter splits text into words, lowercases, trims punctuation, and removes stop words
func tokenizeAndFilter(text string) []string {
	words := strings.Fields(text)
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}ºª§"))

		if cleaned != "" && !stopWords[cleaned] {
			filtered = append(filtered, cleaned)
		}
	}

	return filtered
}

// containsAllQueryWords checks if all query words (after filtering) appear in the document
func containsAllQueryWords(document, query string) bool {
	queryWords := tokenizeAndFilter(query)
	if len(queryWords) == 0 {
		return false
	}

	docWords := tokenizeAndFilter(document)
	docWordSet := make(map[string]bool, len(docWords))
	for _, word := range docWords {
		docWordSet[word] = true
	}

	for _, qWord := range queryWords {
		if !docWordSet[qWord] {
			return false
		}
	}

	return true
}

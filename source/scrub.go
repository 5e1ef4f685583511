package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"unicode/utf8"
)

// Scrub drops control characters other than newline and carriage return.
// Some dataset exports embed raw control bytes inside string values, which
// the JSON decoder rejects.
func Scrub(raw []byte) []byte {
	if !hasControl(raw) {
		return raw
	}
	out := make([]byte, 0, len(raw))
	for len(raw) > 0 {
		r, size := utf8.DecodeRune(raw)
		if r >= 0x20 || r == '\n' || r == '\r' {
			out = append(out, raw[:size]...)
		}
		raw = raw[size:]
	}
	return out
}

func hasControl(raw []byte) bool {
	for _, b := range raw {
		if b < 0x20 && b != '\n' && b != '\r' {
			return true
		}
	}
	return false
}

// DecodeEntries scrubs raw and decodes it as a JSON array of objects.
// Numbers are kept as json.Number so identifiers survive unchanged.
func DecodeEntries(raw []byte) ([]Entry, error) {
	dec := json.NewDecoder(bytes.NewReader(Scrub(raw)))
	dec.UseNumber()
	var entries []Entry
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	return entries, nil
}

// Entry is one object of a dataset file.
type Entry map[string]any

// String returns the value at key as a string. Missing and null values are
// empty; numbers keep their literal form.
func (e Entry) String(key string) string {
	switch v := e[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// OptString returns the value at key, or nil when it is missing or null.
func (e Entry) OptString(key string) *string {
	if v, ok := e[key]; !ok || v == nil {
		return nil
	}
	s := e.String(key)
	return &s
}

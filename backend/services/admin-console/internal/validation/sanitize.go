package validation

import (
	"regexp"
	"strings"
)

var markupTag = regexp.MustCompile(`<[^<>]*>`)

// SanitizeString strips markup tags, drops stray angle brackets and trims
// surrounding whitespace. The result contains no '<' or '>', so applying it
// twice is the same as applying it once.
func SanitizeString(s string) string {
	s = markupTag.ReplaceAllString(s, "")
	s = strings.NewReplacer("<", "", ">", "").Replace(s)
	return strings.TrimSpace(s)
}

// Sanitize returns a copy of record with every string value sanitized.
// Non-string values are copied unchanged.
func Sanitize(record map[string]any) map[string]any {
	out := make(map[string]any, len(record))
	for k, v := range record {
		switch s := v.(type) {
		case string:
			out[k] = SanitizeString(s)
		default:
			out[k] = v
		}
	}
	return out
}

package summary

import "strings"

// MaxSummaryLength is the longest summary returned, in characters.
const MaxSummaryLength = 100

const ellipsis = "..."

// CleanSummary normalizes a model answer into a single short line: only the
// first line is kept, surrounding quotes and periods are removed and anything
// over MaxSummaryLength characters is cut to fit with an ellipsis.
func CleanSummary(s string) string {
	s = unquote(firstLine(s))
	s = strings.TrimSpace(strings.Trim(s, "."))
	return truncate(s, MaxSummaryLength)
}

// CleanCompletion keeps the first line without surrounding quotes.
func CleanCompletion(s string) string {
	return unquote(firstLine(s))
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func unquote(s string) string {
	s = strings.Trim(s, `"`)
	s = strings.Trim(s, "'")
	return strings.TrimSpace(s)
}

// truncate shortens s to at most limit runes, ending in an ellipsis when cut.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-len(ellipsis)]) + ellipsis
}

// truncatePayload caps the payload text shown to the model.
func truncatePayload(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + ellipsis
}

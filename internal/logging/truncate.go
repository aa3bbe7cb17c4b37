package logging

import (
	"strconv"
	"unicode/utf8"
)

// MaxLogFieldLength bounds string values written to log fields
const MaxLogFieldLength = 256

// MaxLogListItems bounds list values written to log fields
const MaxLogListItems = 10

// Truncate shortens s to at most MaxLogFieldLength bytes
func Truncate(s string) string {
	return TruncateN(s, MaxLogFieldLength)
}

// TruncateN shortens s to at most n bytes, appending "..." when something was
// cut. The cut never splits a multi-byte rune.
func TruncateN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

// TruncateSlice keeps the first maxItems entries and summarizes the rest
func TruncateSlice(items []string, maxItems int) []string {
	if len(items) <= maxItems {
		return items
	}
	out := make([]string, 0, maxItems+1)
	out = append(out, items[:maxItems]...)
	return append(out, "... and "+strconv.Itoa(len(items)-maxItems)+" more")
}

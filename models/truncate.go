package models

import "unicode/utf8"

// TruncateChars caps a string at max characters. Length limits here are
// character counts, not byte counts; slicing bytes could split a rune and
// store invalid UTF-8.
func TruncateChars(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

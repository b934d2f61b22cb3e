// Package cleaner turns raw or rendered HTML into clean text, markdown,
// or structured documents. It is pure: no network access, no browser.
package cleaner

import "strings"

// CleanText normalizes extracted text: trims, collapses all runs of
// whitespace (including newlines) to single spaces.
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

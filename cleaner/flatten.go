package cleaner

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// nonContentSelector matches elements that never carry readable page
// content: executable/styling resources and page chrome.
const nonContentSelector = "script, style, noscript, iframe, svg, nav, header, footer, aside"

// Flatten strips non-content elements from the markup and returns the
// remaining visible text as one whitespace-normalized string. It is the
// static-page counterpart of the live extraction strategies and the
// fallback of last resort: any page with a body yields some text.
//
// On unparseable input the raw text content is returned rather than an
// error, since downstream always needs something to work with.
func Flatten(markup string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return CleanText(markup)
	}

	doc.Find(nonContentSelector).Remove()

	body := doc.Find("body")
	if body.Length() == 0 {
		return CleanText(doc.Text())
	}
	return CleanText(body.Text())
}

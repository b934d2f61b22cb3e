package cleaner

import (
	"log/slog"
	nurl "net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// minContentLength is the minimum TextContent length (in characters)
// for readability output to be considered valid. Below this we assume
// the algorithm failed to locate the main content and fall back to the
// raw markup.
const minContentLength = 50

// ExtractArticle runs the Mozilla Readability algorithm on the markup.
// The second return value reports whether readability succeeded; on any
// failure the raw markup is wrapped into an Article so the pipeline can
// proceed uniformly.
func ExtractArticle(markup string, sourceURL string) (readability.Article, bool) {
	parsedURL, err := nurl.Parse(sourceURL)
	if err != nil {
		slog.Warn("readability: invalid source URL, using raw markup",
			"url", sourceURL, "error", err)
		return rawArticle(markup), false
	}

	article, err := readability.FromReader(strings.NewReader(markup), parsedURL)
	if err != nil {
		slog.Warn("readability: extraction failed, using raw markup",
			"url", sourceURL, "error", err)
		return rawArticle(markup), false
	}

	if len(strings.TrimSpace(article.TextContent)) < minContentLength {
		slog.Warn("readability: extracted content too short, using raw markup",
			"url", sourceURL, "length", len(article.TextContent))
		return rawArticle(markup), false
	}

	return article, true
}

// rawArticle wraps raw markup into an Article.
func rawArticle(markup string) readability.Article {
	return readability.Article{
		Content:     markup,
		TextContent: Flatten(markup),
	}
}

package cleaner

import (
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/use-agent/deepfetch/models"
)

// Cleaner runs the static cleaning pipeline:
//
//	Stage 1 (extract): readability isolates the main content, or the
//	raw markup passes through untouched in "raw" mode.
//	Stage 2 (format):  convert to text, markdown, or HTML.
//
// The markdown converter is created once and reused (goroutine-safe).
type Cleaner struct {
	mdConverter *converter.Converter
}

// NewCleaner initialises the Cleaner with a pre-configured converter.
func NewCleaner() *Cleaner {
	return &Cleaner{mdConverter: newMarkdownConverter()}
}

// Clean extracts and formats content from the raw markup, returning a
// partial FetchResponse (Content, Metadata, Characters filled; timing
// and transport fields are left to the API layer).
func (c *Cleaner) Clean(markup string, sourceURL string, format string, extractMode string) (*models.FetchResponse, error) {
	article, _ := ExtractArticle(markup, sourceURL)
	if extractMode == "raw" {
		article = rawArticle(markup)
	}

	var content string
	switch format {
	case "markdown":
		md, err := ToMarkdown(c.mdConverter, article.Content, sourceURL)
		if err != nil {
			return nil, models.NewExtractError(
				models.ErrCodeExtraction,
				"markdown conversion failed",
				err,
			)
		}
		content = md
	case "html":
		content = article.Content
	default:
		// "text" and anything unknown.
		content = CleanText(article.TextContent)
	}

	return &models.FetchResponse{
		Success: true,
		Content: content,
		Metadata: models.Metadata{
			Title:       article.Title,
			Description: article.Excerpt,
			SiteName:    article.SiteName,
			Author:      article.Byline,
			Language:    article.Language,
			SourceURL:   sourceURL,
		},
		Characters: models.CharacterInfo{
			Original: len(markup),
			Cleaned:  len(content),
		},
	}, nil
}

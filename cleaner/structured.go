package cleaner

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/deepfetch/models"
)

// Caps keep structured output bounded on link-farm pages.
const (
	maxSections      = 10
	maxParagraphs    = 5
	maxLinks         = 20
	maxImages        = 10
	minParagraphLen  = 50
	maxSectionLen    = 1000
)

// contentSelectors are common main-content containers, tried in order
// before falling back to <body>.
var contentSelectors = []string{
	"main", "article", ".main-content", "#main-content",
	".content", "#content", ".post-content", ".entry-content",
}

var headingRe = regexp.MustCompile(`^h[1-6]$`)

// Structure parses the markup into a structured document: metadata,
// heading-bounded sections, substantial paragraphs, links and images
// with absolute URLs.
func Structure(markup string, sourceURL string) (*models.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, err
	}

	out := &models.Document{
		Metadata: models.Metadata{
			Title:     CleanText(doc.Find("title").First().Text()),
			SourceURL: sourceURL,
		},
		Sections:   []models.Section{},
		Paragraphs: []string{},
		Links:      []models.Link{},
		Images:     []models.Image{},
	}
	if desc, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		out.Metadata.Description = CleanText(desc)
	}

	main := findMainContent(doc)

	// Headings and the content that follows each one.
	sections := collectSections(main)
	out.TotalSections = len(sections)
	if len(sections) > maxSections {
		sections = sections[:maxSections]
	}
	out.Sections = sections

	// Substantial paragraphs for a quick summary.
	main.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if text := CleanText(s.Text()); len(text) > minParagraphLen {
			out.Paragraphs = append(out.Paragraphs, text)
		}
		return len(out.Paragraphs) < maxParagraphs
	})

	base, baseErr := url.Parse(sourceURL)

	// Links with absolute URLs, http(s) only.
	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		text := CleanText(s.Text())
		if href == "" || text == "" || baseErr != nil {
			return
		}
		resolved, err := base.Parse(href)
		if err != nil || (resolved.Scheme != "http" && resolved.Scheme != "https") {
			return
		}
		abs := resolved.String()
		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}
		out.TotalLinks++
		if len(out.Links) < maxLinks {
			out.Links = append(out.Links, models.Link{Href: abs, Text: text})
		}
	})

	// Images, skipping data URIs.
	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if src == "" || baseErr != nil {
			return
		}
		resolved, err := base.Parse(src)
		if err != nil || resolved.Scheme == "data" {
			return
		}
		alt, _ := s.Attr("alt")
		out.TotalImages++
		if len(out.Images) < maxImages {
			out.Images = append(out.Images, models.Image{
				Src: resolved.String(),
				Alt: CleanText(alt),
			})
		}
	})

	return out, nil
}

// findMainContent returns the first matching common content container,
// or <body> when none match.
func findMainContent(doc *goquery.Document) *goquery.Selection {
	for _, sel := range contentSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s
		}
	}
	return doc.Find("body")
}

// collectSections walks the headings in the main content area. Each
// section spans from its heading to the next heading of the same or
// higher level, gathering text from content-bearing siblings.
func collectSections(main *goquery.Selection) []models.Section {
	var sections []models.Section

	main.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, heading *goquery.Selection) {
		name := goquery.NodeName(heading)
		level := int(name[1] - '0')

		var parts []string
		for cur := heading.Next(); cur.Length() > 0; cur = cur.Next() {
			curName := goquery.NodeName(cur)
			if headingRe.MatchString(curName) && int(curName[1]-'0') <= level {
				break
			}
			switch curName {
			case "p", "div", "ul", "ol", "blockquote":
				if text := CleanText(cur.Text()); text != "" {
					parts = append(parts, text)
				}
			}
		}

		content := strings.Join(parts, " ")
		if len(content) > maxSectionLen {
			content = content[:maxSectionLen] + "..."
		}

		sections = append(sections, models.Section{
			Level:   level,
			Heading: CleanText(heading.Text()),
			Content: content,
		})
	})

	return sections
}

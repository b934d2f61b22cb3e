package cleaner

import (
	"fmt"
	"strings"
	"testing"
)

func TestStructure_SectionsAndMetadata(t *testing.T) {
	markup := `<html>
	<head>
		<title>Test Page</title>
		<meta name="description" content="A page about things.">
	</head>
	<body><main>
		<h1>Main Heading</h1>
		<p>Intro paragraph under the main heading.</p>
		<h2>Subsection</h2>
		<p>Subsection body text.</p>
		<h1>Second Topic</h1>
		<p>Second topic body.</p>
	</main></body></html>`

	doc, err := Structure(markup, "https://example.com/page")
	if err != nil {
		t.Fatalf("Structure: %v", err)
	}

	if doc.Metadata.Title != "Test Page" {
		t.Errorf("title = %q", doc.Metadata.Title)
	}
	if doc.Metadata.Description != "A page about things." {
		t.Errorf("description = %q", doc.Metadata.Description)
	}
	if doc.TotalSections != 3 {
		t.Fatalf("TotalSections = %d, want 3", doc.TotalSections)
	}

	first := doc.Sections[0]
	if first.Level != 1 || first.Heading != "Main Heading" {
		t.Errorf("first section = %+v", first)
	}
	// The h1 section stops at the next h1, not at the h2 it contains.
	if !strings.Contains(first.Content, "Intro paragraph") {
		t.Errorf("first section content = %q", first.Content)
	}
	if strings.Contains(first.Content, "Second topic body") {
		t.Errorf("section leaked past the next same-level heading: %q", first.Content)
	}
}

func TestStructure_SectionCap(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("<html><body><main>")
	for i := 0; i < 15; i++ {
		fmt.Fprintf(&sb, "<h2>Heading %d</h2><p>body %d</p>", i, i)
	}
	sb.WriteString("</main></body></html>")

	doc, err := Structure(sb.String(), "https://example.com/")
	if err != nil {
		t.Fatalf("Structure: %v", err)
	}
	if doc.TotalSections != 15 {
		t.Errorf("TotalSections = %d, want 15", doc.TotalSections)
	}
	if len(doc.Sections) != 10 {
		t.Errorf("len(Sections) = %d, want capped at 10", len(doc.Sections))
	}
}

func TestStructure_ParagraphThreshold(t *testing.T) {
	long := strings.Repeat("sufficiently long paragraph text ", 3)
	markup := `<html><body>
		<p>short</p>
		<p>` + long + `</p>
	</body></html>`

	doc, err := Structure(markup, "https://example.com/")
	if err != nil {
		t.Fatalf("Structure: %v", err)
	}
	if len(doc.Paragraphs) != 1 {
		t.Fatalf("Paragraphs = %v, want only the substantial one", doc.Paragraphs)
	}
}

func TestStructure_LinksResolvedAndDeduped(t *testing.T) {
	markup := `<html><body>
		<a href="/docs">Docs</a>
		<a href="/docs">Docs again</a>
		<a href="https://other.example/abs">Absolute</a>
		<a href="mailto:x@example.com">Mail</a>
		<a href="javascript:void(0)">JS</a>
	</body></html>`

	doc, err := Structure(markup, "https://example.com/start")
	if err != nil {
		t.Fatalf("Structure: %v", err)
	}
	if doc.TotalLinks != 2 {
		t.Fatalf("TotalLinks = %d, want 2 (relative resolved, dup and non-http dropped): %+v", doc.TotalLinks, doc.Links)
	}
	if doc.Links[0].Href != "https://example.com/docs" {
		t.Errorf("relative link not resolved: %q", doc.Links[0].Href)
	}
}

func TestStructure_ImagesSkipDataURIs(t *testing.T) {
	markup := `<html><body>
		<img src="/logo.png" alt="Logo">
		<img src="data:image/png;base64,AAAA">
	</body></html>`

	doc, err := Structure(markup, "https://example.com/")
	if err != nil {
		t.Fatalf("Structure: %v", err)
	}
	if doc.TotalImages != 1 {
		t.Fatalf("TotalImages = %d, want 1", doc.TotalImages)
	}
	if doc.Images[0].Src != "https://example.com/logo.png" || doc.Images[0].Alt != "Logo" {
		t.Errorf("image = %+v", doc.Images[0])
	}
}

func TestStructure_SectionContentTruncated(t *testing.T) {
	body := strings.Repeat("x", 3000)
	markup := "<html><body><main><h2>Big</h2><p>" + body + "</p></main></body></html>"

	doc, err := Structure(markup, "https://example.com/")
	if err != nil {
		t.Fatalf("Structure: %v", err)
	}
	content := doc.Sections[0].Content
	if len(content) != 1000+len("...") {
		t.Errorf("section content length = %d, want truncated to 1003", len(content))
	}
	if !strings.HasSuffix(content, "...") {
		t.Error("truncated content should end with ellipsis")
	}
}

package scraper

import (
	"strings"
	"testing"
)

func TestNeedsBrowser(t *testing.T) {
	longText := strings.Repeat("plenty of real visible body text here. ", 20)

	tests := []struct {
		name string
		body string
		want bool
	}{
		{
			"server-rendered article",
			"<html><body><p>" + longText + "</p></body></html>",
			false,
		},
		{
			"empty react root",
			`<html><body><div id="root"></div></body></html>`,
			true,
		},
		{
			"empty vue root",
			`<html><body><div id="app"></div></body></html>`,
			true,
		},
		{
			"next shell",
			`<html><body><div id="__next"></div></body></html>`,
			true,
		},
		{
			"noscript js warning",
			`<html><body><p>` + longText + `</p><noscript>Please enable JavaScript to continue</noscript></body></html>`,
			true,
		},
		{
			"tiny body",
			"<html><body><p>hi</p></body></html>",
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := needsBrowser([]byte(tt.body)); got != tt.want {
				t.Errorf("needsBrowser = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNeedsBrowser_ScriptHeavyThinBody(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("<html><head>")
	for i := 0; i < 12; i++ {
		sb.WriteString(`<script src="/bundle.js"></script>`)
	}
	// Enough text to pass the shell check but under the script-heavy
	// threshold.
	sb.WriteString("</head><body><p>")
	sb.WriteString(strings.Repeat("some words here. ", 15))
	sb.WriteString("</p></body></html>")

	if !needsBrowser([]byte(sb.String())) {
		t.Error("script-heavy page with a thin body should escalate")
	}
}

func TestPageTitle(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"normal", "<html><head><title>My Page</title></head><body></body></html>", "My Page"},
		{"whitespace", "<html><head><title>  Padded  </title></head></html>", "Padded"},
		{"missing", "<html><head></head><body></body></html>", ""},
		{"empty title", "<html><head><title></title></head></html>", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pageTitle([]byte(tt.body)); got != tt.want {
				t.Errorf("pageTitle = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVisibleText_SkipsScriptAndStyle(t *testing.T) {
	body := `<html><body>
		<script>hidden();</script>
		<style>.x{}</style>
		<p>visible words</p>
	</body></html>`

	got := visibleText([]byte(body))
	if !strings.Contains(got, "visible words") {
		t.Errorf("visibleText = %q, missing body text", got)
	}
	if strings.Contains(got, "hidden") || strings.Contains(got, ".x{}") {
		t.Errorf("visibleText = %q, contains non-visible content", got)
	}
}

func TestCookieString(t *testing.T) {
	cookies := ParseCookieString("a=1; b=2", "example.com")
	if got := cookieString(cookies); got != "a=1; b=2" {
		t.Errorf("cookieString = %q", got)
	}
	if got := cookieString(nil); got != "" {
		t.Errorf("cookieString(nil) = %q, want empty", got)
	}
}

func TestMatchesTarget(t *testing.T) {
	tests := []struct {
		tab    string
		target string
		want   bool
	}{
		{"https://example.com/chat", "https://example.com/chat", true},
		{"https://example.com/chat/", "https://example.com/chat", true},
		{"http://example.com/chat", "https://example.com/chat", true},
		{"https://example.com/other", "https://example.com/chat", false},
		{"https://other.com/chat", "https://example.com/chat", false},
	}

	for _, tt := range tests {
		if got := matchesTarget(tt.tab, tt.target); got != tt.want {
			t.Errorf("matchesTarget(%q, %q) = %v, want %v", tt.tab, tt.target, got, tt.want)
		}
	}
}

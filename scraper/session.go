package scraper

import (
	"encoding/json"
	"net/http"
	"strings"
)

// ParseCookieString parses a browser-style cookie string
// ("name1=value1; name2=value2"), as exported from devtools, into
// cookies scoped to the given domain. Malformed entries are skipped.
func ParseCookieString(raw string, domain string) []http.Cookie {
	var cookies []http.Cookie
	for _, item := range strings.Split(raw, ";") {
		item = strings.TrimSpace(item)
		name, value, ok := strings.Cut(item, "=")
		if !ok || name == "" {
			continue
		}
		cookies = append(cookies, http.Cookie{
			Name:   strings.TrimSpace(name),
			Value:  strings.TrimSpace(value),
			Domain: domain,
			Path:   "/",
		})
	}
	return cookies
}

// ParseHeaderString parses caller-supplied headers. JSON objects are
// tried first; otherwise the input is read as "Key: value" lines.
func ParseHeaderString(raw string) map[string]string {
	headers := make(map[string]string)
	if raw == "" {
		return headers
	}

	if err := json.Unmarshal([]byte(raw), &headers); err == nil {
		return headers
	}

	for _, line := range strings.Split(raw, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		headers[key] = strings.TrimSpace(value)
	}
	return headers
}

package scraper

import (
	"reflect"
	"testing"
)

func TestParseCookieString(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		domain string
		want   int
	}{
		{"empty", "", "example.com", 0},
		{"single", "session=abc123", "example.com", 1},
		{"multiple", "session=abc123; theme=dark; lang=en", "example.com", 3},
		{"value with equals", "token=a=b=c", "example.com", 1},
		{"malformed entries skipped", "good=1; noequals; =novalue; also=2", "example.com", 2},
		{"extra whitespace", "  a=1 ;  b=2  ", "example.com", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCookieString(tt.raw, tt.domain)
			if len(got) != tt.want {
				t.Fatalf("got %d cookies, want %d: %+v", len(got), tt.want, got)
			}
			for _, c := range got {
				if c.Domain != tt.domain || c.Path != "/" {
					t.Errorf("cookie %q: domain=%q path=%q", c.Name, c.Domain, c.Path)
				}
			}
		})
	}
}

func TestParseCookieString_ValueWithEquals(t *testing.T) {
	got := ParseCookieString("token=a=b=c", "example.com")
	if len(got) != 1 || got[0].Value != "a=b=c" {
		t.Errorf("got %+v, want value preserved past the first equals", got)
	}
}

func TestParseHeaderString_JSON(t *testing.T) {
	got := ParseHeaderString(`{"X-Custom": "one", "Accept": "text/html"}`)
	want := map[string]string{"X-Custom": "one", "Accept": "text/html"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseHeaderString_KeyValueLines(t *testing.T) {
	got := ParseHeaderString("X-Custom: one\nAccept: text/html\nbroken line\n: nokey")
	want := map[string]string{"X-Custom": "one", "Accept": "text/html"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseHeaderString_Empty(t *testing.T) {
	if got := ParseHeaderString(""); len(got) != 0 {
		t.Errorf("got %v, want empty map", got)
	}
}

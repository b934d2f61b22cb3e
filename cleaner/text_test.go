package cleaner

import "testing"

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", "  \t\n  ", ""},
		{"already clean", "hello world", "hello world"},
		{"collapses runs", "hello    world", "hello world"},
		{"newlines and tabs", "line one\n\n\tline two", "line one line two"},
		{"leading and trailing", "  padded  ", "padded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.in); got != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

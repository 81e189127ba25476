package util

import "testing"

func TestRedactHeader(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"Authorization", "Bearer abc.def.ghi", "Bearer " + Masked},
		{"authorization", "Basic dXNlcjpwYXNz", "Basic " + Masked},
		{"Cookie", "session=abc; theme=dark", Masked},
		{"X-Api-Key", "k-123", Masked},
		{"Proxy-Authorization", "token", Masked},
		{"Content-Type", "application/json", "application/json"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := RedactHeader(tc.name, tc.value); got != tc.want {
				t.Errorf("RedactHeader(%q, %q) = %q, want %q", tc.name, tc.value, got, tc.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("abcdef", 3); got != "abc...(truncated)" {
		t.Errorf("unexpected %q", got)
	}
	if got := Truncate("abc", 3); got != "abc" {
		t.Errorf("unexpected %q", got)
	}
	if got := Truncate("abcdef", 0); got != "abcdef" {
		t.Errorf("zero max should disable the cap, got %q", got)
	}
}

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims whitespace", "  hello  ", "hello"},
		{"removes control chars", "hello\x00world", "helloworld"},
		{"removes newlines", "/foo\r\nX-Injected: 1", "/fooX-Injected: 1"},
		{"empty string", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeString(tc.input); got != tc.want {
				t.Errorf("SanitizeString(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

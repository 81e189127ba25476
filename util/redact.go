package util

import (
	"net/http"
	"strings"
	"unicode"
)

// Masked replaces redacted values in log output.
const Masked = "[REDACTED]"

var secretHeaders = map[string]struct{}{
	"Authorization":       {},
	"Proxy-Authorization": {},
	"Cookie":              {},
	"Set-Cookie":          {},
	"X-Api-Key":           {},
}

// IsSecretHeader reports whether a header may carry credentials.
func IsSecretHeader(name string) bool {
	_, ok := secretHeaders[http.CanonicalHeaderKey(name)]
	return ok
}

// RedactHeader masks the value of a credential-bearing header, keeping the
// auth scheme (e.g. "Bearer") when there is one.
func RedactHeader(name, value string) string {
	if !IsSecretHeader(name) {
		return value
	}
	if scheme, _, ok := strings.Cut(value, " "); ok && http.CanonicalHeaderKey(name) != "Cookie" {
		return scheme + " " + Masked
	}
	return Masked
}

// Truncate caps s at max bytes and marks the cut. max <= 0 disables the cap.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}

// SanitizeString trims whitespace and removes control characters from s.
func SanitizeString(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

package util

import (
	"regexp"
	"strings"
)

var (
	// Matches "Bearer <token>"; session cookies can end up in chromedp error strings.
	bearerTokenRe = regexp.MustCompile(`(?i)\bBearer\s+[^\s"']+`)

	// key=value and "key": "value" forms of credentials and session cookies.
	secretKVRe = regexp.MustCompile(`(?i)"?\b(password|passwd|li_at|jsessionid|cookie)\b"?\s*[:=]\s*("[^"]*"|[^\s"',;]+)`)
)

// RedactSecrets removes obvious secret-bearing substrings from error/log strings.
//
// It is safe to call on any message, including upstream error strings.
func RedactSecrets(s string) string {
	if s == "" {
		return ""
	}
	out := s
	out = bearerTokenRe.ReplaceAllString(out, "Bearer <redacted>")
	out = secretKVRe.ReplaceAllString(out, "<redacted_kv>")
	return strings.TrimSpace(out)
}

// RedactValue replaces every occurrence of a known secret, such as the configured
// password, in s.
func RedactValue(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, secret, "<redacted>")
}

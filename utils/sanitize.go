package utils

import (
	"regexp"
	"strings"
)

// Production error sanitization: server messages are scanned against a
// blocklist of internal-looking fragments and re-mapped through a fixed
// phrase table to a small set of user-safe strings. Non-production responses
// skip this entirely.

const GenericErrorMessage = "An unexpected error occurred. Please try again."

var blockPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)goroutine \d+`),
	regexp.MustCompile(`(?i)panic:|runtime error`),
	regexp.MustCompile(`\.go:\d+`),
	regexp.MustCompile(`(?i)\b(select|insert|update|delete)\b.*\b(from|into|set|where)\b`),
	regexp.MustCompile(`(?i)sqlstate|pq:\s`),
	regexp.MustCompile(`(/[A-Za-z0-9_.-]+){3,}`), // internal file paths
}

var phraseTable = []struct {
	match       string
	replacement string
}{
	{"duplicate key", "That value is already in use."},
	{"already taken", "That value is already in use."},
	{"record not found", "The requested record was not found."},
	{"connection refused", "Service temporarily unavailable. Please try again."},
	{"connection reset", "Service temporarily unavailable. Please try again."},
	{"context deadline exceeded", "The request timed out. Please try again."},
	{"timeout", "The request timed out. Please try again."},
	{"invalid token", "Your session has expired. Please sign in again."},
	{"token is expired", "Your session has expired. Please sign in again."},
}

// SanitizeMessage maps a raw error message to a user-safe one. Phrase-table
// hits win; anything matching the blocklist collapses to the generic
// message; everything else passes through.
func SanitizeMessage(msg string) string {
	lower := strings.ToLower(msg)
	for _, p := range phraseTable {
		if strings.Contains(lower, p.match) {
			return p.replacement
		}
	}
	for _, re := range blockPatterns {
		if re.MatchString(msg) {
			return GenericErrorMessage
		}
	}
	return msg
}

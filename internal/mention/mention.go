// Package mention scans message bodies for @name tokens.
package mention

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

var mentionRe = regexp.MustCompile(`@(\w+)`)

// Extract returns mention targets without the @ prefix. A token preceded by
// a letter or digit (as in an email address) is not a mention.
func Extract(body string) []string {
	matches := mentionRe.FindAllStringSubmatchIndex(body, -1)
	mentions := make([]string, 0, len(matches))
	for _, match := range matches {
		if len(match) < 4 {
			continue
		}
		start := match[0]
		if start > 0 {
			prev, _ := utf8.DecodeLastRuneInString(body[:start])
			if isAlphaNum(prev) {
				continue
			}
		}
		mentions = append(mentions, body[match[2]:match[3]])
	}
	return mentions
}

// Matches reports whether body mentions the given display name. Comparison
// is whole-token and case-sensitive: "@alice2" does not match "alice".
func Matches(body, name string) bool {
	if name == "" {
		return false
	}
	for _, candidate := range Extract(body) {
		if candidate == name {
			return true
		}
	}
	return false
}

func isAlphaNum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

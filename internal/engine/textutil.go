package engine

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/anatolykoptev/go-kit/strutil"
)

// User-Agent string used across HTTP clients.
const UserAgentBot = "GoTube/1.0"

var hashtagRe = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)

// ExtractHashtags scans text for #word tokens and returns the deduplicated
// tags in first-occurrence order, without the leading '#'.
func ExtractHashtags(text string) []string {
	matches := hashtagRe.FindAllStringSubmatch(text, -1)
	seen := make(map[string]bool, len(matches))
	var tags []string
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			tags = append(tags, m[1])
		}
	}
	return tags
}

// TitleKeywords splits a title into whitespace-separated words longer than
// two characters. Used for both search-query building and relevance scoring.
func TitleKeywords(title string) []string {
	var words []string
	for _, w := range strings.Fields(title) {
		if utf8.RuneCountInString(w) > 2 {
			words = append(words, w)
		}
	}
	return words
}

// Truncate returns the first n bytes of s.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. Safe for UTF-8 (Hangul, CJK, emoji).
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}

package interrogator

import (
	"strings"
	"unicode"
)

var markdownMarkers = strings.NewReplacer(
	"`", " ",
	"**", " ",
	"__", " ",
	"~~", " ",
	"#", " ",
	">", " ",
)

// CountWords counts words in markdown, ignoring fenced code and formatting markers
func CountWords(markdown string) int {
	text := markdownMarkers.Replace(stripFences(markdown))

	count := 0
	for _, token := range strings.FieldsFunc(text, unicode.IsSpace) {
		if isWord(token) {
			count++
		}
	}
	return count
}

// isWord rejects list bullets, ordered-list numbers and rules
func isWord(token string) bool {
	if n := strings.TrimSuffix(token, "."); n != token && strings.Trim(n, "0123456789") == "" {
		return false
	}
	for _, r := range token {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// stripFences drops ``` fenced blocks; an unterminated fence is kept as text
func stripFences(text string) string {
	for {
		start := strings.Index(text, "```")
		if start == -1 {
			return text
		}
		end := strings.Index(text[start+3:], "```")
		if end == -1 {
			return text
		}
		text = text[:start] + " " + text[start+3+end+3:]
	}
}

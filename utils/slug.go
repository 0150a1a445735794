package utils

import (
	"regexp"
	"strings"
)

var nonWord = regexp.MustCompile(`[^\w-]+`)

// Slugify lowercases, turns spaces into dashes and drops anything else that is not a word char.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Join(strings.Fields(s), "-")
	return nonWord.ReplaceAllString(s, "")
}

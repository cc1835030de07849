package document

import (
	"regexp"
	"strings"
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	underscorePattern = regexp.MustCompile(`_([^_\n]+)_`)
)

// SanitizeText strips embedded markup tags and markdown emphasis markers
// so backends re-apply styling without literal asterisks or tags leaking
// into the output.
func SanitizeText(text string) string {
	if text == "" {
		return ""
	}

	text = tagPattern.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "__", "")
	text = strings.ReplaceAll(text, "*", "")
	text = underscorePattern.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}

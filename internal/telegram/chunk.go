package telegram

import "strings"

// MaxMessageLength is the hard per-message limit of the Bot API.
const MaxMessageLength = 4096

// SplitMessage splits text into chunks that fit the API limit. Splits
// prefer paragraph breaks, then line breaks, then spaces, and only cut
// mid-word as a last resort. Limits are measured in runes because the
// API counts characters, not bytes.
func SplitMessage(text string) []string {
	runes := []rune(text)
	if len(runes) <= MaxMessageLength {
		return []string{text}
	}

	var chunks []string
	for len(runes) > MaxMessageLength {
		cut := splitPoint(runes)
		chunks = append(chunks, strings.TrimRight(string(runes[:cut]), "\n "))
		for cut < len(runes) && (runes[cut] == '\n' || runes[cut] == ' ') {
			cut++
		}
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}

func splitPoint(runes []rune) int {
	window := runes[:MaxMessageLength]

	for _, sep := range []string{"\n\n", "\n", " "} {
		if idx := strings.LastIndex(string(window), sep); idx > 0 {
			// Back-convert the byte index to a rune offset.
			return len([]rune(string(window)[:idx]))
		}
	}
	return MaxMessageLength
}

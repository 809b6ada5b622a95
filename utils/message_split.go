package utils

import "strings"

// MaxMessageLength is the Discord limit for one message's content.
const MaxMessageLength = 2000

// SplitMessage breaks text into chunks of at most limit runes, preferring to cut at line breaks.
// Lines longer than limit are hard-wrapped.
func SplitMessage(text string, limit int) []string {
	if text == "" {
		return nil
	}
	if limit <= 0 {
		limit = MaxMessageLength
	}

	var (
		chunks []string
		cur    strings.Builder
		curLen int
	)
	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		runes := []rune(line)
		if curLen+len(runes) <= limit {
			cur.WriteString(line)
			curLen += len(runes)
			continue
		}
		flush()
		for len(runes) > limit {
			chunks = append(chunks, string(runes[:limit]))
			runes = runes[limit:]
		}
		cur.WriteString(string(runes))
		curLen = len(runes)
	}
	flush()
	return chunks
}

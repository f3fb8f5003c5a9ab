package pipeline

import "strings"

// Punctuation ranked by how natural a break it makes. Sentence enders are
// preferred over clause separators.
var (
	sentenceEnders  = ".?!"
	clauseBreakers = ",;:"
)

// SplitText divides a long final transcript into display-sized chunks.
// Transcripts at or under threshold words pass through whole. Each chunk
// breaks at the latest sentence ender within the window, falling back to a
// clause separator, then to a plain word boundary at the window edge. A
// break that would leave a chunk shorter than minWords is rejected so tiny
// fragments never reach the screen.
func SplitText(text string, threshold, minWords int) []string {
	words := strings.Fields(text)
	if len(words) <= threshold {
		if len(words) == 0 {
			return nil
		}
		return []string{strings.Join(words, " ")}
	}

	var chunks []string
	for len(words) > 0 {
		if len(words) <= threshold {
			chunks = append(chunks, strings.Join(words, " "))
			break
		}
		cut := findBreak(words, threshold, minWords)
		chunks = append(chunks, strings.Join(words[:cut], " "))
		words = words[cut:]
	}
	return chunks
}

// findBreak picks the index after which to cut, scanning the window backwards
// so the longest acceptable chunk wins.
func findBreak(words []string, threshold, minWords int) int {
	limit := threshold
	if limit > len(words) {
		limit = len(words)
	}
	for _, set := range []string{sentenceEnders, clauseBreakers} {
		for i := limit - 1; i >= minWords-1; i-- {
			if endsWithAny(words[i], set) {
				return i + 1
			}
		}
	}
	return limit
}

func endsWithAny(word, set string) bool {
	trimmed := strings.TrimRight(word, `"')]`)
	if trimmed == "" {
		return false
	}
	return strings.ContainsRune(set, rune(trimmed[len(trimmed)-1]))
}

package chunk

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// WordCount counts whitespace-separated words
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// SplitSentences cuts text after '.', '!' or '?' when whitespace follows.
// Sentences are trimmed and empty ones are skipped.
func SplitSentences(text string) []string {
	var sentences []string
	start := 0
	for i, r := range text {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		next := i + utf8.RuneLen(r)
		if next >= len(text) {
			break
		}
		nr, _ := utf8.DecodeRuneInString(text[next:])
		if !unicode.IsSpace(nr) {
			continue
		}
		if s := strings.TrimSpace(text[start:next]); s != "" {
			sentences = append(sentences, s)
		}
		start = next
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// GroupSentences greedily packs consecutive sentences into groups of at most maxWords
// words. A sentence that alone exceeds the budget forms its own group. No group is
// dropped here.
func GroupSentences(paragraph string, maxWords int) []string {
	var (
		groups  []string
		current []string
		words   int
	)
	for _, sentence := range SplitSentences(paragraph) {
		n := WordCount(sentence)
		if words+n > maxWords {
			if len(current) > 0 {
				groups = append(groups, strings.Join(current, " "))
			}
			current = []string{sentence}
			words = n
			continue
		}
		current = append(current, sentence)
		words += n
	}
	if len(current) > 0 {
		groups = append(groups, strings.Join(current, " "))
	}
	return groups
}

// SplitBySentences is the deterministic fallback splitter: GroupSentences followed by
// dropping groups shorter than DefaultMinChunkWords. It never fails.
func SplitBySentences(paragraph string, maxWords int) []string {
	return splitBySentences(paragraph, maxWords, DefaultMinChunkWords)
}

func splitBySentences(paragraph string, maxWords, minWords int) []string {
	groups := GroupSentences(paragraph, maxWords)
	kept := make([]string, 0, len(groups))
	for _, g := range groups {
		if WordCount(g) >= minWords {
			kept = append(kept, g)
		}
	}
	return kept
}

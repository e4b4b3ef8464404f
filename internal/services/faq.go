package services

import (
	"encoding/json"
	"os"
	"strings"
)

// faqMatchThreshold is the minimum similarity ratio for a fuzzy FAQ hit.
const faqMatchThreshold = 0.56

// servicesFAQ is always present, even without a FAQ file.
const (
	servicesFAQQuestion = "what services do you offer?"
	servicesFAQAnswer   = "Q: What services do you offer?\n" +
		"A: We provide complete live broadcasting solutions including multi-cam production, " +
		"simulcast streaming, adaptive bitrate streaming, Instagram/Facebook/YouTube Live, " +
		"video editing, VOD, 360° live, wedding streaming, sports broadcasting, " +
		"corporate events, government events, religious streaming and more."
)

var synonyms = map[string][]string{
	"stream":   {"streaming", "live stream", "broadcast", "broadcasting", "telecast"},
	"camera":   {"cam", "cams", "setup"},
	"football": {"soccer", "match", "sports"},
}

type faqEntry struct {
	question string // normalized
	full     string // "Q: ...\nA: ..." text
}

// FAQIndex matches user questions against curated question/answer pairs.
type FAQIndex struct {
	entries []faqEntry
}

// LoadFAQIndex reads a JSON array of {question, answer} objects. A missing or
// unreadable file yields an index with only the built-in services entry.
func LoadFAQIndex(path string) *FAQIndex {
	idx := &FAQIndex{}

	if raw, err := os.ReadFile(path); err == nil {
		var items []struct {
			Question string `json:"question"`
			Answer   string `json:"answer"`
		}
		if err := json.Unmarshal(raw, &items); err == nil {
			for _, item := range items {
				q := strings.TrimSpace(item.Question)
				a := strings.TrimSpace(item.Answer)
				if q == "" || a == "" {
					continue
				}
				idx.entries = append(idx.entries, faqEntry{
					question: strings.ToLower(q),
					full:     "Q: " + q + "\nA: " + a,
				})
			}
		}
	}

	idx.entries = append(idx.entries, faqEntry{
		question: servicesFAQQuestion,
		full:     servicesFAQAnswer,
	})
	return idx
}

// Len returns the number of FAQ entries.
func (idx *FAQIndex) Len() int {
	return len(idx.entries)
}

// Match returns the best-matching FAQ text, or "" when nothing matches.
// Direct containment (after normalization and synonym expansion) wins
// outright; otherwise the highest similarity ratio above the threshold wins.
func (idx *FAQIndex) Match(question string) string {
	if len(idx.entries) == 0 {
		return ""
	}

	expanded := expandSynonyms(normalizeText(question))

	var bestScore float64
	var bestAnswer string
	for _, e := range idx.entries {
		q := normalizeText(e.question)

		if strings.Contains(expanded, q) || strings.Contains(q, expanded) {
			return e.full
		}

		if r := similarityRatio(expanded, q); r > bestScore {
			bestScore = r
			bestAnswer = e.full
		}
	}

	if bestScore >= faqMatchThreshold {
		return bestAnswer
	}
	return ""
}

func expandSynonyms(q string) string {
	words := strings.Fields(q)
	expanded := words
	for _, w := range words {
		expanded = append(expanded, synonyms[w]...)
	}
	return strings.Join(expanded, " ")
}

// similarityRatio computes 2*LCS/(len(a)+len(b)) over runes, close enough to
// difflib's matching-blocks ratio for thresholding short questions.
func similarityRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra)+len(rb) == 0 {
		return 1
	}

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}

	lcs := prev[len(rb)]
	return 2 * float64(lcs) / float64(len(ra)+len(rb))
}

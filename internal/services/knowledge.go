package services

import (
	"math"
	"os"
	"regexp"
	"sort"
	"strings"
)

var (
	blankLineRe = regexp.MustCompile(`\n\s*\n`)
	nonAlnumRe  = regexp.MustCompile(`[^a-z0-9\s]`)
)

// KnowledgeBase holds the site text snippets and a TF-IDF index over them.
// Built once at startup, read-only afterwards.
type KnowledgeBase struct {
	snippets []string
	vectors  []map[string]float64 // l2-normalized tf-idf weights per snippet
	idf      map[string]float64
}

// LoadKnowledgeBase reads the knowledge file and indexes its snippets. A
// missing file yields an empty (but usable) base. Extra snippets, such as
// contact details, are appended verbatim.
func LoadKnowledgeBase(path string, extra ...string) *KnowledgeBase {
	var snippets []string
	if raw, err := os.ReadFile(path); err == nil {
		snippets = splitIntoSnippets(string(raw))
	}
	for _, s := range extra {
		if strings.TrimSpace(s) != "" {
			snippets = append(snippets, s)
		}
	}
	return NewKnowledgeBase(snippets)
}

func NewKnowledgeBase(snippets []string) *KnowledgeBase {
	kb := &KnowledgeBase{
		snippets: snippets,
		idf:      make(map[string]float64),
	}

	docs := make([]map[string]int, len(snippets))
	df := make(map[string]int)
	for i, s := range snippets {
		counts := make(map[string]int)
		for _, tok := range tokenize(s) {
			counts[tok]++
		}
		docs[i] = counts
		for tok := range counts {
			df[tok]++
		}
	}

	// Smoothed idf, as in scikit-learn's TfidfVectorizer.
	n := float64(len(snippets))
	for tok, count := range df {
		kb.idf[tok] = math.Log((1+n)/(1+float64(count))) + 1
	}

	kb.vectors = make([]map[string]float64, len(snippets))
	for i, counts := range docs {
		vec := make(map[string]float64, len(counts))
		var norm float64
		for tok, tf := range counts {
			w := float64(tf) * kb.idf[tok]
			vec[tok] = w
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for tok := range vec {
				vec[tok] /= norm
			}
		}
		kb.vectors[i] = vec
	}

	return kb
}

// Len returns the number of indexed snippets.
func (kb *KnowledgeBase) Len() int {
	return len(kb.snippets)
}

// Retrieve returns up to k snippets ranked by cosine similarity against the
// question. Snippets with zero similarity are never returned.
func (kb *KnowledgeBase) Retrieve(question string, k int) []string {
	if len(kb.snippets) == 0 || k <= 0 {
		return nil
	}

	query := make(map[string]float64)
	var norm float64
	for _, tok := range tokenize(question) {
		query[tok] += kb.idf[tok]
	}
	for _, w := range query {
		norm += w * w
	}
	if norm == 0 {
		return nil
	}
	norm = math.Sqrt(norm)

	type scored struct {
		idx int
		sim float64
	}
	var ranked []scored
	for i, vec := range kb.vectors {
		var sim float64
		for tok, qw := range query {
			sim += (qw / norm) * vec[tok]
		}
		if sim > 0 {
			ranked = append(ranked, scored{idx: i, sim: sim})
		}
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].sim > ranked[b].sim
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	out := make([]string, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, kb.snippets[r.idx])
	}
	return out
}

func splitIntoSnippets(text string) []string {
	var out []string
	for _, part := range blankLineRe.Split(text, -1) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalizeText lowercases and strips everything but letters, digits and
// whitespace.
func normalizeText(t string) string {
	t = strings.ToLower(t)
	t = nonAlnumRe.ReplaceAllString(t, " ")
	return strings.Join(strings.Fields(t), " ")
}

func tokenize(t string) []string {
	return strings.Fields(normalizeText(t))
}

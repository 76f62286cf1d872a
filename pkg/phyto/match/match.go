// Package match reconciles free-text symptom wording against canonical
// symptom names. The predicate is an ordered chain of pairwise checks
// (exact, substring, word overlap, synonym stems); it is symmetric but
// not transitive, so it must never be used for clustering.
package match

import "strings"

// DefaultStopWords are dropped before word-overlap comparison.
func DefaultStopWords() []string {
	return []string{"on", "the", "of", "in", "at", "with", "and", "or", "a", "an"}
}

// DefaultSynonyms maps a root keyword to the symptom stems treated as
// equivalent to it.
func DefaultSynonyms() map[string][]string {
	return map[string][]string{
		"yellow": {"yellowing", "chlorosis"},
		"brown":  {"browning", "necrosis"},
		"wilt":   {"wilting", "drooping"},
		"spot":   {"spots", "lesions", "patches"},
		"dry":    {"drying", "dried", "dessication"},
		"rot":    {"rotting", "decay", "decomposition"},
		"stunt":  {"stunted", "stunting", "dwarf"},
	}
}

// Matcher holds the stop-word and synonym tables. Both are data so a
// deployment can extend them without touching the predicate.
type Matcher struct {
	stops    map[string]struct{}
	synonyms map[string][]string
}

// New creates a Matcher with the default tables.
func New() *Matcher {
	return NewWithTables(DefaultStopWords(), DefaultSynonyms())
}

// NewWithTables creates a Matcher with custom stop words and synonyms.
func NewWithTables(stopWords []string, synonyms map[string][]string) *Matcher {
	stops := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		stops[w] = struct{}{}
	}
	return &Matcher{stops: stops, synonyms: synonyms}
}

// Normalize trims surrounding whitespace and punctuation, collapses
// internal whitespace runs, and lower-cases. Empty input stays empty.
func Normalize(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.Trim(cleaned, ".,;:!?")
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	return strings.ToLower(cleaned)
}

// Matches reports whether two symptom strings describe the same thing.
// Checks run in order and short-circuit: exact equality, substring
// containment either way, stop-word-filtered Jaccard overlap above 0.5,
// then the synonym table in both directions.
func (m *Matcher) Matches(a, b string) bool {
	a = Normalize(a)
	b = Normalize(b)

	if a == b {
		return true
	}
	if a == "" || b == "" {
		return false
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	if m.wordOverlap(a, b) {
		return true
	}
	return m.synonymMatch(a, b)
}

func (m *Matcher) wordOverlap(a, b string) bool {
	aWords := m.contentWords(a)
	bWords := m.contentWords(b)
	if len(aWords) == 0 || len(bWords) == 0 {
		return false
	}

	intersection := 0
	for w := range aWords {
		if _, ok := bWords[w]; ok {
			intersection++
		}
	}
	union := len(aWords) + len(bWords) - intersection
	return float64(intersection)/float64(union) > 0.5
}

func (m *Matcher) contentWords(s string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		if _, stop := m.stops[w]; stop {
			continue
		}
		words[w] = struct{}{}
	}
	return words
}

// synonymMatch checks whether both sides contain a member of the same
// keyword family (the root keyword or any of its stems). Symmetric by
// construction.
func (m *Matcher) synonymMatch(a, b string) bool {
	for keyword, stems := range m.synonyms {
		inA := strings.Contains(a, keyword)
		if !inA {
			for _, stem := range stems {
				if strings.Contains(a, stem) {
					inA = true
					break
				}
			}
		}
		if !inA {
			continue
		}
		if strings.Contains(b, keyword) {
			return true
		}
		for _, stem := range stems {
			if strings.Contains(b, stem) {
				return true
			}
		}
	}
	return false
}

package search

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2"

	"github.com/hyperjump/vetcontent/pkg/utils"
)

// minSuggestRunes is the shortest query term that gets corrected.
const minSuggestRunes = 3

// speller suggests corrections for misspelled query terms from the indexed vocabulary.
type speller struct {
	terms       map[string]uint64 // term -> document frequency, summed across text fields
	maxDistance int
}

// newSpeller reads the term dictionaries of the text fields of index.
func newSpeller(index bleve.Index, maxDistance int) (*speller, error) {
	s := &speller{terms: make(map[string]uint64), maxDistance: maxDistance}
	for _, field := range []string{"title", "tags", "excerpt"} {
		dict, err := index.FieldDict(field)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s dictionary: %w", field, err)
		}
		for {
			entry, err := dict.Next()
			if err != nil || entry == nil {
				break
			}
			s.terms[entry.Term] += entry.Count
		}
		_ = dict.Close()
	}
	return s, nil
}

// Suggest returns text with unknown terms replaced by their closest indexed term,
// or "" when nothing was corrected.
func (s *speller) Suggest(text string) string {
	if s == nil || s.maxDistance <= 0 {
		return ""
	}
	tokens := tokenize(text)
	corrected := false
	for i, tok := range tokens {
		if _, ok := s.terms[tok]; ok || utf8.RuneCountInString(tok) < minSuggestRunes {
			continue
		}
		if best := s.closest(tok); best != "" {
			tokens[i] = best
			corrected = true
		}
	}
	if !corrected {
		return ""
	}
	return strings.Join(tokens, " ")
}

// closest returns the best-scoring term within maxDistance of term.
// Score favors small distance and frequent terms; ties go to the alphabetically first term.
func (s *speller) closest(term string) string {
	type candidate struct {
		term  string
		score float64
	}
	var candidates []candidate
	n := utf8.RuneCountInString(term)
	for t, freq := range s.terms {
		diff := utf8.RuneCountInString(t) - n
		if diff < 0 {
			diff = -diff
		}
		if diff > s.maxDistance {
			continue
		}
		d := levenshtein(term, t)
		if d == 0 || d > s.maxDistance {
			continue
		}
		candidates = append(candidates, candidate{term: t, score: float64(freq) / float64(d+1)})
	}
	if len(candidates) == 0 {
		return ""
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].term < candidates[j].term
	})
	return candidates[0].term
}

// tokenize folds text and splits it the way the standard analyzer does.
func tokenize(text string) []string {
	return strings.FieldsFunc(utils.Fold(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// levenshtein is the rune-wise edit distance between a and b.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

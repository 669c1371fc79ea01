package resolve

import (
	"sort"
	"strings"
	"unicode"
)

// FuzzyResolver is C14: a deterministic, heuristic-weighted best-effort
// name matcher, repurposed from the teacher's DSL-query fuzzy repair
// (core.FuzzyResolver) to class-name lookup on an inheritance-resolution
// miss. No randomness: given the same candidate set, Resolve always
// returns the same answer, which the determinism property in spec §8
// requires.
type FuzzyResolver struct {
	maxDistance int
	heuristics  []heuristic
}

type heuristic struct {
	name   string
	weight float64
	apply  func(original, candidate string) (score float64, distance int)
}

// NewFuzzyResolver builds a resolver with the default heuristic set and a
// maximum edit distance of 2.
func NewFuzzyResolver() *FuzzyResolver {
	return &FuzzyResolver{maxDistance: 2, heuristics: defaultHeuristics()}
}

// Resolve returns the single best-scoring candidate for name, or ok=false
// if no candidate clears maxDistance or if the top two candidates tie —
// a genuine typo gets corrected, an ambiguous near-miss does not (spec
// §4.5: "a match ... uniquely best-scoring is accepted").
func (fr *FuzzyResolver) Resolve(name string, candidates []string) (string, bool) {
	type scored struct {
		name     string
		score    float64
		distance int
	}
	var results []scored

	for _, cand := range candidates {
		if cand == name {
			continue
		}
		var totalScore, totalWeight float64
		minDistance := fr.maxDistance + 1
		for _, h := range fr.heuristics {
			score, distance := h.apply(name, cand)
			if distance > fr.maxDistance {
				continue
			}
			totalScore += score * h.weight
			totalWeight += h.weight
			if distance < minDistance {
				minDistance = distance
			}
		}
		if totalWeight == 0 || minDistance > fr.maxDistance {
			continue
		}
		results = append(results, scored{name: cand, score: totalScore / totalWeight, distance: minDistance})
	}

	if len(results) == 0 {
		return "", false
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		if results[i].distance != results[j].distance {
			return results[i].distance < results[j].distance
		}
		return results[i].name < results[j].name
	})

	if len(results) > 1 && results[0].score == results[1].score && results[0].distance == results[1].distance {
		return "", false // ambiguous: no unique best match
	}

	return results[0].name, true
}

func defaultHeuristics() []heuristic {
	return []heuristic{
		{name: "levenshtein", weight: 1.0, apply: levenshteinHeuristic},
		{name: "case-fold", weight: 0.5, apply: caseFoldHeuristic},
		{name: "namespace-suffix", weight: 0.5, apply: namespaceSuffixHeuristic},
		{name: "plural", weight: 0.3, apply: pluralHeuristic},
	}
}

func levenshteinHeuristic(original, candidate string) (float64, int) {
	d := levenshtein(original, candidate)
	maxLen := len(original)
	if len(candidate) > maxLen {
		maxLen = len(candidate)
	}
	if maxLen == 0 {
		return 1, 0
	}
	return 1 - float64(d)/float64(maxLen), d
}

func caseFoldHeuristic(original, candidate string) (float64, int) {
	if strings.EqualFold(original, candidate) {
		return 1, 0
	}
	return 0, 1000
}

func namespaceSuffixHeuristic(original, candidate string) (float64, int) {
	if strings.HasSuffix(candidate, "::"+original) || strings.HasSuffix(original, "::"+candidate) {
		return 1, 1
	}
	return 0, 1000
}

func pluralHeuristic(original, candidate string) (float64, int) {
	trim := func(s string) string { return strings.TrimSuffix(strings.ToLower(s), "s") }
	if trim(original) == trim(candidate) && original != candidate {
		return 1, 1
	}
	return 0, 1000
}

// levenshtein computes the classic edit distance between two strings.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)

	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if unicode.ToLower(ra[i-1]) == unicode.ToLower(rb[j-1]) {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[lb]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

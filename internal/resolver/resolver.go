// Package resolver maps free-text queries onto catalog products via
// layered similarity scoring.
package resolver

import (
	"sort"
	"strings"

	"github.com/lbianchi/adpilot/internal/catalog"
)

const (
	matchThreshold     = 0.5
	candidateThreshold = 0.3
	maxCandidates      = 5
	skuWeight          = 0.7
	wordBonusCap       = 0.2
)

// Candidate is a scored, not-yet-confirmed product match.
type Candidate struct {
	Product catalog.Product
	Score   float64
}

// Outcome is the tri-state resolution result.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeMatch
	OutcomeAmbiguous
)

// Result carries either a confident match or a ranked candidate list.
type Result struct {
	Outcome    Outcome
	Match      *catalog.Product
	Candidates []Candidate
}

// Resolve scores every product in the pool against the query. Scores at or
// above 0.5 yield a confident match; [0.3, 0.5) yields up to five ranked
// candidates; below 0.3 yields none. Resolution is pure, the caller owns
// any conversation-context updates.
func Resolve(query string, pool []catalog.Product) Result {
	query = normalize(query)
	if query == "" || len(pool) == 0 {
		return Result{Outcome: OutcomeNone}
	}

	scored := make([]Candidate, 0, len(pool))
	for _, p := range pool {
		scored = append(scored, Candidate{Product: p, Score: score(query, p)})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	best := scored[0]
	if best.Score >= matchThreshold {
		p := best.Product
		return Result{Outcome: OutcomeMatch, Match: &p}
	}

	var candidates []Candidate
	for _, c := range scored {
		if c.Score < candidateThreshold {
			break
		}
		candidates = append(candidates, c)
		if len(candidates) == maxCandidates {
			break
		}
	}
	if len(candidates) == 0 {
		return Result{Outcome: OutcomeNone}
	}
	return Result{Outcome: OutcomeAmbiguous, Candidates: candidates}
}

func score(query string, p catalog.Product) float64 {
	name := normalize(p.Name)
	sku := normalize(p.SKU)

	s := similarity(query, name)
	if sku != "" {
		if skuScore := skuWeight * similarity(query, sku); skuScore > s {
			s = skuScore
		}
	}

	s += wordBonus(query, name)
	if s > 1.0 {
		s = 1.0
	}
	return s
}

// similarity layers four heuristics and keeps the highest score, not the
// first that applies.
func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1.0
	}

	best := 0.0
	if strings.Contains(a, b) || strings.Contains(b, a) {
		best = 0.8
	}
	if r := sharedWordRatio(a, b); r > best {
		best = r
	}
	if r := positionalOverlap(a, b); r > best {
		best = r
	}
	return best
}

func sharedWordRatio(a, b string) float64 {
	wa := strings.Fields(a)
	wb := strings.Fields(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}
	common := sharedWords(wa, wb)
	longer := len(wa)
	if len(wb) > longer {
		longer = len(wb)
	}
	return float64(common) / float64(longer)
}

// positionalOverlap aligns characters index-by-index up to the shorter
// string's length and divides matches by the longer length. A coarse proxy
// for edit distance, it underestimates similarity when the strings differ
// by an early insertion or deletion.
func positionalOverlap(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	shorter, longer := len(ra), len(rb)
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	if longer == 0 {
		return 0
	}
	matches := 0
	for i := 0; i < shorter; i++ {
		if ra[i] == rb[i] {
			matches++
		}
	}
	return float64(matches) / float64(longer)
}

// wordBonus adds 0.1 per shared word, capped at 0.2.
func wordBonus(a, b string) float64 {
	common := sharedWords(strings.Fields(a), strings.Fields(b))
	bonus := 0.1 * float64(common)
	if bonus > wordBonusCap {
		bonus = wordBonusCap
	}
	return bonus
}

func sharedWords(wa, wb []string) int {
	set := make(map[string]bool, len(wa))
	for _, w := range wa {
		set[w] = true
	}
	common := 0
	for _, w := range wb {
		if set[w] {
			common++
			set[w] = false
		}
	}
	return common
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

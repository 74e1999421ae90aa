// Package similarity provides the string- and set-level comparison
// primitives the pairwise scorer builds on: Jaro-Winkler, token Jaccard,
// and an order-free composite name score.
package similarity

import (
	"sort"
	"strings"
)

// JaroWinkler returns the Jaro-Winkler similarity of a and b in [0,1].
// Matching distance is floor(max(|a|,|b|)/2) - 1, transpositions count
// half, and the Winkler prefix boost covers up to 4 leading runes.
// Operates on runes rather than bytes so multi-byte Arabic text compares
// character-for-character.
func JaroWinkler(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}

	jaro := Jaro(a, b)
	if jaro == 0 {
		return 0
	}

	ra, rb := []rune(a), []rune(b)
	prefix := 0
	maxPrefix := 4
	for i := 0; i < len(ra) && i < len(rb) && i < maxPrefix; i++ {
		if ra[i] != rb[i] {
			break
		}
		prefix++
	}

	return jaro + 0.1*float64(prefix)*(1-jaro)
}

// Jaro returns the plain Jaro similarity of a and b in [0,1].
func Jaro(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	ra, rb := []rune(a), []rune(b)

	matchDist := max(len(ra), len(rb))/2 - 1
	if matchDist < 0 {
		matchDist = 0
	}

	aMatches := make([]bool, len(ra))
	bMatches := make([]bool, len(rb))

	matches := 0
	for i := range ra {
		start := max(0, i-matchDist)
		end := min(len(rb), i+matchDist+1)

		for j := start; j < end; j++ {
			if bMatches[j] || ra[i] != rb[j] {
				continue
			}
			aMatches[i] = true
			bMatches[j] = true
			matches++
			break
		}
	}

	if matches == 0 {
		return 0
	}

	transpositions := 0
	k := 0
	for i := range ra {
		if !aMatches[i] {
			continue
		}
		for !bMatches[k] {
			k++
		}
		if ra[i] != rb[k] {
			transpositions++
		}
		k++
	}

	m := float64(matches)
	t := float64(transpositions) / 2

	return (m/float64(len(ra)) + m/float64(len(rb)) + (m-t)/m) / 3
}

// TokenJaccard returns |A∩B| / |A∪B| on two token slices, treating them
// as sets. Returns 0 when both are empty.
func TokenJaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	setA := toSet(a)
	setB := toSet(b)

	intersection := 0
	for tok := range setA {
		if setB[tok] {
			intersection++
		}
	}

	union := len(setA)
	for tok := range setB {
		if !setA[tok] {
			union++
		}
	}

	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func toSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		set[tok] = true
	}
	return set
}

// NameOrderFreeScore blends token-set overlap with a sorted-join
// Jaro-Winkler pass, so "fatima ali" and "ali fatima" score highly
// without a dedicated token-reorder rule at every call site.
func NameOrderFreeScore(a, b string) float64 {
	tokensA := strings.Fields(a)
	tokensB := strings.Fields(b)

	jaccard := TokenJaccard(tokensA, tokensB)
	jw := JaroWinkler(sortedJoin(tokensA), sortedJoin(tokensB))

	return 0.7*jaccard + 0.3*jw
}

func sortedJoin(tokens []string) string {
	sorted := make([]string, len(tokens))
	copy(sorted, tokens)
	sort.Strings(sorted)
	return strings.Join(sorted, " ")
}

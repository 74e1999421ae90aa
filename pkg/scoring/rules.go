package scoring

import (
	"strings"

	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/models"
	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/similarity"
)

// PairFeatures is the set of precomputed primitives every domain rule
// matches against. It is built once per record pair so individual rules
// stay small, pure, and independently testable.
type PairFeatures struct {
	WomanTokensA, WomanTokensB     []string
	HusbandTokensA, HusbandTokensB []string

	WomanTokenJaccard float64
	WomanPositionJW   [4]float64 // JW per aligned woman-name token position, 0 when either side lacks that position
	HusbandJW         float64
	HusbandFirstJW    float64
	HusbandOrderFree  float64
	ChildrenJaccard   float64
}

// buildFeatures precomputes the primitives used by the exact-id check,
// the polygamy rule, and every domain rule in ruleList.
func buildFeatures(a, b models.Record) PairFeatures {
	wa := strings.Fields(a.WomanNameNormalized)
	wb := strings.Fields(b.WomanNameNormalized)
	ha := strings.Fields(a.HusbandNameNormalized)
	hb := strings.Fields(b.HusbandNameNormalized)

	f := PairFeatures{
		WomanTokensA:      wa,
		WomanTokensB:      wb,
		HusbandTokensA:    ha,
		HusbandTokensB:    hb,
		WomanTokenJaccard: similarity.TokenJaccard(wa, wb),
		HusbandJW:         similarity.JaroWinkler(a.HusbandNameNormalized, b.HusbandNameNormalized),
		HusbandOrderFree:  similarity.NameOrderFreeScore(a.HusbandNameNormalized, b.HusbandNameNormalized),
		ChildrenJaccard:   similarity.TokenJaccard(a.ChildrenNormalized, b.ChildrenNormalized),
	}

	f.HusbandFirstJW = similarity.JaroWinkler(tokenAt(ha, 0), tokenAt(hb, 0))

	for i := 0; i < 4; i++ {
		ta, tb := tokenAt(wa, i), tokenAt(wb, i)
		if ta == "" || tb == "" {
			continue
		}
		f.WomanPositionJW[i] = similarity.JaroWinkler(ta, tb)
	}

	return f
}

func tokenAt(tokens []string, i int) string {
	if i < 0 || i >= len(tokens) {
		return ""
	}
	return tokens[i]
}

// womanPositionsAtLeast counts how many of the first n woman-name token
// positions have a JW score at or above threshold, among positions where
// both sides actually have a token.
func (f PairFeatures) womanPositionsAtLeast(n int, threshold float64) int {
	count := 0
	for i := 0; i < n && i < len(f.WomanPositionJW); i++ {
		if f.WomanPositionJW[i] >= threshold {
			count++
		}
	}
	return count
}

// Rule is one additional domain rule tried, in order, after the exact-id
// and polygamy checks and before the weighted-sum fallback. A Rule that
// panics is treated as a decline by the caller, never propagated.
type Rule struct {
	Name   string
	Reason models.ReasonTag
	Delta  float64
	Match  func(f PairFeatures) bool
}

// domainRules is the ordered fallback chain. Order matters: the first
// rule whose Match returns true wins.
var domainRules = []Rule{
	{
		Name:   "token_reorder",
		Reason: models.ReasonTokenReorder,
		Delta:  0.22,
		Match: func(f PairFeatures) bool {
			return f.WomanTokenJaccard >= 0.80
		},
	},
	{
		Name:   "strong_household_with_children",
		Reason: models.ReasonDuplicatedHusbandLineage,
		Delta:  0.25,
		Match: func(f PairFeatures) bool {
			return f.WomanPositionJW[0] >= 0.93 &&
				(f.HusbandJW >= 0.90 || f.HusbandOrderFree >= 0.90) &&
				f.ChildrenJaccard >= 0.90
		},
	},
	{
		Name:   "woman_lineage_match",
		Reason: models.ReasonWomanLineageMatch,
		Delta:  0.18,
		Match: func(f PairFeatures) bool {
			if len(f.WomanTokensA) < 4 || len(f.WomanTokensB) < 4 {
				return false
			}
			return f.womanPositionsAtLeast(4, 0.93) >= 3 && f.HusbandFirstJW < 0.70
		},
	},
	{
		Name:   "mixed_length_lineage_shift",
		Reason: models.ReasonDuplicatedHusbandLineage,
		Delta:  0.20,
		Match: func(f PairFeatures) bool {
			short, long := f.WomanTokensA, f.WomanTokensB
			if len(short) == 5 && len(long) == 4 {
				short, long = long, short
			}
			if len(short) != 4 || len(long) != 5 {
				return false
			}
			if f.HusbandFirstJW < 0.90 {
				return false
			}
			// Father-vs-grandfather shift: the short form's second token
			// should line up with the long form's third token, not its
			// second, once an extra lineage token has been inserted.
			fatherMatchesFather := similarity.JaroWinkler(short[1], long[1]) >= 0.80
			fatherMatchesGrand := similarity.JaroWinkler(short[1], long[2]) >= 0.90
			return !fatherMatchesFather && fatherMatchesGrand
		},
	},
	{
		Name:   "full_lineage_and_husband_strong",
		Reason: models.ReasonDuplicatedHusbandLineage,
		Delta:  0.23,
		Match: func(f PairFeatures) bool {
			if len(f.WomanTokensA) != 4 || len(f.WomanTokensB) != 4 {
				return false
			}
			return f.womanPositionsAtLeast(4, 0.93) == 4 &&
				(f.HusbandJW >= 0.90 || f.HusbandOrderFree >= 0.90)
		},
	},
}

// evaluateDomainRules runs domainRules in order and returns the first
// match. A rule panic is swallowed and treated as a decline, per the
// engine's best-effort-tolerant error policy.
func evaluateDomainRules(f PairFeatures) (Rule, bool) {
	for _, rule := range domainRules {
		if safeMatch(rule, f) {
			return rule, true
		}
	}
	return Rule{}, false
}

func safeMatch(rule Rule, f PairFeatures) (matched bool) {
	defer func() {
		if recover() != nil {
			matched = false
		}
	}()
	return rule.Match(f)
}

// evaluatePolygamy implements the second evaluation step: same husband,
// woman names agreeing on the second and third tokens. The first (given)
// token is not compared, so identical woman names also match.
func evaluatePolygamy(a, b models.Record, f PairFeatures, enabled bool) (score float64, ok bool) {
	if !enabled {
		return 0, false
	}
	if f.HusbandJW < 0.95 {
		return 0, false
	}
	if f.WomanPositionJW[1] < 0.93 || f.WomanPositionJW[2] < 0.90 {
		return 0, false
	}
	return 0.97, true
}

// evaluateExactID implements the first evaluation step.
func evaluateExactID(a, b models.Record) (score float64, ok bool) {
	if a.NationalID == "" || b.NationalID == "" {
		return 0, false
	}
	if a.NationalID != b.NationalID {
		return 0, false
	}
	return 0.99, true
}

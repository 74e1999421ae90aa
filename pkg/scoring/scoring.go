// Package scoring implements the pairwise scorer: the pure function that
// combines the C2 similarity primitives with domain rules into a single
// score, breakdown, and reason set for a record pair. The scorer never
// mutates its inputs.
package scoring

import (
	"strings"

	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/models"
	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/similarity"
)

// Result is the outcome of scoring one record pair.
type Result struct {
	Score     float64
	Breakdown models.ScoreBreakdown
	Reasons   []models.ReasonTag
}

// Score evaluates the pair (a, b) under cfg. Evaluation is a strict
// cascade: exact id, then the polygamy rule, then the ordered domain
// rules, then the weighted-sum fallback. The first short-circuit wins.
func Score(a, b models.Record, cfg models.Configuration) Result {
	if score, ok := evaluateExactID(a, b); ok {
		return Result{Score: score, Reasons: []models.ReasonTag{models.ReasonExactID}}
	}

	features := buildFeatures(a, b)

	if score, ok := evaluatePolygamy(a, b, features, cfg.Rules.EnablePolygamyRules); ok {
		return Result{Score: score, Reasons: []models.ReasonTag{models.ReasonPolygamyPattern}}
	}

	if rule, ok := evaluateDomainRules(features); ok {
		score := min(1, cfg.Thresholds.MinPair+rule.Delta)
		return Result{Score: score, Reasons: []models.ReasonTag{rule.Reason}}
	}

	return weightedSum(a, b, cfg.FinalScoreWeights)
}

// weightedSum is the fallback used when no earlier rule fires: the nine
// breakdown components combined with configurable weights, plus a
// synergy bonus when multiple name-based signals agree.
func weightedSum(a, b models.Record, weights models.FinalScoreWeights) Result {
	breakdown := models.ScoreBreakdown{
		FirstNameScore:    firstNameScore(a, b),
		FamilyNameScore:   familyNameScore(a, b),
		AdvancedNameScore: advancedNameScore(a, b),
		TokenReorderScore: similarity.NameOrderFreeScore(a.WomanNameNormalized, b.WomanNameNormalized),
		HusbandScore:      husbandScore(a, b),
		IDScore:           idScore(a, b),
		PhoneScore:        phoneScore(a, b),
		ChildrenScore:     similarity.TokenJaccard(a.ChildrenNormalized, b.ChildrenNormalized),
		LocationScore:     locationScore(a, b),
	}

	score := weights.FirstNameScore*breakdown.FirstNameScore +
		weights.FamilyNameScore*breakdown.FamilyNameScore +
		weights.AdvancedNameScore*breakdown.AdvancedNameScore +
		weights.TokenReorderScore*breakdown.TokenReorderScore +
		weights.HusbandScore*breakdown.HusbandScore +
		weights.IDScore*breakdown.IDScore +
		weights.PhoneScore*breakdown.PhoneScore +
		weights.ChildrenScore*breakdown.ChildrenScore +
		weights.LocationScore*breakdown.LocationScore

	agreeing := 0
	for _, s := range []float64{breakdown.FirstNameScore, breakdown.FamilyNameScore, breakdown.TokenReorderScore} {
		if s >= 0.85 {
			agreeing++
		}
	}
	if agreeing >= 2 {
		breakdown.SynergyBonus = 0.04
		score += breakdown.SynergyBonus
	}

	score = clamp01(score)

	var reasons []models.ReasonTag
	if breakdown.TokenReorderScore > 0.85 {
		reasons = append(reasons, models.ReasonTokenReorder)
	}

	return Result{Score: score, Breakdown: breakdown, Reasons: reasons}
}

func firstNameScore(a, b models.Record) float64 {
	wa := strings.Fields(a.WomanNameNormalized)
	wb := strings.Fields(b.WomanNameNormalized)
	return similarity.JaroWinkler(tokenAt(wa, 0), tokenAt(wb, 0))
}

func familyNameScore(a, b models.Record) float64 {
	wa := strings.Fields(a.WomanNameNormalized)
	wb := strings.Fields(b.WomanNameNormalized)
	return similarity.JaroWinkler(restJoined(wa), restJoined(wb))
}

func restJoined(tokens []string) string {
	if len(tokens) <= 1 {
		return ""
	}
	return strings.Join(tokens[1:], " ")
}

// advancedNameScore compares the first-3-runes "root" of every woman-name
// token, joined together, capped at 0.5 so it never dominates the sum.
func advancedNameScore(a, b models.Record) float64 {
	wa := strings.Fields(a.WomanNameNormalized)
	wb := strings.Fields(b.WomanNameNormalized)
	jw := similarity.JaroWinkler(root3(wa), root3(wb))
	if jw > 0.5 {
		return 0.5
	}
	return jw
}

func root3(tokens []string) string {
	var b strings.Builder
	for _, tok := range tokens {
		runes := []rune(tok)
		if len(runes) > 3 {
			runes = runes[:3]
		}
		b.WriteString(string(runes))
	}
	return b.String()
}

func husbandScore(a, b models.Record) float64 {
	jw := similarity.JaroWinkler(a.HusbandNameNormalized, b.HusbandNameNormalized)
	orderFree := similarity.NameOrderFreeScore(a.HusbandNameNormalized, b.HusbandNameNormalized)
	if orderFree > jw {
		return orderFree
	}
	return jw
}

func idScore(a, b models.Record) float64 {
	if a.NationalID != "" && a.NationalID == b.NationalID {
		return 1
	}
	da, db := lastNDigits(a.NationalID, 5), lastNDigits(b.NationalID, 5)
	if da != "" && da == db {
		return 0.75
	}
	return 0
}

func phoneScore(a, b models.Record) float64 {
	if a.Phone != "" && a.Phone == b.Phone {
		return 1
	}
	if d6a, d6b := lastNDigits(a.Phone, 6), lastNDigits(b.Phone, 6); d6a != "" && d6a == d6b {
		return 0.85
	}
	if d4a, d4b := lastNDigits(a.Phone, 4), lastNDigits(b.Phone, 4); d4a != "" && d4a == d4b {
		return 0.60
	}
	return 0
}

// lastNDigits returns the last n digits of s's digit-only form, or ""
// when s has fewer than n digits.
func lastNDigits(s string, n int) string {
	digits := digitsOnly(s)
	if len(digits) < n {
		return ""
	}
	return digits[len(digits)-n:]
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// locationScore deliberately reads Subdistrict_normalized, which the
// normalization pass never populates (see the normalize pass in
// pkg/engine); the subdistrict term is therefore always 0 until that is
// revisited. Preserved as specified rather than fixed.
func locationScore(a, b models.Record) float64 {
	score := 0.0
	if a.VillageNormalized != "" && a.VillageNormalized == b.VillageNormalized {
		score += 0.40
	}
	if a.SubdistrictNormalized != "" && a.SubdistrictNormalized == b.SubdistrictNormalized {
		score += 0.25
	}
	if score > 0.50 {
		return 0.50
	}
	return score
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/models"
)

func rec(womanName, husbandName, nationalID, phone, village, subdistrict string, children []string) models.Record {
	return models.Record{
		WomanNameNormalized:   womanName,
		HusbandNameNormalized: husbandName,
		NationalID:            nationalID,
		Phone:                 phone,
		VillageNormalized:     village,
		SubdistrictNormalized: subdistrict,
		ChildrenNormalized:    children,
	}
}

func TestScore_ExactID(t *testing.T) {
	a := rec("", "", "12345", "", "", "", nil)
	b := rec("", "", "12345", "", "", "", nil)

	result := Score(a, b, models.DefaultConfiguration())

	assert.Equal(t, 0.99, result.Score)
	assert.Contains(t, result.Reasons, models.ReasonExactID)
}

func TestScore_TokenReorder(t *testing.T) {
	a := rec("fatima ali mohammed aljubouri", "sameer", "", "", "", "", nil)
	b := rec("mohammed aljubouri fatima ali", "sameer", "", "", "", "", nil)

	cfg := models.DefaultConfiguration()
	result := Score(a, b, cfg)

	assert.Contains(t, result.Reasons, models.ReasonTokenReorder)
	assert.InDelta(t, cfg.Thresholds.MinPair+0.22, result.Score, 1e-9)
}

func TestScore_Polygamy(t *testing.T) {
	// Same husband; woman names share 2nd/3rd tokens strongly but differ
	// on the first (given) name.
	a := rec("fatima ali hassan aljubouri", "sameer hassan aljubouri", "", "", "", "", nil)
	b := rec("layla ali hassan aljubouri", "sameer hassan aljubouri", "", "", "", "", nil)

	result := Score(a, b, models.DefaultConfiguration())

	assert.Equal(t, 0.97, result.Score)
	assert.Contains(t, result.Reasons, models.ReasonPolygamyPattern)
}

func TestScore_PolygamyDisabled_FallsThrough(t *testing.T) {
	a := rec("fatima ali hassan aljubouri", "sameer hassan aljubouri", "", "", "", "", nil)
	b := rec("layla ali hassan aljubouri", "sameer hassan aljubouri", "", "", "", "", nil)

	cfg := models.DefaultConfiguration()
	cfg.Rules.EnablePolygamyRules = false

	result := Score(a, b, cfg)

	assert.NotEqual(t, 0.97, result.Score)
	assert.NotContains(t, result.Reasons, models.ReasonPolygamyPattern)
}

func TestScore_WeightedSumFallback_UnrelatedRecords(t *testing.T) {
	a := rec("fatima ali", "sameer hassan", "111", "0790000001", "alpha", "north", []string{"omar"})
	b := rec("sara khalil", "mahmoud jabbar", "222", "0790000002", "beta", "south", []string{"huda"})

	result := Score(a, b, models.DefaultConfiguration())

	require.NotNil(t, result.Breakdown)
	assert.Less(t, result.Score, 0.3)
}

func TestScore_IsSymmetric(t *testing.T) {
	a := rec("fatima ali mohammed aljubouri", "sameer hassan", "555", "0790000009", "alpha", "north", []string{"omar", "layla"})
	b := rec("mohammed aljubouri fatima ali", "sameer hassan", "556", "0790000008", "alpha", "north", []string{"layla", "omar"})

	ab := Score(a, b, models.DefaultConfiguration())
	ba := Score(b, a, models.DefaultConfiguration())

	assert.InDelta(t, ab.Score, ba.Score, 1e-9)
	assert.Equal(t, ab.Breakdown, ba.Breakdown)
}

func TestLocationScore_SubdistrictTermNeverFires(t *testing.T) {
	// subdistrict_normalized is never populated by the normalizer (see
	// pkg/engine), so two records with identical raw subdistricts still
	// score 0 on that term -- this is intentional, not a typo.
	a := rec("x", "y", "", "", "alpha", "", nil)
	b := rec("x", "y", "", "", "alpha", "", nil)
	a.Subdistrict, b.Subdistrict = "north", "north"

	assert.Equal(t, 0.40, locationScore(a, b))
}

package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/models"
)

func TestDuplicateID_ThreeRecordsAcrossTwoClusters(t *testing.T) {
	records := []models.Record{
		{InternalID: "row_0", NationalID: "77"},
		{InternalID: "row_1", NationalID: "77"},
		{InternalID: "row_2", NationalID: "77"},
		{InternalID: "row_3", NationalID: "other"},
	}

	findings := Run(records, nil)

	var dup []models.Finding
	for _, f := range findings {
		if f.Type == models.FindingDuplicateID {
			dup = append(dup, f)
		}
	}
	require.Len(t, dup, 1)
	assert.ElementsMatch(t, []int{0, 1, 2}, dup[0].Records)
	assert.Equal(t, models.SeverityHigh, dup[0].Severity)
}

func TestWomanMultipleHusbands(t *testing.T) {
	records := []models.Record{
		{InternalID: "row_0", WomanName: "Fatima Ali", HusbandName: "Sameer Hassan"},
		{InternalID: "row_1", WomanName: "Fatima Ali", HusbandName: "Mahmoud Jabbar"},
	}

	findings := Run(records, nil)

	require.Len(t, findings, 1)
	assert.Equal(t, models.FindingWomanMultipleHusbands, findings[0].Type)
	assert.Equal(t, models.SeverityHigh, findings[0].Severity)
	assert.ElementsMatch(t, []int{0, 1}, findings[0].Records)
}

func TestWomanMultipleHusbands_EmptyNameUsesInternalID(t *testing.T) {
	records := []models.Record{
		{InternalID: "row_0", WomanName: "", HusbandName: "A"},
		{InternalID: "row_1", WomanName: "", HusbandName: "B"},
	}

	// Different internalIds -> different groups -> no finding, even though
	// both woman names are blank.
	findings := Run(records, nil)
	for _, f := range findings {
		assert.NotEqual(t, models.FindingWomanMultipleHusbands, f.Type)
	}
}

func TestHighSimilarity_OnePerIntraClusterPair(t *testing.T) {
	records := []models.Record{
		{WomanNameNormalized: "fatima ali", HusbandNameNormalized: "sameer hassan"},
		{WomanNameNormalized: "fatima aly", HusbandNameNormalized: "sameer hasan"},
		{WomanNameNormalized: "unrelated name", HusbandNameNormalized: "also unrelated"},
	}
	clusters := []models.Cluster{{Records: []int{0, 1, 2}}}

	findings := Run(records, clusters)

	var sim []models.Finding
	for _, f := range findings {
		if f.Type == models.FindingHighSimilarity {
			sim = append(sim, f)
		}
	}
	require.Len(t, sim, 1)
	assert.Equal(t, []int{0, 1}, sim[0].Records)
}

func TestDuplicateCouple(t *testing.T) {
	records := []models.Record{
		{WomanName: "Fatima Ali", HusbandName: "Sameer Hassan"},
		{WomanName: "fatima ali", HusbandName: "sameer hassan"},
	}

	findings := Run(records, nil)

	require.Len(t, findings, 1)
	assert.Equal(t, models.FindingDuplicateCouple, findings[0].Type)
	assert.ElementsMatch(t, []int{0, 1}, findings[0].Records)
}

func TestRun_EmptyInput(t *testing.T) {
	assert.Empty(t, Run(nil, nil))
}

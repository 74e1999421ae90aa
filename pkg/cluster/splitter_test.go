package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/models"
)

func TestSplit_SmallSubsetAlwaysOneCluster(t *testing.T) {
	records := []models.Record{
		{NationalID: "12345"},
		{NationalID: "12345"},
		{},
	}

	clusters := Split(records, []int{0, 1, 2}, models.DefaultConfiguration(), 0.50)

	require.Len(t, clusters, 1)
	assert.Equal(t, []int{0, 1, 2}, clusters[0].Records)
}

func TestSplit_LargeSubsetCapsAtFour(t *testing.T) {
	records := make([]models.Record, 6)
	for i := range records {
		records[i] = models.Record{NationalID: "999"} // all mutually exact-id matches (0.99)
	}

	clusters := Split(records, []int{0, 1, 2, 3, 4, 5}, models.DefaultConfiguration(), 0.50)

	total := 0
	for _, c := range clusters {
		assert.LessOrEqual(t, len(c.Records), 4)
		total += len(c.Records)
	}
	assert.LessOrEqual(t, total, 6)
}

func TestSplit_SingletonGroupsDropped(t *testing.T) {
	// Five records where only two actually resemble each other; the rest
	// have no edge meeting minInternal and must not appear in any cluster.
	records := []models.Record{
		{WomanNameNormalized: "fatima ali", HusbandNameNormalized: "sameer"},
		{WomanNameNormalized: "fatima ali", HusbandNameNormalized: "sameer"},
		{WomanNameNormalized: "zzz one"},
		{WomanNameNormalized: "zzz two"},
		{WomanNameNormalized: "zzz three"},
	}

	clusters := Split(records, []int{0, 1, 2, 3, 4}, models.DefaultConfiguration(), 0.50)

	require.Len(t, clusters, 1)
	assert.Equal(t, []int{0, 1}, clusters[0].Records)
}

func TestSplit_SubsetOfOneReturnsNil(t *testing.T) {
	assert.Nil(t, Split([]models.Record{{}}, []int{0}, models.DefaultConfiguration(), 0.50))
}

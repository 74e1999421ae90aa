// Package audit applies a fixed rule set over finished clusters to
// surface suspected integrity problems: shared ids, women with multiple
// husbands, suspiciously similar intra-cluster pairs, and duplicate
// couples. Audit is a pure function of its inputs.
package audit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/models"
	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/similarity"
)

// Run applies every audit rule over records and clusters and returns the
// combined findings.
func Run(records []models.Record, clusters []models.Cluster) []models.Finding {
	var findings []models.Finding
	findings = append(findings, duplicateID(records)...)
	findings = append(findings, womanMultipleHusbands(records)...)
	findings = append(findings, highSimilarity(records, clusters)...)
	findings = append(findings, duplicateCouple(records)...)
	return findings
}

// duplicateID: records sharing a non-empty national id, one finding per
// id with 2+ occurrences.
func duplicateID(records []models.Record) []models.Finding {
	groups := make(map[string][]int)
	for i, r := range records {
		if r.NationalID == "" {
			continue
		}
		groups[r.NationalID] = append(groups[r.NationalID], i)
	}

	var findings []models.Finding
	for _, id := range sortedKeys(groups) {
		members := groups[id]
		if len(members) < 2 {
			continue
		}
		findings = append(findings, models.Finding{
			Type:        models.FindingDuplicateID,
			Severity:    models.SeverityHigh,
			Description: fmt.Sprintf("%d records share national id %q", len(members), id),
			Records:     members,
		})
	}
	return findings
}

// womanMultipleHusbands: group by raw woman name (or internalId if the
// name is empty); one finding per group with 2+ distinct non-empty
// husband names.
func womanMultipleHusbands(records []models.Record) []models.Finding {
	groups := make(map[string][]int)
	for i, r := range records {
		key := r.WomanName
		if key == "" {
			key = r.InternalID
		}
		groups[key] = append(groups[key], i)
	}

	var findings []models.Finding
	for _, key := range sortedKeys(groups) {
		members := groups[key]
		husbands := make(map[string]struct{})
		for _, idx := range members {
			h := records[idx].HusbandName
			if h != "" {
				husbands[h] = struct{}{}
			}
		}
		if len(husbands) < 2 {
			continue
		}
		findings = append(findings, models.Finding{
			Type:        models.FindingWomanMultipleHusbands,
			Severity:    models.SeverityHigh,
			Description: fmt.Sprintf("woman %q appears with %d distinct husband names", key, len(husbands)),
			Records:     members,
		})
	}
	return findings
}

// highSimilarity: for every intra-cluster pair, if JW(woman names) >=
// 0.92 and JW(husband names) >= 0.90, emit one finding per pair.
func highSimilarity(records []models.Record, clusters []models.Cluster) []models.Finding {
	var findings []models.Finding
	for _, c := range clusters {
		members := append([]int(nil), c.Records...)
		sort.Ints(members)
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				a, b := records[members[i]], records[members[j]]
				womanJW := similarity.JaroWinkler(a.WomanNameNormalized, b.WomanNameNormalized)
				husbandJW := similarity.JaroWinkler(a.HusbandNameNormalized, b.HusbandNameNormalized)
				if womanJW >= 0.92 && husbandJW >= 0.90 {
					findings = append(findings, models.Finding{
						Type:        models.FindingHighSimilarity,
						Severity:    models.SeverityMedium,
						Description: fmt.Sprintf("records %d and %d are highly similar (woman JW=%.2f, husband JW=%.2f)", members[i], members[j], womanJW, husbandJW),
						Records:     []int{members[i], members[j]},
					})
				}
			}
		}
	}
	return findings
}

// duplicateCouple: key lowercase(womanName)|lowercase(husbandName); a
// group with 2+ records yields one finding.
func duplicateCouple(records []models.Record) []models.Finding {
	groups := make(map[string][]int)
	for i, r := range records {
		key := strings.ToLower(r.WomanName) + "|" + strings.ToLower(r.HusbandName)
		groups[key] = append(groups[key], i)
	}

	var findings []models.Finding
	for _, key := range sortedKeys(groups) {
		members := groups[key]
		if len(members) < 2 {
			continue
		}
		findings = append(findings, models.Finding{
			Type:        models.FindingDuplicateCouple,
			Severity:    models.SeverityMedium,
			Description: fmt.Sprintf("%d records share the couple %q", len(members), key),
			Records:     members,
		})
	}
	return findings
}

func sortedKeys(groups map[string][]int) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Package models contains the data types shared by every stage of the
// dedupe engine: raw and normalized records, scored edges, finished
// clusters, and audit findings.
package models

import "encoding/json"

// ReasonTag is a symbolic label explaining why an edge or cluster was formed.
type ReasonTag string

const (
	ReasonExactID                  ReasonTag = "EXACT_ID"
	ReasonPolygamyPattern          ReasonTag = "POLYGAMY_PATTERN"
	ReasonTokenReorder             ReasonTag = "TOKEN_REORDER"
	ReasonWomanLineageMatch        ReasonTag = "WOMAN_LINEAGE_MATCH"
	ReasonDuplicatedHusbandLineage ReasonTag = "DUPLICATED_HUSBAND_LINEAGE"
	ReasonAdditionalRule           ReasonTag = "ADDITIONAL_RULE"
)

// Record is a single beneficiary row. Canonical fields are resolved from
// the input's mapping (if any); everything else the row carried rides
// along unchanged in Passthrough so the host can round-trip it.
//
// InternalID is assigned by the driver as "row_" + position and is the
// stable identity used for cluster membership and determinism checks.
type Record struct {
	InternalID string

	WomanName   string
	HusbandName string
	NationalID  string
	Phone       string
	Village     string
	Subdistrict string
	ChildrenRaw any

	// Passthrough carries every field the source row had that isn't one
	// of the canonical columns above, so MarshalJSON can round-trip it.
	Passthrough map[string]any

	WomanNameNormalized   string
	HusbandNameNormalized string
	VillageNormalized     string
	SubdistrictNormalized string
	ChildrenNormalized    []string
}

// MarshalJSON emits the original row (Passthrough) overlaid with the
// canonical and derived fields, so a record serializes as the source row
// plus whatever the engine added to it, not as a narrow DTO.
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Passthrough)+12)
	for k, v := range r.Passthrough {
		out[k] = v
	}

	out["internalId"] = r.InternalID
	out["womanName"] = r.WomanName
	out["husbandName"] = r.HusbandName
	out["nationalId"] = r.NationalID
	out["phone"] = r.Phone
	out["village"] = r.Village
	out["subdistrict"] = r.Subdistrict
	if r.ChildrenRaw != nil {
		out["children"] = r.ChildrenRaw
	}

	out["womanName_normalized"] = r.WomanNameNormalized
	out["husbandName_normalized"] = r.HusbandNameNormalized
	out["village_normalized"] = r.VillageNormalized
	out["subdistrict_normalized"] = r.SubdistrictNormalized
	out["children_normalized"] = r.ChildrenNormalized

	return json.Marshal(out)
}

// Edge is a scored candidate pair produced by the scorer and consumed by
// the assembler. A and B are always ordered A < B by record index.
type Edge struct {
	A       int
	B       int
	Score   float64
	Reasons []ReasonTag
}

// Cluster is a finalized group of 2-4 records believed to be the same
// beneficiary unit.
type Cluster struct {
	Records    []int       `json:"records"`
	Reasons    []ReasonTag `json:"reasons"`
	PairScores []PairScore `json:"pairScores"`
}

// PairScore is one retained intra-cluster pair score, kept for display
// and averaging by the host.
type PairScore struct {
	A     int     `json:"a"`
	B     int     `json:"b"`
	Score float64 `json:"score"`
}

// FindingType enumerates the audit rules a Finding can originate from.
type FindingType string

const (
	FindingDuplicateID            FindingType = "DUPLICATE_ID"
	FindingWomanMultipleHusbands  FindingType = "WOMAN_MULTIPLE_HUSBANDS"
	FindingHighSimilarity         FindingType = "HIGH_SIMILARITY"
	FindingDuplicateCouple        FindingType = "DUPLICATE_COUPLE"
)

// Severity is how urgently a Finding should be reviewed.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Finding is an audit observation referencing one or more records. It
// never owns the records it describes, only their indices.
type Finding struct {
	Type        FindingType `json:"type"`
	Severity    Severity    `json:"severity"`
	Description string      `json:"description"`
	Records     []int       `json:"records"`
}

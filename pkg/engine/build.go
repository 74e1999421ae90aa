package engine

import (
	"fmt"

	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/extractor"
	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/models"
	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/normalize"
)

// canonicalColumns are the source-row keys used when the caller supplies
// no mapping entry for a field.
var canonicalColumns = struct {
	WomanName, HusbandName, NationalID, Phone, Village, Subdistrict, Children string
}{
	WomanName:   "womanName",
	HusbandName: "husbandName",
	NationalID:  "nationalId",
	Phone:       "phone",
	Village:     "village",
	Subdistrict: "subdistrict",
	Children:    "children",
}

// buildRecords resolves the canonical fields of every input row via ext
// and mapping, assigns InternalID "row_<i>", and carries every
// unmapped source column through as Passthrough.
func buildRecords(rows []map[string]any, mapping *models.Mapping, ext *extractor.Extractor) []models.Record {
	records := make([]models.Record, len(rows))
	for i, row := range rows {
		records[i] = buildRecord(i, row, mapping, ext)
	}
	return records
}

func buildRecord(i int, row map[string]any, mapping *models.Mapping, ext *extractor.Extractor) models.Record {
	col := func(mapped, fallback string) string {
		if mapped != "" {
			return mapped
		}
		return fallback
	}

	womanCol := canonicalColumns.WomanName
	husbandCol := canonicalColumns.HusbandName
	nationalIDCol := canonicalColumns.NationalID
	phoneCol := canonicalColumns.Phone
	villageCol := canonicalColumns.Village
	subdistrictCol := canonicalColumns.Subdistrict
	childrenCol := canonicalColumns.Children

	if mapping != nil {
		womanCol = col(mapping.WomanName, womanCol)
		husbandCol = col(mapping.HusbandName, husbandCol)
		nationalIDCol = col(mapping.NationalID, nationalIDCol)
		phoneCol = col(mapping.Phone, phoneCol)
		villageCol = col(mapping.Village, villageCol)
		subdistrictCol = col(mapping.Subdistrict, subdistrictCol)
		childrenCol = col(mapping.Children, childrenCol)
	}

	rec := models.Record{
		InternalID:  fmt.Sprintf("row_%d", i),
		WomanName:   extractString(ext, row, womanCol),
		HusbandName: extractString(ext, row, husbandCol),
		NationalID:  extractString(ext, row, nationalIDCol),
		Phone:       extractString(ext, row, phoneCol),
		Village:     extractString(ext, row, villageCol),
		Subdistrict: extractString(ext, row, subdistrictCol),
	}

	if v, err := ext.Extract(row, childrenCol); err == nil {
		rec.ChildrenRaw = v
	}

	used := map[string]struct{}{
		womanCol: {}, husbandCol: {}, nationalIDCol: {}, phoneCol: {},
		villageCol: {}, subdistrictCol: {}, childrenCol: {},
	}
	passthrough := make(map[string]any, len(row))
	for k, v := range row {
		if _, ok := used[k]; ok {
			continue
		}
		passthrough[k] = v
	}
	rec.Passthrough = passthrough

	return rec
}

func extractString(ext *extractor.Extractor, row map[string]any, path string) string {
	s, err := ext.ExtractString(row, path)
	if err != nil || s == nil {
		return ""
	}
	return *s
}

// normalizeRecords populates the derived fields of every record in place
// per the normalization pass: woman name, husband name, village, and
// children. Subdistrict is deliberately left unset, matching the
// upstream normalization contract this engine preserves.
func normalizeRecords(records []models.Record) {
	for i := range records {
		r := &records[i]
		r.WomanNameNormalized = normalize.Normalize(r.WomanName)
		r.HusbandNameNormalized = normalize.Normalize(r.HusbandName)
		r.VillageNormalized = normalize.Normalize(r.Village)
		r.ChildrenNormalized = normalize.NormalizeChildrenField(r.ChildrenRaw)
	}
}

// Package blocking partitions records into candidate buckets so the
// pairwise scorer only ever looks at intra-bucket pairs, keeping the
// O(n^2) comparison cost tractable on realistic beneficiary lists.
package blocking

import (
	"sort"
	"strings"

	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/models"
)

// PairKey identifies an unordered candidate pair by ordered indices.
type PairKey struct {
	A, B int
}

// Keys computes the seven blocking keys for one record. Empty strings
// are never emitted as keys; a record with no computable key at all
// falls into the sentinel "blk:all" bucket handled by Buckets.
func Keys(r models.Record) []string {
	wFirst := firstNChars(firstToken(r.WomanNameNormalized), 3)
	hFirst := firstNChars(firstToken(r.HusbandNameNormalized), 3)
	idLast4 := lastNChars(digitsOnly(r.NationalID), 4)
	phoneLast4 := lastNChars(digitsOnly(r.Phone), 4)
	village := firstNChars(r.VillageNormalized, 6)

	var keys []string
	add := func(k string) {
		if k != "" {
			keys = append(keys, k)
		}
	}

	add(joinNonEmpty("full", wFirst, hFirst, idLast4, phoneLast4))
	add(joinNonEmpty("wp", wFirst, phoneLast4))
	add(joinNonEmpty("wi", wFirst, idLast4))
	add(joinNonEmpty("wh", wFirst, hFirst))
	if hFirst != "" {
		add("h:" + hFirst)
	}
	if wFirst != "" {
		add("w:" + wFirst)
	}
	if village != "" {
		add("v:" + village)
	}

	if len(keys) == 0 {
		keys = []string{"blk:all"}
	}
	return keys
}

// joinNonEmpty builds "prefix:part1:part2:..." but only when every part
// is non-empty; otherwise it returns "" so the bucket is skipped.
func joinNonEmpty(prefix string, parts ...string) string {
	for _, p := range parts {
		if p == "" {
			return ""
		}
	}
	return prefix + ":" + strings.Join(parts, ":")
}

func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func firstNChars(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}

func lastNChars(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[len(r)-n:]
	}
	return string(r)
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

// Buckets groups record indices by every blocking key they belong to.
func Buckets(records []models.Record) map[string][]int {
	buckets := make(map[string][]int)
	for i, r := range records {
		for _, key := range Keys(r) {
			buckets[key] = append(buckets[key], i)
		}
	}
	return buckets
}

// CandidatePairs returns the deduplicated, ordered-index union of every
// intra-bucket pair across buckets. Buckets larger than chunkSize are
// processed in contiguous chunks, chunk-against-itself only, trading some
// recall for bounded worst-case cost on pathological buckets.
//
// onBucket, if non-nil, is called after each bucket is processed (used by
// the driver to emit a progress message every 20 buckets).
func CandidatePairs(buckets map[string][]int, chunkSize int, onBucket func(completed, total int)) []PairKey {
	if chunkSize <= 0 {
		chunkSize = 3000
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	seen := make(map[PairKey]struct{})
	var pairs []PairKey

	for i, key := range keys {
		members := buckets[key]
		for _, chunk := range chunkify(members, chunkSize) {
			addChunkPairs(chunk, seen, &pairs)
		}
		if onBucket != nil {
			onBucket(i+1, len(keys))
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})

	return pairs
}

func chunkify(members []int, chunkSize int) [][]int {
	if len(members) <= chunkSize {
		return [][]int{members}
	}
	var chunks [][]int
	for start := 0; start < len(members); start += chunkSize {
		end := start + chunkSize
		if end > len(members) {
			end = len(members)
		}
		chunks = append(chunks, members[start:end])
	}
	return chunks
}

func addChunkPairs(members []int, seen map[PairKey]struct{}, pairs *[]PairKey) {
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			a, b := members[i], members[j]
			if a > b {
				a, b = b, a
			}
			key := PairKey{A: a, B: b}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			*pairs = append(*pairs, key)
		}
	}
}

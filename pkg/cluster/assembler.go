// Package cluster assembles scored edges into finished clusters: an
// edge-weighted union-find with a hard 4-member cap (C5), falling back
// to a deterministic splitter (C6) whenever a merge would overflow it.
package cluster

import (
	"sort"

	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/models"
)

// AssembleResult is the output of one assembly pass.
type AssembleResult struct {
	Clusters  []models.Cluster
	EdgesUsed int
}

// progressEvery is how often, in consumed edges, the assembler reports
// progress back to the driver.
const progressEvery = 200

// Assemble consumes edges in strictly descending score order (ties broken
// by ascending (a,b), already guaranteed by the caller per the engine's
// ordering contract) and merges them via union-find up to a 4-member cap,
// invoking the splitter on overflow. onProgress, if non-nil, is called
// every 200 edges.
func Assemble(records []models.Record, edges []models.Edge, cfg models.Configuration, onProgress func(completed, total int)) AssembleResult {
	n := len(records)
	uf := newUnionFind(n)
	finalized := make([]bool, n)

	var clusters []models.Cluster
	edgesUsed := 0

	// finalize splits subset via the splitter, merges the accumulated
	// root reasons (propagated onto every touched edge, not just the
	// ones the splitter itself retains) into each resulting sub-cluster,
	// and marks every subset member finalized regardless of whether the
	// splitter kept it in a cluster or dropped it as a singleton.
	finalize := func(subset []int, inherited []reasonKey, subCfg models.Configuration, minInternal float64) {
		for _, sub := range Split(records, subset, subCfg, minInternal) {
			sub.Reasons = mergeReasons(sub.Reasons, inherited)
			clusters = append(clusters, sub)
		}
		for _, idx := range subset {
			finalized[idx] = true
		}
	}

	for i, e := range edges {
		if finalized[e.A] || finalized[e.B] {
			continue
		}

		uf.addReasons(e.A, reasonKeys(e.Reasons)...)
		uf.addReasons(e.B, reasonKeys(e.Reasons)...)

		ra, rb := uf.find(e.A), uf.find(e.B)
		if ra == rb {
			edgesUsed++
		} else if uf.size[ra]+uf.size[rb] <= 4 {
			uf.union(e.A, e.B)
			edgesUsed++
		} else {
			members := append(uf.members(ra, n), uf.members(rb, n)...)
			inherited := append(uf.reasonsOf(ra), uf.reasonsOf(rb)...)
			finalize(members, inherited, cfg, cfg.Thresholds.MinInternal)
			edgesUsed++
		}

		if onProgress != nil && (i+1)%progressEvery == 0 {
			onProgress(i+1, len(edges))
		}
	}
	if onProgress != nil && len(edges) > 0 && len(edges)%progressEvery != 0 {
		onProgress(len(edges), len(edges))
	}

	// Any record left in a multi-member component that never overflowed
	// still needs to go through the splitter.
	leftoverGroups := make(map[int][]int)
	for i := 0; i < n; i++ {
		if finalized[i] {
			continue
		}
		root := uf.find(i)
		leftoverGroups[root] = append(leftoverGroups[root], i)
	}

	roots := make([]int, 0, len(leftoverGroups))
	for root := range leftoverGroups {
		roots = append(roots, root)
	}
	sort.Ints(roots)

	for _, root := range roots {
		group := leftoverGroups[root]
		if len(group) < 2 {
			continue
		}
		finalize(group, uf.reasonsOf(root), cfg, cfg.Thresholds.MinInternal)
	}

	return AssembleResult{Clusters: clusters, EdgesUsed: edgesUsed}
}

func reasonKeys(reasons []models.ReasonTag) []reasonKey {
	keys := make([]reasonKey, len(reasons))
	for i, r := range reasons {
		keys[i] = reasonKey(r)
	}
	return keys
}

// mergeReasons unions a cluster's freshly-derived reasons with an
// inherited set, sorted for deterministic output.
func mergeReasons(reasons []models.ReasonTag, inherited []reasonKey) []models.ReasonTag {
	set := make(map[models.ReasonTag]struct{}, len(reasons)+len(inherited))
	for _, r := range reasons {
		set[r] = struct{}{}
	}
	for _, k := range inherited {
		set[models.ReasonTag(k)] = struct{}{}
	}

	merged := make([]models.ReasonTag, 0, len(set))
	for r := range set {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i] < merged[j] })
	return merged
}

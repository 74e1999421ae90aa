// Package engine implements the driver (C8): the single entry point that
// turns one EngineInput into an ordered stream of progress, pairwise, and
// terminal messages by running the normalizer, blocking index, pairwise
// scorer, cluster assembler, and audit engine in sequence.
package engine

import (
	"context"
	"sort"

	"github.com/Gobusters/ectologger"

	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/audit"
	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/blocking"
	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/cluster"
	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/extractor"
	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/models"
	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/scoring"
	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/tracing"
)

// edgeProgressEvery mirrors pkg/cluster's progressEvery: a progress
// message every 200 pairs scored during building-edges.
const edgeProgressEvery = 200

// bucketProgressEvery is the driver's own cadence for the blocking phase,
// per spec's "progress message every 20 buckets".
const bucketProgressEvery = 20

// Driver runs one engine pass per Run call. It holds no per-run state,
// so a single Driver is safe to reuse (and to inject) across requests.
type Driver struct {
	logger ectologger.Logger
}

// NewDriver constructs a Driver that logs through log.
func NewDriver(log ectologger.Logger) *Driver {
	return &Driver{logger: log}
}

// Run executes one engine pass and returns a channel of EngineMessage in
// emission order. The channel is closed after the terminal message
// (done or error) is sent. A cancelled ctx is noticed at the next
// progress-emit boundary, after which the driver emits a terminal
// error:"cancelled" message instead of done; the blocking and
// merging-edges phases finish their current pass before that message.
func (d *Driver) Run(ctx context.Context, input models.EngineInput) <-chan models.EngineMessage {
	out := make(chan models.EngineMessage, 16)
	go func() {
		defer close(out)
		d.run(ctx, input, out)
	}()
	return out
}

func (d *Driver) run(ctx context.Context, input models.EngineInput, out chan<- models.EngineMessage) {
	ctx, span := tracing.StartSpan(ctx, "engine.Driver.Run")
	defer span.End()

	log := d.logger.WithContext(ctx).WithFields(map[string]any{
		"record_count": len(input.Records),
		"pairwise_only": input.PairwiseOnly,
	})
	log.Debug("starting dedupe run")

	cfg := models.DefaultConfiguration()
	if input.Options != nil {
		cfg = cfg.Merge(*input.Options)
	}

	ext := extractor.New()
	records := buildRecords(input.Records, input.Mapping, ext)
	normalizeRecords(records)

	if input.PairwiseOnly {
		d.runPairwiseOnly(ctx, records, cfg, out)
		return
	}

	// blocking
	sendProgress(out, "blocking", 0, 0, 0)
	buckets := blocking.Buckets(records)
	cancelled := false
	onBucket := func(completed, total int) {
		if completed%bucketProgressEvery != 0 && completed != total {
			return
		}
		pct := phasePercent(0, 15, completed, total)
		sendProgress(out, "blocking", pct, completed, total)
		if checkCancelled(ctx) {
			cancelled = true
		}
	}
	pairs := blocking.CandidatePairs(buckets, cfg.Thresholds.BlockChunkSize, onBucket)
	if cancelled {
		sendCancelled(out)
		return
	}

	// building-edges
	sendProgress(out, "building-edges", 15, 0, len(pairs))
	edges := make([]models.Edge, 0, len(pairs))
	for i, pk := range pairs {
		result := scoring.Score(records[pk.A], records[pk.B], cfg)
		if result.Score >= cfg.Thresholds.MinPair {
			edges = append(edges, models.Edge{A: pk.A, B: pk.B, Score: result.Score, Reasons: result.Reasons})
		}

		if (i+1)%edgeProgressEvery == 0 || i+1 == len(pairs) {
			pct := phasePercent(15, 55, i+1, len(pairs))
			sendProgress(out, "building-edges", pct, i+1, len(pairs))
			if checkCancelled(ctx) {
				sendCancelled(out)
				return
			}
		}
	}
	sortEdges(edges)

	// edges-built
	sendProgress(out, "edges-built", 55, len(edges), len(edges))
	if checkCancelled(ctx) {
		sendCancelled(out)
		return
	}

	// merging-edges
	sendProgress(out, "merging-edges", 55, 0, len(edges))
	cancelled = false
	onMergeProgress := func(completed, total int) {
		pct := phasePercent(55, 90, completed, total)
		sendProgress(out, "merging-edges", pct, completed, total)
		if checkCancelled(ctx) {
			cancelled = true
		}
	}
	result := cluster.Assemble(records, edges, cfg, onMergeProgress)
	if cancelled {
		sendCancelled(out)
		return
	}

	// annotating
	sendProgress(out, "annotating", 90, 0, 0)
	findings := audit.Run(records, result.Clusters)
	if checkCancelled(ctx) {
		sendCancelled(out)
		return
	}
	log.WithFields(map[string]any{
		"cluster_count": len(result.Clusters),
		"finding_count": len(findings),
		"edges_used":    result.EdgesUsed,
	}).Info("dedupe run finished")

	out <- models.EngineMessage{
		Type: models.MessageDone,
		Payload: &models.DonePayload{
			Rows:      records,
			Clusters:  result.Clusters,
			EdgesUsed: result.EdgesUsed,
		},
	}
}

// runPairwiseOnly scores every unordered pair and emits a single
// pairwise-result message followed by done, skipping clustering.
func (d *Driver) runPairwiseOnly(ctx context.Context, records []models.Record, cfg models.Configuration, out chan<- models.EngineMessage) {
	total := len(records) * (len(records) - 1) / 2
	sendProgress(out, "scoring", 0, 0, total)

	var pairs []models.PairwiseResult
	done := 0
	for a := 0; a < len(records); a++ {
		for b := a + 1; b < len(records); b++ {
			result := scoring.Score(records[a], records[b], cfg)
			pairs = append(pairs, models.PairwiseResult{
				AIndex:    a,
				BIndex:    b,
				Score:     result.Score,
				Breakdown: result.Breakdown,
				Reasons:   result.Reasons,
			})
			done++
			if done%edgeProgressEvery == 0 || done == total {
				sendProgress(out, "scoring", phasePercent(0, 90, done, total), done, total)
				if checkCancelled(ctx) {
					sendCancelled(out)
					return
				}
			}
		}
	}

	out <- models.EngineMessage{Type: models.MessagePairwiseResult, Pairs: pairs}

	out <- models.EngineMessage{
		Type: models.MessageDone,
		Payload: &models.DonePayload{Rows: records},
	}
}

func sendProgress(out chan<- models.EngineMessage, status string, progress, completed, total int) {
	out <- models.EngineMessage{
		Type:      models.MessageProgress,
		Status:    status,
		Progress:  progress,
		Completed: completed,
		Total:     total,
	}
}

func sendCancelled(out chan<- models.EngineMessage) {
	out <- models.EngineMessage{Type: models.MessageError, Error: "cancelled"}
}

func checkCancelled(ctx context.Context) bool {
	return ctx.Err() != nil
}

// phasePercent maps a completed/total ratio onto the [lo, hi] band
// reserved for one phase, keeping the overall progress monotonically
// nondecreasing across phase boundaries.
func phasePercent(lo, hi, completed, total int) int {
	if total <= 0 {
		return lo
	}
	span := hi - lo
	pct := lo + span*completed/total
	if pct > hi {
		pct = hi
	}
	if pct < lo {
		pct = lo
	}
	return pct
}

// sortEdges orders edges by strictly descending score, ties broken by
// ascending (a, b), satisfying the assembler's ordering contract.
func sortEdges(edges []models.Edge) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Score != edges[j].Score {
			return edges[i].Score > edges[j].Score
		}
		if edges[i].A != edges[j].A {
			return edges[i].A < edges[j].A
		}
		return edges[i].B < edges[j].B
	})
}

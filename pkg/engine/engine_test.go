package engine

import (
	"context"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/models"
)

func drain(t *testing.T, ch <-chan models.EngineMessage, timeout time.Duration) []models.EngineMessage {
	t.Helper()
	var msgs []models.EngineMessage
	deadline := time.After(timeout)
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return msgs
			}
			msgs = append(msgs, msg)
		case <-deadline:
			t.Fatal("timed out draining engine output")
			return msgs
		}
	}
}

func rows(pairs ...[2]string) []map[string]any {
	out := make([]map[string]any, len(pairs))
	for i, p := range pairs {
		out[i] = map[string]any{"womanName": p[0], "husbandName": p[1]}
	}
	return out
}

func TestDriver_Run_SimplePairMerges(t *testing.T) {
	driver := NewDriver(ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {}))
	input := models.EngineInput{
		Records: rows(
			[2]string{"Fatima Ali Hassan", "Sameer Mahmoud Jabbar"},
			[2]string{"Fatima Ali Hassan", "Sameer Mahmoud Jabbar"},
			[2]string{"Completely Different Woman", "Totally Unrelated Man"},
		),
	}

	msgs := drain(t, driver.Run(context.Background(), input), 2*time.Second)
	require.NotEmpty(t, msgs)

	last := msgs[len(msgs)-1]
	require.Equal(t, models.MessageDone, last.Type)
	require.NotNil(t, last.Payload)
	assert.Len(t, last.Payload.Rows, 3)
	require.Len(t, last.Payload.Clusters, 1)
	assert.Equal(t, []int{0, 1}, last.Payload.Clusters[0].Records)

	var sawProgress bool
	for _, m := range msgs {
		if m.Type == models.MessageProgress {
			sawProgress = true
		}
	}
	assert.True(t, sawProgress)
}

func TestDriver_Run_PairwiseOnly(t *testing.T) {
	driver := NewDriver(ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {}))
	input := models.EngineInput{
		PairwiseOnly: true,
		Records: rows(
			[2]string{"Fatima Ali", "Sameer Hassan"},
			[2]string{"Sara Khalil", "Omar Jabbar"},
			[2]string{"Layla Nour", "Khaled Issa"},
		),
	}

	msgs := drain(t, driver.Run(context.Background(), input), 2*time.Second)
	require.GreaterOrEqual(t, len(msgs), 2)

	var pairwise *models.EngineMessage
	for i := range msgs {
		if msgs[i].Type == models.MessagePairwiseResult {
			pairwise = &msgs[i]
		}
	}
	require.NotNil(t, pairwise)
	assert.Len(t, pairwise.Pairs, 3) // C(3,2)

	last := msgs[len(msgs)-1]
	assert.Equal(t, models.MessageDone, last.Type)
}

func TestDriver_Run_CancellationBeforeStart(t *testing.T) {
	driver := NewDriver(ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	input := models.EngineInput{
		Records: rows(
			[2]string{"A", "B"},
			[2]string{"C", "D"},
		),
	}

	msgs := drain(t, driver.Run(ctx, input), 2*time.Second)
	require.NotEmpty(t, msgs)

	last := msgs[len(msgs)-1]
	assert.Equal(t, models.MessageError, last.Type)
	assert.Equal(t, "cancelled", last.Error)
	for _, m := range msgs {
		assert.NotEqual(t, models.MessageDone, m.Type)
	}
}

func TestDriver_Run_MappingResolvesCanonicalFields(t *testing.T) {
	driver := NewDriver(ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {}))
	input := models.EngineInput{
		Mapping: &models.Mapping{WomanName: "w", HusbandName: "h"},
		Records: []map[string]any{
			{"w": "Fatima Ali", "h": "Sameer Hassan", "extra": "keepme"},
		},
	}

	msgs := drain(t, driver.Run(context.Background(), input), 2*time.Second)
	last := msgs[len(msgs)-1]
	require.Equal(t, models.MessageDone, last.Type)
	require.Len(t, last.Payload.Rows, 1)
	assert.Equal(t, "Fatima Ali", last.Payload.Rows[0].WomanName)
	assert.Equal(t, "keepme", last.Payload.Rows[0].Passthrough["extra"])
}

func TestDriver_Run_EmptyInput(t *testing.T) {
	driver := NewDriver(ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {}))
	msgs := drain(t, driver.Run(context.Background(), models.EngineInput{}), 2*time.Second)
	last := msgs[len(msgs)-1]
	require.Equal(t, models.MessageDone, last.Type)
	assert.Empty(t, last.Payload.Rows)
	assert.Empty(t, last.Payload.Clusters)
}

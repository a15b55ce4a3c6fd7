package ops

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/msbatch/internal/batch"
	"github.com/hpungsan/msbatch/internal/sequence"
)

// GenerateInput contains parameters for the Generate operation.
type GenerateInput struct {
	Batch *batch.Batch // required
}

// GeneratedEntry is one named slot of the sequence. Position is 1-based.
type GeneratedEntry struct {
	Position int               `json:"position"`
	Category sequence.Category `json:"type"`
	Index    int               `json:"index"`
	Name     string            `json:"name"`
}

// GenerateOutput contains the result of the Generate operation.
type GenerateOutput struct {
	BatchID     string           `json:"batch_id"`
	Project     string           `json:"project,omitempty"`
	Instrument  string           `json:"instrument,omitempty"`
	Entries     []GeneratedEntry `json:"entries"`
	Summary     Summary          `json:"summary"`
	Advisories  []string         `json:"advisories,omitempty"`
	GeneratedAt int64            `json:"generated_at"`
}

// Generate builds and names the injection sequence of a batch. An
// instrument is optional here; when one is named it must be known and its
// advisories are included.
func Generate(ctx context.Context, env *Env, input GenerateInput) (*GenerateOutput, error) {
	p, err := prepare(ctx, env, input.Batch, false)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	out := &GenerateOutput{
		BatchID:     newBatchID(now),
		Project:     p.batch.Project,
		Instrument:  p.plan.Instrument,
		Entries:     make([]GeneratedEntry, len(p.seq)),
		Summary:     summarize(sequence.Tally(p.seq)),
		Advisories:  p.advisories,
		GeneratedAt: now.Unix(),
	}
	for i, e := range p.seq {
		out.Entries[i] = GeneratedEntry{Position: i + 1, Category: e.Category, Index: e.Index, Name: p.names[i]}
	}

	env.logger().Info("sequence generated",
		zap.String("batch_id", out.BatchID),
		zap.String("project", out.Project),
		zap.Int("total", out.Summary.Total))
	return out, nil
}

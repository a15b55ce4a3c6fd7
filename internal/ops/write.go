package ops

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/hpungsan/msbatch/internal/batch"
	"github.com/hpungsan/msbatch/internal/errors"
	"github.com/hpungsan/msbatch/internal/worklist"
)

// WriteWorklistInput contains parameters for the WriteWorklist operation.
type WriteWorklistInput struct {
	Batch         *batch.Batch // required, must name an instrument
	IncludeHeader *bool        // optional, default: config include_header
}

// WriteWorklistOutput contains the result of the WriteWorklist operation.
type WriteWorklistOutput struct {
	Instrument string   `json:"instrument"`
	Rows       int      `json:"rows"`
	Advisories []string `json:"advisories,omitempty"`
}

// WriteWorklist renders a batch and streams the CSV to w. No path checks
// apply; the caller owns w.
func WriteWorklist(ctx context.Context, env *Env, input WriteWorklistInput, w io.Writer) (*WriteWorklistOutput, error) {
	p, err := prepare(ctx, env, input.Batch, true)
	if err != nil {
		return nil, err
	}
	table := p.render()

	header := env.config().IncludeHeader
	if input.IncludeHeader != nil {
		header = *input.IncludeHeader
	}
	if err := worklist.WriteCSV(w, table, header); err != nil {
		if !worklist.IsBrokenPipe(err) {
			return nil, errors.NewInternal(err)
		}
		env.logger().Debug("worklist reader closed early", zap.Error(err))
	}

	dups := worklist.DuplicatePositions(table)
	return &WriteWorklistOutput{
		Instrument: table.Instrument,
		Rows:       len(table.Rows),
		Advisories: append(p.advisories, duplicateAdvisories(dups)...),
	}, nil
}

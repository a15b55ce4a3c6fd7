package ops

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/hpungsan/msbatch/internal/batch"
	"github.com/hpungsan/msbatch/internal/errors"
	"github.com/hpungsan/msbatch/internal/sequence"
	"github.com/hpungsan/msbatch/internal/worklist"
)

// Preview formats.
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatCSV      = "csv"
)

// PreviewInput contains parameters for the Preview operation.
type PreviewInput struct {
	Batch         *batch.Batch // required, must name an instrument
	Format        string       // markdown (default), html or csv
	IncludeHeader bool         // csv only
}

// PreviewOutput contains the result of the Preview operation.
type PreviewOutput struct {
	Instrument string               `json:"instrument"`
	Format     string               `json:"format"`
	Content    string               `json:"content"`
	Rows       int                  `json:"rows"`
	Summary    Summary              `json:"summary"`
	Duplicates []worklist.Duplicate `json:"duplicate_positions,omitempty"`
	Advisories []string             `json:"advisories,omitempty"`
}

var markdownRenderer = goldmark.New(goldmark.WithExtensions(extension.Table))

// Preview renders the instrument table of a batch without writing a file.
func Preview(ctx context.Context, env *Env, input PreviewInput) (*PreviewOutput, error) {
	format := strings.ToLower(strings.TrimSpace(input.Format))
	if format == "" {
		format = FormatMarkdown
	}
	if format != FormatMarkdown && format != FormatHTML && format != FormatCSV {
		return nil, errors.NewInvalidRequest("format must be one of: markdown, html, csv")
	}

	p, err := prepare(ctx, env, input.Batch, true)
	if err != nil {
		return nil, err
	}
	table := p.render()

	var content string
	switch format {
	case FormatMarkdown:
		content = worklist.Markdown(table)
	case FormatHTML:
		var buf bytes.Buffer
		if err := markdownRenderer.Convert([]byte(worklist.Markdown(table)), &buf); err != nil {
			return nil, errors.NewInternal(fmt.Errorf("rendering preview: %w", err))
		}
		content = buf.String()
	case FormatCSV:
		var buf bytes.Buffer
		if err := worklist.WriteCSV(&buf, table, input.IncludeHeader); err != nil {
			return nil, errors.NewInternal(err)
		}
		content = buf.String()
	}

	dups := worklist.DuplicatePositions(table)
	return &PreviewOutput{
		Instrument: table.Instrument,
		Format:     format,
		Content:    content,
		Rows:       len(table.Rows),
		Summary:    summarize(sequence.Tally(p.seq)),
		Duplicates: dups,
		Advisories: append(p.advisories, duplicateAdvisories(dups)...),
	}, nil
}

func duplicateAdvisories(dups []worklist.Duplicate) []string {
	var out []string
	for _, d := range dups {
		out = append(out, fmt.Sprintf("position %s is shared by: %s", d.Position, strings.Join(d.Names, ", ")))
	}
	return out
}

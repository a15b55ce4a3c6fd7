package ops

import (
	"context"
	"sort"

	"github.com/hpungsan/msbatch/internal/errors"
)

// ListTemplatesInput contains parameters for the ListTemplates operation.
type ListTemplatesInput struct {
	Limit  int // default 50, max 500
	Offset int
}

// TemplateSummary describes one stored template without its body.
type TemplateSummary struct {
	Name       string  `json:"name"`
	NamingMode string  `json:"naming_mode"`
	Expected   Summary `json:"expected"`
}

// ListTemplatesOutput contains the result of the ListTemplates operation.
type ListTemplatesOutput struct {
	Items      []TemplateSummary `json:"items"`
	Pagination Pagination        `json:"pagination"`
}

// ListTemplates returns stored templates sorted by name.
func ListTemplates(ctx context.Context, env *Env, input ListTemplatesInput) (*ListTemplatesOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if input.Offset < 0 {
		return nil, errors.NewInvalidRequest("offset must be non-negative")
	}
	if env.Store == nil {
		return nil, errors.NewInternal(errNoStore)
	}

	templates, err := env.Store.Load(ctx)
	if err != nil {
		return nil, storeError(ctx, "template list", err)
	}

	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)

	total := len(names)
	start := min(input.Offset, total)
	end := min(start+limit, total)

	items := make([]TemplateSummary, 0, end-start)
	for _, name := range names[start:end] {
		t := templates[name]
		items = append(items, TemplateSummary{
			Name:       name,
			NamingMode: t.NamingConfig().Mode.Label(),
			Expected:   expectedSummary(t),
		})
	}

	return &ListTemplatesOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  input.Offset,
			HasMore: end < total,
			Total:   total,
		},
	}, nil
}

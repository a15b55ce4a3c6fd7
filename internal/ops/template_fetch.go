package ops

import (
	"context"

	"github.com/hpungsan/msbatch/internal/template"
)

// FetchTemplateInput contains parameters for the FetchTemplate operation.
type FetchTemplateInput struct {
	Name string // required
}

// FetchTemplateOutput contains the result of the FetchTemplate operation.
type FetchTemplateOutput struct {
	Name     string            `json:"name"`
	Template template.Template `json:"template"`
	Expected Summary           `json:"expected"`
}

// FetchTemplate returns one stored template.
func FetchTemplate(ctx context.Context, env *Env, input FetchTemplateInput) (*FetchTemplateOutput, error) {
	name, err := validateTemplateName(input.Name)
	if err != nil {
		return nil, err
	}
	t, err := lookupTemplate(ctx, env, name)
	if err != nil {
		return nil, err
	}
	return &FetchTemplateOutput{Name: name, Template: t, Expected: expectedSummary(t)}, nil
}

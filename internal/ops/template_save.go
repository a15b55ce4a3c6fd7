package ops

import (
	"context"

	"go.uber.org/zap"

	"github.com/hpungsan/msbatch/internal/batch"
	"github.com/hpungsan/msbatch/internal/errors"
	"github.com/hpungsan/msbatch/internal/sequence"
	"github.com/hpungsan/msbatch/internal/template"
)

// SaveTemplateInput contains parameters for the SaveTemplate operation.
type SaveTemplateInput struct {
	Name     string            // required
	Template template.Template // required
}

// SaveTemplateOutput contains the result of the SaveTemplate operation.
type SaveTemplateOutput struct {
	Name     string  `json:"name"`
	Replaced bool    `json:"replaced"`
	Expected Summary `json:"expected"`
}

// SaveTemplate stores a template under name, replacing any template of the
// same name. Labels are checked strictly here even though loading is lenient.
// Category keys are stored canonically ("qc", "samples").
func SaveTemplate(ctx context.Context, env *Env, input SaveTemplateInput) (*SaveTemplateOutput, error) {
	name, err := validateTemplateName(input.Name)
	if err != nil {
		return nil, err
	}
	if env.Store == nil {
		return nil, errors.NewInternal(errNoStore)
	}
	if err := checkTemplate(input.Template); err != nil {
		return nil, err
	}

	tmpl := input.Template.Canonical()

	existing, err := env.Store.Load(ctx)
	if err != nil {
		return nil, storeError(ctx, "template save", err)
	}
	_, replaced := existing[name]

	if err := env.Store.Save(ctx, name, tmpl); err != nil {
		return nil, storeError(ctx, "template save", err)
	}
	env.logger().Info("template saved", zap.String("name", name), zap.Bool("replaced", replaced))

	return &SaveTemplateOutput{
		Name:     name,
		Replaced: replaced,
		Expected: expectedSummary(tmpl),
	}, nil
}

// checkTemplate applies the batch file rules to a template.
func checkTemplate(t template.Template) error {
	b := batch.Batch{SampleTypes: t.SampleTypes, CategoryOrder: t.CategoryOrder}
	if t.NamingMode != "" || t.Naming != nil {
		b.Naming = &batch.Naming{Mode: t.NamingMode}
		if t.Naming != nil {
			b.Naming.Affixes = t.Naming.Affixes
			b.Naming.Components = t.Naming.Components
		}
	}
	if err := b.Check(); err != nil {
		return errors.NewInvalidRequest(err.Error())
	}
	return nil
}

// expectedSummary predicts the sequence size of t without building it.
func expectedSummary(t template.Template) Summary {
	return summarize(sequence.Expected(t.Settings(), t.Order()))
}

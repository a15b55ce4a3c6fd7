package ops

import (
	"context"

	"go.uber.org/zap"

	"github.com/hpungsan/msbatch/internal/errors"
)

// DeleteTemplateInput contains parameters for the DeleteTemplate operation.
type DeleteTemplateInput struct {
	Name string // required
}

// DeleteTemplateOutput contains the result of the DeleteTemplate operation.
type DeleteTemplateOutput struct {
	Name    string `json:"name"`
	Deleted bool   `json:"deleted"`
}

// DeleteTemplate removes a stored template. A missing name is NOT_FOUND.
func DeleteTemplate(ctx context.Context, env *Env, input DeleteTemplateInput) (*DeleteTemplateOutput, error) {
	name, err := validateTemplateName(input.Name)
	if err != nil {
		return nil, err
	}
	if env.Store == nil {
		return nil, errors.NewInternal(errNoStore)
	}

	deleted, err := env.Store.Delete(ctx, name)
	if err != nil {
		return nil, storeError(ctx, "template delete", err)
	}
	if !deleted {
		return nil, errors.NewNotFound(name)
	}
	env.logger().Info("template deleted", zap.String("name", name))
	return &DeleteTemplateOutput{Name: name, Deleted: true}, nil
}

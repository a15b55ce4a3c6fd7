package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/msbatch/internal/batch"
	"github.com/hpungsan/msbatch/internal/errors"
	"github.com/hpungsan/msbatch/internal/ops"
	"github.com/hpungsan/msbatch/internal/template"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	env *ops.Env
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(env *ops.Env) *Handlers {
	return &Handlers{env: env}
}

// Request types for each tool

// GenerateRequest represents the arguments for worklist_generate.
type GenerateRequest struct {
	Batch *batch.Batch `json:"batch"`
}

// PreviewRequest represents the arguments for worklist_preview.
type PreviewRequest struct {
	Batch         *batch.Batch `json:"batch"`
	Format        string       `json:"format,omitempty"`
	IncludeHeader bool         `json:"include_header,omitempty"`
}

// ExportRequest represents the arguments for worklist_export.
type ExportRequest struct {
	Batch         *batch.Batch `json:"batch"`
	Path          string       `json:"path,omitempty"`
	IncludeHeader *bool        `json:"include_header,omitempty"`
}

// ImportNamesRequest represents the arguments for names_import.
type ImportNamesRequest struct {
	Path   string `json:"path"`
	Column string `json:"column,omitempty"`
}

// TemplateSaveRequest represents the arguments for template_save.
type TemplateSaveRequest struct {
	Name     string             `json:"name"`
	Template *template.Template `json:"template"`
}

// TemplateListRequest represents the arguments for template_list.
type TemplateListRequest struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// TemplateNameRequest represents the arguments for template_fetch and
// template_delete.
type TemplateNameRequest struct {
	Name string `json:"name"`
}

// Handler implementations

// HandleGenerate handles the worklist_generate tool call.
func (h *Handlers) HandleGenerate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GenerateRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Generate(ctx, h.env, ops.GenerateInput{Batch: input.Batch})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandlePreview handles the worklist_preview tool call.
func (h *Handlers) HandlePreview(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PreviewRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Preview(ctx, h.env, ops.PreviewInput{
		Batch:         input.Batch,
		Format:        input.Format,
		IncludeHeader: input.IncludeHeader,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleExport handles the worklist_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Export(ctx, h.env, ops.ExportInput{
		Batch:         input.Batch,
		Path:          input.Path,
		IncludeHeader: input.IncludeHeader,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleImportNames handles the names_import tool call.
func (h *Handlers) HandleImportNames(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportNamesRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.ImportNames(ctx, h.env, ops.ImportNamesInput{
		Path:   input.Path,
		Column: input.Column,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleTemplateSave handles the template_save tool call.
func (h *Handlers) HandleTemplateSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TemplateSaveRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	if input.Template == nil {
		return errorResult(errors.NewInvalidRequest("template is required")), nil
	}

	result, err := ops.SaveTemplate(ctx, h.env, ops.SaveTemplateInput{
		Name:     input.Name,
		Template: *input.Template,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleTemplateList handles the template_list tool call.
func (h *Handlers) HandleTemplateList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TemplateListRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.ListTemplates(ctx, h.env, ops.ListTemplatesInput{
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleTemplateFetch handles the template_fetch tool call.
func (h *Handlers) HandleTemplateFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TemplateNameRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.FetchTemplate(ctx, h.env, ops.FetchTemplateInput{Name: input.Name})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleTemplateDelete handles the template_delete tool call.
func (h *Handlers) HandleTemplateDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TemplateNameRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.DeleteTemplate(ctx, h.env, ops.DeleteTemplateInput{Name: input.Name})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleInstrumentList handles the instrument_list tool call.
func (h *Handlers) HandleInstrumentList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(ops.ListInstruments())
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are never exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var batchErr *errors.BatchError
	if stderrors.As(err, &batchErr) {
		errorObj := map[string]any{
			"code":    batchErr.Code,
			"message": batchErr.Message,
			"status":  batchErr.Status,
		}
		// A wrapping error keeps its context in the message.
		if err != error(batchErr) && batchErr.Code != errors.ErrInternal {
			errorObj["message"] = err.Error()
		}
		if batchErr.Code != errors.ErrInternal && batchErr.Details != nil {
			errorObj["details"] = batchErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}

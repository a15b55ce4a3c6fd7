package mcp

import "github.com/mark3labs/mcp-go/mcp"

const batchDescription = `Batch definition: {project, instrument, data_folder, template, ` +
	`sample_types: {standards|samples|qc|blanks: {enabled, count, rule, interval, start_count}}, ` +
	`category_order, naming: {mode, affixes, components, names, import: {path, column}}, ` +
	`instrument_settings: {ms_method, lc_method, plate_type, plate_number, injection_volume}}. ` +
	`Rules: "At the start only", "At the end only", "At fixed interval", "At start + fixed interval".`

var generateToolDef = mcp.NewTool("worklist_generate",
	mcp.WithDescription("Build the injection sequence of a batch and name every entry. "+
		"Returns entries in run order with a per-category summary and advisories."),
	mcp.WithObject("batch", mcp.Required(), mcp.Description(batchDescription)),
	mcp.WithReadOnlyHintAnnotation(true),
)

var previewToolDef = mcp.NewTool("worklist_preview",
	mcp.WithDescription("Render the instrument worklist of a batch without writing a file."),
	mcp.WithObject("batch", mcp.Required(), mcp.Description(batchDescription+" instrument is required.")),
	mcp.WithString("format", mcp.Enum("markdown", "html", "csv"), mcp.Description("Output format (default markdown)")),
	mcp.WithBoolean("include_header", mcp.Description("Include the header row (csv only)")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var exportToolDef = mcp.NewTool("worklist_export",
	mcp.WithDescription("Write the instrument worklist CSV of a batch. Paths must be .csv files "+
		"directly inside the exports dir or an allowed path."),
	mcp.WithObject("batch", mcp.Required(), mcp.Description(batchDescription+" instrument is required.")),
	mcp.WithString("path", mcp.Description("Destination .csv (default: exports/<project>-<timestamp>.csv)")),
	mcp.WithBoolean("include_header", mcp.Description("Include the header row (default from config)")),
)

var importNamesToolDef = mcp.NewTool("names_import",
	mcp.WithDescription("Read sample names from one column of a CSV file."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Path to a .csv file")),
	mcp.WithString("column", mcp.Description("Header of the name column (default: first column)")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var templateSaveToolDef = mcp.NewTool("template_save",
	mcp.WithDescription("Save a named template, replacing any template of the same name."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Template name")),
	mcp.WithObject("template", mcp.Required(), mcp.Description(
		`{sample_types: {...}, naming_mode, category_order, naming: {affixes, components}}`)),
)

var templateListToolDef = mcp.NewTool("template_list",
	mcp.WithDescription("List stored templates with their expected sequence size."),
	mcp.WithNumber("limit", mcp.Description("Max items (default 50, max 500)")),
	mcp.WithNumber("offset", mcp.Description("Items to skip")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var templateFetchToolDef = mcp.NewTool("template_fetch",
	mcp.WithDescription("Fetch one stored template."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Template name")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var templateDeleteToolDef = mcp.NewTool("template_delete",
	mcp.WithDescription("Delete a stored template."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Template name")),
	mcp.WithDestructiveHintAnnotation(true),
)

var instrumentListToolDef = mcp.NewTool("instrument_list",
	mcp.WithDescription("List supported instruments with their plate types and worklist columns."),
	mcp.WithReadOnlyHintAnnotation(true),
)

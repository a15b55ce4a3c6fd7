package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap/zapcore"

	"github.com/hpungsan/msbatch/internal/batch"
	"github.com/hpungsan/msbatch/internal/config"
	"github.com/hpungsan/msbatch/internal/errors"
	"github.com/hpungsan/msbatch/internal/logging"
	"github.com/hpungsan/msbatch/internal/mcp"
	"github.com/hpungsan/msbatch/internal/naming"
	"github.com/hpungsan/msbatch/internal/ops"
	"github.com/hpungsan/msbatch/internal/sequence"
	"github.com/hpungsan/msbatch/internal/template"
	"github.com/hpungsan/msbatch/internal/web"
)

// maxStdinBytes caps a batch definition piped on stdin.
const maxStdinBytes = 1 << 20

// newCLIApp creates the CLI application with all commands.
func newCLIApp(env *ops.Env) *cli.App {
	app := &cli.App{
		Name:    "msbatch",
		Usage:   "MS worklist sequence generator",
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Usage: "Log at debug level"},
			&cli.BoolFlag{Name: "allow-unsafe-paths", Usage: "Allow import/export outside the exports dir and allowed_paths"},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("allow-unsafe-paths") {
				if env.Config == nil {
					env.Config = config.DefaultConfig()
				}
				env.Config.AllowUnsafePaths = true
			}
			if c.Bool("verbose") {
				if env.LogLevel != nil {
					// Shared with the store's logger.
					env.LogLevel.SetLevel(zapcore.DebugLevel)
					return nil
				}
				format := ""
				if env.Config != nil {
					format = env.Config.LogFormat
				}
				logger, level, err := logging.New("debug", format)
				if err != nil {
					return outputError(errors.NewInvalidRequest(err.Error()))
				}
				env.Logger, env.LogLevel = logger, &level
			}
			return nil
		},
		Commands: []*cli.Command{
			generateCmd(env),
			previewCmd(env),
			exportCmd(env),
			importNamesCmd(env),
			templateCmd(env),
			profilesCmd(),
			serveCmd(env),
			webCmd(env),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// batchFlags are shared by the commands that take a batch file.
func batchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "instrument", Aliases: []string{"i"}, Usage: "Override the batch instrument"},
		&cli.StringFlag{Name: "template", Aliases: []string{"t"}, Usage: "Override the batch template"},
	}
}

// generateCmd creates the generate command.
func generateCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Usage:     "Build and name the injection sequence of a batch",
		ArgsUsage: "<batch.yaml|->",
		Flags:     batchFlags(),
		Action: func(c *cli.Context) error {
			b, err := batchArg(c)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Generate(c.Context, env, ops.GenerateInput{Batch: b})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// previewCmd creates the preview command.
func previewCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "preview",
		Usage:     "Render the instrument worklist of a batch",
		ArgsUsage: "<batch.yaml|->",
		Flags: append(batchFlags(),
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: ops.FormatMarkdown, Usage: "Output format: markdown|html|csv"},
			&cli.BoolFlag{Name: "header", Usage: "Include the header row (csv only)"},
			&cli.BoolFlag{Name: "json", Usage: "Print the full result as JSON"},
		),
		Action: func(c *cli.Context) error {
			b, err := batchArg(c)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Preview(c.Context, env, ops.PreviewInput{
				Batch:         b,
				Format:        c.String("format"),
				IncludeHeader: c.Bool("header"),
			})
			if err != nil {
				return outputError(err)
			}

			if c.Bool("json") {
				return outputJSON(output)
			}
			printAdvisories(output.Advisories)
			_, err = io.WriteString(os.Stdout, output.Content)
			return err
		},
	}
}

// exportCmd creates the export command.
func exportCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Write the instrument worklist CSV of a batch",
		ArgsUsage: "<batch.yaml|->",
		Flags: append(batchFlags(),
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export path (default: ~/.msbatch/exports/<project>-<timestamp>.csv)"},
			&cli.BoolFlag{Name: "header", Usage: "Include the header row (default from config)"},
			&cli.BoolFlag{Name: "stdout", Usage: "Write the CSV to stdout instead of a file"},
		),
		Action: func(c *cli.Context) error {
			b, err := batchArg(c)
			if err != nil {
				return outputError(err)
			}

			var header *bool
			if c.IsSet("header") {
				h := c.Bool("header")
				header = &h
			}

			if c.Bool("stdout") {
				if c.IsSet("path") {
					return outputError(errors.NewInvalidRequest("--stdout and --path are mutually exclusive"))
				}
				output, err := ops.WriteWorklist(c.Context, env, ops.WriteWorklistInput{Batch: b, IncludeHeader: header}, os.Stdout)
				if err != nil {
					return outputError(err)
				}
				printAdvisories(output.Advisories)
				return nil
			}

			output, err := ops.Export(c.Context, env, ops.ExportInput{
				Batch:         b,
				Path:          c.String("path"),
				IncludeHeader: header,
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// importNamesCmd creates the import-names command.
func importNamesCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "import-names",
		Usage:     "Read sample names from a CSV column",
		ArgsUsage: "<names.csv>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "column", Aliases: []string{"c"}, Usage: "Header of the name column (default: first column)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("names file is required"))
			}

			output, err := ops.ImportNames(c.Context, env, ops.ImportNamesInput{
				Path:   c.Args().First(),
				Column: c.String("column"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// templateCmd creates the template command group.
func templateCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "template",
		Usage: "Manage stored templates",
		Subcommands: []*cli.Command{
			{
				Name:      "save",
				Usage:     "Save the sample types, order and naming of a batch as a template",
				ArgsUsage: "<name> <batch.yaml|->",
				Action: func(c *cli.Context) error {
					if c.NArg() < 2 {
						return outputError(errors.NewInvalidRequest("usage: template save <name> <batch.yaml|->"))
					}
					b, err := loadBatch(c.Args().Get(1))
					if err != nil {
						return outputError(err)
					}

					if err := b.Check(); err != nil {
						return outputError(errors.NewInvalidRequest(err.Error()))
					}

					// Without a named template the batch overlays the built-in
					// defaults, so the stored document lists every category.
					base := template.FromSettings(sequence.DefaultSettings(), nil, naming.Config{})
					if b.Template != "" {
						fetched, err := ops.FetchTemplate(c.Context, env, ops.FetchTemplateInput{Name: b.Template})
						if err != nil {
							return outputError(err)
						}
						base = fetched.Template
					}

					output, err := ops.SaveTemplate(c.Context, env, ops.SaveTemplateInput{
						Name:     c.Args().First(),
						Template: b.Merge(&base),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:  "list",
				Usage: "List stored templates",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Max items"},
					&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Usage: "Items to skip"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.ListTemplates(c.Context, env, ops.ListTemplatesInput{
						Limit:  c.Int("limit"),
						Offset: c.Int("offset"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "show",
				Usage:     "Show one stored template",
				ArgsUsage: "<name>",
				Action: func(c *cli.Context) error {
					output, err := ops.FetchTemplate(c.Context, env, ops.FetchTemplateInput{Name: c.Args().First()})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a stored template",
				ArgsUsage: "<name>",
				Action: func(c *cli.Context) error {
					output, err := ops.DeleteTemplate(c.Context, env, ops.DeleteTemplateInput{Name: c.Args().First()})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// profilesCmd creates the profiles command.
func profilesCmd() *cli.Command {
	return &cli.Command{
		Name:  "profiles",
		Usage: "List supported instruments and their worklist columns",
		Action: func(c *cli.Context) error {
			return outputJSON(ops.ListInstruments())
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the MCP server on stdio",
		Action: func(c *cli.Context) error {
			return mcp.Run(env, Version)
		},
	}
}

// webCmd creates the web command.
func webCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "web",
		Usage: "Serve the template browser and worklist preview UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			srv, err := web.NewServer(env, Version, c.String("bind"), c.Int("port"))
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			return web.Run(c.Context, srv, env.Logger)
		},
	}
}

// Helper functions

// batchArg loads the batch named by the first argument and applies the
// shared override flags.
func batchArg(c *cli.Context) (*batch.Batch, error) {
	if c.NArg() == 0 {
		return nil, errors.NewInvalidRequest("batch file is required (use - for stdin)")
	}
	b, err := loadBatch(c.Args().First())
	if err != nil {
		return nil, err
	}
	if v := c.String("instrument"); v != "" {
		b.Instrument = v
	}
	if v := c.String("template"); v != "" {
		b.Template = v
	}
	return b, nil
}

// loadBatch reads a batch file, or stdin for "-". A relative import path is
// resolved against the batch file's directory.
func loadBatch(path string) (*batch.Batch, error) {
	var (
		b   *batch.Batch
		err error
		dir string
	)
	if path == "-" {
		data, readErr := readStdin(maxStdinBytes)
		if readErr != nil {
			return nil, errors.NewInvalidRequest(readErr.Error())
		}
		b, err = batch.Decode([]byte(data))
		dir, _ = os.Getwd()
	} else {
		b, err = batch.Load(path)
		dir = filepath.Dir(path)
	}
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.NewFileNotFound(path)
		}
		return nil, errors.NewInvalidRequest(err.Error())
	}

	if b.Naming != nil && b.Naming.Import != nil {
		if p := b.Naming.Import.Path; p != "" && !filepath.IsAbs(p) {
			b.Naming.Import.Path = filepath.Join(dir, p)
		}
	}
	return b, nil
}

// printAdvisories writes advisories to stderr, keeping stdout for output.
func printAdvisories(advisories []string) {
	for _, a := range advisories {
		fmt.Fprintf(os.Stderr, "warning: %s\n", a)
	}
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var batchErr *errors.BatchError
	if stderrors.As(err, &batchErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", batchErr.Code, batchErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// readStdin reads all content from stdin, failing beyond limit bytes.
func readStdin(limit int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(os.Stdin, limit+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("stdin exceeds %d bytes", limit)
	}
	return string(data), nil
}

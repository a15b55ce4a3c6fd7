package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/hpungsan/msbatch/internal/config"
	"github.com/hpungsan/msbatch/internal/db"
	"github.com/hpungsan/msbatch/internal/logging"
	"github.com/hpungsan/msbatch/internal/mcp"
	"github.com/hpungsan/msbatch/internal/ops"
	"github.com/hpungsan/msbatch/internal/template"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"generate": true, "preview": true, "export": true,
	"import-names": true, "template": true, "profiles": true,
	"serve": true, "web": true, "help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	// Global flags come before the subcommand.
	if len(arg) > 1 && arg[0] == '-' {
		return isGlobalFlag(arg)
	}
	return false
}

func isGlobalFlag(arg string) bool {
	switch arg {
	case "--help", "-h", "--version", "-v", "--verbose", "--allow-unsafe-paths":
		return true
	}
	return false
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a short usage note when run interactively without args.
func printBanner() {
	fmt.Println(`
  msbatch - MS worklist sequence generator

  Usage: msbatch <command> [options]
         msbatch --help

  MCP server mode requires piped input (or run 'msbatch serve').`)
}

// openStore returns the configured template store and a close func.
func openStore(cfg *config.Config, baseDir string, logger *zap.Logger) (template.Store, func() error, error) {
	if cfg.TemplateStore != config.StoreSQLite {
		if err := os.MkdirAll(baseDir, 0700); err != nil {
			return nil, nil, err
		}
		fs := template.NewFileStore(cfg.TemplatesPath(baseDir), logger)
		logger.Debug("template store", zap.String("backend", "json"), zap.String("path", fs.Path()))
		return fs, func() error { return nil }, nil
	}

	database, err := db.Init(baseDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	db.ConfigurePool(database, cfg)
	return template.NewSQLStore(database, logger), database.Close, nil
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before any setup
	if isHelpOrVersion() {
		app := newCLIApp(&ops.Env{})
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	baseDir, err := config.BaseDir()
	if err != nil {
		fatal("could not determine base directory: %v", err)
	}
	cwd, _ := os.Getwd()

	cfg, err := config.LoadWithRepo(baseDir, cwd, ".env")
	if err != nil {
		fatal("failed to load config: %v", err)
	}

	logger, level, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fatal("%v", err)
	}
	defer func() { _ = logger.Sync() }()

	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		logger.Warn("unknown tools in disabled_tools", zap.Strings("tools", unknown))
	}

	store, closeStore, err := openStore(cfg, baseDir, logger)
	if err != nil {
		fatal("%v", err)
	}
	defer closeStore()

	env := &ops.Env{Store: store, Config: cfg, BaseDir: baseDir, Logger: logger, LogLevel: &level}

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(env)
		if err := app.Run(os.Args); err != nil {
			closeStore()
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		closeStore()
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'msbatch --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default)
	if err := mcp.Run(env, Version); err != nil {
		closeStore()
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

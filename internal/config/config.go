package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Template store backends.
const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
)

// EnvPrefix prefixes every environment override (MSBATCH_LOG_LEVEL, ...).
const EnvPrefix = "MSBATCH"

// Config holds application configuration.
type Config struct {
	// TemplateStore selects the template backend: "json" (flat file) or "sqlite".
	TemplateStore string `json:"template_store,omitempty"`

	// TemplatesFile is the flat JSON document holding named templates.
	// Relative paths are resolved against the base directory.
	TemplatesFile string `json:"templates_file,omitempty"`

	// DefaultInstrument is used when a batch does not name one.
	DefaultInstrument string `json:"default_instrument,omitempty"`

	// IncludeHeader controls whether CSV exports start with a header row.
	// Instrument software usually supplies its own header, so the default is off.
	IncludeHeader bool `json:"include_header,omitempty"`

	// LogLevel is a zap level name: debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty"`

	// LogFormat is "json" or "console".
	LogFormat string `json:"log_format,omitempty"`

	// AllowedPaths is an allowlist of directories for import/export operations.
	// Paths outside <base>/exports require either being in this list or AllowUnsafePaths=true.
	// Paths should be absolute (relative paths are ignored).
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for import/export.
	// Symlink and extension checks still apply.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DBMaxOpenConns limits open connections of the sqlite template store.
	// 0 means use sql.DB default.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		TemplateStore: StoreJSON,
		TemplatesFile: "templates.json",
		LogLevel:      "info",
		LogFormat:     "console",
	}
}

// BaseDir returns the directory holding config, templates and exports:
// $MSBATCH_HOME when set, otherwise ~/.msbatch.
func BaseDir() (string, error) {
	if dir := os.Getenv(EnvPrefix + "_HOME"); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".msbatch"), nil
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.msbatch.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.msbatch) and repo (.msbatch) directories.
// Repo config is found by walking upward from startDir to find the nearest .msbatch/config.json.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
// Environment overrides (after loading envFile through godotenv, if present) win over both.
func LoadWithRepo(globalDir, startDir, envFile string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repoConfigPath := FindRepoConfig(startDir)
	repo, err := loadFileRaw(repoConfigPath)
	if err != nil {
		return nil, err
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	// Apply defaults, then global, then repo, then environment
	return Merge(Merge(Merge(DefaultConfig(), global), repo), FromEnv()), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .msbatch/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	if startDir == "" {
		return ""
	}
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".msbatch", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// FromEnv builds an overlay config from MSBATCH_* variables. Unset or
// unparsable variables leave the field zero so Merge keeps the base value.
func FromEnv() *Config {
	cfg := &Config{
		TemplateStore:     os.Getenv(EnvPrefix + "_TEMPLATE_STORE"),
		TemplatesFile:     os.Getenv(EnvPrefix + "_TEMPLATES_FILE"),
		DefaultInstrument: os.Getenv(EnvPrefix + "_DEFAULT_INSTRUMENT"),
		LogLevel:          os.Getenv(EnvPrefix + "_LOG_LEVEL"),
		LogFormat:         os.Getenv(EnvPrefix + "_LOG_FORMAT"),
	}
	if v, err := strconv.ParseBool(os.Getenv(EnvPrefix + "_INCLUDE_HEADER")); err == nil {
		cfg.IncludeHeader = v
	}
	if v, err := strconv.ParseBool(os.Getenv(EnvPrefix + "_ALLOW_UNSAFE_PATHS")); err == nil {
		cfg.AllowUnsafePaths = v
	}
	if v := os.Getenv(EnvPrefix + "_ALLOWED_PATHS"); v != "" {
		cfg.AllowedPaths = filepath.SplitList(v)
	}
	return cfg
}

// TemplatesPath resolves TemplatesFile against baseDir.
func (c *Config) TemplatesPath(baseDir string) string {
	if filepath.IsAbs(c.TemplatesFile) {
		return c.TemplatesFile
	}
	return filepath.Join(baseDir, c.TemplatesFile)
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	// Scalars: overlay wins if non-zero, else base
	result.TemplateStore = firstNonEmpty(overlay.TemplateStore, base.TemplateStore)
	result.TemplatesFile = firstNonEmpty(overlay.TemplatesFile, base.TemplatesFile)
	result.DefaultInstrument = firstNonEmpty(overlay.DefaultInstrument, base.DefaultInstrument)
	result.LogLevel = firstNonEmpty(overlay.LogLevel, base.LogLevel)
	result.LogFormat = firstNonEmpty(overlay.LogFormat, base.LogFormat)

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	// Booleans: overlay wins if true, else base
	result.IncludeHeader = base.IncludeHeader || overlay.IncludeHeader
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths

	// Arrays: merge and deduplicate
	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return strings.TrimSpace(a)
	}
	return b
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

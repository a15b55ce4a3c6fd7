package ops

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode"

	"github.com/hpungsan/msbatch/internal/errors"
)

// csvUse is the role of a CSV file the tool touches.
type csvUse int

const (
	namesFile    csvUse = iota // read by ImportNames
	worklistFile               // written by Export
)

func (u csvUse) String() string {
	if u == namesFile {
		return "names file"
	}
	return "worklist"
}

const csvExt = ".csv"

var errExcel = stderrors.New("Excel workbooks are not supported; save the sheet as CSV")

// checkCSVPath vets path before a names file is read or a worklist written.
// Unless allow_unsafe_paths is set, the file must sit directly in the
// exports directory or in one of the absolute allowed_paths, never in a
// subdirectory of them. Symlinks are refused in every mode; openNoFollow
// covers the final component again at open time.
func (e *Env) checkCSVPath(path string, use csvUse) error {
	if path == "" {
		return errors.NewInvalidRequest("path is required")
	}
	if hasParentRef(path) {
		return errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}
	switch ext := strings.ToLower(filepath.Ext(path)); {
	case ext == csvExt:
	case use == namesFile && (ext == ".xlsx" || ext == ".xls"):
		return errors.NewImportFailed(path, errExcel)
	default:
		return errors.NewInvalidRequest(fmt.Sprintf("%s must have .csv extension", use))
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}

	if !e.config().AllowUnsafePaths {
		dir := filepath.Dir(abs)
		roots := e.csvRoots()
		if !slices.Contains(roots, dir) {
			return errors.NewInvalidRequest(fmt.Sprintf(
				"%s must be directly in one of %s (no subdirectories)", use, strings.Join(roots, ", ")))
		}
		if isSymlink(dir) {
			return errors.NewInvalidRequest("parent directory must not be a symlink")
		}
	}

	if use == namesFile {
		if _, err := os.Stat(abs); os.IsNotExist(err) {
			return errors.NewFileNotFound(path)
		}
	}
	if isSymlink(abs) {
		return errors.NewInvalidRequest("path must not be a symlink")
	}
	return nil
}

// csvRoots lists the directories CSV files may live in: the exports
// directory and every absolute allowed_paths entry. A root that is itself
// a symlink is replaced by its target; one that cannot be resolved is
// dropped.
func (e *Env) csvRoots() []string {
	dirs := []string{ExportsDir(e.BaseDir)}
	for _, p := range e.config().AllowedPaths {
		if filepath.IsAbs(p) {
			dirs = append(dirs, p)
		}
	}

	roots := make([]string, 0, len(dirs))
	for _, d := range dirs {
		abs, err := filepath.Abs(d)
		if err != nil {
			continue
		}
		if isSymlink(abs) {
			if abs, err = filepath.EvalSymlinks(abs); err != nil {
				continue
			}
		}
		roots = append(roots, abs)
	}
	return roots
}

// ExportsDir returns the default location of worklists and names files,
// <base>/exports.
func ExportsDir(baseDir string) string {
	return filepath.Join(baseDir, "exports")
}

func isSymlink(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode()&os.ModeSymlink != 0
}

// hasParentRef reports whether any element of path, split on either slash,
// is "..".
func hasParentRef(path string) bool {
	parts := strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' })
	return slices.Contains(parts, "..")
}

// FileStem turns a project, template or instrument name into a file name
// stem. Letters, digits, '_' and '.' are kept, every other run of
// characters becomes a single '-', and leading or trailing '-' and '.' are
// trimmed. An empty result is "unnamed".
func FileStem(s string) string {
	var b strings.Builder
	pending := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.' {
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	stem := strings.Trim(b.String(), "-.")
	if stem == "" {
		return "unnamed"
	}
	return stem
}

package ops

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hpungsan/msbatch/internal/errors"
)

// writeNamesFile writes content into the exports dir of env and returns its path.
func writeNamesFile(t *testing.T, env *Env, name, content string) string {
	t.Helper()
	dir := ExportsDir(env.BaseDir)
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImportNames_FirstColumnByDefault(t *testing.T) {
	env := newTestEnv(t)
	path := writeNamesFile(t, env, "names.csv", "Name,Weight\n liver-a ,12\n\nliver-b,13\n,14\n")

	out, err := ImportNames(context.Background(), env, ImportNamesInput{Path: path})
	if err != nil {
		t.Fatalf("ImportNames failed: %v", err)
	}
	if out.Column != "Name" {
		t.Errorf("Column = %q, want Name", out.Column)
	}
	if strings.Join(out.Names, ",") != "liver-a,liver-b" {
		t.Errorf("Names = %v, want [liver-a liver-b]", out.Names)
	}
	if out.Count != 2 {
		t.Errorf("Count = %d, want 2", out.Count)
	}
}

func TestImportNames_NamedColumn(t *testing.T) {
	env := newTestEnv(t)
	path := writeNamesFile(t, env, "names.csv", "\ufeffID,Sample ID\n1,S-01\n2,S-02\n3\n")

	out, err := ImportNames(context.Background(), env, ImportNamesInput{Path: path, Column: "sample id"})
	if err != nil {
		t.Fatalf("ImportNames failed: %v", err)
	}
	if out.Column != "Sample ID" {
		t.Errorf("Column = %q, want Sample ID", out.Column)
	}
	if strings.Join(out.Names, ",") != "S-01,S-02" {
		t.Errorf("Names = %v, want [S-01 S-02] (short rows skipped)", out.Names)
	}

	// BOM does not leak into the first header.
	out, err = ImportNames(context.Background(), env, ImportNamesInput{Path: path, Column: "ID"})
	if err != nil {
		t.Fatalf("ImportNames failed: %v", err)
	}
	if out.Count != 3 {
		t.Errorf("Count = %d, want 3", out.Count)
	}
}

func TestImportNames_HeaderOnly(t *testing.T) {
	env := newTestEnv(t)
	path := writeNamesFile(t, env, "names.csv", "Name\n")

	out, err := ImportNames(context.Background(), env, ImportNamesInput{Path: path})
	if err != nil {
		t.Fatalf("ImportNames failed: %v", err)
	}
	if out.Names == nil || len(out.Names) != 0 {
		t.Errorf("Names = %#v, want empty non-nil slice", out.Names)
	}
}

func TestImportNames_Errors(t *testing.T) {
	env := newTestEnv(t)
	empty := writeNamesFile(t, env, "empty.csv", "")
	malformed := writeNamesFile(t, env, "bad.csv", "Name\n\"unterminated\n")
	names := writeNamesFile(t, env, "names.csv", "Name\nA\n")

	tests := []struct {
		name  string
		input ImportNamesInput
		code  errors.ErrorCode
	}{
		{"path required", ImportNamesInput{}, errors.ErrInvalidRequest},
		{"excel workbook", ImportNamesInput{Path: filepath.Join(ExportsDir(env.BaseDir), "names.xlsx")}, errors.ErrImportFailed},
		{"wrong extension", ImportNamesInput{Path: filepath.Join(ExportsDir(env.BaseDir), "names.txt")}, errors.ErrInvalidRequest},
		{"missing file", ImportNamesInput{Path: filepath.Join(ExportsDir(env.BaseDir), "missing.csv")}, errors.ErrFileNotFound},
		{"empty file", ImportNamesInput{Path: empty}, errors.ErrImportFailed},
		{"malformed csv", ImportNamesInput{Path: malformed}, errors.ErrImportFailed},
		{"unknown column", ImportNamesInput{Path: names, Column: "Barcode"}, errors.ErrImportFailed},
		{"outside allowed dirs", ImportNamesInput{Path: filepath.Join(t.TempDir(), "names.csv")}, errors.ErrInvalidRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ImportNames(context.Background(), env, tc.input)
			if !errors.Is(err, tc.code) {
				t.Errorf("expected %s, got: %v", tc.code, err)
			}
		})
	}
}

func TestImportNames_UnknownColumnListsHeaders(t *testing.T) {
	env := newTestEnv(t)
	path := writeNamesFile(t, env, "names.csv", "Name,Weight\nA,1\n")

	_, err := ImportNames(context.Background(), env, ImportNamesInput{Path: path, Column: "Barcode"})
	if err == nil || !strings.Contains(err.Error(), "Name, Weight") {
		t.Errorf("error should list available columns, got: %v", err)
	}
}

func TestImportNames_AllowedPath(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()
	env.Config.AllowedPaths = []string{dir}
	path := filepath.Join(dir, "names.csv")
	if err := os.WriteFile(path, []byte("Name\nA\nB\n"), 0600); err != nil {
		t.Fatal(err)
	}

	out, err := ImportNames(context.Background(), env, ImportNamesInput{Path: path})
	if err != nil {
		t.Fatalf("ImportNames failed: %v", err)
	}
	if out.Count != 2 {
		t.Errorf("Count = %d, want 2", out.Count)
	}
}

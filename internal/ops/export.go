package ops

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/msbatch/internal/batch"
	"github.com/hpungsan/msbatch/internal/errors"
	"github.com/hpungsan/msbatch/internal/sequence"
	"github.com/hpungsan/msbatch/internal/worklist"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Batch         *batch.Batch // required, must name an instrument
	Path          string       // optional, default: <base>/exports/<project>-<timestamp>.csv
	IncludeHeader *bool        // optional, default: config include_header
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string               `json:"path"`
	BatchID    string               `json:"batch_id"`
	Instrument string               `json:"instrument"`
	Rows       int                  `json:"rows"`
	Summary    Summary              `json:"summary"`
	Duplicates []worklist.Duplicate `json:"duplicate_positions,omitempty"`
	Advisories []string             `json:"advisories,omitempty"`
	ExportedAt int64                `json:"exported_at"`
}

// Export renders a batch for its instrument and writes the worklist CSV.
// The file is written to a temp name and renamed into place, so a failed
// export leaves any existing file untouched.
func Export(ctx context.Context, env *Env, input ExportInput) (*ExportOutput, error) {
	p, err := prepare(ctx, env, input.Batch, true)
	if err != nil {
		return nil, err
	}
	table := p.render()

	now := time.Now()
	exportPath := input.Path
	if exportPath == "" {
		exportPath = defaultExportPath(env.BaseDir, p.batch.Project, now)
	}

	// Default paths are validated too; the project name ends up in them.
	if err := env.checkCSVPath(exportPath, worklistFile); err != nil {
		return nil, err
	}

	header := env.config().IncludeHeader
	if input.IncludeHeader != nil {
		header = *input.IncludeHeader
	}

	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}
	if err := writeFileAtomic(ctx, exportPath, func(w io.Writer) error {
		return worklist.WriteCSV(w, table, header)
	}); err != nil {
		return nil, err
	}

	dups := worklist.DuplicatePositions(table)
	out := &ExportOutput{
		Path:       exportPath,
		BatchID:    newBatchID(now),
		Instrument: table.Instrument,
		Rows:       len(table.Rows),
		Summary:    summarize(sequence.Tally(p.seq)),
		Duplicates: dups,
		Advisories: append(p.advisories, duplicateAdvisories(dups)...),
		ExportedAt: now.Unix(),
	}
	env.logger().Info("worklist exported",
		zap.String("batch_id", out.BatchID),
		zap.String("path", out.Path),
		zap.String("instrument", out.Instrument),
		zap.Int("rows", out.Rows))
	return out, nil
}

// writeFileAtomic writes through fill into a temp file next to path and
// renames it over path once fill succeeds.
func writeFileAtomic(ctx context.Context, path string, fill func(io.Writer) error) error {
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	bw := bufio.NewWriter(file)
	if err := fill(bw); err != nil {
		return errors.NewInternal(err)
	}
	if err := bw.Flush(); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return errors.NewInternal(err)
	}
	if err := ctx.Err(); err != nil {
		return errors.NewCancelled("export")
	}

	// Close before rename (required on Windows).
	if err := file.Close(); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlinked destination.
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("export path is a symlink")
	}

	// On Windows os.Rename fails when the destination exists; the existing
	// file is kept rather than deleted first.
	if err := os.Rename(tempPath, path); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(path); statErr == nil {
				return errors.NewInvalidRequest("export destination already exists; choose a new path or delete the existing file")
			}
		}
		return errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return nil
}

// defaultExportPath returns <base>/exports/<project>-<timestamp>.csv, or
// batch-<timestamp>.csv when the project is unnamed.
func defaultExportPath(baseDir, project string, now time.Time) string {
	name := "batch"
	if project != "" {
		name = FileStem(project)
	}
	filename := fmt.Sprintf("%s-%s%s", name, now.Format("2006-01-02T150405"), csvExt)
	return filepath.Join(ExportsDir(baseDir), filename)
}

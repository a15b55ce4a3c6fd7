package ops

import (
	"context"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/hpungsan/msbatch/internal/errors"
)

// ImportNamesInput contains parameters for the ImportNames operation.
type ImportNamesInput struct {
	Path   string // required, .csv
	Column string // header of the column holding names; default: first column
}

// ImportNamesOutput contains the result of the ImportNames operation.
type ImportNamesOutput struct {
	Path   string   `json:"path"`
	Column string   `json:"column"`
	Names  []string `json:"names"`
	Count  int      `json:"count"`
}

// ImportNames reads sample names from one column of a CSV file. The first
// row is the header. Values are trimmed and blank cells dropped. Parse
// failures are reported as IMPORT_FAILED with the reader's message.
func ImportNames(ctx context.Context, env *Env, input ImportNamesInput) (*ImportNamesOutput, error) {
	if err := env.checkCSVPath(input.Path, namesFile); err != nil {
		return nil, err
	}

	file, err := openNoFollow(input.Path, os.O_RDONLY, 0)
	if err != nil {
		if _, ok := err.(*errors.BatchError); ok {
			return nil, err
		}
		return nil, errors.NewImportFailed(input.Path, err)
	}
	defer file.Close()

	column, names, err := readNameColumn(ctx, file, input.Column)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.NewCancelled("import")
		}
		return nil, errors.NewImportFailed(input.Path, err)
	}

	env.logger().Debug("names imported",
		zap.String("path", input.Path), zap.String("column", column), zap.Int("count", len(names)))

	return &ImportNamesOutput{
		Path:   input.Path,
		Column: column,
		Names:  names,
		Count:  len(names),
	}, nil
}

// readNameColumn returns the chosen column's header and its non-blank values.
func readNameColumn(ctx context.Context, r io.Reader, column string) (string, []string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return "", nil, stderrors.New("file is empty")
	}
	if err != nil {
		return "", nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	idx := 0
	if column != "" {
		idx = -1
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(column)) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return "", nil, fmt.Errorf("column %q not found (columns: %s)", column, strings.Join(header, ", "))
		}
	}

	names := []string{}
	for {
		if err := ctx.Err(); err != nil {
			return "", nil, err
		}
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", nil, err
		}
		if idx >= len(record) {
			continue
		}
		if name := strings.TrimSpace(record[idx]); name != "" {
			names = append(names, name)
		}
	}
	return strings.TrimSpace(header[idx]), names, nil
}

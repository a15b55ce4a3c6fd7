package template

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/hpungsan/msbatch/internal/db"
	"github.com/hpungsan/msbatch/internal/errors"
)

// SQLStore keeps templates in the SQLite database, one row per template.
// Each row's body is the same JSON a FileStore writes for that name.
type SQLStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLStore returns a store over an initialized database (see db.Init).
func NewSQLStore(database *sql.DB, logger *zap.Logger) *SQLStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLStore{db: database, logger: logger}
}

// Load returns every stored template. Rows whose body no longer decodes are
// skipped with a warning.
func (s *SQLStore) Load(ctx context.Context) (map[string]Template, error) {
	rows, err := db.ListTemplates(ctx, s.db)
	if err != nil {
		return nil, err
	}
	templates := make(map[string]Template, len(rows))
	for _, r := range rows {
		var t Template
		if err := json.Unmarshal([]byte(r.Body), &t); err != nil {
			s.logger.Warn("skipping undecodable template", zap.String("name", r.Name), zap.Error(err))
			continue
		}
		templates[r.Name] = t
	}
	return templates, nil
}

// Get reads the single row called name.
func (s *SQLStore) Get(ctx context.Context, name string) (Template, bool, error) {
	row, err := db.GetTemplate(ctx, s.db, name)
	if errors.Is(err, errors.ErrNotFound) {
		return Template{}, false, nil
	}
	if err != nil {
		return Template{}, false, err
	}
	var t Template
	if err := json.Unmarshal([]byte(row.Body), &t); err != nil {
		s.logger.Warn("skipping undecodable template", zap.String("name", name), zap.Error(err))
		return Template{}, false, nil
	}
	return t, true, nil
}

// Save creates or overwrites name.
func (s *SQLStore) Save(ctx context.Context, name string, t Template) error {
	body, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encoding template %q: %w", name, err)
	}
	return db.UpsertTemplate(ctx, s.db, name, string(body))
}

// Delete removes name and reports whether it existed.
func (s *SQLStore) Delete(ctx context.Context, name string) (bool, error) {
	return db.DeleteTemplate(ctx, s.db, name)
}

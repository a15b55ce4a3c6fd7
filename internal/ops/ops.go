package ops

import (
	"context"
	"crypto/rand"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/msbatch/internal/batch"
	"github.com/hpungsan/msbatch/internal/config"
	"github.com/hpungsan/msbatch/internal/errors"
	"github.com/hpungsan/msbatch/internal/instrument"
	"github.com/hpungsan/msbatch/internal/naming"
	"github.com/hpungsan/msbatch/internal/sequence"
	"github.com/hpungsan/msbatch/internal/template"
	"github.com/hpungsan/msbatch/internal/worklist"
)

// Pagination limits
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

var errNoStore = stderrors.New("no template store configured")

// Env carries the collaborators shared by every operation.
type Env struct {
	Store    template.Store
	Config   *config.Config
	BaseDir  string
	Logger   *zap.Logger
	LogLevel *zap.AtomicLevel // level of Logger and the store's logger; may be nil
}

func (e *Env) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

func (e *Env) config() *config.Config {
	if e.Config == nil {
		return config.DefaultConfig()
	}
	return e.Config
}

// Summary reports the size of a sequence.
type Summary struct {
	Total  int            `json:"total"`
	Counts map[string]int `json:"counts"`
}

func summarize(counts sequence.Counts) Summary {
	return Summary{Total: counts.Total(), Counts: counts.ByName()}
}

// prepared is a resolved batch with its sequence and names.
type prepared struct {
	batch      *batch.Batch
	plan       *batch.Plan
	profile    instrument.Profile // nil when no instrument is named
	seq        []sequence.Entry
	names      []string
	advisories []string
}

// prepare resolves b against its template, reads imported names, builds the
// sequence and names every entry. requireInstrument makes a missing
// instrument an error; an unknown one always is.
func prepare(ctx context.Context, env *Env, b *batch.Batch, requireInstrument bool) (*prepared, error) {
	if b == nil {
		return nil, errors.NewInvalidRequest("batch is required")
	}

	var base *template.Template
	if name := strings.TrimSpace(b.Template); name != "" {
		t, err := lookupTemplate(ctx, env, name)
		if err != nil {
			return nil, err
		}
		base = &t
	}

	cfg := env.config()
	plan, err := b.Resolve(base, cfg.DefaultInstrument)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}

	if b.Naming != nil && b.Naming.Import != nil {
		out, err := ImportNames(ctx, env, ImportNamesInput{Path: b.Naming.Import.Path, Column: b.Naming.Import.Column})
		if err != nil {
			return nil, err
		}
		plan.Naming.Imported = out.Names
	}

	p := &prepared{batch: b, plan: plan}
	if plan.Instrument != "" {
		profile, ok := instrument.Lookup(plan.Instrument)
		if !ok {
			return nil, errors.NewUnknownInstrument(plan.Instrument, instrument.Names())
		}
		p.profile = profile
	} else if requireInstrument {
		return nil, errors.NewInvalidRequest("instrument is required")
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("generation")
	}

	p.seq = sequence.Build(plan.Settings, plan.Order)
	p.names = naming.ResolveAll(p.seq, plan.Naming)

	p.advisories = batch.Advisories(b, plan)
	if plan.Naming.Mode == naming.ModeImportedList && len(plan.Naming.Imported) > 0 {
		short := naming.Shortfall(p.seq, plan.Naming.Imported)
		for _, c := range sequence.Categories {
			if missing := short[c.String()]; missing > 0 {
				p.advisories = append(p.advisories, fmt.Sprintf(
					"%d imported names for %d %s entries; %d use default names",
					len(plan.Naming.Imported), len(plan.Naming.Imported)+missing, c, missing))
			}
		}
	}
	if p.profile != nil {
		p.advisories = append(p.advisories, p.profile.Check(plan.InstrumentSettings, len(p.seq))...)
	}
	for _, a := range p.advisories {
		env.logger().Warn("batch advisory", zap.String("project", b.Project), zap.String("advisory", a))
	}
	return p, nil
}

// render builds the instrument table of p. p.profile must be set.
func (p *prepared) render() *worklist.Table {
	return p.profile.Render(p.seq, p.names, p.plan.InstrumentSettings)
}

func lookupTemplate(ctx context.Context, env *Env, name string) (template.Template, error) {
	if env.Store == nil {
		return template.Template{}, errors.NewNotFound(name)
	}
	if g, ok := env.Store.(template.Getter); ok {
		t, found, err := g.Get(ctx, name)
		if err != nil {
			return template.Template{}, storeError(ctx, "template load", err)
		}
		if !found {
			return template.Template{}, errors.NewNotFound(name)
		}
		return t, nil
	}
	templates, err := env.Store.Load(ctx)
	if err != nil {
		return template.Template{}, storeError(ctx, "template load", err)
	}
	t, ok := templates[name]
	if !ok {
		return template.Template{}, errors.NewNotFound(name)
	}
	return t, nil
}

// storeError maps a store failure to a BatchError.
func storeError(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return errors.NewCancelled(op)
	}
	if _, ok := err.(*errors.BatchError); ok {
		return err
	}
	return errors.NewInternal(err)
}

// newBatchID returns a ULID identifying one generation pass.
func newBatchID(now time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(now), entropy).String()
}

// validateTemplateName trims name and rejects empty names.
func validateTemplateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.NewInvalidRequest("template name is required")
	}
	return name, nil
}

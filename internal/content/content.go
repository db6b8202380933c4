// Package content is the read-only registry of cases and weekly cases.
//
// The corpus is a set of YAML documents loaded and validated once at startup. A validation failure is fatal: the
// process must not serve a corpus with a missing guilty suspect or a dangling dialogue reference.
package content

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"slices"
	"time"

	"github.com/myrjola/casebook/internal/errors"
	"github.com/myrjola/casebook/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed corpus/*.yaml
var embedded embed.FS

// Embedded returns the corpus compiled into the binary.
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "corpus")
	if err != nil {
		panic(err) // the directory is embedded above
	}
	return sub
}

const (
	kindCase   = "case"
	kindWeekly = "weekly"
)

// document is one YAML document of the corpus. Kind selects which payload is set.
type document struct {
	Kind   string             `yaml:"kind"`
	Case   *models.Case       `yaml:"case"`
	Weekly *models.WeeklyCase `yaml:"weekly"`
}

// Repository holds the loaded corpus. It is safe for concurrent use because it is never mutated after Load.
type Repository struct {
	cases     map[string]*models.Case
	caseIDs   []string
	weekly    map[string]*models.WeeklyCase
	weeklyIDs []string
	logger    *slog.Logger
}

// Load parses every *.yaml file at the root of fsys and validates the result.
func Load(fsys fs.FS, logger *slog.Logger) (*Repository, error) {
	repo := Repository{
		cases:  map[string]*models.Case{},
		weekly: map[string]*models.WeeklyCase{},
		logger: logger.With(slog.String("source", "content.Repository")),
	}

	files, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, errors.Wrap(err, "glob corpus")
	}
	slices.Sort(files)
	var errs []error
	for _, file := range files {
		if err = repo.loadFile(fsys, file); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		errs = append(errs, repo.validate()...)
	}
	if len(errs) > 0 {
		return nil, errors.Wrap(errors.Join(append([]error{models.ErrContentValidation}, errs...)...), "load content")
	}
	if len(repo.caseIDs) == 0 && len(repo.weeklyIDs) == 0 {
		return nil, errors.Wrap(models.ErrContentValidation, "empty corpus")
	}

	repo.logger.LogAttrs(context.Background(), slog.LevelInfo, "loaded content",
		slog.Int("cases", len(repo.caseIDs)),
		slog.Int("weekly_cases", len(repo.weeklyIDs)))
	return &repo, nil
}

func (r *Repository) loadFile(fsys fs.FS, file string) error {
	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		return errors.Wrap(err, "read corpus file", slog.String("file", file))
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	for i := 0; ; i++ {
		var doc document
		if err = decoder.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("%s document %d: %w", path.Base(file), i, err)
		}
		switch {
		case doc.Kind == kindCase && doc.Case != nil:
			c := doc.Case
			if _, dup := r.cases[c.ID]; dup {
				return fmt.Errorf("%s: duplicate case id %q", file, c.ID)
			}
			r.cases[c.ID] = c
			r.caseIDs = append(r.caseIDs, c.ID)
		case doc.Kind == kindWeekly && doc.Weekly != nil:
			w := doc.Weekly
			if _, dup := r.weekly[w.ID]; dup {
				return fmt.Errorf("%s: duplicate weekly case id %q", file, w.ID)
			}
			r.weekly[w.ID] = w
			r.weeklyIDs = append(r.weeklyIDs, w.ID)
		default:
			return fmt.Errorf("%s document %d: kind %q without matching payload", file, i, doc.Kind)
		}
	}
}

// Case returns the case with id.
func (r *Repository) Case(id string) (*models.Case, error) {
	c, ok := r.cases[id]
	if !ok {
		return nil, errors.Wrap(models.ErrCaseNotFound, "lookup case", slog.String("case_id", id))
	}
	return c, nil
}

// WeeklyCase returns the weekly case with id.
func (r *Repository) WeeklyCase(id string) (*models.WeeklyCase, error) {
	w, ok := r.weekly[id]
	if !ok {
		return nil, errors.Wrap(models.ErrCaseNotFound, "lookup weekly case", slog.String("case_id", id))
	}
	return w, nil
}

// CaseIDs returns the ids of the daily cases in load order.
func (r *Repository) CaseIDs() []string {
	return slices.Clone(r.caseIDs)
}

// WeeklyCaseIDs returns the ids of the weekly cases in load order.
func (r *Repository) WeeklyCaseIDs() []string {
	return slices.Clone(r.weeklyIDs)
}

// SelectCase returns the daily case chosen by selector at now.
func (r *Repository) SelectCase(selector Selector, now time.Time) (*models.Case, error) {
	id, err := selector.Select(r.caseIDs, now)
	if err != nil {
		return nil, errors.Wrap(err, "select case")
	}
	return r.Case(id)
}

// SelectWeeklyCase returns the weekly case chosen by selector at now.
func (r *Repository) SelectWeeklyCase(selector Selector, now time.Time) (*models.WeeklyCase, error) {
	id, err := selector.Select(r.weeklyIDs, now)
	if err != nil {
		return nil, errors.Wrap(err, "select weekly case")
	}
	return r.WeeklyCase(id)
}

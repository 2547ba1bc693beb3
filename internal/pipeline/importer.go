// Package pipeline runs an import end to end: extract, normalize or parse,
// build a draft, resolve duplicates, persist, and index.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/larder/internal/dedupe"
	"github.com/hyperjump/larder/internal/draft"
	"github.com/hyperjump/larder/internal/errors"
	"github.com/hyperjump/larder/internal/extract"
	"github.com/hyperjump/larder/internal/heuristic"
	"github.com/hyperjump/larder/internal/models"
	"github.com/hyperjump/larder/internal/normalize"
	"github.com/hyperjump/larder/internal/storage"
	"github.com/hyperjump/larder/internal/vocab"
)

// Request describes one import. Exactly one of Text and Path is set.
type Request struct {
	Text   string
	Path   string
	Format models.Format
	Policy models.DuplicatePolicy
}

// RecipeIndex receives every persisted recipe. Indexing failures are logged,
// never returned: the recipe is already committed.
type RecipeIndex interface {
	Index(ctx context.Context, recipe *models.Recipe) error
	Delete(ctx context.Context, id string) error
}

// Importer runs imports against one store.
type Importer struct {
	store      storage.Storage
	runner     *extract.Runner
	normalizer *normalize.Normalizer
	parser     *heuristic.Parser
	builder    *draft.Builder
	resolver   *dedupe.Resolver
	index      RecipeIndex
	policy     models.DuplicatePolicy
	category   string
	logger     *zap.Logger
}

// ImporterOption configures an Importer.
type ImporterOption func(*Importer)

// WithLogger sets the logger for stage and record events.
func WithLogger(l *zap.Logger) ImporterOption {
	return func(i *Importer) { i.logger = l }
}

// WithIndex adds a search index that receives persisted recipes.
func WithIndex(ix RecipeIndex) ImporterOption {
	return func(i *Importer) { i.index = ix }
}

// WithDefaultPolicy sets the policy used when a request names none.
func WithDefaultPolicy(p models.DuplicatePolicy) ImporterOption {
	return func(i *Importer) { i.policy = p }
}

// WithDefaultCategory sets the category given to recipes that name none.
func WithDefaultCategory(category string) ImporterOption {
	return func(i *Importer) { i.category = category }
}

// NewImporter creates an importer. A nil runner means the default backend
// chains; a nil vocabulary means vocab.Default().
func NewImporter(store storage.Storage, runner *extract.Runner, v *vocab.Vocabulary, opts ...ImporterOption) *Importer {
	if runner == nil {
		runner = extract.NewRunner()
	}
	if v == nil {
		v = vocab.Default()
	}
	i := &Importer{
		store:      store,
		runner:     runner,
		normalizer: normalize.NewNormalizer(v),
		parser:     heuristic.NewParser(v),
		resolver:   dedupe.NewResolver(store),
		policy:     models.PolicySkip,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	i.builder = draft.NewBuilder(v, i.category)
	return i
}

// Import runs req to completion. Every recipe reported in the result has
// been committed before Import returns. A source whose every record failed
// returns the first record's error.
func (i *Importer) Import(ctx context.Context, req Request) (*models.ImportResult, error) {
	format, err := i.resolveFormat(&req)
	if err != nil {
		return nil, err
	}
	policy := req.Policy
	if policy == "" {
		policy = i.policy
	}

	i.logger.Debug("Import started",
		zap.String("path", req.Path), zap.String("format", string(format)), zap.String("policy", string(policy)))

	var res *extract.Result
	if req.Path != "" {
		res, err = i.runner.Extract(ctx, req.Path, format)
	} else {
		res, err = i.runner.ExtractText(ctx, req.Text)
	}
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidates, err := i.candidates(format, res)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, errors.NewEmptyRecipe()
	}
	i.logger.Debug("Candidates found", zap.Int("count", len(candidates)), zap.String("backend", res.Backend))

	result := &models.ImportResult{Format: format, Backend: res.Backend}
	var firstErr error
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := i.importCandidate(ctx, c, policy)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			rec.Status = models.StatusFailed
			rec.Error = errors.UserMessage(err)
			i.logger.Warn("Record failed",
				zap.String("path", req.Path), zap.Int("index", c.Index), zap.Error(err))
		}
		result.Records = append(result.Records, rec)
		if rec.ID != "" {
			result.ID, result.Title = rec.ID, rec.Title
		}
	}

	result.Status = overallStatus(result.Records)
	if result.Status == models.StatusFailed {
		return nil, firstErr
	}
	if result.Title == "" {
		for _, rec := range result.Records {
			if rec.Title != "" {
				result.Title = rec.Title
				break
			}
		}
	}
	return result, nil
}

// importCandidate builds and persists one record. The returned record always
// carries the index and, once known, the title.
func (i *Importer) importCandidate(ctx context.Context, c normalize.Candidate, policy models.DuplicatePolicy) (models.RecordResult, error) {
	rec := models.RecordResult{Index: c.Index}
	if c.Err != nil {
		return rec, c.Err
	}
	d, err := i.builder.Build(c.Bag)
	if err != nil {
		return rec, err
	}
	rec.Title = d.Title
	if err := ctx.Err(); err != nil {
		return rec, err
	}

	id, action, err := i.resolver.Apply(ctx, d, policy)
	if err != nil {
		return rec, err
	}
	switch action {
	case dedupe.ActionSkip:
		rec.Status = models.StatusSkipped
		i.logger.Warn("Duplicate skipped", zap.String("title", d.Title))
		return rec, nil
	case dedupe.ActionUpdate:
		rec.Status = models.StatusUpdated
	default:
		rec.Status = models.StatusCreated
	}
	rec.ID = id
	i.logger.Info("Recipe saved",
		zap.String("recipe_id", id), zap.String("title", d.Title), zap.String("status", string(rec.Status)))

	i.indexRecipe(ctx, id)
	return rec, nil
}

func (i *Importer) indexRecipe(ctx context.Context, id string) {
	if i.index == nil {
		return
	}
	recipe, err := i.store.GetRecipe(ctx, id)
	if err == nil {
		err = i.index.Index(ctx, recipe)
	}
	if err != nil {
		i.logger.Warn("Failed to index recipe", zap.String("recipe_id", id), zap.Error(err))
	}
}

// Delete removes a recipe from the store and the search index.
func (i *Importer) Delete(ctx context.Context, id string) error {
	if err := i.store.DeleteRecipe(ctx, id); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return err
		}
		return errors.NewPersistence(fmt.Errorf("delete recipe: %w", err))
	}
	if i.index != nil {
		if err := i.index.Delete(ctx, id); err != nil {
			i.logger.Warn("Failed to remove recipe from index", zap.String("recipe_id", id), zap.Error(err))
		}
	}
	i.logger.Info("Recipe deleted", zap.String("recipe_id", id))
	return nil
}

// Backends reports the extraction backends and whether each can run.
func (i *Importer) Backends() []extract.BackendStatus {
	return i.runner.Status()
}

// overallStatus summarizes record outcomes: created or updated when anything
// was persisted (created wins), skipped when nothing was persisted but
// something was skipped, failed otherwise.
func overallStatus(records []models.RecordResult) models.ImportStatus {
	var created, updated, skipped bool
	for _, r := range records {
		switch r.Status {
		case models.StatusCreated:
			created = true
		case models.StatusUpdated:
			updated = true
		case models.StatusSkipped:
			skipped = true
		}
	}
	switch {
	case created:
		return models.StatusCreated
	case updated:
		return models.StatusUpdated
	case skipped:
		return models.StatusSkipped
	}
	return models.StatusFailed
}

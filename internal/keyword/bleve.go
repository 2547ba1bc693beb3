package keyword

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/hyperjump/larder/internal/models"
)

// fieldBoosts weights where a query term matched. Title matches rank first.
var fieldBoosts = []struct {
	field string
	boost float64
}{
	{"title", 4},
	{"ingredients", 2},
	{"tags", 1.5},
	{"category", 1.5},
	{"instructions", 1},
	{"notes", 1},
}

// BleveIndex implements KeywordIndex using Bleve.
type BleveIndex struct {
	index bleve.Index
}

func recipeMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()

	doc := bleve.NewDocumentMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) keeps dictionary terms whole
	// so suggestions read as real words.
	text := bleve.NewTextFieldMapping()
	text.Analyzer = standard.Name
	for _, f := range fieldBoosts {
		doc.AddFieldMappingsAt(f.field, text)
	}
	key := bleve.NewKeywordFieldMapping()
	key.Store = false
	doc.AddFieldMappingsAt("category_key", key)

	im.AddDocumentMapping("recipe", doc)
	im.DefaultType = "recipe"
	im.DefaultMapping = doc
	return im
}

// NewBleveIndex creates or opens a Bleve index at path. An empty path keeps
// the index in memory.
// If you change the index mapping in code, remove the index directory to force a full re-index.
func NewBleveIndex(path string) (*BleveIndex, error) {
	if path == "" {
		index, err := bleve.NewMemOnly(recipeMapping())
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory Bleve index: %w", err)
		}
		return &BleveIndex{index: index}, nil
	}

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}

	index, err := bleve.New(path, recipeMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// Index adds or replaces a recipe.
func (b *BleveIndex) Index(ctx context.Context, recipe *models.Recipe) error {
	return b.index.Index(recipe.ID, newRecipeDoc(recipe))
}

// Search runs q over every recipe field, weighting title and ingredient
// matches. When nothing matches exactly it retries with fuzzy terms and
// offers a respelled query.
func (b *BleveIndex) Search(ctx context.Context, q models.SearchQuery) (*models.SearchResponse, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	resp, err := b.search(ctx, q, false)
	if err != nil {
		return nil, err
	}
	if resp.Total == 0 {
		if suggestion, ok, err := b.Suggest(q.Query); err == nil && ok {
			resp.Suggestion = suggestion
		}
		fuzzy, err := b.search(ctx, q, true)
		if err != nil {
			return nil, err
		}
		fuzzy.Suggestion = resp.Suggestion
		resp = fuzzy
	}
	resp.QueryTime = time.Since(start).Milliseconds()
	return resp, nil
}

func (b *BleveIndex) search(ctx context.Context, q models.SearchQuery, fuzzy bool) (*models.SearchResponse, error) {
	req := bleve.NewSearchRequestOptions(buildQuery(q, fuzzy), q.Limit, q.Offset, false)
	req.Fields = []string{"title", "category"}
	results, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}

	resp := &models.SearchResponse{
		Hits:  make([]models.SearchHit, 0, len(results.Hits)),
		Total: results.Total,
		Query: q.Query,
	}
	for _, hit := range results.Hits {
		title, _ := hit.Fields["title"].(string)
		category, _ := hit.Fields["category"].(string)
		resp.Hits = append(resp.Hits, models.SearchHit{ID: hit.ID, Title: title, Category: category, Score: hit.Score})
	}
	return resp, nil
}

// buildQuery ORs a boosted per-field query together and, when a category is
// given, requires it.
func buildQuery(q models.SearchQuery, fuzzy bool) blevequery.Query {
	queries := make([]blevequery.Query, 0, len(fieldBoosts))
	for _, f := range fieldBoosts {
		if fuzzy {
			queries = append(queries, buildFuzzyQuery(q.Query, f.field, f.boost))
			continue
		}
		mq := bleve.NewMatchQuery(q.Query)
		mq.SetField(f.field)
		mq.SetBoost(f.boost)
		queries = append(queries, mq)
	}
	var query blevequery.Query = bleve.NewDisjunctionQuery(queries...)

	if category := strings.ToLower(strings.TrimSpace(q.Category)); category != "" {
		tq := bleve.NewTermQuery(category)
		tq.SetField("category_key")
		query = bleve.NewConjunctionQuery(query, tq)
	}
	return query
}

// buildFuzzyQuery creates a disjunction of FuzzyQueries for each term in the query.
// Short terms tolerate one edit, longer ones two.
func buildFuzzyQuery(queryStr, field string, boost float64) blevequery.Query {
	terms := tokenizeQuery(queryStr)
	if len(terms) == 0 {
		mq := bleve.NewMatchQuery(queryStr)
		mq.SetField(field)
		return mq
	}
	queries := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		fq := bleve.NewFuzzyQuery(term)
		fq.SetFuzziness(maxEdits(term))
		fq.SetField(field)
		fq.SetBoost(boost)
		queries = append(queries, fq)
	}
	return bleve.NewDisjunctionQuery(queries...)
}

// Delete removes a recipe from the index.
func (b *BleveIndex) Delete(ctx context.Context, id string) error {
	return b.index.Delete(id)
}

// DocCount returns the total number of recipes in the index.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}

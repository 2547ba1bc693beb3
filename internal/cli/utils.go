// Package cli renders recipes, import results, and reports for the larder command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/hyperjump/larder/internal/extract"
	"github.com/hyperjump/larder/internal/models"
	"github.com/hyperjump/larder/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat accepts "text" (or empty) and "json".
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "", OutputText:
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q (use text or json)", s)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteRecipe writes one stored recipe.
func WriteRecipe(w io.Writer, r *models.Recipe, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, r)
	}

	fmt.Fprintf(w, "%s\n%s\n", r.Title, strings.Repeat("=", len([]rune(r.Title))))
	fmt.Fprintf(w, "ID: %s\nCategory: %s\n", r.ID, r.Category)
	optional := []struct {
		label string
		value *string
	}{
		{"Type", r.Type},
		{"Prep time", r.PrepTime},
		{"Cook time", r.CookTime},
		{"Total time", r.TotalTime},
		{"Difficulty", r.Difficulty},
		{"Source", r.Source},
		{"URL", r.URL},
	}
	if r.Servings != nil {
		fmt.Fprintf(w, "Servings: %d\n", *r.Servings)
	}
	for _, o := range optional {
		if o.value != nil {
			fmt.Fprintf(w, "%s: %s\n", o.label, *o.value)
		}
	}
	if len(r.Tags) > 0 {
		fmt.Fprintf(w, "Tags: %s\n", strings.Join(r.Tags, ", "))
	}
	if r.Description != nil {
		fmt.Fprintf(w, "\n%s\n", *r.Description)
	}

	fmt.Fprintf(w, "\nIngredients\n")
	for _, l := range r.Ingredients {
		fmt.Fprintf(w, "  - %s\n", ingredientText(l))
	}
	fmt.Fprintf(w, "\nInstructions\n")
	for i, step := range r.Instructions {
		fmt.Fprintf(w, "  %d. %s\n", i+1, step)
	}
	if r.Notes != nil {
		fmt.Fprintf(w, "\nNotes\n  %s\n", *r.Notes)
	}
	return nil
}

func ingredientText(l models.IngredientLine) string {
	parts := make([]string, 0, 3)
	if l.Quantity != nil {
		parts = append(parts, *l.Quantity)
	}
	if l.Unit != nil {
		parts = append(parts, *l.Unit)
	}
	if l.Name != "" {
		parts = append(parts, l.Name)
	}
	if len(parts) == 0 {
		return l.RawText
	}
	return strings.Join(parts, " ")
}

// WriteImportResult writes the outcome of an import: one line per record
// and a summary.
func WriteImportResult(w io.Writer, res *models.ImportResult, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, res)
	}
	if len(res.Records) > 1 {
		for _, rec := range res.Records {
			line := strings.TrimRight(fmt.Sprintf("  #%d %-8s %s", rec.Index+1, rec.Status, rec.Title), " ")
			if rec.Error != "" {
				line += " (" + rec.Error + ")"
			}
			fmt.Fprintln(w, line)
		}
	}
	counts := res.Counts()
	fmt.Fprintf(w, "%s: %q [%s via %s]", res.Status, res.Title, res.Format, res.Backend)
	if len(res.Records) > 1 {
		fmt.Fprintf(w, " created %d, updated %d, skipped %d, failed %d",
			counts[models.StatusCreated], counts[models.StatusUpdated],
			counts[models.StatusSkipped], counts[models.StatusFailed])
	}
	fmt.Fprintln(w)
	return nil
}

// WriteRecipeList writes recipe summaries.
func WriteRecipeList(w io.Writer, list []*models.RecipeSummary, format OutputFormat) error {
	if format == OutputJSON {
		if list == nil {
			list = []*models.RecipeSummary{}
		}
		return writeJSON(w, list)
	}
	if len(list) == 0 {
		fmt.Fprintln(w, "No recipes.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tINGREDIENTS\tUPDATED")
	for _, r := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			r.ID, utils.Truncate(r.Title, 40), r.Category, r.IngredientCount, r.UpdatedAt.Format("2006-01-02"))
	}
	return tw.Flush()
}

// WriteSearchResults writes search results to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	fmt.Fprintf(w, "\nFound %d recipes in %dms\n", response.Total, response.QueryTime)
	if response.Suggestion != "" {
		fmt.Fprintf(w, "Did you mean: %s\n", response.Suggestion)
	}
	fmt.Fprintln(w)
	for i, hit := range response.Hits {
		fmt.Fprintf(w, "%2d. %s", i+1, hit.Title)
		if hit.Category != "" {
			fmt.Fprintf(w, " [%s]", hit.Category)
		}
		fmt.Fprintf(w, "\n    ID: %s | Score: %.4f\n", hit.ID, hit.Score)
	}
	return nil
}

// WriteBackends writes the extraction backend availability report.
func WriteBackends(w io.Writer, backends []extract.BackendStatus, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, backends)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BACKEND\tFORMATS\tSTATUS\tREQUIRES")
	for _, b := range backends {
		status := "available"
		if !b.Available {
			status = "missing"
			if b.Reason != "" {
				status += ": " + utils.Truncate(b.Reason, 40)
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", b.Name, strings.Join(b.Formats, ","), status, b.Requires)
	}
	return tw.Flush()
}

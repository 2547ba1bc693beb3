package vocab

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/larder/internal/models"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"title", "title"},
		{"Recipe Name", "recipe_name"},
		{"recipeIngredient", "recipe_ingredient"},
		{"prep-time", "prep_time"},
		{"URL", "url"},
		{"@graph", "@graph"},
		{"  serving_size ", "serving_size"},
	}
	for _, tt := range tests {
		if got := NormalizeKey(tt.in); got != tt.want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDefault_Fields(t *testing.T) {
	v := Default()
	fields := v.Fields("Recipe_Name")
	if len(fields) != 1 || fields[0] != models.FieldTitle {
		t.Errorf("Fields(Recipe_Name) = %v", fields)
	}
	if got := v.Fields("recipeIngredient"); len(got) != 1 || got[0] != models.FieldIngredients {
		t.Errorf("Fields(recipeIngredient) = %v", got)
	}
	if !v.IsCollection("Recipes") || !v.IsCollection("@graph") {
		t.Error("expected recipes and @graph to be collection keys")
	}
	if v.IsCollection("title") {
		t.Error("title is not a collection key")
	}
}

func TestDefault_Section(t *testing.T) {
	v := Default()
	tests := []struct {
		line string
		want Section
		ok   bool
	}{
		{"Ingredients", SectionIngredients, true},
		{"## INGREDIENTS:", SectionIngredients, true},
		{"You Will Need", SectionIngredients, true},
		{"Directions:", SectionInstructions, true},
		{"**Method**", SectionInstructions, true},
		{"Cook’s Notes", SectionNotes, true},
		{"2 cups flour", SectionNone, false},
		{"", SectionNone, false},
	}
	for _, tt := range tests {
		got, ok := v.Section(tt.line)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Section(%q) = %q, %v; want %q, %v", tt.line, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDefault_Label(t *testing.T) {
	v := Default()
	tests := []struct {
		label string
		want  models.FieldKey
	}{
		{"Serves", models.FieldServings},
		{"Prep Time", models.FieldPrepTime},
		{"COOKING TIME", models.FieldCookTime},
		{"Cuisine", models.FieldCategory},
		{"Level", models.FieldDifficulty},
	}
	for _, tt := range tests {
		got, ok := v.Label(tt.label)
		if !ok || got != tt.want {
			t.Errorf("Label(%q) = %q, %v; want %q", tt.label, got, ok, tt.want)
		}
	}
	if _, ok := v.Label("Step 1"); ok {
		t.Error("Step 1 should not be a label")
	}
}

func TestDefault_UnitsAndArtifacts(t *testing.T) {
	v := Default()
	for _, u := range []string{"cups", "Tbsp.", "g", "fl oz"} {
		if !v.IsUnit(u) {
			t.Errorf("IsUnit(%q) = false", u)
		}
	}
	if v.IsUnit("eggs") {
		t.Error("IsUnit(eggs) = true")
	}
	for _, line := range []string{"12", "Page 3 of 10", "© 2021 Someone", "https://example.com/x", "- 4 -"} {
		if !v.IsArtifact(line) {
			t.Errorf("IsArtifact(%q) = false", line)
		}
	}
	if v.IsArtifact("Lemon Drizzle Cake") {
		t.Error("title detected as artifact")
	}
}

func TestNew_RejectsUnknownField(t *testing.T) {
	tables := DefaultTables()
	tables.Fields["calories"] = []string{"kcal"}
	if _, err := New(tables); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestNew_CustomVocabulary(t *testing.T) {
	v, err := New(Tables{
		Fields:   map[string][]string{"title": {"titel"}},
		Units:    []string{"el"},
		Sections: map[string][]string{"ingredients": {"zutaten"}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := v.Fields("Titel"); len(got) != 1 || got[0] != models.FieldTitle {
		t.Errorf("Fields(Titel) = %v", got)
	}
	if v.IsUnit("cups") {
		t.Error("custom vocabulary should not know cups")
	}
	if sec, ok := v.Section("Zutaten:"); !ok || sec != SectionIngredients {
		t.Errorf("Section(Zutaten:) = %q, %v", sec, ok)
	}
}

func TestLoad_Overlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vocab.yaml")
	content := "units:\n  - el\n  - tl\nsections:\n  instructions:\n    - zubereitung\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	v, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !v.IsUnit("EL") || !v.IsUnit("cups") {
		t.Error("expected overlay and default units")
	}
	if sec, ok := v.Section("Zubereitung"); !ok || sec != SectionInstructions {
		t.Errorf("Section(Zubereitung) = %q, %v", sec, ok)
	}
}

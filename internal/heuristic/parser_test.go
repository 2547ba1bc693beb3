package heuristic

import (
	"reflect"
	"testing"

	"github.com/hyperjump/larder/internal/models"
	"github.com/hyperjump/larder/internal/vocab"
)

const labeledRecipe = `Lemon Drizzle Cake
A bright, tangy loaf cake for afternoon tea.
Category: Dessert
Servings: 8
Prep Time: 15 minutes
Cook Time: 45 minutes
Difficulty: Easy

Ingredients
- 2 cups flour
- 1 cup sugar
- 3 eggs
- 1 1/2 cups milk

Instructions
1. Preheat the oven to 180C.
2. Mix the dry ingredients.
   Add the eggs and milk.
3. Bake for 45 minutes.

Notes
Keeps for 3 days in a tin.
`

func TestParse_LabeledRecipe(t *testing.T) {
	p := NewParser(vocab.Default())
	bag := p.Parse(labeledRecipe)

	want := map[models.FieldKey]string{
		models.FieldTitle:       "Lemon Drizzle Cake",
		models.FieldCategory:    "Dessert",
		models.FieldServings:    "8",
		models.FieldPrepTime:    "15 minutes",
		models.FieldCookTime:    "45 minutes",
		models.FieldDifficulty:  "Easy",
		models.FieldDescription: "A bright, tangy loaf cake for afternoon tea.",
		models.FieldNotes:       "Keeps for 3 days in a tin.",
	}
	for k, v := range want {
		if got := bag.String(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}

	lines := bag[models.FieldIngredients].Lines
	if len(lines) != 4 {
		t.Fatalf("ingredients = %d, want 4", len(lines))
	}
	if lines[3].Quantity == nil || *lines[3].Quantity != "1 1/2" || lines[3].Name != "milk" {
		t.Errorf("ingredient 4 = %+v", lines[3])
	}
	if lines[2].Unit != nil || lines[2].Name != "eggs" {
		t.Errorf("ingredient 3 = %+v", lines[2])
	}

	steps := bag.List(models.FieldInstructions)
	wantSteps := []string{
		"Preheat the oven to 180C.",
		"Mix the dry ingredients. Add the eggs and milk.",
		"Bake for 45 minutes.",
	}
	if !reflect.DeepEqual(steps, wantSteps) {
		t.Errorf("steps = %q, want %q", steps, wantSteps)
	}
}

func TestParse_NoHeadersFallbacks(t *testing.T) {
	text := `Quick Tomato Soup
Serves 4

400 g canned tomatoes
1 tbsp olive oil
2 cloves garlic
salt

1. Warm the oil and fry the garlic.
2. Add tomatoes and simmer 10 minutes.
3. Blend until smooth.`

	bag := NewParser(vocab.Default()).Parse(text)
	if got := bag.String(models.FieldTitle); got != "Quick Tomato Soup" {
		t.Errorf("title = %q", got)
	}
	if got := bag.String(models.FieldServings); got != "4" {
		t.Errorf("servings = %q", got)
	}
	lines := bag[models.FieldIngredients].Lines
	if len(lines) != 3 {
		t.Fatalf("ingredients = %d, want 3: %+v", len(lines), lines)
	}
	if lines[0].Name != "canned tomatoes" || lines[2].Name != "garlic" {
		t.Errorf("ingredients out of order: %+v", lines)
	}
	if steps := bag.List(models.FieldInstructions); len(steps) != 3 || steps[2] != "Blend until smooth." {
		t.Errorf("steps = %q", steps)
	}
	if bag.Has(models.FieldDescription) {
		t.Errorf("unexpected description %q", bag.String(models.FieldDescription))
	}
}

func TestParse_ParagraphSteps(t *testing.T) {
	text := `Roast Chicken

Ingredients:
1 whole chicken
2 tbsp butter

Method:
Rub the chicken with butter
and season well.

Roast at 200C for 90 minutes until golden.`

	bag := NewParser(vocab.Default()).Parse(text)
	want := []string{
		"Rub the chicken with butter and season well.",
		"Roast at 200C for 90 minutes until golden.",
	}
	if got := bag.List(models.FieldInstructions); !reflect.DeepEqual(got, want) {
		t.Errorf("steps = %q, want %q", got, want)
	}
	if n := len(bag[models.FieldIngredients].Lines); n != 2 {
		t.Errorf("ingredients = %d, want 2", n)
	}
}

func TestParse_UnheadedStepsAfterIngredients(t *testing.T) {
	text := `Banana Bread

Ingredients
- 2 cups flour
- 3 bananas
- 1 tsp baking soda

1. Preheat the oven to 350F.
2. Mash the bananas.
3. Bake for 60 minutes.`

	bag := NewParser(vocab.Default()).Parse(text)
	lines := bag[models.FieldIngredients].Lines
	if len(lines) != 3 || lines[1].Name != "bananas" {
		t.Errorf("ingredients = %+v, want 3", lines)
	}
	want := []string{"Preheat the oven to 350F.", "Mash the bananas.", "Bake for 60 minutes."}
	if got := bag.List(models.FieldInstructions); !reflect.DeepEqual(got, want) {
		t.Errorf("steps = %q, want %q", got, want)
	}
}

func TestParse_NumberedIngredientsStayIngredients(t *testing.T) {
	text := "Scones\nIngredients\n1. 2 cups flour\n2. 3 eggs\n3. salt"
	bag := NewParser(vocab.Default()).Parse(text)
	if n := len(bag[models.FieldIngredients].Lines); n != 3 {
		t.Errorf("ingredients = %d, want 3", n)
	}
	if bag.Has(models.FieldInstructions) {
		t.Errorf("unexpected steps %q", bag.List(models.FieldInstructions))
	}
}

func TestParse_QuantityTitle(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"unit in title", "3 Cup Chili\nServes 6\n\nIngredients\n- 3 cups beans\n- 1 lb beef\n\nInstructions\n1. Brown the beef.\n2. Add the beans.", "3 Cup Chili"},
		{"weight in title", "2 lb Roast\n\nIngredients\n- 2 lb beef\n\nMethod\nRoast it slowly.", "2 lb Roast"},
		{"headerless list", "200 g flour\n100 g sugar\n\n1. Mix.\n2. Bake.", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bag := NewParser(vocab.Default()).Parse(tt.text)
			if got := bag.String(models.FieldTitle); got != tt.want {
				t.Errorf("title = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParse_SingleParagraphSplitsLines(t *testing.T) {
	text := "Pancakes\nDirections\nMix everything.\nPour into pan.\nOk\n"
	bag := NewParser(vocab.Default()).Parse(text)
	want := []string{"Mix everything.", "Pour into pan."}
	if got := bag.List(models.FieldInstructions); !reflect.DeepEqual(got, want) {
		t.Errorf("steps = %q, want %q", got, want)
	}
}

func TestParse_ArtifactsSourceAndURL(t *testing.T) {
	text := `Page 1 of 2
12
Grandma's Apple Pie
By Jane Doe
https://example.com/apple-pie
Ingredients
6 apples
Directions
Bake it all together.`

	bag := NewParser(vocab.Default()).Parse(text)
	if got := bag.String(models.FieldTitle); got != "Grandma's Apple Pie" {
		t.Errorf("title = %q", got)
	}
	if got := bag.String(models.FieldSource); got != "Jane Doe" {
		t.Errorf("source = %q", got)
	}
	if got := bag.String(models.FieldURL); got != "https://example.com/apple-pie" {
		t.Errorf("url = %q", got)
	}
	lines := bag[models.FieldIngredients].Lines
	if len(lines) != 1 || lines[0].Name != "apples" {
		t.Errorf("ingredients = %+v", lines)
	}
}

func TestParse_LabeledTitleAndTags(t *testing.T) {
	text := "Title: Banana Bread\nServings: 1 loaf\nTags: baking, breakfast\nJust mash and bake the bananas."
	bag := NewParser(vocab.Default()).Parse(text)
	if got := bag.String(models.FieldTitle); got != "Banana Bread" {
		t.Errorf("title = %q", got)
	}
	if got := bag.String(models.FieldServings); got != "1 loaf" {
		t.Errorf("servings = %q", got)
	}
	if got := bag.List(models.FieldTags); !reflect.DeepEqual(got, []string{"baking", "breakfast"}) {
		t.Errorf("tags = %q", got)
	}
}

func TestParse_NonNumericServingsIsNotMetadata(t *testing.T) {
	bag := NewParser(vocab.Default()).Parse("Soup\nServings: plenty")
	if bag.Has(models.FieldServings) {
		t.Errorf("servings = %q, want absent", bag.String(models.FieldServings))
	}
}

func TestParse_EmptyInput(t *testing.T) {
	bag := NewParser(vocab.Default()).Parse("  \n\n ")
	if len(bag) != 0 {
		t.Errorf("expected empty bag, got %v", bag)
	}
}

func TestParse_CustomVocabulary(t *testing.T) {
	v, err := vocab.New(vocab.Tables{
		Units: []string{"el"},
		Sections: map[string][]string{
			"ingredients":  {"zutaten"},
			"instructions": {"zubereitung"},
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	text := "Kartoffelsalat\nZutaten:\n2 EL Essig\nZubereitung:\n1. Alles mischen."
	bag := NewParser(v).Parse(text)
	lines := bag[models.FieldIngredients].Lines
	if len(lines) != 1 || lines[0].Unit == nil || *lines[0].Unit != "EL" {
		t.Errorf("ingredients = %+v", lines)
	}
	if got := bag.List(models.FieldInstructions); len(got) != 1 || got[0] != "Alles mischen." {
		t.Errorf("steps = %q", got)
	}
}

func TestLines_Normalizes(t *testing.T) {
	got := Lines("a\r\nb c  \rd")
	want := []string{"a", "b c", "d"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Lines = %q, want %q", got, want)
	}
}

func TestSplitSteps(t *testing.T) {
	p := NewParser(vocab.Default())
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"numbered", "1) Whisk eggs.\n2) Fold in flour\ngently.", []string{"Whisk eggs.", "Fold in flour gently."}},
		{"paragraphs", "Whisk the eggs.\n\nFold in the flour.", []string{"Whisk the eggs.", "Fold in the flour."}},
		{"lines", "Whisk the eggs.\nFold in the flour.", []string{"Whisk the eggs.", "Fold in the flour."}},
		{"empty", "  \n ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.SplitSteps(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitSteps(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

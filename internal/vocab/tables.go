package vocab

// Tables is the raw, serializable form of a vocabulary. A YAML file with the
// same shape can extend the defaults.
type Tables struct {
	// Fields maps a canonical field to the structured-data keys that mean it,
	// in priority order.
	Fields map[string][]string `yaml:"fields"`
	// Labels maps a canonical field to "label: value" prefixes found in prose.
	Labels map[string][]string `yaml:"labels"`
	// Collections are wrapper keys whose list value holds recipes.
	Collections []string `yaml:"collections"`
	// Units are measurement tokens recognized between quantity and name.
	Units []string `yaml:"units"`
	// Sections maps ingredients/instructions/notes to header synonyms.
	Sections map[string][]string `yaml:"sections"`
	// Artifacts are regular expressions for page furniture lines.
	Artifacts []string `yaml:"artifacts"`
}

// DefaultTables returns the built-in alias tables.
func DefaultTables() Tables {
	return Tables{
		Fields: map[string][]string{
			"title":        {"title", "name", "recipe_name", "recipe", "recipe_title", "headline"},
			"category":     {"category", "cuisine", "kind", "type", "recipe_cuisine"},
			"type":         {"type", "course", "meal_type", "dish_type", "recipe_type", "recipe_category"},
			"servings":     {"servings", "serving_size", "serves", "yield", "recipe_yield", "portions", "makes"},
			"prep_time":    {"prep_time", "preparation_time", "prep"},
			"cook_time":    {"cook_time", "cooking_time", "bake_time"},
			"total_time":   {"total_time", "time", "ready_in"},
			"difficulty":   {"difficulty", "level", "skill", "skill_level"},
			"description":  {"description", "summary", "intro", "about"},
			"ingredients":  {"ingredients", "recipe_ingredient", "ingredient_list", "ingredient"},
			"instructions": {"instructions", "recipe_instructions", "directions", "steps", "method", "preparation", "procedure"},
			"notes":        {"notes", "note", "tips", "comments"},
			"source":       {"source", "author", "publisher", "by"},
			"url":          {"url", "link", "source_url", "website"},
			"tags":         {"tags", "keywords", "labels"},
		},
		Labels: map[string][]string{
			"title":       {"title", "recipe name", "recipe title", "name"},
			"category":    {"category", "cuisine", "type", "kind"},
			"type":        {"course", "meal", "dish type", "meal type"},
			"servings":    {"servings", "serves", "serving size", "yield", "yields", "makes", "portions"},
			"prep_time":   {"prep time", "prep", "preparation time", "prep. time"},
			"cook_time":   {"cook time", "cooking time", "bake time", "baking time"},
			"total_time":  {"total time", "time", "ready in"},
			"difficulty":  {"difficulty", "level", "skill level", "skill"},
			"description": {"description", "summary"},
			"source":      {"source", "author", "recipe by", "from"},
			"url":         {"url", "link", "website"},
			"tags":        {"tags", "keywords"},
		},
		Collections: []string{"recipes", "items", "data", "@graph", "results", "entries"},
		Units: []string{
			"cup", "cups", "c",
			"tablespoon", "tablespoons", "tbsp", "tbs", "tbl",
			"teaspoon", "teaspoons", "tsp",
			"fluid ounce", "fluid ounces", "fl oz",
			"ounce", "ounces", "oz",
			"pound", "pounds", "lb", "lbs",
			"gram", "grams", "g", "gr",
			"kilogram", "kilograms", "kg",
			"milligram", "milligrams", "mg",
			"milliliter", "milliliters", "millilitre", "millilitres", "ml",
			"liter", "liters", "litre", "litres", "l",
			"deciliter", "dl", "cl",
			"pint", "pints", "pt",
			"quart", "quarts", "qt",
			"gallon", "gallons", "gal",
			"pinch", "pinches", "dash", "dashes", "drop", "drops",
			"clove", "cloves", "can", "cans", "jar", "jars",
			"package", "packages", "pkg", "packet", "packets",
			"stick", "sticks", "slice", "slices", "piece", "pieces",
			"bunch", "bunches", "sprig", "sprigs", "handful", "handfuls",
		},
		Sections: map[string][]string{
			"ingredients": {
				"ingredients", "ingredient", "ingredient list", "ingredients list",
				"you will need", "you'll need", "what you need", "what you'll need", "shopping list",
			},
			"instructions": {
				"instructions", "instruction", "directions", "direction", "steps", "method",
				"preparation", "how to make", "how to make it", "procedure",
			},
			"notes": {
				"notes", "note", "tips", "tip", "cook's notes", "chef's notes", "variations", "notes & tips",
			},
		},
		Artifacts: []string{
			`^\d{1,4}$`,
			`^(?i)page\s+\d+(\s+of\s+\d+)?$`,
			`^-+\s*\d+\s*-+$`,
			`^(?i)(©|\(c\)|copyright\b)`,
			`^(?i)all rights reserved`,
			`^(?i)(https?://|www\.)\S+$`,
			`^[\p{P}\p{S}\s]+$`,
		},
	}
}

// merge appends the entries of extra to t. Existing entries keep their priority.
func (t *Tables) merge(extra Tables) {
	t.Fields = mergeMap(t.Fields, extra.Fields)
	t.Labels = mergeMap(t.Labels, extra.Labels)
	t.Sections = mergeMap(t.Sections, extra.Sections)
	t.Collections = append(t.Collections, extra.Collections...)
	t.Units = append(t.Units, extra.Units...)
	t.Artifacts = append(t.Artifacts, extra.Artifacts...)
}

func mergeMap(base, extra map[string][]string) map[string][]string {
	out := make(map[string][]string, len(base))
	for k, v := range base {
		out[k] = append([]string(nil), v...)
	}
	for k, v := range extra {
		out[k] = append(out[k], v...)
	}
	return out
}

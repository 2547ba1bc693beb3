// Package e2e provides end-to-end tests over a corpus of recipes written in every importable format.
package e2e

import "fmt"

// CorpusRecipe is one recipe of the E2E corpus. Signature is an ingredient no
// other recipe uses, so a search for it must return this recipe.
type CorpusRecipe struct {
	Title        string
	Category     string
	Signature    string
	Ingredients  []string
	Instructions []string
}

// Corpus holds the recipes used by E2E tests.
type Corpus struct {
	Recipes []CorpusRecipe
}

var signatures = []struct {
	title     string
	signature string
}{
	{"Golden Pilaf", "saffron"},
	{"Sour Noodle Bowl", "tamarind"},
	{"Roast Onion Salad", "sumac"},
	{"Spiced Rice Pudding", "cardamom"},
	{"Potato Curry", "fenugreek"},
	{"Coconut Broth", "lemongrass"},
	{"Glazed Aubergine", "miso"},
	{"Sticky Wings", "gochujang"},
	{"Roast Carrot Traybake", "harissa"},
	{"Green Bean Salad", "tahini"},
	{"Winter Greens Dressing", "anchovies"},
	{"Lemon Chicken", "capers"},
	{"Smoky Bean Stew", "chorizo"},
	{"Weeknight Carbonara", "pancetta"},
	{"Coffee Trifle", "mascarpone"},
	{"Spinach Cannelloni", "ricotta"},
	{"Grilled Vegetable Skewers", "halloumi"},
	{"Pea Masala", "paneer"},
	{"Herb Grain Bowl", "quinoa"},
	{"Parsley Tabbouleh", "bulgur"},
	{"Mushroom Grain Risotto", "farro"},
	{"Crispy Squares", "polenta"},
	{"Fried Fritters", "chickpeas"},
	{"Red Dal", "lentils"},
}

// BuildCorpus returns a corpus with one recipe per signature ingredient.
func BuildCorpus() *Corpus {
	c := &Corpus{Recipes: make([]CorpusRecipe, 0, len(signatures))}
	for i, s := range signatures {
		c.Recipes = append(c.Recipes, CorpusRecipe{
			Title:     s.title,
			Category:  []string{"Mains", "Sides", "Desserts"}[i%3],
			Signature: s.signature,
			Ingredients: []string{
				fmt.Sprintf("%d tbsp %s", i%3+1, s.signature),
				"1 cup water",
				"1 tsp salt",
			},
			Instructions: []string{
				fmt.Sprintf("Prepare the %s.", s.signature),
				"Cook until done.",
			},
		})
	}
	return c
}

// Package cookpad wraps the external recipe search and detail API.
package cookpad

// RecipeIngredient is one line of a recipe's ingredient list. Headline
// entries are section labels like 【ソース】 and carry no quantity.
type RecipeIngredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Headline bool   `json:"headline"`
}

// Step is one cooking instruction.
type Step struct {
	Position int    `json:"position"`
	Text     string `json:"text"`
}

// Recipe is a recipe as returned by the external service. Search results may
// carry empty Ingredients/Steps; GetRecipe returns the full version.
type Recipe struct {
	ID          int64              `json:"id"`
	Title       string             `json:"title"`
	Serving     string             `json:"serving"` // free text, e.g. 2人分
	CookingTime string             `json:"cooking_time"`
	Ingredients []RecipeIngredient `json:"ingredients"`
	Steps       []Step             `json:"steps"`
}

// Sparse reports whether the recipe needs enrichment via GetRecipe.
func (r *Recipe) Sparse() bool {
	return len(r.Ingredients) == 0 || len(r.Steps) == 0
}

// SearchResponse is the paged result of a recipe search.
type SearchResponse struct {
	Recipes    []Recipe `json:"recipes"`
	TotalCount int      `json:"total_count"`
	NextPage   int      `json:"next_page"`
}

// SearchOptions narrows a recipe search.
type SearchOptions struct {
	Order               string // popular, recent
	PerPage             int
	IncludedIngredients string // comma-joined ingredient names
}

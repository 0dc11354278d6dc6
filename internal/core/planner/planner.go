package planner

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"kondate-planner/internal/core/cookpad"
	"kondate-planner/internal/core/ingest"
	"kondate-planner/internal/core/match"
	"kondate-planner/internal/infrastructure/config"
	"kondate-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// confidenceThreshold filters out uncertain vision detections.
const confidenceThreshold = 0.5

// maxSideDishes caps side dishes per meal slot.
const maxSideDishes = 2

// RecipeSource is the external recipe search and detail service.
type RecipeSource interface {
	SearchRecipes(ctx context.Context, query string, opts cookpad.SearchOptions) (*cookpad.SearchResponse, error)
	GetRecipe(ctx context.Context, id int64) (*cookpad.Recipe, error)
}

// mealQueryHints biases the search toward slot-appropriate dishes. The first
// hint seeds the primary main-dish query.
var mealQueryHints = map[MealType][]string{
	MealBreakfast: {"簡単 朝ごはん", "朝食", "トースト", "スープ"},
	MealLunch:     {"ランチ", "丼", "パスタ", "炒め物"},
	MealDinner:    {"晩ごはん", "メイン", "煮物", "定食"},
}

const sideDishHint = "副菜"

// MealPlanner assembles a daily plan from detected ingredients. Search
// failures degrade to fewer dishes rather than aborting the run.
type MealPlanner struct {
	source           RecipeSource
	matcher          match.Strategy
	storageLocations map[string]string
	enrich           bool
}

// NewMealPlanner creates a planner using the given recipe source.
func NewMealPlanner(source RecipeSource, matcher match.Strategy, cfg *config.PlannerConfig) *MealPlanner {
	return &MealPlanner{
		source:           source,
		matcher:          matcher,
		storageLocations: cfg.StorageLocations,
		enrich:           cfg.Enrich,
	}
}

// PlanDaily assembles up to mealsCount meals (breakfast, lunch, dinner in
// fixed order) from the detected ingredients. A slot is skipped when search
// exhausts; the plan may therefore hold fewer meals than requested.
func (p *MealPlanner) PlanDaily(ctx context.Context, ingredients []ingest.DetectedIngredient, mealsCount int) (*DailyMealPlan, error) {
	names := reliableNames(ingredients)
	if len(names) == 0 {
		return nil, common.NewValidationError("no reliable ingredients detected (confidence >= 0.5 required)")
	}

	if mealsCount < 1 {
		mealsCount = 1
	}
	if mealsCount > len(mealSlots) {
		mealsCount = len(mealSlots)
	}

	used := make(map[int64]bool)
	var meals []Meal

	for _, slot := range mealSlots[:mealsCount] {
		main := p.findMainDish(ctx, slot, names, used)
		if main == nil {
			common.LogWarn("no main dish found, skipping meal slot",
				zap.String("meal_type", string(slot)),
			)
			continue
		}
		used[main.ID] = true

		sides := p.findSideDishes(ctx, names, used)
		for i := range sides {
			used[sides[i].ID] = true
		}

		if p.enrich {
			p.enrichRecipes(ctx, main, sides)
		}

		meal := Meal{
			MealType:            slot,
			MealTypeJa:          mealTypeJa[slot],
			MainDish:            *main,
			SideDishes:          sides,
			MainDishIngredients: p.annotateIngredients(main.Ingredients, names),
		}
		for i := range sides {
			meal.SideDishIngredients = append(meal.SideDishIngredients,
				p.annotateIngredients(sides[i].Ingredients, names))
		}
		meals = append(meals, meal)
	}

	return &DailyMealPlan{
		Date:                time.Now().Format("2006-01-02"),
		DetectedIngredients: names,
		Meals:               meals,
	}, nil
}

// reliableNames filters to confident detections and sorts by descending
// confidence. The sort is stable so equal confidences keep input order.
func reliableNames(ingredients []ingest.DetectedIngredient) []string {
	reliable := make([]ingest.DetectedIngredient, 0, len(ingredients))
	for _, ing := range ingredients {
		if ing.Confidence >= confidenceThreshold {
			reliable = append(reliable, ing)
		}
	}
	sort.SliceStable(reliable, func(i, j int) bool {
		return reliable[i].Confidence > reliable[j].Confidence
	})

	names := make([]string, len(reliable))
	for i, ing := range reliable {
		names[i] = ing.Name
	}
	return names
}

// findMainDish searches for the slot's main dish: first with the hinted
// query and an ingredient filter, then a plainer retry. Returns nil when
// both attempts exhaust.
func (p *MealPlanner) findMainDish(ctx context.Context, slot MealType, names []string, used map[int64]bool) *cookpad.Recipe {
	query := strings.Join(topN(names, 2), " ") + " " + mealQueryHints[slot][0]
	if r := p.searchUnused(ctx, query, cookpad.SearchOptions{
		Order:               "popular",
		PerPage:             10,
		IncludedIngredients: strings.Join(topN(names, 3), ","),
	}, used); r != nil {
		return r
	}

	// Plainer retry without the ingredient filter.
	return p.searchUnused(ctx, strings.Join(topN(names, 3), " "), cookpad.SearchOptions{
		Order:   "popular",
		PerPage: 10,
	}, used)
}

// findSideDishes picks up to two side dishes from ingredients the main-dish
// query did not lead with. With two or fewer reliable ingredients there is
// nothing to build a side query from and the meal gets no sides.
func (p *MealPlanner) findSideDishes(ctx context.Context, names []string, used map[int64]bool) []cookpad.Recipe {
	side := topN(rest(names, 2), 3)
	if len(side) == 0 {
		return nil
	}

	query := strings.Join(topN(side, 2), " ") + " " + sideDishHint

	resp, err := p.source.SearchRecipes(ctx, query, cookpad.SearchOptions{
		Order:   "popular",
		PerPage: 10,
	})
	if err != nil {
		common.LogWarn("side dish search failed",
			zap.String("query", query),
			zap.Error(err),
		)
		return nil
	}

	var sides []cookpad.Recipe
	for _, r := range resp.Recipes {
		if used[r.ID] || containsID(sides, r.ID) {
			continue
		}
		sides = append(sides, r)
		if len(sides) == maxSideDishes {
			break
		}
	}
	return sides
}

// searchUnused runs one search and returns the first recipe not yet used
// today. A collaborator failure counts as no result.
func (p *MealPlanner) searchUnused(ctx context.Context, query string, opts cookpad.SearchOptions, used map[int64]bool) *cookpad.Recipe {
	resp, err := p.source.SearchRecipes(ctx, query, opts)
	if err != nil {
		common.LogWarn("recipe search failed",
			zap.String("query", query),
			zap.Error(err),
		)
		return nil
	}

	for i := range resp.Recipes {
		if !used[resp.Recipes[i].ID] {
			r := resp.Recipes[i]
			return &r
		}
	}
	return nil
}

// enrichRecipes fetches full details for sparse recipes concurrently. A
// failed fetch keeps the original sparse recipe.
func (p *MealPlanner) enrichRecipes(ctx context.Context, main *cookpad.Recipe, sides []cookpad.Recipe) {
	var wg sync.WaitGroup

	enrich := func(r *cookpad.Recipe) {
		defer wg.Done()
		full, err := p.source.GetRecipe(ctx, r.ID)
		if err != nil {
			common.LogWarn("recipe enrichment failed",
				zap.Int64("recipe_id", r.ID),
				zap.Error(err),
			)
			return
		}
		*r = *full
	}

	if main.Sparse() {
		wg.Add(1)
		go enrich(main)
	}
	for i := range sides {
		if sides[i].Sparse() {
			wg.Add(1)
			go enrich(&sides[i])
		}
	}
	wg.Wait()
}

func topN(s []string, n int) []string {
	if len(s) < n {
		n = len(s)
	}
	return s[:n]
}

func rest(s []string, from int) []string {
	if from >= len(s) {
		return nil
	}
	return s[from:]
}

func containsID(recipes []cookpad.Recipe, id int64) bool {
	for i := range recipes {
		if recipes[i].ID == id {
			return true
		}
	}
	return false
}

package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"kondate-planner/internal/core/cookpad"
	"kondate-planner/internal/core/ingest"
	"kondate-planner/internal/core/match"
	"kondate-planner/internal/infrastructure/config"
	"kondate-planner/internal/pkg/common"
)

// fakeSource returns the same recipe list for every search, mirroring a
// search service that ranks identically regardless of query.
type fakeSource struct {
	mu          sync.Mutex
	recipes     []cookpad.Recipe
	details     map[int64]*cookpad.Recipe
	searchErr   error
	detailErr   error
	searchCalls []string
	detailCalls []int64
}

func (f *fakeSource) SearchRecipes(ctx context.Context, query string, opts cookpad.SearchOptions) (*cookpad.SearchResponse, error) {
	f.mu.Lock()
	f.searchCalls = append(f.searchCalls, query)
	f.mu.Unlock()

	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return &cookpad.SearchResponse{Recipes: f.recipes, TotalCount: len(f.recipes)}, nil
}

func (f *fakeSource) GetRecipe(ctx context.Context, id int64) (*cookpad.Recipe, error) {
	f.mu.Lock()
	f.detailCalls = append(f.detailCalls, id)
	f.mu.Unlock()

	if f.detailErr != nil {
		return nil, f.detailErr
	}
	if full, ok := f.details[id]; ok {
		r := *full
		return &r, nil
	}
	return nil, errors.New("recipe not found")
}

func testPlannerConfig() *config.PlannerConfig {
	return &config.PlannerConfig{
		MealsPerDay: 3,
		Enrich:      false,
		StorageLocations: map[string]string{
			"野菜":  "野菜室",
			"肉":   "チルド室",
			"卵":   "ドアポケット",
			"その他": "冷蔵室",
		},
	}
}

func fridgeIngredients() []ingest.DetectedIngredient {
	return []ingest.DetectedIngredient{
		{Name: "トマト", Confidence: 0.95, Category: "野菜"},
		{Name: "鶏肉", Confidence: 0.9, Category: "肉"},
		{Name: "たまねぎ", Confidence: 0.8, Category: "野菜"},
		{Name: "卵", Confidence: 0.7, Category: "卵"},
		{Name: "謎の物体", Confidence: 0.3, Category: "その他"},
	}
}

func fullRecipe(id int64, title string) cookpad.Recipe {
	return cookpad.Recipe{
		ID:      id,
		Title:   title,
		Serving: "2人分",
		Ingredients: []cookpad.RecipeIngredient{
			{Name: "鶏もも肉", Quantity: "1枚"},
			{Name: "トマト", Quantity: "1個"},
			{Name: "醤油", Quantity: "大さじ1"},
		},
		Steps: []cookpad.Step{{Position: 1, Text: "切って炒める"}},
	}
}

func manyRecipes(n int) []cookpad.Recipe {
	recipes := make([]cookpad.Recipe, n)
	for i := range recipes {
		recipes[i] = fullRecipe(int64(i+1), fmt.Sprintf("レシピ%d", i+1))
	}
	return recipes
}

func assertNoDuplicateRecipes(t *testing.T, plan *DailyMealPlan) {
	t.Helper()
	seen := make(map[int64]bool)
	for _, r := range plan.Recipes() {
		if seen[r.ID] {
			t.Fatalf("recipe id %d appears twice in the plan", r.ID)
		}
		seen[r.ID] = true
	}
}

func TestPlanDaily(t *testing.T) {
	source := &fakeSource{recipes: manyRecipes(9)}
	p := NewMealPlanner(source, match.NewHeuristic(), testPlannerConfig())

	plan, err := p.PlanDaily(context.Background(), fridgeIngredients(), 3)
	if err != nil {
		t.Fatalf("PlanDaily: %v", err)
	}

	if len(plan.Meals) != 3 {
		t.Fatalf("got %d meals, want 3", len(plan.Meals))
	}
	assertNoDuplicateRecipes(t, plan)

	wantSlots := []MealType{MealBreakfast, MealLunch, MealDinner}
	for i, meal := range plan.Meals {
		if meal.MealType != wantSlots[i] {
			t.Fatalf("meal %d has type %s, want %s", i, meal.MealType, wantSlots[i])
		}
		if len(meal.SideDishes) > maxSideDishes {
			t.Fatalf("meal %d has %d side dishes", i, len(meal.SideDishes))
		}
		if len(meal.SideDishIngredients) != len(meal.SideDishes) {
			t.Fatal("side ingredient lists not parallel to side dishes")
		}
	}

	// Confidence-sorted, sub-threshold names excluded.
	want := []string{"トマト", "鶏肉", "たまねぎ", "卵"}
	if len(plan.DetectedIngredients) != len(want) {
		t.Fatalf("detected ingredients = %v, want %v", plan.DetectedIngredients, want)
	}
	for i, name := range want {
		if plan.DetectedIngredients[i] != name {
			t.Fatalf("detected ingredients = %v, want %v", plan.DetectedIngredients, want)
		}
	}
}

func TestPlanDailyAnnotation(t *testing.T) {
	source := &fakeSource{recipes: manyRecipes(9)}
	p := NewMealPlanner(source, match.NewHeuristic(), testPlannerConfig())

	plan, err := p.PlanDaily(context.Background(), fridgeIngredients(), 1)
	if err != nil {
		t.Fatalf("PlanDaily: %v", err)
	}

	annotated := plan.Meals[0].MainDishIngredients
	byName := make(map[string]AnnotatedIngredient)
	for _, ing := range annotated {
		byName[ing.Name] = ing
	}

	// 鶏もも肉 matches detected 鶏肉 via character-set containment.
	if !byName["鶏もも肉"].AvailableInFridge {
		t.Fatal("鶏もも肉 should be marked available (matches detected 鶏肉)")
	}
	if byName["鶏もも肉"].StorageLocation != "チルド室" {
		t.Fatalf("鶏もも肉 stored at %q, want チルド室", byName["鶏もも肉"].StorageLocation)
	}
	if !byName["トマト"].AvailableInFridge {
		t.Fatal("トマト should be marked available")
	}
	if byName["醤油"].AvailableInFridge {
		t.Fatal("醤油 should not be marked available")
	}
}

func TestPlanDailyNoReliableIngredients(t *testing.T) {
	source := &fakeSource{recipes: manyRecipes(3)}
	p := NewMealPlanner(source, match.NewHeuristic(), testPlannerConfig())

	lowConfidence := []ingest.DetectedIngredient{
		{Name: "トマト", Confidence: 0.4},
		{Name: "卵", Confidence: 0.1},
	}

	_, err := p.PlanDaily(context.Background(), lowConfidence, 3)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !common.IsValidationError(err) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}

	if _, err := p.PlanDaily(context.Background(), nil, 3); !common.IsValidationError(err) {
		t.Fatalf("expected ValidationError on nil input, got %v", err)
	}
}

// A source that ranks the same recipes on every call: selection must walk
// past used ids, and later slots degrade to fewer dishes instead of failing.
func TestPlanDailyRepeatedSearchResults(t *testing.T) {
	source := &fakeSource{recipes: manyRecipes(7)}
	p := NewMealPlanner(source, match.NewHeuristic(), testPlannerConfig())

	plan, err := p.PlanDaily(context.Background(), fridgeIngredients(), 3)
	if err != nil {
		t.Fatalf("PlanDaily: %v", err)
	}

	if len(plan.Meals) != 3 {
		t.Fatalf("got %d meals, want 3", len(plan.Meals))
	}
	assertNoDuplicateRecipes(t, plan)

	// 7 recipes: slots 1 and 2 take 3 each, slot 3 gets a main and no sides.
	last := plan.Meals[2]
	if len(last.SideDishes) != 0 {
		t.Fatalf("last meal has %d side dishes, want 0 (ids exhausted)", len(last.SideDishes))
	}
}

func TestPlanDailyExhaustedSearch(t *testing.T) {
	source := &fakeSource{recipes: manyRecipes(3)}
	p := NewMealPlanner(source, match.NewHeuristic(), testPlannerConfig())

	plan, err := p.PlanDaily(context.Background(), fridgeIngredients(), 3)
	if err != nil {
		t.Fatalf("PlanDaily: %v", err)
	}

	// All 3 ids are consumed by the first slot; later slots are skipped.
	if len(plan.Meals) != 1 {
		t.Fatalf("got %d meals, want 1", len(plan.Meals))
	}
	assertNoDuplicateRecipes(t, plan)
}

// With two or fewer reliable ingredients the main-dish query leads with all
// of them, so no side query can be built and no side search may be issued.
func TestPlanDailyFewIngredientsNoSides(t *testing.T) {
	source := &fakeSource{recipes: manyRecipes(9)}
	p := NewMealPlanner(source, match.NewHeuristic(), testPlannerConfig())

	two := []ingest.DetectedIngredient{
		{Name: "トマト", Confidence: 0.95, Category: "野菜"},
		{Name: "卵", Confidence: 0.7, Category: "卵"},
	}

	plan, err := p.PlanDaily(context.Background(), two, 3)
	if err != nil {
		t.Fatalf("PlanDaily: %v", err)
	}

	for i, meal := range plan.Meals {
		if len(meal.SideDishes) != 0 {
			t.Fatalf("meal %d has %d side dishes, want 0", i, len(meal.SideDishes))
		}
	}
	for _, q := range source.searchCalls {
		if strings.Contains(q, sideDishHint) {
			t.Fatalf("side dish search issued with query %q", q)
		}
	}
}

func TestPlanDailySearchFailureDegrades(t *testing.T) {
	source := &fakeSource{searchErr: errors.New("service down")}
	p := NewMealPlanner(source, match.NewHeuristic(), testPlannerConfig())

	plan, err := p.PlanDaily(context.Background(), fridgeIngredients(), 3)
	if err != nil {
		t.Fatalf("search failure must not abort the run: %v", err)
	}
	if len(plan.Meals) != 0 {
		t.Fatalf("got %d meals, want 0", len(plan.Meals))
	}
}

func TestPlanDailyEnrichment(t *testing.T) {
	sparse := []cookpad.Recipe{
		{ID: 1, Title: "スープ"},
		{ID: 2, Title: "サラダ"},
		{ID: 3, Title: "炒め物"},
	}
	full1 := fullRecipe(1, "スープ")
	full2 := fullRecipe(2, "サラダ")

	source := &fakeSource{
		recipes: sparse,
		details: map[int64]*cookpad.Recipe{1: &full1, 2: &full2},
	}
	cfg := testPlannerConfig()
	cfg.Enrich = true
	p := NewMealPlanner(source, match.NewHeuristic(), cfg)

	plan, err := p.PlanDaily(context.Background(), fridgeIngredients(), 1)
	if err != nil {
		t.Fatalf("PlanDaily: %v", err)
	}

	meal := plan.Meals[0]
	if len(meal.MainDish.Ingredients) == 0 {
		t.Fatal("main dish was not enriched")
	}
	if len(meal.MainDishIngredients) == 0 {
		t.Fatal("annotation should run on enriched ingredients")
	}

	// Recipe 3 has no detail; enrichment falls back to the sparse version.
	for _, side := range meal.SideDishes {
		if side.ID == 3 && len(side.Steps) != 0 {
			t.Fatal("failed enrichment should keep the original recipe")
		}
	}
}

func TestShoppingList(t *testing.T) {
	source := &fakeSource{recipes: manyRecipes(9)}
	p := NewMealPlanner(source, match.NewHeuristic(), testPlannerConfig())

	plan, err := p.PlanDaily(context.Background(), fridgeIngredients(), 3)
	if err != nil {
		t.Fatalf("PlanDaily: %v", err)
	}

	list := plan.ShoppingList()
	seen := make(map[string]bool)
	for _, ing := range list {
		if ing.AvailableInFridge {
			t.Fatalf("shopping list contains available ingredient %s", ing.Name)
		}
		if seen[ing.Name] {
			t.Fatalf("shopping list contains duplicate %s", ing.Name)
		}
		seen[ing.Name] = true
	}

	// Every recipe lists 醤油 and no detected ingredient matches it.
	if !seen["醤油"] {
		t.Fatal("expected 醤油 on the shopping list")
	}
}

func TestDisplay(t *testing.T) {
	source := &fakeSource{recipes: manyRecipes(9)}
	p := NewMealPlanner(source, match.NewHeuristic(), testPlannerConfig())

	plan, err := p.PlanDaily(context.Background(), fridgeIngredients(), 2)
	if err != nil {
		t.Fatalf("PlanDaily: %v", err)
	}

	out := plan.Display()
	for _, want := range []string{"献立", "朝食", "昼食", "買い物リスト", "トマト"} {
		if !strings.Contains(out, want) {
			t.Fatalf("Display output missing %q:\n%s", want, out)
		}
	}
}

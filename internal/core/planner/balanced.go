package planner

import (
	"context"

	"kondate-planner/internal/core/ingest"
	"kondate-planner/internal/core/nutrition"
	"kondate-planner/internal/pkg/common"
)

// Input sources for a balanced plan.
const (
	SourceCamera  = "camera"
	SourceReceipt = "receipt"
)

// NutritionAwareMealPlanner wraps MealPlanner with nutrition scoring.
type NutritionAwareMealPlanner struct {
	planner    *MealPlanner
	calculator *nutrition.Calculator
	targets    nutrition.NutritionTargets
}

// NewNutritionAwareMealPlanner creates a planner that scores assembled plans
// against the given targets.
func NewNutritionAwareMealPlanner(p *MealPlanner, calc *nutrition.Calculator, targets nutrition.NutritionTargets) *NutritionAwareMealPlanner {
	return &NutritionAwareMealPlanner{
		planner:    p,
		calculator: calc,
		targets:    targets,
	}
}

// PlanDailyBalanced assembles a daily plan and scores its nutrition against
// the targets. Exactly one of ingredients (camera pipeline) or foodItems
// (receipt pipeline) must be supplied.
//
// candidateCount is accepted for future multi-candidate balancing; the
// current algorithm assembles a single plan and scores it after the fact.
func (p *NutritionAwareMealPlanner) PlanDailyBalanced(ctx context.Context, ingredients []ingest.DetectedIngredient, foodItems []ingest.FoodItem, mealsCount, candidateCount int) (*NutritionDailyMealPlan, error) {
	_ = candidateCount

	source := SourceCamera
	switch {
	case ingredients == nil && foodItems == nil:
		return nil, common.NewValidationError("either ingredients or food_items is required")
	case ingredients != nil && foodItems != nil:
		return nil, common.NewValidationError("ingredients and food_items are mutually exclusive")
	case foodItems != nil:
		ingredients = ingest.FoodItemsToIngredients(foodItems)
		source = SourceReceipt
	}

	plan, err := p.planner.PlanDaily(ctx, ingredients, mealsCount)
	if err != nil {
		return nil, err
	}

	daily := p.calculator.CalculateDailyNutrition(plan.Recipes(), p.targets)

	return &NutritionDailyMealPlan{
		DailyMealPlan: *plan,
		Nutrition:     daily,
		Source:        source,
	}, nil
}

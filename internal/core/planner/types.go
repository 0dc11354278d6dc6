// Package planner assembles daily meal plans from detected fridge contents
// and the recipe search service.
package planner

import (
	"fmt"
	"strings"

	"kondate-planner/internal/core/cookpad"
	"kondate-planner/internal/core/nutrition"
)

// MealType is one of the fixed daily meal slots.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
)

// mealSlots is the fixed processing order. Slots are never reordered or
// repeated within a day.
var mealSlots = []MealType{MealBreakfast, MealLunch, MealDinner}

var mealTypeJa = map[MealType]string{
	MealBreakfast: "朝食",
	MealLunch:     "昼食",
	MealDinner:    "夕食",
}

// AnnotatedIngredient is a recipe ingredient with storage and availability
// metadata attached. Recomputed on every planning run, never persisted.
type AnnotatedIngredient struct {
	Name              string `json:"name"`
	Quantity          string `json:"quantity"`
	StorageLocation   string `json:"storage_location"`
	AvailableInFridge bool   `json:"available_in_fridge"`
}

// Meal is one filled meal slot: a main dish plus up to two side dishes, each
// with annotated ingredients. SideDishIngredients is parallel to SideDishes.
type Meal struct {
	MealType            MealType                `json:"meal_type"`
	MealTypeJa          string                  `json:"meal_type_ja"`
	MainDish            cookpad.Recipe          `json:"main_dish"`
	SideDishes          []cookpad.Recipe        `json:"side_dishes"`
	MainDishIngredients []AnnotatedIngredient   `json:"main_dish_ingredients"`
	SideDishIngredients [][]AnnotatedIngredient `json:"side_dish_ingredients"`
}

// DailyMealPlan is one day's assembled plan. No recipe id appears twice
// across all meals, main or side.
type DailyMealPlan struct {
	Date                string   `json:"date"`
	DetectedIngredients []string `json:"detected_ingredients"`
	Meals               []Meal   `json:"meals"`
}

// NutritionDailyMealPlan is a plan scored against nutrition targets. Source
// records which ingredient pipeline supplied the input.
type NutritionDailyMealPlan struct {
	DailyMealPlan
	Nutrition nutrition.DailyNutrition `json:"nutrition"`
	Source    string                   `json:"source"` // camera or receipt
}

// Recipes returns every recipe in the plan, mains before sides per meal, in
// slot order.
func (p *DailyMealPlan) Recipes() []cookpad.Recipe {
	var out []cookpad.Recipe
	for _, meal := range p.Meals {
		out = append(out, meal.MainDish)
		out = append(out, meal.SideDishes...)
	}
	return out
}

// ShoppingList returns the ingredients not available in the fridge,
// deduplicated by name in first-seen order (main dish before sides, meal by
// meal).
func (p *DailyMealPlan) ShoppingList() []AnnotatedIngredient {
	seen := make(map[string]bool)
	var out []AnnotatedIngredient

	add := func(ingredients []AnnotatedIngredient) {
		for _, ing := range ingredients {
			if ing.AvailableInFridge || seen[ing.Name] {
				continue
			}
			seen[ing.Name] = true
			out = append(out, ing)
		}
	}

	for _, meal := range p.Meals {
		add(meal.MainDishIngredients)
		for _, side := range meal.SideDishIngredients {
			add(side)
		}
	}
	return out
}

// Display renders the plan as human-readable text for terminal output.
func (p *DailyMealPlan) Display() string {
	var b strings.Builder

	fmt.Fprintf(&b, "=== %s の献立 ===\n", p.Date)
	fmt.Fprintf(&b, "検出食材: %s\n", strings.Join(p.DetectedIngredients, "、"))

	for _, meal := range p.Meals {
		fmt.Fprintf(&b, "\n【%s】\n", meal.MealTypeJa)
		fmt.Fprintf(&b, "主菜: %s\n", meal.MainDish.Title)
		for _, side := range meal.SideDishes {
			fmt.Fprintf(&b, "副菜: %s\n", side.Title)
		}
	}

	shopping := p.ShoppingList()
	if len(shopping) > 0 {
		b.WriteString("\n--- 買い物リスト ---\n")
		for _, ing := range shopping {
			if ing.Quantity != "" {
				fmt.Fprintf(&b, "・%s (%s)\n", ing.Name, ing.Quantity)
			} else {
				fmt.Fprintf(&b, "・%s\n", ing.Name)
			}
		}
	}

	return b.String()
}

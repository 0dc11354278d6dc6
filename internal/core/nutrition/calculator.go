package nutrition

import (
	"regexp"
	"strconv"

	"kondate-planner/internal/core/cookpad"
)

// Atwater energy factors in kcal per gram.
const (
	kcalPerGramProtein = 4.0
	kcalPerGramFat     = 9.0
	kcalPerGramCarb    = 4.0
)

// balanceSpread is the assumed worst-case deviation per macro percentage
// point used to normalize the balance score. Fixed at 60 for parity with the
// original scoring behavior.
const balanceSpread = 60.0

// NutritionTargets is the daily intake target the plan is scored against.
// Macro targets are percentages of total energy.
type NutritionTargets struct {
	EnergyKcal float64 `json:"energy_kcal"`
	ProteinPct float64 `json:"protein_pct"`
	FatPct     float64 `json:"fat_pct"`
	CarbPct    float64 `json:"carb_pct"`
	SaltMax    float64 `json:"salt_max_g"`
	FiberMin   float64 `json:"fiber_min_g"`
}

// DefaultTargets mirrors the adult reference intake: 2000 kcal with a
// 15/25/60 PFC split.
func DefaultTargets() NutritionTargets {
	return NutritionTargets{
		EnergyKcal: 2000,
		ProteinPct: 15,
		FatPct:     25,
		CarbPct:    60,
		SaltMax:    7.5,
		FiberMin:   21,
	}
}

// ProteinG converts the protein energy target to grams.
func (t NutritionTargets) ProteinG() float64 {
	return t.EnergyKcal * t.ProteinPct / 100 / kcalPerGramProtein
}

// FatG converts the fat energy target to grams.
func (t NutritionTargets) FatG() float64 {
	return t.EnergyKcal * t.FatPct / 100 / kcalPerGramFat
}

// CarbG converts the carbohydrate energy target to grams.
func (t NutritionTargets) CarbG() float64 {
	return t.EnergyKcal * t.CarbPct / 100 / kcalPerGramCarb
}

// MealNutrition is the per-serving nutrient aggregate of one recipe.
// MatchedIngredients counts ingredients that contributed to the totals;
// TotalIngredients counts all non-headline ingredients, so the pair exposes
// how much of the recipe the estimate actually covers.
type MealNutrition struct {
	RecipeID           int64   `json:"recipe_id"`
	RecipeTitle        string  `json:"recipe_title"`
	EnergyKcal         float64 `json:"energy_kcal"`
	Protein            float64 `json:"protein"`
	Fat                float64 `json:"fat"`
	Carbohydrate       float64 `json:"carbohydrate"`
	Fiber              float64 `json:"fiber"`
	SaltEquivalent     float64 `json:"salt_equivalent"`
	Calcium            float64 `json:"calcium"`
	Iron               float64 `json:"iron"`
	VitaminA           float64 `json:"vitamin_a"`
	VitaminC           float64 `json:"vitamin_c"`
	VitaminD           float64 `json:"vitamin_d"`
	MatchedIngredients int     `json:"matched_ingredients"`
	TotalIngredients   int     `json:"total_ingredients"`
}

// DailyNutrition aggregates per-recipe nutrition across a whole day and
// compares it against the targets.
type DailyNutrition struct {
	Meals   []MealNutrition  `json:"meals"`
	Targets NutritionTargets `json:"targets"`

	TotalEnergyKcal     float64 `json:"total_energy_kcal"`
	TotalProtein        float64 `json:"total_protein"`
	TotalFat            float64 `json:"total_fat"`
	TotalCarbohydrate   float64 `json:"total_carbohydrate"`
	TotalFiber          float64 `json:"total_fiber"`
	TotalSaltEquivalent float64 `json:"total_salt_equivalent"`
	TotalCalcium        float64 `json:"total_calcium"`
	TotalIron           float64 `json:"total_iron"`

	ProteinPct   float64 `json:"protein_pct"`
	FatPct       float64 `json:"fat_pct"`
	CarbPct      float64 `json:"carb_pct"`
	BalanceScore float64 `json:"balance_score"`
}

// Calculator estimates nutrition for recipes using the composition store.
type Calculator struct {
	store *CompositionStore
}

// NewCalculator returns a calculator reading from the given store.
func NewCalculator(store *CompositionStore) *Calculator {
	return &Calculator{store: store}
}

var servingPattern = regexp.MustCompile(`\d+`)

// parseServingCount extracts the serving count from free text like 2人分.
// Non-numeric text and counts below 1 resolve to 1.
func parseServingCount(text string) float64 {
	m := servingPattern.FindString(text)
	if m == "" {
		return 1.0
	}
	n, err := strconv.ParseFloat(m, 64)
	if err != nil || n < 1 {
		return 1.0
	}
	return n
}

// CalculateRecipeNutrition estimates the per-serving nutrition of one recipe.
// Ingredients whose quantity cannot be converted to grams, or whose name has
// no composition entry, are skipped and only counted in TotalIngredients.
func (c *Calculator) CalculateRecipeNutrition(recipe *cookpad.Recipe) MealNutrition {
	n := MealNutrition{
		RecipeID:    recipe.ID,
		RecipeTitle: recipe.Title,
	}

	for _, ing := range recipe.Ingredients {
		if ing.Headline {
			continue
		}
		n.TotalIngredients++

		amount, unit := ParseQuantity(ing.Quantity)
		grams := ToGrams(amount, unit, ing.Name)
		if grams <= 0 {
			continue
		}

		food, ok := c.store.LookupByName(ing.Name)
		if !ok {
			continue
		}

		scale := grams / 100.0
		n.EnergyKcal += food.EnergyKcal * scale
		n.Protein += food.Protein * scale
		n.Fat += food.Fat * scale
		n.Carbohydrate += food.Carbohydrate * scale
		n.Fiber += food.Fiber * scale
		n.SaltEquivalent += food.SaltEquivalent * scale
		n.Calcium += food.Calcium * scale
		n.Iron += food.Iron * scale
		n.VitaminA += food.VitaminA * scale
		n.VitaminC += food.VitaminC * scale
		n.VitaminD += food.VitaminD * scale
		n.MatchedIngredients++
	}

	if servings := parseServingCount(recipe.Serving); servings > 1 {
		n.EnergyKcal /= servings
		n.Protein /= servings
		n.Fat /= servings
		n.Carbohydrate /= servings
		n.Fiber /= servings
		n.SaltEquivalent /= servings
		n.Calcium /= servings
		n.Iron /= servings
		n.VitaminA /= servings
		n.VitaminC /= servings
		n.VitaminD /= servings
	}

	return n
}

// CalculateDailyNutrition sums per-recipe nutrition across the day's recipes
// and scores the macro split against the targets.
func (c *Calculator) CalculateDailyNutrition(recipes []cookpad.Recipe, targets NutritionTargets) DailyNutrition {
	d := DailyNutrition{Targets: targets}

	for i := range recipes {
		meal := c.CalculateRecipeNutrition(&recipes[i])
		d.Meals = append(d.Meals, meal)
		d.TotalEnergyKcal += meal.EnergyKcal
		d.TotalProtein += meal.Protein
		d.TotalFat += meal.Fat
		d.TotalCarbohydrate += meal.Carbohydrate
		d.TotalFiber += meal.Fiber
		d.TotalSaltEquivalent += meal.SaltEquivalent
		d.TotalCalcium += meal.Calcium
		d.TotalIron += meal.Iron
	}

	if d.TotalEnergyKcal > 0 {
		d.ProteinPct = d.TotalProtein * kcalPerGramProtein / d.TotalEnergyKcal * 100
		d.FatPct = d.TotalFat * kcalPerGramFat / d.TotalEnergyKcal * 100
		d.CarbPct = d.TotalCarbohydrate * kcalPerGramCarb / d.TotalEnergyKcal * 100
		d.BalanceScore = balanceScore(d.ProteinPct, d.FatPct, d.CarbPct, targets)
	}

	return d
}

// balanceScore measures how close the actual PFC split is to the target
// split, normalized to [0, 1].
func balanceScore(proteinPct, fatPct, carbPct float64, t NutritionTargets) float64 {
	deviation := abs(proteinPct-t.ProteinPct) + abs(fatPct-t.FatPct) + abs(carbPct-t.CarbPct)
	score := 1.0 - deviation/(3*balanceSpread)
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

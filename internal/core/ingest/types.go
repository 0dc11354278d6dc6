// Package ingest holds the boundary types produced by the ingredient source
// collaborators: the camera/vision pipeline and the receipt pipeline. The
// collaborators themselves live outside this module.
package ingest

// DetectedIngredient is one food judged to be physically present.
type DetectedIngredient struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"` // 0.0 - 1.0
	Category   string  `json:"category"`   // 野菜, 肉, 魚, 乳製品, 調味料, ...
}

// FoodItem is a normalized food item extracted from a retail receipt entry.
type FoodItem struct {
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	Quantity        float64 `json:"quantity"`
	Unit            string  `json:"unit"`
	Price           int     `json:"price"`
	PurchaseDate    string  `json:"purchase_date"`
	EstimatedExpiry string  `json:"estimated_expiry"`
	ReceiptID       string  `json:"receipt_id"`
}

// FoodItemsToIngredients converts receipt-derived food items to detected
// ingredients. Purchases are confirmed evidence, so confidence is fixed at 1.0.
func FoodItemsToIngredients(items []FoodItem) []DetectedIngredient {
	ingredients := make([]DetectedIngredient, 0, len(items))
	for _, item := range items {
		ingredients = append(ingredients, DetectedIngredient{
			Name:       item.Name,
			Confidence: 1.0,
			Category:   item.Category,
		})
	}
	return ingredients
}

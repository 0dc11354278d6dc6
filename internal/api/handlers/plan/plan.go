package plan

import (
	"net/http"
	"strconv"

	"kondate-planner/internal/core/ingest"
	"kondate-planner/internal/core/planner"
	"kondate-planner/internal/infrastructure/storage"
	"kondate-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IngredientInput is one detected ingredient in a planning request.
type IngredientInput struct {
	Name       string  `json:"name" binding:"required"`
	Confidence float64 `json:"confidence"`
	Category   string  `json:"category"`
}

// FoodItemInput is one receipt-derived food item in a planning request.
type FoodItemInput struct {
	Name            string  `json:"name" binding:"required"`
	Category        string  `json:"category"`
	Quantity        float64 `json:"quantity"`
	Unit            string  `json:"unit"`
	Price           int     `json:"price"`
	PurchaseDate    string  `json:"purchase_date"`
	EstimatedExpiry string  `json:"estimated_expiry"`
	ReceiptID       string  `json:"receipt_id"`
}

// PlanRequest asks for a daily meal plan from detected ingredients.
type PlanRequest struct {
	Ingredients []IngredientInput `json:"ingredients" binding:"required"`
	MealsCount  int               `json:"meals_count"`
}

// BalancedPlanRequest asks for a nutrition-scored plan. Exactly one of
// Ingredients or FoodItems must be set.
type BalancedPlanRequest struct {
	Ingredients    []IngredientInput `json:"ingredients,omitempty"`
	FoodItems      []FoodItemInput   `json:"food_items,omitempty"`
	MealsCount     int               `json:"meals_count"`
	CandidateCount int               `json:"candidate_count"`
}

// Handler serves the meal planning endpoints.
type Handler struct {
	planner  *planner.MealPlanner
	balanced *planner.NutritionAwareMealPlanner
	history  *storage.HistoryStore
}

// NewHandler creates the plan handler. history may be nil when persistence
// is disabled.
func NewHandler(p *planner.MealPlanner, balanced *planner.NutritionAwareMealPlanner, history *storage.HistoryStore) *Handler {
	return &Handler{
		planner:  p,
		balanced: balanced,
		history:  history,
	}
}

// HandlePlan assembles a daily meal plan.
func (h *Handler) HandlePlan(c *gin.Context) {
	requestID := ensureRequestID(c)

	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("invalid plan request",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	common.LogInfo("planning daily meals",
		zap.String("request_id", requestID),
		zap.Int("ingredients", len(req.Ingredients)),
		zap.Int("meals_count", req.MealsCount),
	)

	plan, err := h.planner.PlanDaily(c.Request.Context(), toDetected(req.Ingredients), mealsOrDefault(req.MealsCount))
	if err != nil {
		respondPlanError(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"plan":          plan,
		"shopping_list": plan.ShoppingList(),
	})
}

// HandleBalancedPlan assembles a plan and scores it against the nutrition
// targets. The result is saved to history when persistence is enabled.
func (h *Handler) HandleBalancedPlan(c *gin.Context) {
	requestID := ensureRequestID(c)

	var req BalancedPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("invalid balanced plan request",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	var ingredients []ingest.DetectedIngredient
	if req.Ingredients != nil {
		ingredients = toDetected(req.Ingredients)
	}
	var foodItems []ingest.FoodItem
	if req.FoodItems != nil {
		foodItems = toFoodItems(req.FoodItems)
	}

	plan, err := h.balanced.PlanDailyBalanced(c.Request.Context(),
		ingredients, foodItems, mealsOrDefault(req.MealsCount), req.CandidateCount)
	if err != nil {
		respondPlanError(c, requestID, err)
		return
	}

	if h.history != nil {
		if id, err := h.history.SavePlan(c.Request.Context(), plan); err != nil {
			common.LogWarn("failed to save plan to history",
				zap.Error(err),
				zap.String("request_id", requestID),
			)
		} else {
			common.LogDebug("plan saved",
				zap.String("plan_id", id),
				zap.String("request_id", requestID),
			)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"plan":          plan,
		"shopping_list": plan.ShoppingList(),
	})
}

// HandleHistory lists recently generated plans, newest first.
func (h *Handler) HandleHistory(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Plan history is disabled"})
		return
	}

	limit := 10
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
			return
		}
		limit = n
	}

	records, err := h.history.RecentPlans(c.Request.Context(), limit)
	if err != nil {
		common.LogError("failed to load plan history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load plan history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"plans": records,
		"count": len(records),
	})
}

func ensureRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.New().String()
		c.Header("X-Request-ID", requestID)
	}
	return requestID
}

// respondPlanError maps planner errors to HTTP statuses: validation failures
// are the caller's fault, anything else is a server error.
func respondPlanError(c *gin.Context, requestID string, err error) {
	if common.IsValidationError(err) {
		common.LogWarn("plan request rejected",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	common.LogError("meal planning failed",
		zap.Error(err),
		zap.String("request_id", requestID),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Meal planning failed"})
}

func mealsOrDefault(n int) int {
	if n < 1 || n > 3 {
		return 3
	}
	return n
}

func toDetected(inputs []IngredientInput) []ingest.DetectedIngredient {
	out := make([]ingest.DetectedIngredient, len(inputs))
	for i, in := range inputs {
		out[i] = ingest.DetectedIngredient{
			Name:       in.Name,
			Confidence: in.Confidence,
			Category:   in.Category,
		}
	}
	return out
}

func toFoodItems(inputs []FoodItemInput) []ingest.FoodItem {
	out := make([]ingest.FoodItem, len(inputs))
	for i, in := range inputs {
		out[i] = ingest.FoodItem{
			Name:            in.Name,
			Category:        in.Category,
			Quantity:        in.Quantity,
			Unit:            in.Unit,
			Price:           in.Price,
			PurchaseDate:    in.PurchaseDate,
			EstimatedExpiry: in.EstimatedExpiry,
			ReceiptID:       in.ReceiptID,
		}
	}
	return out
}

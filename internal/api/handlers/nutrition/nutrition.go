package nutrition

import (
	"net/http"
	"strconv"

	"kondate-planner/internal/core/cookpad"
	corenutrition "kondate-planner/internal/core/nutrition"
	"kondate-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecipeNutritionRequest carries a recipe to estimate nutrition for.
type RecipeNutritionRequest struct {
	Title       string `json:"title"`
	Serving     string `json:"serving"`
	Ingredients []struct {
		Name     string `json:"name" binding:"required"`
		Quantity string `json:"quantity"`
		Headline bool   `json:"headline"`
	} `json:"ingredients" binding:"required"`
}

// Handler serves the nutrition reference endpoints.
type Handler struct {
	store      *corenutrition.CompositionStore
	calculator *corenutrition.Calculator
}

// NewHandler creates the nutrition handler.
func NewHandler(store *corenutrition.CompositionStore, calc *corenutrition.Calculator) *Handler {
	return &Handler{
		store:      store,
		calculator: calc,
	}
}

// HandleSearchFoods searches the composition dataset by name.
func (h *Handler) HandleSearchFoods(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
			return
		}
		limit = n
	}

	foods := h.store.Search(query, limit)
	c.JSON(http.StatusOK, gin.H{
		"foods": foods,
		"count": len(foods),
	})
}

// HandleGetFood returns one composition entry by food id.
func (h *Handler) HandleGetFood(c *gin.Context) {
	id := c.Param("id")

	food, ok := h.store.LookupByID(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "food not found"})
		return
	}
	c.JSON(http.StatusOK, food)
}

// HandleRecipeNutrition estimates per-serving nutrition for a posted recipe.
func (h *Handler) HandleRecipeNutrition(c *gin.Context) {
	var req RecipeNutritionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("invalid recipe nutrition request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	recipe := &cookpad.Recipe{
		Title:       req.Title,
		Serving:     req.Serving,
		Ingredients: make([]cookpad.RecipeIngredient, len(req.Ingredients)),
	}
	for i, ing := range req.Ingredients {
		recipe.Ingredients[i] = cookpad.RecipeIngredient{
			Name:     ing.Name,
			Quantity: ing.Quantity,
			Headline: ing.Headline,
		}
	}

	c.JSON(http.StatusOK, h.calculator.CalculateRecipeNutrition(recipe))
}

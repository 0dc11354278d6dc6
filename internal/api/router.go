package api

import (
	"context"
	"net/http"
	"time"

	healthHandler "kondate-planner/internal/api/handlers/health"
	nutritionHandler "kondate-planner/internal/api/handlers/nutrition"
	planHandler "kondate-planner/internal/api/handlers/plan"
	"kondate-planner/internal/api/middleware"
	"kondate-planner/internal/core/cookpad"
	"kondate-planner/internal/core/match"
	"kondate-planner/internal/core/nutrition"
	"kondate-planner/internal/core/planner"
	"kondate-planner/internal/infrastructure/config"
	"kondate-planner/internal/infrastructure/storage"
	"kondate-planner/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// Covers a full planning run: up to 3 slots, 2 searches each, plus
	// enrichment calls.
	timeoutDuration = 60 * time.Second
	maxBodySize     = 1 << 20 // 1MB, requests are ingredient lists
)

// SetupRouter wires the middleware chain, services and routes.
func SetupRouter(cfg *config.Config, history *storage.HistoryStore) (*gin.Engine, error) {
	common.LogInfo("starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(maxBodySize))

	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	// Recipe search cache: Redis when an address is configured, otherwise
	// in-process.
	var searchCache cookpad.Cache
	if cfg.Cache.RedisAddr != "" {
		redisCache, err := cookpad.NewRedisCache(&cfg.Cache)
		if err != nil {
			common.LogWarn("Redis unavailable, falling back to memory cache",
				zap.String("addr", cfg.Cache.RedisAddr),
				zap.Error(err),
			)
			searchCache = cookpad.NewMemoryCache(&cfg.Cache)
		} else {
			searchCache = redisCache
		}
	} else {
		searchCache = cookpad.NewMemoryCache(&cfg.Cache)
	}

	store, err := nutrition.Default()
	if err != nil {
		return nil, err
	}

	source := cookpad.NewClient(&cfg.Cookpad, searchCache)
	matcher := match.NewHeuristic()
	mealPlanner := planner.NewMealPlanner(source, matcher, &cfg.Planner)
	calculator := nutrition.NewCalculator(store)
	balanced := planner.NewNutritionAwareMealPlanner(mealPlanner, calculator, nutrition.NutritionTargets{
		EnergyKcal: cfg.Nutrition.EnergyKcal,
		ProteinPct: cfg.Nutrition.ProteinPct,
		FatPct:     cfg.Nutrition.FatPct,
		CarbPct:    cfg.Nutrition.CarbPct,
		SaltMax:    cfg.Nutrition.SaltMax,
		FiberMin:   cfg.Nutrition.FiberMin,
	})

	common.LogInfo("services initialized",
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.Bool("history_enabled", history != nil),
		zap.Int("composition_foods", len(store.AllFoods())),
	)

	// Per-request timeout plus context injection for the health handler.
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Set("config", cfg)

		c.Next()

		if ctx.Err() == context.DeadlineExceeded {
			common.LogError("request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetHeader("X-Request-ID")),
				zap.Duration("timeout", timeoutDuration),
			)
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  common.ErrCodeRequestTimeout,
			})
			c.Abort()
		}
	})

	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	api := router.Group("/api/v1")
	{
		plans := planHandler.NewHandler(mealPlanner, balanced, history)
		planGroup := api.Group("/plan")
		{
			planGroup.POST("", plans.HandlePlan)
			planGroup.POST("/balanced", plans.HandleBalancedPlan)
			planGroup.GET("/history", plans.HandleHistory)
		}

		foods := nutritionHandler.NewHandler(store, calculator)
		nutritionGroup := api.Group("/nutrition")
		{
			nutritionGroup.GET("/foods", foods.HandleSearchFoods)
			nutritionGroup.GET("/foods/:id", foods.HandleGetFood)
			nutritionGroup.POST("/recipe", foods.HandleRecipeNutrition)
		}
	}

	common.LogInfo("router setup completed",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, nil
}

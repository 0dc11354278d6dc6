package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Cookpad   CookpadConfig   `mapstructure:"cookpad"`
	Planner   PlannerConfig   `mapstructure:"planner"`
	Nutrition NutritionConfig `mapstructure:"nutrition"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Database  DatabaseConfig  `mapstructure:"database"`
	LogLevel  string          `mapstructure:"log_level"`
}

// AppConfig holds application metadata.
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// CookpadConfig holds recipe search service settings.
type CookpadConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	Token    string        `mapstructure:"token"`
	Country  string        `mapstructure:"country"`
	Language string        `mapstructure:"language"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// PlannerConfig holds meal planning settings.
type PlannerConfig struct {
	MealsPerDay      int               `mapstructure:"meals_per_day"`
	Enrich           bool              `mapstructure:"enrich"`
	StorageLocations map[string]string `mapstructure:"storage_locations"`
}

// NutritionConfig holds daily nutrition targets.
type NutritionConfig struct {
	EnergyKcal float64 `mapstructure:"energy_kcal"`
	ProteinPct float64 `mapstructure:"protein_pct"`
	FatPct     float64 `mapstructure:"fat_pct"`
	CarbPct    float64 `mapstructure:"carb_pct"`
	SaltMax    float64 `mapstructure:"salt_max"`
	FiberMin   float64 `mapstructure:"fiber_min"`
}

// CacheConfig holds recipe search cache settings. When RedisAddr is empty an
// in-memory cache is used instead.
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RateLimitConfig holds request rate limiting settings.
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// DatabaseConfig holds meal-plan history storage settings.
type DatabaseConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoadConfig reads configuration from .env and environment variables.
func LoadConfig() (*Config, error) {
	// .env is optional; environment variables still apply without it.
	_ = godotenv.Load()

	setDefaults()

	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.BindEnv("cookpad.base_url", "COOKPAD_BASE_URL")
	viper.BindEnv("cookpad.token", "COOKPAD_TOKEN")
	viper.BindEnv("cache.enabled", "CACHE_ENABLED")
	viper.BindEnv("cache.redis_addr", "REDIS_ADDR")
	viper.BindEnv("database.path", "DATABASE_PATH")
	viper.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	viper.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	viper.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	viper.BindEnv("log_level", "LOG_LEVEL")

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.name", "kondate-planner")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	viper.SetDefault("cookpad.base_url", "https://cookpad.com/v33")
	viper.SetDefault("cookpad.country", "JP")
	viper.SetDefault("cookpad.language", "ja")
	viper.SetDefault("cookpad.timeout", "15s")

	viper.SetDefault("planner.meals_per_day", 3)
	viper.SetDefault("planner.enrich", true)
	viper.SetDefault("planner.storage_locations", map[string]string{
		"野菜":    "野菜室",
		"果物":    "野菜室",
		"肉":     "チルド室",
		"魚":     "チルド室",
		"乳製品":   "チルド室",
		"豆腐・大豆": "チルド室",
		"卵":     "ドアポケット",
		"調味料":   "ドアポケット",
		"飲料":    "ドアポケット",
		"穀物":    "冷蔵室",
		"その他":   "冷蔵室",
	})

	// Japanese dietary guideline defaults.
	viper.SetDefault("nutrition.energy_kcal", 2000.0)
	viper.SetDefault("nutrition.protein_pct", 15.0)
	viper.SetDefault("nutrition.fat_pct", 25.0)
	viper.SetDefault("nutrition.carb_pct", 60.0)
	viper.SetDefault("nutrition.salt_max", 7.5)
	viper.SetDefault("nutrition.fiber_min", 21.0)

	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.redis_addr", "")
	viper.SetDefault("cache.max_size", 1000)
	viper.SetDefault("cache.ttl", "24h")
	viper.SetDefault("cache.cleanup_interval", "10m")

	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests", 100)
	viper.SetDefault("rate_limit.window", "1m")

	viper.SetDefault("database.enabled", true)
	viper.SetDefault("database.path", "kondate.db")

	viper.SetDefault("log_level", "info")
}

func validateConfig(config *Config) error {
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	if config.Cookpad.BaseURL == "" {
		return fmt.Errorf("cookpad base url is required")
	}

	if config.Planner.MealsPerDay <= 0 || config.Planner.MealsPerDay > 3 {
		return fmt.Errorf("planner meals_per_day must be between 1 and 3")
	}

	if config.Cache.Enabled {
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}

	if config.Nutrition.EnergyKcal <= 0 {
		return fmt.Errorf("invalid nutrition energy target")
	}

	return nil
}

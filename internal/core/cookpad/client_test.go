package cookpad

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kondate-planner/internal/infrastructure/config"
	"kondate-planner/internal/pkg/common"
)

func testCacheConfig() *config.CacheConfig {
	return &config.CacheConfig{
		Enabled:         true,
		MaxSize:         10,
		TTL:             time.Minute,
		CleanupInterval: time.Minute,
	}
}

func newTestClient(t *testing.T, handler http.Handler, cache Cache) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(&config.CookpadConfig{
		BaseURL:  srv.URL,
		Token:    "test-token",
		Country:  "JP",
		Language: "ja",
		Timeout:  5 * time.Second,
	}, cache)
}

func TestSearchRecipes(t *testing.T) {
	var gotQuery, gotOrder, gotIncluded string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/recipes" {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.Query().Get("query")
		gotOrder = r.URL.Query().Get("order")
		gotIncluded = r.URL.Query().Get("included_ingredients")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(SearchResponse{
			Recipes: []Recipe{
				{ID: 1, Title: "トマトスープ"},
				{ID: 2, Title: "チキンソテー"},
			},
			TotalCount: 2,
		})
	})

	c := newTestClient(t, handler, nil)
	resp, err := c.SearchRecipes(context.Background(), "トマト スープ", SearchOptions{
		Order:               "popular",
		PerPage:             10,
		IncludedIngredients: "トマト,鶏肉",
	})
	if err != nil {
		t.Fatalf("SearchRecipes: %v", err)
	}

	if len(resp.Recipes) != 2 || resp.Recipes[0].ID != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if gotQuery != "トマト スープ" || gotOrder != "popular" || gotIncluded != "トマト,鶏肉" {
		t.Fatalf("query params not forwarded: q=%q order=%q included=%q",
			gotQuery, gotOrder, gotIncluded)
	}
}

func TestSearchRecipesServerError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	c := newTestClient(t, handler, nil)
	if _, err := c.SearchRecipes(context.Background(), "トマト", SearchOptions{}); err == nil {
		t.Fatal("expected error on 502 response")
	}
}

func TestSearchRecipesCached(t *testing.T) {
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(SearchResponse{
			Recipes: []Recipe{{ID: 42, Title: "肉じゃが"}},
		})
	})

	cache := NewMemoryCache(testCacheConfig())
	t.Cleanup(func() { cache.Close() })

	c := newTestClient(t, handler, cache)
	opts := SearchOptions{Order: "popular", PerPage: 10}

	for i := 0; i < 3; i++ {
		resp, err := c.SearchRecipes(context.Background(), "じゃがいも", opts)
		if err != nil {
			t.Fatalf("SearchRecipes #%d: %v", i, err)
		}
		if resp.Recipes[0].ID != 42 {
			t.Fatalf("unexpected recipe: %+v", resp.Recipes[0])
		}
	}

	if calls != 1 {
		t.Fatalf("server hit %d times, want 1 (cached)", calls)
	}

	// Different options must not share a cache entry.
	if _, err := c.SearchRecipes(context.Background(), "じゃがいも", SearchOptions{PerPage: 5}); err != nil {
		t.Fatalf("SearchRecipes: %v", err)
	}
	if calls != 2 {
		t.Fatalf("server hit %d times, want 2", calls)
	}
}

func TestGetRecipe(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/recipes/7":
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(Recipe{
				ID:      7,
				Title:   "親子丼",
				Serving: "2人分",
				Ingredients: []RecipeIngredient{
					{Name: "鶏もも肉", Quantity: "1枚"},
					{Name: "卵", Quantity: "2個"},
				},
				Steps: []Step{{Position: 1, Text: "鶏肉を切る"}},
			})
		default:
			http.NotFound(w, r)
		}
	})

	c := newTestClient(t, handler, nil)

	recipe, err := c.GetRecipe(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetRecipe: %v", err)
	}
	if recipe.Title != "親子丼" || len(recipe.Ingredients) != 2 {
		t.Fatalf("unexpected recipe: %+v", recipe)
	}
	if recipe.Sparse() {
		t.Fatal("full recipe reported as sparse")
	}

	if _, err := c.GetRecipe(context.Background(), 999); err != common.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecipeSparse(t *testing.T) {
	r := &Recipe{ID: 1, Title: "title"}
	if !r.Sparse() {
		t.Fatal("recipe without ingredients should be sparse")
	}
	r.Ingredients = []RecipeIngredient{{Name: "卵"}}
	if !r.Sparse() {
		t.Fatal("recipe without steps should be sparse")
	}
	r.Steps = []Step{{Position: 1, Text: "焼く"}}
	if r.Sparse() {
		t.Fatal("complete recipe should not be sparse")
	}
}

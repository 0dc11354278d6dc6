package storage

import (
	"context"
	"path/filepath"
	"testing"

	"kondate-planner/internal/core/cookpad"
	"kondate-planner/internal/core/planner"
)

func newTestStore(t *testing.T) *HistoryStore {
	t.Helper()
	store, err := NewHistoryStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewHistoryStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func samplePlan(date string) *planner.NutritionDailyMealPlan {
	return &planner.NutritionDailyMealPlan{
		DailyMealPlan: planner.DailyMealPlan{
			Date:                date,
			DetectedIngredients: []string{"トマト", "卵"},
			Meals: []planner.Meal{
				{
					MealType:   planner.MealBreakfast,
					MealTypeJa: "朝食",
					MainDish:   cookpad.Recipe{ID: 1, Title: "トマトオムレツ"},
				},
			},
		},
		Source: planner.SourceCamera,
	}
}

func TestSaveAndLoadPlan(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.SavePlan(ctx, samplePlan("2026-08-31"))
	if err != nil {
		t.Fatalf("SavePlan: %v", err)
	}
	if id == "" {
		t.Fatal("expected a record id")
	}

	records, err := store.RecentPlans(ctx, 10)
	if err != nil {
		t.Fatalf("RecentPlans: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	rec := records[0]
	if rec.ID != id || rec.Date != "2026-08-31" || rec.Source != planner.SourceCamera {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.Plan.Meals[0].MainDish.Title != "トマトオムレツ" {
		t.Fatalf("plan body not round-tripped: %+v", rec.Plan)
	}
}

func TestRecentPlansLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := store.SavePlan(ctx, samplePlan("2026-08-31")); err != nil {
			t.Fatalf("SavePlan #%d: %v", i, err)
		}
	}

	records, err := store.RecentPlans(ctx, 3)
	if err != nil {
		t.Fatalf("RecentPlans: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
}

func TestRecentPlansEmpty(t *testing.T) {
	store := newTestStore(t)

	records, err := store.RecentPlans(context.Background(), 10)
	if err != nil {
		t.Fatalf("RecentPlans: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("got %d records, want 0", len(records))
	}
}

package nutrition

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"kondate-planner/internal/core/match"
)

//go:embed data/foods_2020.json
var foodsJSON []byte

// NutrientInfo holds per-100g reference values for one food in the
// composition dataset.
type NutrientInfo struct {
	FoodID         string  `json:"id"`
	Name           string  `json:"name"`
	Group          string  `json:"group"`
	EnergyKcal     float64 `json:"energy_kcal"`
	Protein        float64 `json:"protein"`
	Fat            float64 `json:"fat"`
	Carbohydrate   float64 `json:"carbohydrate"`
	Fiber          float64 `json:"fiber"`
	Sodium         float64 `json:"sodium"`
	Calcium        float64 `json:"calcium"`
	Iron           float64 `json:"iron"`
	VitaminA       float64 `json:"vitamin_a"`
	VitaminB1      float64 `json:"vitamin_b1"`
	VitaminB2      float64 `json:"vitamin_b2"`
	VitaminC       float64 `json:"vitamin_c"`
	VitaminD       float64 `json:"vitamin_d"`
	SaltEquivalent float64 `json:"salt_equivalent"`
}

type compositionFile struct {
	Version string         `json:"version"`
	Foods   []NutrientInfo `json:"foods"`
}

// CompositionStore is the in-memory nutrition reference table. It is
// immutable after construction and safe for concurrent readers.
type CompositionStore struct {
	version string
	foods   []NutrientInfo
	byName  map[string]*NutrientInfo
	byID    map[string]*NutrientInfo
}

// NewCompositionStore builds a store from the embedded dataset.
func NewCompositionStore() (*CompositionStore, error) {
	var f compositionFile
	if err := json.Unmarshal(foodsJSON, &f); err != nil {
		return nil, fmt.Errorf("load composition dataset: %w", err)
	}
	if len(f.Foods) == 0 {
		return nil, fmt.Errorf("composition dataset is empty")
	}

	// Scans are first-hit-wins, so pin iteration order to ascending food id
	// regardless of how the dataset file is arranged.
	sort.Slice(f.Foods, func(i, j int) bool {
		return f.Foods[i].FoodID < f.Foods[j].FoodID
	})

	s := &CompositionStore{
		version: f.Version,
		foods:   f.Foods,
		byName:  make(map[string]*NutrientInfo, len(f.Foods)),
		byID:    make(map[string]*NutrientInfo, len(f.Foods)),
	}
	for i := range s.foods {
		food := &s.foods[i]
		s.byName[food.Name] = food
		s.byID[food.FoodID] = food
	}
	return s, nil
}

var (
	defaultMu       sync.Mutex
	defaultStore    *CompositionStore
	defaultStoreErr error
)

// Default returns the process-wide store, loading the embedded dataset on
// first use.
func Default() (*CompositionStore, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultStore == nil && defaultStoreErr == nil {
		defaultStore, defaultStoreErr = NewCompositionStore()
	}
	return defaultStore, defaultStoreErr
}

// ResetDefault discards the process-wide store so the next Default call
// rebuilds it. Test isolation only.
func ResetDefault() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultStore = nil
	defaultStoreErr = nil
}

// Version reports the dataset version string.
func (s *CompositionStore) Version() string { return s.version }

// AllFoods returns every entry in dataset order. The caller must not modify
// the returned slice.
func (s *CompositionStore) AllFoods() []NutrientInfo { return s.foods }

// LookupByID returns the entry with the given food id.
func (s *CompositionStore) LookupByID(id string) (*NutrientInfo, bool) {
	food, ok := s.byID[id]
	return food, ok
}

// LookupByName resolves an ingredient name to a dataset entry. Resolution is
// staged: exact name hit, then a substring scan, then a character-set scan.
// The first hit in dataset order wins, so ambiguous names resolve to the
// entry with the lowest food id.
func (s *CompositionStore) LookupByName(name string) (*NutrientInfo, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false
	}

	if food, ok := s.byName[name]; ok {
		return food, true
	}

	for i := range s.foods {
		food := &s.foods[i]
		if strings.Contains(name, food.Name) || strings.Contains(food.Name, name) {
			return food, true
		}
	}

	for i := range s.foods {
		food := &s.foods[i]
		if match.SharesCharSet(name, food.Name) {
			return food, true
		}
	}

	return nil, false
}

// Search returns up to limit entries whose name contains the query, in
// dataset order. limit <= 0 means no cap.
func (s *CompositionStore) Search(query string, limit int) []NutrientInfo {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	var out []NutrientInfo
	for i := range s.foods {
		food := &s.foods[i]
		if strings.Contains(food.Name, query) {
			out = append(out, *food)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out
}

// Package storage persists generated meal plans for the history endpoint.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"kondate-planner/internal/core/planner"

	"github.com/google/uuid"
)

// PlanRecord is one saved plan with its storage metadata.
type PlanRecord struct {
	ID        string                          `json:"id"`
	Date      string                          `json:"date"`
	Source    string                          `json:"source"`
	CreatedAt time.Time                       `json:"created_at"`
	Plan      *planner.NutritionDailyMealPlan `json:"plan"`
}

// HistoryStore stores plans in SQLite. The plan body is kept as JSON; only
// the fields the history listing filters on are stored as columns.
type HistoryStore struct {
	db *sql.DB
}

// NewHistoryStore opens the database and ensures the schema exists.
func NewHistoryStore(dbPath string) (*HistoryStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &HistoryStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close releases the database handle.
func (s *HistoryStore) Close() error {
	return s.db.Close()
}

func (s *HistoryStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS plans (
        id TEXT PRIMARY KEY,
        plan_date TEXT NOT NULL,
        source TEXT NOT NULL,
        created_at DATETIME NOT NULL,
        body TEXT NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_plans_created_at ON plans(created_at);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SavePlan stores a generated plan and returns its record id.
func (s *HistoryStore) SavePlan(ctx context.Context, plan *planner.NutritionDailyMealPlan) (string, error) {
	body, err := json.Marshal(plan)
	if err != nil {
		return "", fmt.Errorf("failed to marshal plan: %w", err)
	}

	id := uuid.NewString()
	query := `
        INSERT INTO plans (id, plan_date, source, created_at, body)
        VALUES (?, ?, ?, ?, ?)
    `
	_, err = s.db.ExecContext(ctx, query,
		id, plan.Date, plan.Source, time.Now().UTC().Format(time.RFC3339), string(body))
	if err != nil {
		return "", fmt.Errorf("failed to insert plan: %w", err)
	}

	return id, nil
}

// RecentPlans returns the most recently saved plans, newest first.
func (s *HistoryStore) RecentPlans(ctx context.Context, limit int) ([]PlanRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
        SELECT id, plan_date, source, created_at, body
        FROM plans
        ORDER BY created_at DESC, id
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query plans: %w", err)
	}
	defer rows.Close()

	var records []PlanRecord
	for rows.Next() {
		var rec PlanRecord
		var createdAt, body string

		if err := rows.Scan(&rec.ID, &rec.Date, &rec.Source, &createdAt, &body); err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		if rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}

		rec.Plan = &planner.NutritionDailyMealPlan{}
		if err := json.Unmarshal([]byte(body), rec.Plan); err != nil {
			return nil, fmt.Errorf("failed to unmarshal plan body: %w", err)
		}

		records = append(records, rec)
	}
	return records, rows.Err()
}

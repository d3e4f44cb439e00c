// Package postgres stores flow definitions in a PostgreSQL table with
// the graph held as JSONB.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	// PostgreSQL driver.
	_ "github.com/lib/pq"

	"github.com/kmare/flowsync/pkg/models"
	"github.com/kmare/flowsync/pkg/persistence"
)

const schema = `
CREATE TABLE IF NOT EXISTS flows (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	definition JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

type Store struct {
	db *sql.DB
}

// NewStore opens the database and ensures the flows table exists.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("create flows table: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Flows(ctx context.Context) ([]*models.FlowDefinition, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT definition FROM flows ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list flows: %w", err)
	}
	defer rows.Close()

	flows := make([]*models.FlowDefinition, 0)

	for rows.Next() {
		var raw []byte

		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan flow: %w", err)
		}

		var flow models.FlowDefinition
		if err := json.Unmarshal(raw, &flow); err != nil {
			return nil, fmt.Errorf("decode flow: %w", err)
		}

		flows = append(flows, &flow)
	}

	return flows, rows.Err()
}

func (s *Store) FlowByID(ctx context.Context, id string) (*models.FlowDefinition, error) {
	var raw []byte

	err := s.db.QueryRowContext(ctx, `SELECT definition FROM flows WHERE id = $1`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrFlowNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("get flow %s: %w", id, err)
	}

	var flow models.FlowDefinition

	err = json.Unmarshal(raw, &flow)
	if err != nil {
		return nil, fmt.Errorf("decode flow %s: %w", id, err)
	}

	return &flow, nil
}

func (s *Store) SaveFlow(ctx context.Context, flow *models.FlowDefinition) error {
	raw, err := json.Marshal(flow)
	if err != nil {
		return fmt.Errorf("encode flow %s: %w", flow.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO flows (id, name, definition, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    definition = EXCLUDED.definition,
		    updated_at = EXCLUDED.updated_at`,
		flow.ID, flow.Name, raw, flow.CreatedAt, flow.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save flow %s: %w", flow.ID, err)
	}

	return nil
}

func (s *Store) DeleteFlow(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM flows WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete flow %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		return persistence.ErrFlowNotFound
	}

	return nil
}

func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close(_ context.Context) error {
	return s.db.Close()
}

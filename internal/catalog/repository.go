package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"flagpost/internal/targeting"
)

// Repository is the read side of the catalog used by the evaluation service.
type Repository interface {
	ListActiveAlerts(ctx context.Context, now time.Time) ([]targeting.Alert, error)
	ListFeatureTogglesByName(ctx context.Context, names []string) ([]targeting.FeatureToggle, error)
	CountActiveFeatures(ctx context.Context, now time.Time) (int, error)
}

type PostgresRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListActiveAlerts returns enabled alerts whose window contains now, newest first.
func (r *PostgresRepository) ListActiveAlerts(ctx context.Context, now time.Time) ([]targeting.Alert, error) {
	query := `
		SELECT id, title, body, theme, is_enabled, is_active_from, is_active_to, targeting_enabled, created_at
		FROM alerts
		WHERE is_enabled = true AND is_active_from <= $1 AND is_active_to >= $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var (
		alerts []targeting.Alert
		ids    []string
	)
	for rows.Next() {
		var a targeting.Alert
		if err := rows.Scan(
			&a.ID, &a.Title, &a.Body, &a.Theme, &a.Enabled,
			&a.ActiveFrom, &a.ActiveTo, &a.TargetingEnabled, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, a)
		ids = append(ids, a.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	segments, err := AlertSegments(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range alerts {
		alerts[i].Segments = segments[alerts[i].ID]
	}

	return alerts, nil
}

// ListFeatureTogglesByName returns the toggles among names that exist.
func (r *PostgresRepository) ListFeatureTogglesByName(ctx context.Context, names []string) ([]targeting.FeatureToggle, error) {
	if len(names) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, name, is_enabled, environment, rollout_percentage,
		       is_active_from, is_active_to, targeting_enabled
		FROM feature_toggles
		WHERE name = ANY($1)
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(names))
	if err != nil {
		return nil, fmt.Errorf("failed to query feature toggles: %w", err)
	}
	defer rows.Close()

	var (
		toggles []targeting.FeatureToggle
		ids     []string
	)
	for rows.Next() {
		var t targeting.FeatureToggle
		if err := rows.Scan(
			&t.ID, &t.Name, &t.Enabled, &t.Environment, &t.RolloutPercentage,
			&t.ActiveFrom, &t.ActiveTo, &t.TargetingEnabled,
		); err != nil {
			return nil, fmt.Errorf("failed to scan feature toggle: %w", err)
		}
		toggles = append(toggles, t)
		ids = append(ids, t.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	segments, err := FeatureSegments(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range toggles {
		toggles[i].Segments = segments[toggles[i].ID]
	}

	return toggles, nil
}

func (r *PostgresRepository) CountActiveFeatures(ctx context.Context, now time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM feature_toggles
		WHERE is_enabled = true AND is_active_from <= $1 AND is_active_to >= $1
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, now).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active features: %w", err)
	}
	return count, nil
}

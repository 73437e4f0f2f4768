package management

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"flagpost/internal/catalog"
	"flagpost/internal/targeting"
	pkgerrors "flagpost/pkg/errors"
	"flagpost/pkg/models"
)

const uniqueViolation = "23505"

type Repository interface {
	CreateAlert(ctx context.Context, alert *Alert) error
	ListAlerts(ctx context.Context) ([]Alert, error)
	GetAlert(ctx context.Context, id string) (*Alert, error)
	UpdateAlert(ctx context.Context, alert *Alert, replaceSegments bool) error
	DeleteAlert(ctx context.Context, id string) error

	CreateFeature(ctx context.Context, feature *Feature) error
	ListFeatures(ctx context.Context) ([]Feature, error)
	GetFeature(ctx context.Context, id string) (*Feature, error)
	UpdateFeature(ctx context.Context, feature *Feature, replaceSegments bool) error
	DeleteFeature(ctx context.Context, id string) error
}

type PostgresRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func notFound(entity, id string) error {
	return pkgerrors.ErrNotFound.
		WithDetail("id", id).
		WithMessage(fmt.Sprintf("%s %s not found", entity, id))
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// withTx runs fn in a transaction and commits when fn returns nil.
func (r *PostgresRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertSegments(ctx context.Context, tx *sql.Tx, table, foreignKey, ownerID string, segments []targeting.Segment) error {
	if len(segments) == 0 {
		return nil
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, user_type, location, account_age, activity_level, plan_tier, target_page)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, table, foreignKey)

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare %s insert: %w", table, err)
	}
	defer stmt.Close()

	for _, seg := range segments {
		args := append([]interface{}{ownerID}, catalog.SegmentColumns(seg)...)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}
	return nil
}

func replaceSegments(ctx context.Context, tx *sql.Tx, table, foreignKey, ownerID string, segments []targeting.Segment) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, table, foreignKey)
	if _, err := tx.ExecContext(ctx, query, ownerID); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}
	return insertSegments(ctx, tx, table, foreignKey, ownerID, segments)
}

func checkAffected(res sql.Result, entity, id string) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound(entity, id)
	}
	return nil
}

func (r *PostgresRepository) CreateAlert(ctx context.Context, alert *Alert) error {
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	alert.CreatedAt = now
	alert.UpdatedAt = now

	return r.withTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO alerts (id, title, body, theme, is_enabled, is_active_from, is_active_to, targeting_enabled, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`
		if _, err := tx.ExecContext(ctx, query,
			alert.ID, alert.Title, alert.Body, alert.Theme, alert.IsEnabled,
			alert.IsActiveFrom, alert.IsActiveTo, alert.TargetingEnabled,
			alert.CreatedAt, alert.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to create alert: %w", err)
		}
		return insertSegments(ctx, tx, "alert_segments", "alert_id", alert.ID, alert.TargetSegments)
	})
}

const alertColumns = `id, title, body, theme, is_enabled, is_active_from, is_active_to, targeting_enabled, created_at, updated_at`

func scanAlert(row interface{ Scan(...interface{}) error }) (Alert, error) {
	var a Alert
	err := row.Scan(
		&a.ID, &a.Title, &a.Body, &a.Theme, &a.IsEnabled,
		&a.IsActiveFrom, &a.IsActiveTo, &a.TargetingEnabled,
		&a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

func (r *PostgresRepository) ListAlerts(ctx context.Context) ([]Alert, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+alertColumns+` FROM alerts ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	alerts := []Alert{}
	ids := []string{}
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, a)
		ids = append(ids, a.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	segments, err := catalog.AlertSegments(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range alerts {
		alerts[i].TargetSegments = orEmpty(segments[alerts[i].ID])
	}
	return alerts, nil
}

func (r *PostgresRepository) GetAlert(ctx context.Context, id string) (*Alert, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, notFound(models.EntityTypeAlert, id)
	}

	a, err := scanAlert(r.db.QueryRowContext(ctx, `SELECT `+alertColumns+` FROM alerts WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(models.EntityTypeAlert, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}

	segments, err := catalog.AlertSegments(ctx, r.db, []string{id})
	if err != nil {
		return nil, err
	}
	a.TargetSegments = orEmpty(segments[id])
	return &a, nil
}

func (r *PostgresRepository) UpdateAlert(ctx context.Context, alert *Alert, replace bool) error {
	alert.UpdatedAt = time.Now().UTC()

	return r.withTx(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE alerts
			SET title = $1, body = $2, theme = $3, is_enabled = $4, is_active_from = $5,
			    is_active_to = $6, targeting_enabled = $7, updated_at = $8
			WHERE id = $9
		`
		res, err := tx.ExecContext(ctx, query,
			alert.Title, alert.Body, alert.Theme, alert.IsEnabled, alert.IsActiveFrom,
			alert.IsActiveTo, alert.TargetingEnabled, alert.UpdatedAt, alert.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update alert: %w", err)
		}
		if err := checkAffected(res, models.EntityTypeAlert, alert.ID); err != nil {
			return err
		}
		if !replace {
			return nil
		}
		return replaceSegments(ctx, tx, "alert_segments", "alert_id", alert.ID, alert.TargetSegments)
	})
}

func (r *PostgresRepository) DeleteAlert(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return notFound(models.EntityTypeAlert, id)
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM alerts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete alert: %w", err)
	}
	return checkAffected(res, models.EntityTypeAlert, id)
}

func (r *PostgresRepository) CreateFeature(ctx context.Context, feature *Feature) error {
	if feature.ID == "" {
		feature.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	feature.CreatedAt = now
	feature.UpdatedAt = now

	return r.withTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO feature_toggles (id, name, display_name, description, is_enabled, environment, rollout_percentage,
				is_active_from, is_active_to, targeting_enabled, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`
		if _, err := tx.ExecContext(ctx, query,
			feature.ID, feature.Name, feature.DisplayName, feature.Description, feature.IsEnabled,
			feature.Environment, feature.RolloutPercentage, feature.IsActiveFrom, feature.IsActiveTo,
			feature.TargetingEnabled, feature.CreatedAt, feature.UpdatedAt,
		); err != nil {
			if isUniqueViolation(err) {
				return duplicateFeature(feature.Name, err)
			}
			return fmt.Errorf("failed to create feature: %w", err)
		}
		return insertSegments(ctx, tx, "feature_segments", "feature_id", feature.ID, feature.TargetSegments)
	})
}

func duplicateFeature(name string, cause error) error {
	return pkgerrors.ErrConflict.
		WithCause(cause).
		WithMessage(fmt.Sprintf("feature with name '%s' already exists", name))
}

const featureColumns = `id, name, display_name, COALESCE(description, ''), is_enabled, environment, rollout_percentage,
	is_active_from, is_active_to, targeting_enabled, created_at, updated_at`

func scanFeature(row interface{ Scan(...interface{}) error }) (Feature, error) {
	var f Feature
	err := row.Scan(
		&f.ID, &f.Name, &f.DisplayName, &f.Description, &f.IsEnabled, &f.Environment, &f.RolloutPercentage,
		&f.IsActiveFrom, &f.IsActiveTo, &f.TargetingEnabled, &f.CreatedAt, &f.UpdatedAt,
	)
	return f, err
}

func (r *PostgresRepository) ListFeatures(ctx context.Context) ([]Feature, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+featureColumns+` FROM feature_toggles ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list features: %w", err)
	}
	defer rows.Close()

	features := []Feature{}
	ids := []string{}
	for rows.Next() {
		f, err := scanFeature(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feature: %w", err)
		}
		features = append(features, f)
		ids = append(ids, f.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	segments, err := catalog.FeatureSegments(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range features {
		features[i].TargetSegments = orEmpty(segments[features[i].ID])
	}
	return features, nil
}

func (r *PostgresRepository) GetFeature(ctx context.Context, id string) (*Feature, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, notFound(models.EntityTypeFeature, id)
	}

	f, err := scanFeature(r.db.QueryRowContext(ctx, `SELECT `+featureColumns+` FROM feature_toggles WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(models.EntityTypeFeature, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feature: %w", err)
	}

	segments, err := catalog.FeatureSegments(ctx, r.db, []string{id})
	if err != nil {
		return nil, err
	}
	f.TargetSegments = orEmpty(segments[id])
	return &f, nil
}

func (r *PostgresRepository) UpdateFeature(ctx context.Context, feature *Feature, replace bool) error {
	feature.UpdatedAt = time.Now().UTC()

	return r.withTx(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE feature_toggles
			SET name = $1, display_name = $2, description = $3, is_enabled = $4, environment = $5,
			    rollout_percentage = $6, is_active_from = $7, is_active_to = $8, targeting_enabled = $9, updated_at = $10
			WHERE id = $11
		`
		res, err := tx.ExecContext(ctx, query,
			feature.Name, feature.DisplayName, feature.Description, feature.IsEnabled, feature.Environment,
			feature.RolloutPercentage, feature.IsActiveFrom, feature.IsActiveTo, feature.TargetingEnabled,
			feature.UpdatedAt, feature.ID,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return duplicateFeature(feature.Name, err)
			}
			return fmt.Errorf("failed to update feature: %w", err)
		}
		if err := checkAffected(res, models.EntityTypeFeature, feature.ID); err != nil {
			return err
		}
		if !replace {
			return nil
		}
		return replaceSegments(ctx, tx, "feature_segments", "feature_id", feature.ID, feature.TargetSegments)
	})
}

func (r *PostgresRepository) DeleteFeature(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return notFound(models.EntityTypeFeature, id)
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM feature_toggles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete feature: %w", err)
	}
	return checkAffected(res, models.EntityTypeFeature, id)
}

func orEmpty(segments []targeting.Segment) []targeting.Segment {
	if segments == nil {
		return []targeting.Segment{}
	}
	return segments
}

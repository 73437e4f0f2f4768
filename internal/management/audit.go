package management

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"flagpost/internal/constants"
)

type AuditRepository interface {
	LogChange(ctx context.Context, entry AuditLogEntry) error
	ListAuditLogs(ctx context.Context, filter AuditLogFilter) ([]AuditLog, error)
}

type AuditLogger struct {
	db *sql.DB
}

func NewAuditLogger(db *sql.DB) *AuditLogger {
	return &AuditLogger{db: db}
}

type AuditLogEntry struct {
	EntityType string
	EntityID   string
	Action     string
	Actor      string
	OldValue   interface{}
	NewValue   interface{}
	Timestamp  time.Time
}

func (a *AuditLogger) LogChange(ctx context.Context, entry AuditLogEntry) error {
	changes := map[string]interface{}{}
	if entry.OldValue != nil {
		changes["old"] = entry.OldValue
	}
	if entry.NewValue != nil {
		changes["new"] = entry.NewValue
	}
	changesJSON, err := json.Marshal(changes)
	if err != nil {
		return fmt.Errorf("failed to encode audit changes: %w", err)
	}

	var actor *string
	if entry.Actor != "" {
		actor = &entry.Actor
	}

	timestamp := time.Now().UTC()
	if !entry.Timestamp.IsZero() {
		timestamp = entry.Timestamp
	}

	query := `
		INSERT INTO audit_logs (id, entity_type, entity_id, action, actor, changes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := a.db.ExecContext(ctx, query,
		uuid.New().String(), entry.EntityType, entry.EntityID, entry.Action,
		actor, changesJSON, timestamp,
	); err != nil {
		return fmt.Errorf("failed to log audit entry: %w", err)
	}
	return nil
}

// ListAuditLogs returns the newest entries first. Empty filter fields match
// everything.
func (a *AuditLogger) ListAuditLogs(ctx context.Context, filter AuditLogFilter) ([]AuditLog, error) {
	limit := filter.Limit
	if limit <= 0 || limit > constants.MaxLimit {
		limit = constants.DefaultLimit
	}

	query := `
		SELECT id, entity_type, entity_id, action, COALESCE(actor, ''), changes, created_at
		FROM audit_logs
		WHERE ($1 = '' OR entity_type = $1)
		  AND ($2 = '' OR entity_id = $2)
		ORDER BY created_at DESC
		LIMIT $3
	`
	rows, err := a.db.QueryContext(ctx, query, filter.EntityType, filter.EntityID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit logs: %w", err)
	}
	defer rows.Close()

	logs := []AuditLog{}
	for rows.Next() {
		var (
			log         AuditLog
			changesJSON []byte
		)
		if err := rows.Scan(&log.ID, &log.EntityType, &log.EntityID, &log.Action, &log.Actor, &changesJSON, &log.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		if len(changesJSON) > 0 {
			if err := json.Unmarshal(changesJSON, &log.Changes); err != nil {
				return nil, fmt.Errorf("failed to decode audit changes: %w", err)
			}
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return logs, nil
}

package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"flagpost/internal/targeting"
)

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

type segmentTable struct {
	name       string
	foreignKey string
}

var (
	alertSegments   = segmentTable{name: "alert_segments", foreignKey: "alert_id"}
	featureSegments = segmentTable{name: "feature_segments", foreignKey: "feature_id"}
)

// AlertSegments returns the segments of the given alerts keyed by alert id.
func AlertSegments(ctx context.Context, q Querier, ids []string) (map[string][]targeting.Segment, error) {
	return loadSegments(ctx, q, alertSegments, ids)
}

// FeatureSegments returns the segments of the given toggles keyed by toggle id.
func FeatureSegments(ctx context.Context, q Querier, ids []string) (map[string][]targeting.Segment, error) {
	return loadSegments(ctx, q, featureSegments, ids)
}

func loadSegments(ctx context.Context, q Querier, table segmentTable, ids []string) (map[string][]targeting.Segment, error) {
	out := make(map[string][]targeting.Segment, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query := fmt.Sprintf(`
		SELECT %[2]s, user_type, location, account_age, activity_level, plan_tier, target_page
		FROM %[1]s
		WHERE %[2]s = ANY($1)
		ORDER BY id ASC
	`, table.name, table.foreignKey)

	rows, err := q.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table.name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ownerID string
			cols    [6]sql.NullString
		)
		if err := rows.Scan(&ownerID, &cols[0], &cols[1], &cols[2], &cols[3], &cols[4], &cols[5]); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", table.name, err)
		}
		out[ownerID] = append(out[ownerID], targeting.Segment{
			UserType:      cols[0].String,
			Location:      cols[1].String,
			AccountAge:    cols[2].String,
			ActivityLevel: cols[3].String,
			PlanTier:      cols[4].String,
			TargetPage:    cols[5].String,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return out, nil
}

// SegmentColumns maps a segment to its nullable column values in table order.
func SegmentColumns(s targeting.Segment) []interface{} {
	return []interface{}{
		nullable(s.UserType),
		nullable(s.Location),
		nullable(s.AccountAge),
		nullable(s.ActivityLevel),
		nullable(s.PlanTier),
		nullable(s.TargetPage),
	}
}

func nullable(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

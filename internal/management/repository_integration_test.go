//go:build integration

package management

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	postgresmodule "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"flagpost/internal/targeting"
	pkgerrors "flagpost/pkg/errors"
	"flagpost/pkg/migrations"
	"flagpost/pkg/models"
)

func setupPostgres(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	container, err := postgresmodule.Run(ctx, "postgres:15",
		postgresmodule.WithDatabase("flagpost_test"),
		postgresmodule.WithUsername("test_user"),
		postgresmodule.WithPassword("test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	conn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("postgres", conn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.PingContext(ctx))
	require.NoError(t, migrations.RunPostgres(db))
	return db
}

func TestPostgresRepository_Alerts(t *testing.T) {
	db := setupPostgres(t)
	repo := NewRepository(db)
	ctx := context.Background()

	alert := &Alert{
		Title:            "Maintenance",
		Body:             "Back soon",
		Theme:            ThemeDefault,
		IsEnabled:        true,
		IsActiveFrom:     windowFrom,
		IsActiveTo:       windowTo,
		TargetingEnabled: true,
		TargetSegments:   []targeting.Segment{{PlanTier: "premium"}, {Location: "US", UserType: "business"}},
	}
	require.NoError(t, repo.CreateAlert(ctx, alert))

	got, err := repo.GetAlert(ctx, alert.ID)
	require.NoError(t, err)
	assert.Equal(t, alert.TargetSegments, got.TargetSegments)
	assert.True(t, got.IsActiveFrom.Equal(windowFrom))

	got.Title = "Renamed"
	got.TargetSegments = []targeting.Segment{{Location: "DE"}}
	require.NoError(t, repo.UpdateAlert(ctx, got, false))

	unchanged, err := repo.GetAlert(ctx, alert.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", unchanged.Title)
	assert.Len(t, unchanged.TargetSegments, 2, "segments kept without replace")

	require.NoError(t, repo.UpdateAlert(ctx, got, true))
	replaced, err := repo.GetAlert(ctx, alert.ID)
	require.NoError(t, err)
	assert.Equal(t, []targeting.Segment{{Location: "DE"}}, replaced.TargetSegments)

	second := &Alert{Title: "Later", Body: "b", Theme: "info", IsActiveFrom: windowFrom, IsActiveTo: windowTo}
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, repo.CreateAlert(ctx, second))

	list, err := repo.ListAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")
	assert.Empty(t, list[0].TargetSegments)

	require.NoError(t, repo.DeleteAlert(ctx, alert.ID))
	var segCount int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM alert_segments WHERE alert_id = $1`, alert.ID).Scan(&segCount))
	assert.Zero(t, segCount, "segments cascade on delete")

	_, err = repo.GetAlert(ctx, alert.ID)
	assert.True(t, pkgerrors.IsNotFound(err))
	assert.True(t, pkgerrors.IsNotFound(repo.DeleteAlert(ctx, "not-a-uuid")))
}

func TestPostgresRepository_Features(t *testing.T) {
	db := setupPostgres(t)
	repo := NewRepository(db)
	ctx := context.Background()

	feature := &Feature{
		Name:              "new-checkout",
		DisplayName:       "New checkout",
		IsEnabled:         true,
		Environment:       "production",
		RolloutPercentage: 30,
		IsActiveFrom:      windowFrom,
		IsActiveTo:        windowTo,
	}
	require.NoError(t, repo.CreateFeature(ctx, feature))

	dup := *feature
	dup.ID = ""
	err := repo.CreateFeature(ctx, &dup)
	assert.True(t, pkgerrors.IsConflict(err))

	got, err := repo.GetFeature(ctx, feature.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, got.RolloutPercentage)
	assert.Empty(t, got.Description)

	got.Description = "Single-page checkout"
	got.TargetingEnabled = true
	got.TargetSegments = []targeting.Segment{{ActivityLevel: "high"}}
	require.NoError(t, repo.UpdateFeature(ctx, got, true))

	updated, err := repo.GetFeature(ctx, feature.ID)
	require.NoError(t, err)
	assert.Equal(t, "Single-page checkout", updated.Description)
	assert.Equal(t, got.TargetSegments, updated.TargetSegments)

	list, err := repo.ListFeatures(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.DeleteFeature(ctx, feature.ID))
	assert.True(t, pkgerrors.IsNotFound(repo.DeleteFeature(ctx, feature.ID)))
}

func TestAuditLogger(t *testing.T) {
	db := setupPostgres(t)
	audit := NewAuditLogger(db)
	ctx := context.Background()

	require.NoError(t, audit.LogChange(ctx, AuditLogEntry{
		EntityType: models.EntityTypeFeature,
		EntityID:   "f1",
		Action:     models.ActionCreate,
		Actor:      "alice",
		NewValue:   map[string]interface{}{"name": "beta"},
		Timestamp:  windowFrom,
	}))
	require.NoError(t, audit.LogChange(ctx, AuditLogEntry{
		EntityType: models.EntityTypeAlert,
		EntityID:   "a1",
		Action:     models.ActionDelete,
		Timestamp:  windowFrom.Add(time.Hour),
	}))

	all, err := audit.ListAuditLogs(ctx, AuditLogFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a1", all[0].EntityID, "newest first")
	assert.Empty(t, all[0].Actor)

	features, err := audit.ListAuditLogs(ctx, AuditLogFilter{EntityType: models.EntityTypeFeature, EntityID: "f1", Limit: 5})
	require.NoError(t, err)
	require.Len(t, features, 1)
	assert.Equal(t, "alice", features[0].Actor)
	assert.Equal(t, map[string]interface{}{"name": "beta"}, features[0].Changes["new"])
}

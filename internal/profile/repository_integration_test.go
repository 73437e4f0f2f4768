//go:build integration

package profile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	mongomodule "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"flagpost/pkg/errors"
	"flagpost/pkg/migrations"
)

func setupMongo(t *testing.T) *mongo.Database {
	t.Helper()
	ctx := context.Background()

	container, err := mongomodule.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(ctx) })

	db := client.Database("flagpost_test")
	require.NoError(t, migrations.EnsureProfileIndexes(ctx, db))
	return db
}

func TestMongoRepository_UpsertAndGet(t *testing.T) {
	repo := NewRepository(setupMongo(t))
	ctx := context.Background()

	first := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	p, err := repo.Upsert(ctx, UpsertProfileRequest{UserID: "u1", PlanTier: "free", Location: "DE"}, first)
	require.NoError(t, err)
	assert.Equal(t, "free", p.PlanTier)
	assert.True(t, p.CreatedAt.Equal(first))

	second := first.Add(24 * time.Hour)
	p, err = repo.Upsert(ctx, UpsertProfileRequest{UserID: "u1", PlanTier: "premium"}, second)
	require.NoError(t, err)
	assert.Equal(t, "premium", p.PlanTier)
	assert.Empty(t, p.Location)
	assert.True(t, p.CreatedAt.Equal(first))
	assert.True(t, p.LastSeen.Equal(second))

	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "premium", got.PlanTier)

	_, err = repo.Get(ctx, "nobody")
	assert.True(t, errors.IsNotFound(err))
}

package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(postgresFS, "postgres")
	require.NoError(t, err)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}

	require.NotEmpty(t, ups)
	assert.Equal(t, ups, downs)
}

func TestCatalogMigrationDeclaresConstraints(t *testing.T) {
	raw, err := fs.ReadFile(postgresFS, "postgres/000001_create_catalog.up.sql")
	require.NoError(t, err)
	sql := string(raw)

	assert.Contains(t, sql, "name               VARCHAR(255) NOT NULL UNIQUE")
	assert.Contains(t, sql, "rollout_percentage BETWEEN 0 AND 100")
	assert.Contains(t, sql, "ON DELETE CASCADE")
}

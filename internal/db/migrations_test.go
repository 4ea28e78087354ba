package db

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	ups, downs := map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("unexpected file %s", name)
		}
	}
	assert.Equal(t, ups, downs)
}

func TestCartsMigrationMatchesStore(t *testing.T) {
	b, err := fs.ReadFile(migrationsFS, "migrations/0001_create_carts.up.sql")
	require.NoError(t, err)
	sql := string(b)
	for _, col := range []string{"id", "items", "updated_at"} {
		assert.Contains(t, sql, col)
	}
	assert.Contains(t, sql, "JSONB")
}

package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	assert.Equal(t, uint64(1), parseVersion("000001_create_users.up.sql"))
	assert.Equal(t, uint64(42), parseVersion("42_add_index.up.sql"))
	assert.Equal(t, uint64(0), parseVersion("create_users.up.sql"))
}

func TestSelectApplied(t *testing.T) {
	files := []string{"000001_a.up.sql", "000002_b.up.sql", "000003_c.up.sql"}

	assert.Equal(t, []string{"000002_b.up.sql", "000003_c.up.sql"}, selectApplied(files, 1, 3))
	assert.Empty(t, selectApplied(files, 3, 3))
	assert.Empty(t, selectApplied(files, 3, 1))
}

func TestListMigrationFilesOnlyUp(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"000002_b.up.sql", "000001_a.up.sql", "000001_a.down.sql", "README.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "000003_dir.up.sql"), 0o755))

	assert.Equal(t, []string{"000001_a.up.sql", "000002_b.up.sql"}, listMigrationFiles(dir))
}

func TestResolveMigrationsDir(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "m")
	got, err := resolveMigrationsDir(abs)
	require.NoError(t, err)
	assert.Equal(t, abs, got)

	got, err = resolveMigrationsDir("")
	require.NoError(t, err)
	assert.Equal(t, "migrations", filepath.Base(got))
}

func TestConfigConnectionStrings(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", User: "bot", Password: "pw", Name: "satbot"}
	assert.Equal(t, "user=bot password=pw host=db port=5432 dbname=satbot sslmode=disable", cfg.DSN())
	assert.Equal(t, "postgres://bot:pw@db:5432/satbot?sslmode=disable", cfg.URL())

	cfg.SSLMode = "require"
	assert.Contains(t, cfg.URL(), "sslmode=require")
}

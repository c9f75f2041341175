package migration_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqasim81/migra/internal/migration"
)

func TestLoadFromDir(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func(t *testing.T) string // returns directory path
		check func(t *testing.T, s migration.Set)
	}{
		{
			name: "loads from testdata directory",
			setup: func(t *testing.T) string {
				t.Helper()

				return filepath.Join("..", "..", "testdata", "migrations")
			},
			check: func(t *testing.T, s migration.Set) {
				t.Helper()
				assert.Equal(t, []string{
					"210218232851_create_articles",
					"210218233414_create_persons",
				}, s.Names())
			},
		},
		{
			name: "missing directory returns empty set",
			setup: func(t *testing.T) string {
				t.Helper()

				return filepath.Join(t.TempDir(), "nonexistent")
			},
			check: func(t *testing.T, s migration.Set) {
				t.Helper()
				assert.True(t, s.IsEmpty())
			},
		},
		{
			name: "empty directory returns empty set",
			setup: func(t *testing.T) string {
				t.Helper()

				return t.TempDir()
			},
			check: func(t *testing.T, s migration.Set) {
				t.Helper()
				assert.True(t, s.IsEmpty())
			},
		},
		{
			name: "sorted lexically regardless of creation order",
			setup: func(t *testing.T) string {
				t.Helper()
				dir := t.TempDir()
				writeMigration(t, dir, "003_c", "SELECT 3;", "SELECT -3;")
				writeMigration(t, dir, "001_a", "SELECT 1;", "SELECT -1;")
				writeMigration(t, dir, "002_b", "SELECT 2;", "SELECT -2;")

				return dir
			},
			check: func(t *testing.T, s migration.Set) {
				t.Helper()
				assert.Equal(t, []string{"001_a", "002_b", "003_c"}, s.Names())
			},
		},
		{
			name: "directory without down.sql is skipped",
			setup: func(t *testing.T) string {
				t.Helper()
				dir := t.TempDir()
				writeMigration(t, dir, "001_ok", "SELECT 1;", "SELECT -1;")
				require.NoError(t, os.MkdirAll(filepath.Join(dir, "002_up_only"), 0o755))
				writeFile(t, filepath.Join(dir, "002_up_only"), migration.UpFileName, "SELECT 2;")

				return dir
			},
			check: func(t *testing.T, s migration.Set) {
				t.Helper()
				assert.Equal(t, []string{"001_ok"}, s.Names())
			},
		},
		{
			name: "plain files at top level are ignored",
			setup: func(t *testing.T) string {
				t.Helper()
				dir := t.TempDir()
				writeFile(t, dir, "README.md", "# readme")
				writeFile(t, dir, migration.UpFileName, "SELECT 1;")

				return dir
			},
			check: func(t *testing.T, s migration.Set) {
				t.Helper()
				assert.True(t, s.IsEmpty())
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, err := migration.LoadFromDir(tt.setup(t))

			require.NoError(t, err)
			tt.check(t, s)
		})
	}
}

func TestLoadFromDir_pathIsFile_returnsError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "not-a-dir", "x")

	_, err := migration.LoadFromDir(filepath.Join(dir, "not-a-dir"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading migrations directory")
}

func TestSource_readsBodies(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeMigration(t, dir, "001_users", "CREATE TABLE users (id INT);\n", "DROP TABLE users;\n")

	src := migration.NewSource(dir)

	up, err := src.ReadUp("001_users")
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE users (id INT);\n", up)

	down, err := src.ReadDown("001_users")
	require.NoError(t, err)
	assert.Equal(t, "DROP TABLE users;\n", down)
}

func TestSource_missingMigration_returnsError(t *testing.T) {
	t.Parallel()

	_, err := migration.NewSource(t.TempDir()).ReadUp("404_missing")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading migration file")
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func writeMigration(t *testing.T, dir, name, up, down string) {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(path, 0o755))
	writeFile(t, path, migration.UpFileName, up)
	writeFile(t, path, migration.DownFileName, down)
}

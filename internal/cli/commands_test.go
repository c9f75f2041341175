package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqasim81/migra/internal/config"
	"github.com/aqasim81/migra/internal/database"
	"github.com/aqasim81/migra/internal/executor"
	"github.com/aqasim81/migra/internal/migration"
)

// newTestCmd creates a fresh cobra.Command wired to run with captured output buffers.
func newTestCmd(run func(*cobra.Command, []string) error) (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	out := new(bytes.Buffer)
	errOut := new(bytes.Buffer)

	cmd := &cobra.Command{RunE: run}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	return cmd, out, errOut
}

// setupSQLiteConfig points AppConfig at a fresh SQLite database under a
// temporary manifest directory and restores it on cleanup.
func setupSQLiteConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()
	cfg := config.New()
	cfg.ManifestDir = dir
	cfg.Connection = filepath.Join(dir, "migra.db")

	old := AppConfig
	AppConfig = cfg

	t.Cleanup(func() { AppConfig = old })

	return cfg
}

func writeMigration(t *testing.T, cfg *config.Config, name, up, down string) {
	t.Helper()

	path := filepath.Join(cfg.MigrationsPath(), name)
	require.NoError(t, os.MkdirAll(path, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(path, migration.UpFileName), []byte(up), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(path, migration.DownFileName), []byte(down), 0o600))
}

func writeTwoMigrations(t *testing.T, cfg *config.Config) {
	t.Helper()

	writeMigration(t, cfg, "001_create_a", "CREATE TABLE a (id INTEGER PRIMARY KEY);", "DROP TABLE a;")
	writeMigration(t, cfg, "002_create_b", "CREATE TABLE b (id INTEGER PRIMARY KEY);", "DROP TABLE b;")
}

func appliedNames(t *testing.T, cfg *config.Config) []string {
	t.Helper()

	ctx := context.Background()

	client, err := connect(ctx, cfg)
	require.NoError(t, err)

	defer closeClient(ctx, client)

	applied, err := client.AppliedMigrations(ctx)
	require.NoError(t, err)

	return applied.Names()
}

func TestRunInit_createsThenReportsExisting(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, config.FileName)

	cmd, out, _ := newTestCmd(runInit)
	registerGlobalFlags(cmd.Flags())
	require.NoError(t, cmd.Flags().Set("config", dir))

	require.NoError(t, runInit(cmd, nil))
	assert.Equal(t, "Created "+path+"\n", out.String())

	cfg, err := config.Load(path, false)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConnection, cfg.Connection)

	out.Reset()
	require.NoError(t, runInit(cmd, nil))
	assert.Equal(t, path+" already exists\n", out.String())
}

func TestRunMake_scaffoldsUnderMigrationsPath(t *testing.T) { //nolint:paralleltest // writes global AppConfig
	cfg := setupSQLiteConfig(t)
	cfg.DateFormat = "20060102"

	cmd, out, _ := newTestCmd(runMake)

	require.NoError(t, runMake(cmd, []string{"Create Users"}))
	assert.Contains(t, out.String(), "Structure for migration has been created in the "+cfg.MigrationsPath())

	all, err := migration.LoadFromDir(cfg.MigrationsPath())
	require.NoError(t, err)
	require.Equal(t, 1, all.Len())
	assert.Regexp(t, `^\d{8}_create_users$`, all.Names()[0])
}

func TestRunMake_strftimeDateFormat_returnsError(t *testing.T) { //nolint:paralleltest // writes global AppConfig
	cfg := setupSQLiteConfig(t)
	cfg.DateFormat = "%y%m%d%H%M%S"

	cmd, _, _ := newTestCmd(runMake)

	require.ErrorIs(t, runMake(cmd, []string{"create_users"}), migration.ErrStrftimeLayout)
}

func TestRunList_freshDatabase_printsEmptySections(t *testing.T) { //nolint:paralleltest // writes global AppConfig
	setupSQLiteConfig(t)

	cmd, out, errOut := newTestCmd(runList)

	require.NoError(t, runList(cmd, nil))
	assert.Equal(t, "Applied migrations:\n—\n\nPending migrations:\n—\n", out.String())
	assert.Empty(t, errOut.String())
}

func TestRunList_noConnection_printsPendingWithWarning(t *testing.T) { //nolint:paralleltest // writes global AppConfig
	cfg := setupSQLiteConfig(t)
	cfg.Connection = "$MIGRA_TEST_UNSET_CONNECTION"
	cfg.Client = "sqlite"
	writeTwoMigrations(t, cfg)

	cmd, out, errOut := newTestCmd(runList)

	require.NoError(t, runList(cmd, nil))
	assert.Equal(t, "Pending migrations:\n001_create_a\n002_create_b\n", out.String())
	assert.Contains(t, errOut.String(), "WARNING: missing environment variable: MIGRA_TEST_UNSET_CONNECTION")
	assert.Contains(t, errOut.String(), "WARNING: No connection to database")
}

func TestRunUpgrade_appliesPendingInOrder(t *testing.T) { //nolint:paralleltest // writes global AppConfig
	cfg := setupSQLiteConfig(t)
	writeTwoMigrations(t, cfg)

	cmd, out, _ := newTestCmd(runUpgrade)
	registerUpgradeFlags(cmd)

	require.NoError(t, runUpgrade(cmd, nil))
	assert.Equal(t, "upgrade 001_create_a...\nupgrade 002_create_b...\n", out.String())
	assert.Equal(t, []string{"002_create_b", "001_create_a"}, appliedNames(t, cfg))

	listCmd, listOut, _ := newTestCmd(runList)
	require.NoError(t, runList(listCmd, nil))
	assert.Equal(t, "Applied migrations:\n002_create_b\n001_create_a\n\nPending migrations:\n—\n", listOut.String())
}

func TestRunUpgrade_outcomes(t *testing.T) { //nolint:paralleltest // writes global AppConfig
	tests := []struct {
		name       string
		args       []string
		number     string
		wantOut    string
		wantErrOut string
		wantErr    error
		wantApply  []string
	}{
		{
			name:      "limit applies first pending only",
			number:    "1",
			wantOut:   "upgrade 001_create_a...\n",
			wantApply: []string{"001_create_a"},
		},
		{
			name:      "named target applies only that migration",
			args:      []string{"002_create_b"},
			wantOut:   "upgrade 002_create_b...\n",
			wantApply: []string{"002_create_b"},
		},
		{
			name:       "unknown target is reported without error",
			args:       []string{"nonexistent_name"},
			wantErrOut: "Cannot find migration with \"nonexistent_name\" name\n",
			wantApply:  []string{},
		},
		{
			name:      "zero number applies nothing",
			number:    "0",
			wantApply: []string{},
		},
		{
			name:    "negative number is rejected",
			number:  "-1",
			wantErr: errNegativeNumber,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			cfg := setupSQLiteConfig(t)
			writeTwoMigrations(t, cfg)

			cmd, out, errOut := newTestCmd(runUpgrade)
			registerUpgradeFlags(cmd)

			if tt.number != "" {
				require.NoError(t, cmd.Flags().Set("number", tt.number))
			}

			err := runUpgrade(cmd, tt.args)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantOut, out.String())
			assert.Equal(t, tt.wantErrOut, errOut.String())
			assert.ElementsMatch(t, tt.wantApply, appliedNames(t, cfg))
		})
	}
}

func TestRunUpgrade_twice_reportsUpToDate(t *testing.T) { //nolint:paralleltest // writes global AppConfig
	cfg := setupSQLiteConfig(t)
	writeTwoMigrations(t, cfg)

	first, _, _ := newTestCmd(runUpgrade)
	registerUpgradeFlags(first)
	require.NoError(t, runUpgrade(first, nil))

	second, out, _ := newTestCmd(runUpgrade)
	registerUpgradeFlags(second)
	require.NoError(t, runUpgrade(second, nil))

	assert.Equal(t, "Up to date\n", out.String())
}

func TestRunUpgrade_brokenMigration_returnsApplyError(t *testing.T) { //nolint:paralleltest // writes global AppConfig
	cfg := setupSQLiteConfig(t)
	writeMigration(t, cfg, "001_broken", "CREATE TABLE broken (;", "SELECT 1;")

	cmd, _, _ := newTestCmd(runUpgrade)
	registerUpgradeFlags(cmd)

	err := runUpgrade(cmd, nil)

	require.ErrorIs(t, err, database.ErrApplySQL)
	require.ErrorIs(t, err, executor.ErrExecutionFailed)
	assert.Contains(t, err.Error(), "upgrade failed")
	assert.Empty(t, appliedNames(t, cfg))
}

func TestRunUpgrade_missingConnection_returnsConfigError(t *testing.T) { //nolint:paralleltest // writes global AppConfig
	cfg := setupSQLiteConfig(t)
	cfg.Connection = "$MIGRA_TEST_UNSET_CONNECTION"

	cmd, _, _ := newTestCmd(runUpgrade)
	registerUpgradeFlags(cmd)

	require.ErrorIs(t, runUpgrade(cmd, nil), config.ErrMissingEnvVar)
}

func TestRunDowngrade(t *testing.T) { //nolint:paralleltest // writes global AppConfig
	tests := []struct {
		name        string
		flags       map[string]string
		wantOut     string
		wantApplied []string
	}{
		{
			name:        "default reverts newest",
			wantOut:     "downgrade 002_create_b...\n",
			wantApplied: []string{"001_create_a"},
		},
		{
			name:        "all reverts newest first",
			flags:       map[string]string{"all": "true"},
			wantOut:     "downgrade 002_create_b...\ndowngrade 001_create_a...\n",
			wantApplied: []string{},
		},
		{
			name:        "zero number reverts nothing",
			flags:       map[string]string{"number": "0"},
			wantApplied: []string{"001_create_a", "002_create_b"},
		},
		{
			name:        "number larger than applied is clamped",
			flags:       map[string]string{"number": "5", "single-transaction": "true"},
			wantOut:     "downgrade 002_create_b...\ndowngrade 001_create_a...\n",
			wantApplied: []string{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			cfg := setupSQLiteConfig(t)
			writeTwoMigrations(t, cfg)

			up, _, _ := newTestCmd(runUpgrade)
			registerUpgradeFlags(up)
			require.NoError(t, runUpgrade(up, nil))

			cmd, out, _ := newTestCmd(runDowngrade)
			registerDowngradeFlags(cmd)

			for k, v := range tt.flags {
				require.NoError(t, cmd.Flags().Set(k, v))
			}

			require.NoError(t, runDowngrade(cmd, nil))
			assert.Equal(t, tt.wantOut, out.String())
			assert.ElementsMatch(t, tt.wantApplied, appliedNames(t, cfg))
		})
	}
}

func TestRunDowngrade_missingFiles_skipsSilently(t *testing.T) { //nolint:paralleltest // writes global AppConfig
	cfg := setupSQLiteConfig(t)
	writeTwoMigrations(t, cfg)

	up, _, _ := newTestCmd(runUpgrade)
	registerUpgradeFlags(up)
	require.NoError(t, runUpgrade(up, nil))

	require.NoError(t, os.RemoveAll(filepath.Join(cfg.MigrationsPath(), "002_create_b")))

	cmd, out, _ := newTestCmd(runDowngrade)
	registerDowngradeFlags(cmd)

	require.NoError(t, runDowngrade(cmd, nil))
	assert.Empty(t, out.String())
	assert.Equal(t, []string{"002_create_b", "001_create_a"}, appliedNames(t, cfg))
}

func TestRunApply_resolvesAgainstRoot(t *testing.T) { //nolint:paralleltest // writes global AppConfig
	cfg := setupSQLiteConfig(t)
	require.NoError(t, os.MkdirAll(cfg.RootPath(), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.RootPath(), "seed.sql"),
		[]byte("CREATE TABLE seed (id INTEGER PRIMARY KEY); INSERT INTO seed (id) VALUES (1);"), 0o600))

	cmd, out, _ := newTestCmd(runApply)
	registerApplyFlags(cmd)

	require.NoError(t, runApply(cmd, []string{"seed"}))
	assert.Equal(t, "apply seed...\n", out.String())
	assert.Empty(t, appliedNames(t, cfg))

	ctx := context.Background()
	client, err := connect(ctx, cfg)
	require.NoError(t, err)

	defer closeClient(ctx, client)

	require.NoError(t, client.BatchExecute(ctx, "SELECT id FROM seed"))
}

func TestRunApply_missingFile_failsBeforeConnecting(t *testing.T) { //nolint:paralleltest // writes global AppConfig
	cfg := setupSQLiteConfig(t)
	cfg.Connection = "$MIGRA_TEST_UNSET_CONNECTION"

	cmd, _, _ := newTestCmd(runApply)
	registerApplyFlags(cmd)

	err := runApply(cmd, []string{"missing"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.sql")
	assert.NotErrorIs(t, err, config.ErrMissingEnvVar)
}

func TestScriptPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "relative without extension", path: "seed", want: filepath.Join("/srv/db", "seed.sql")},
		{name: "relative with extension", path: "data/seed.psql", want: filepath.Join("/srv/db", "data", "seed.psql")},
		{name: "absolute kept", path: "/tmp/fix.sql", want: "/tmp/fix.sql"},
		{name: "absolute without extension", path: "/tmp/fix", want: "/tmp/fix.sql"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, scriptPath("/srv/db", tt.path))
		})
	}
}

func TestPrintStatus_offlineOmitsApplied(t *testing.T) {
	t.Parallel()

	buf := new(bytes.Buffer)
	printStatus(buf, executor.Status{Pending: migration.NewSet("001_a"), Offline: true})

	assert.Equal(t, "Pending migrations:\n001_a\n", buf.String())
}

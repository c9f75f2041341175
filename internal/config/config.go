package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aqasim81/migra/internal/database"
	"github.com/aqasim81/migra/internal/migration"
)

// FileName is the manifest name searched for by Find.
const FileName = "migra.yml"

// Default values for configuration fields.
const (
	DefaultRoot          = "database"
	DefaultConnection    = "$DATABASE_URL"
	DefaultMigrationsDir = "migrations"
	DefaultTableName     = database.DefaultTableName
	DefaultDateFormat    = migration.DefaultDateLayout
)

// ErrMissingEnvVar indicates a "$VAR" reference to an unset variable.
var ErrMissingEnvVar = errors.New("missing environment variable")

// ErrDatabaseURLRequired indicates the connection string resolved to nothing.
var ErrDatabaseURLRequired = errors.New("database URL is required (set --database-url, MIGRA_DATABASE_URL, or database.connection in migra.yml)")

// ErrManifestNotFound indicates Find reached the filesystem root without a manifest.
var ErrManifestNotFound = errors.New("migra.yml not found")

// Config holds the application configuration loaded from file, environment, and flags.
type Config struct {
	// ManifestDir is the directory of the loaded manifest; relative paths
	// resolve against it. Empty means the working directory.
	ManifestDir string
	Root        string
	// Client is the explicit backend name. Empty means detect from Connection.
	Client string
	// Connection is a literal connection string or a "$VAR" reference.
	Connection    string
	MigrationsDir string
	TableName     string
	// DateFormat is a Go time layout (e.g. 060102150405) used to prefix new
	// migration names. strftime directives such as %y are rejected by make.
	DateFormat string
}

// yamlConfig is the raw manifest representation.
type yamlConfig struct {
	Root       string         `yaml:"root"`
	Database   yamlDatabase   `yaml:"database"`
	Migrations yamlMigrations `yaml:"migrations"`
}

type yamlDatabase struct {
	Client     string `yaml:"client,omitempty"`
	Connection string `yaml:"connection"`
}

type yamlMigrations struct {
	Directory  string `yaml:"directory"`
	TableName  string `yaml:"table_name"`
	DateFormat string `yaml:"date_format,omitempty"`
}

// New returns a Config populated with default values.
func New() *Config {
	return &Config{
		Root:          DefaultRoot,
		Connection:    DefaultConnection,
		MigrationsDir: DefaultMigrationsDir,
		TableName:     DefaultTableName,
		DateFormat:    DefaultDateFormat,
	}
}

// ManifestPath turns a --config value into a manifest file path. A directory
// or an extensionless path gets FileName appended.
func ManifestPath(p string) string {
	if info, err := os.Stat(p); err == nil && info.IsDir() {
		return filepath.Join(p, FileName)
	}

	if filepath.Ext(p) == "" {
		return filepath.Join(p, FileName)
	}

	return p
}

// Find walks up from startDir to the first directory holding FileName and
// returns the manifest path.
func Find(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", startDir, err)
	}

	for {
		candidate := filepath.Join(dir, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrManifestNotFound
		}

		dir = parent
	}
}

// Load reads a YAML manifest and returns a Config.
// If allowMissing is true and the file does not exist, defaults are returned.
func Load(path string, allowMissing bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && allowMissing {
			cfg := New()
			cfg.ManifestDir = filepath.Dir(path)

			return cfg, nil
		}

		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var raw yamlConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	cfg := fromYAML(&raw)
	cfg.ManifestDir = filepath.Dir(path)

	return cfg, nil
}

// fromYAML converts the raw YAML representation to a Config with defaults applied.
func fromYAML(raw *yamlConfig) *Config {
	cfg := New()

	if raw.Root != "" {
		cfg.Root = raw.Root
	}

	cfg.Client = raw.Database.Client

	if raw.Database.Connection != "" {
		cfg.Connection = raw.Database.Connection
	}

	if raw.Migrations.Directory != "" {
		cfg.MigrationsDir = raw.Migrations.Directory
	}

	if raw.Migrations.TableName != "" {
		cfg.TableName = raw.Migrations.TableName
	}

	if raw.Migrations.DateFormat != "" {
		cfg.DateFormat = raw.Migrations.DateFormat
	}

	return cfg
}

// Write marshals cfg to a manifest at path, creating parent directories.
func Write(path string, cfg *Config) error {
	data, err := yaml.Marshal(&yamlConfig{
		Root: cfg.Root,
		Database: yamlDatabase{
			Client:     cfg.Client,
			Connection: cfg.Connection,
		},
		Migrations: yamlMigrations{
			Directory:  cfg.MigrationsDir,
			TableName:  cfg.TableName,
			DateFormat: cfg.DateFormat,
		},
	})
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // manifest is not secret
		return fmt.Errorf("writing config file %s: %w", path, err)
	}

	return nil
}

// MergeEnv overrides config fields from MIGRA_* environment variables.
func MergeEnv(cfg *Config) {
	if v := os.Getenv("MIGRA_DATABASE_URL"); v != "" {
		cfg.Connection = v
	}

	if v := os.Getenv("MIGRA_CLIENT"); v != "" {
		cfg.Client = v
	}

	if v := os.Getenv("MIGRA_MIGRATIONS_DIR"); v != "" {
		cfg.MigrationsDir = v
	}

	if v := os.Getenv("MIGRA_TABLE_NAME"); v != "" {
		cfg.TableName = v
	}
}

// ConnectionString resolves Connection, following a "$VAR" reference.
func (c *Config) ConnectionString() (string, error) {
	conn := c.Connection

	if name, ok := strings.CutPrefix(conn, "$"); ok {
		v, set := os.LookupEnv(name)
		if !set {
			return "", fmt.Errorf("%w: %s", ErrMissingEnvVar, name)
		}

		conn = v
	}

	if strings.TrimSpace(conn) == "" {
		return "", ErrDatabaseURLRequired
	}

	return conn, nil
}

// ClientKind returns the explicit client or the one detected from the
// connection string, falling back to Postgres.
func (c *Config) ClientKind() (database.Kind, error) {
	if c.Client != "" {
		return database.ParseKind(c.Client) //nolint:wrapcheck // sentinel already descriptive
	}

	if conn, err := c.ConnectionString(); err == nil {
		if kind, ok := database.DetectKind(conn); ok {
			return kind, nil
		}
	}

	return database.KindPostgres, nil
}

// RootPath is the directory holding migrations and ad-hoc SQL files.
func (c *Config) RootPath() string {
	return filepath.Join(c.ManifestDir, c.Root)
}

// MigrationsPath is the resolved migrations directory.
func (c *Config) MigrationsPath() string {
	dir, _ := expandOr(c.MigrationsDir, DefaultMigrationsDir)

	return filepath.Join(c.RootPath(), dir)
}

// MigrationsTable is the resolved bookkeeping table name.
func (c *Config) MigrationsTable() string {
	table, _ := expandOr(c.TableName, DefaultTableName)

	return table
}

// Warnings lists "$VAR" references that fell back to defaults.
func (c *Config) Warnings() []string {
	var warnings []string

	if _, ok := expandOr(c.MigrationsDir, DefaultMigrationsDir); !ok {
		warnings = append(warnings, fmt.Sprintf(
			"cannot read %s variable, using %q directory", strings.TrimPrefix(c.MigrationsDir, "$"), DefaultMigrationsDir))
	}

	if _, ok := expandOr(c.TableName, DefaultTableName); !ok {
		warnings = append(warnings, fmt.Sprintf(
			"cannot read %s variable, using %q table", strings.TrimPrefix(c.TableName, "$"), DefaultTableName))
	}

	return warnings
}

// expandOr resolves a "$VAR" reference, returning fallback and false when
// the variable is unset. Plain values are returned as is.
func expandOr(value, fallback string) (string, bool) {
	name, ok := strings.CutPrefix(value, "$")
	if !ok {
		return value, true
	}

	if v, set := os.LookupEnv(name); set && v != "" {
		return v, true
	}

	return fallback, false
}

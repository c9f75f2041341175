package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/aqasim81/migra/internal/config"
	"github.com/aqasim81/migra/internal/logging"
)

const version = "0.1.0"

// AppConfig holds the loaded configuration, set during PersistentPreRunE.
var AppConfig *config.Config //nolint:gochecknoglobals // standard Cobra pattern for shared config

// rootCmd is the base command for the migra CLI.
var rootCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:     "migra",
	Version: version,
	Short:   "Simple SQL migration manager",
	Long: `migra keeps plain SQL migrations in timestamped directories, records
applied ones in a bookkeeping table and upgrades or downgrades PostgreSQL,
MySQL and SQLite databases one migration at a time.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	registerGlobalFlags(rootCmd.PersistentFlags())
}

func registerGlobalFlags(flags *pflag.FlagSet) {
	flags.String("config", config.FileName, "path to migra.yml or its directory (searched upward when unset)")
	flags.String("database-url", "", "database connection string")
	flags.String("client", "", "database client: postgres, mysql or sqlite")
	flags.String("migrations-dir", "", "migrations directory, relative to the root directory")
	flags.String("table-name", "", "bookkeeping table name")
	flags.Bool("verbose", false, "enable debug logging")
}

// Execute runs the root command. Called from main.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads configuration with precedence: flag > env > file.
func loadConfig(cmd *cobra.Command) error {
	attachLogger(cmd)

	path, allowMissing, err := manifestLocation(cmd)
	if err != nil {
		return err
	}

	cfg, err := config.Load(path, allowMissing)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	config.MergeEnv(cfg)
	mergeFlags(cmd, cfg)

	for _, w := range cfg.Warnings() {
		fmt.Fprintln(cmd.ErrOrStderr(), "WARNING:", w)
	}

	logging.FromContext(cmd.Context()).Debug("configuration loaded", "manifest", path, "root", cfg.RootPath())

	AppConfig = cfg

	return nil
}

// manifestLocation picks the manifest to load. An explicit --config must
// exist; otherwise the nearest migra.yml above the working directory is
// used, falling back to defaults rooted at the working directory.
func manifestLocation(cmd *cobra.Command) (string, bool, error) {
	if cmd.Flags().Changed("config") {
		p, _ := cmd.Flags().GetString("config")

		return config.ManifestPath(p), false, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", false, fmt.Errorf("resolving working directory: %w", err)
	}

	found, err := config.Find(wd)
	if errors.Is(err, config.ErrManifestNotFound) {
		return filepath.Join(wd, config.FileName), true, nil
	}

	if err != nil {
		return "", false, fmt.Errorf("searching for %s: %w", config.FileName, err)
	}

	return found, false, nil
}

// mergeFlags overrides config with explicitly-set CLI flags.
func mergeFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("database-url") {
		cfg.Connection, _ = cmd.Flags().GetString("database-url")
	}

	if cmd.Flags().Changed("client") {
		cfg.Client, _ = cmd.Flags().GetString("client")
	}

	if cmd.Flags().Changed("migrations-dir") {
		cfg.MigrationsDir, _ = cmd.Flags().GetString("migrations-dir")
	}

	if cmd.Flags().Changed("table-name") {
		cfg.TableName, _ = cmd.Flags().GetString("table-name")
	}
}

// attachLogger stores a stderr logger in the command context.
func attachLogger(cmd *cobra.Command) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := logging.New(cmd.ErrOrStderr(), verbose)

	cmd.SetContext(logging.ContextWithLogger(commandContext(cmd), logger))
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}

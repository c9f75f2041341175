package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aqasim81/migra/internal/migration"
)

var makeCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "make NAME",
	Short: "Create a new migration directory",
	Long: `Create <migrations>/<timestamp>_<name>/ with template up.sql and down.sql
files. The name is lower-cased and every character outside [0-9a-z] becomes "_".`,
	Args: cobra.ExactArgs(1),
	RunE: runMake,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	rootCmd.AddCommand(makeCmd)
}

func runMake(cmd *cobra.Command, args []string) error {
	cfg := AppConfig

	path, err := migration.Scaffold(cfg.MigrationsPath(), args[0], time.Now(), cfg.DateFormat)
	if err != nil {
		return fmt.Errorf("making migration: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Structure for migration has been created in the %s\n", path)

	return nil
}

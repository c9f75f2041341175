package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/aqasim81/migra/internal/config"
)

var initCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "init",
	Short: "Create a migra.yml manifest",
	Long: `Write a default migra.yml to the path given by --config (the current
directory by default). An existing manifest is left untouched.`,
	Args: cobra.NoArgs,
	// The manifest may not exist yet, so skip loading it.
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		attachLogger(cmd)

		return nil
	},
	RunE: runInit,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	p, _ := cmd.Flags().GetString("config")
	if p == "" {
		p = config.FileName
	}

	path := config.ManifestPath(p)
	out := cmd.OutOrStdout()

	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(out, "%s already exists\n", path)

		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", path, err)
	}

	cfg := config.New()
	mergeFlags(cmd, cfg)

	if err := config.Write(path, cfg); err != nil {
		return err //nolint:wrapcheck // already carries the path
	}

	fmt.Fprintf(out, "Created %s\n", path)

	return nil
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aqasim81/migra/internal/executor"
)

var applyCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "apply FILE...",
	Short: "Run ad-hoc SQL files",
	Long: `Run SQL files against the database without recording them in the
bookkeeping table. Relative paths resolve against the root directory and
".sql" is appended when a path has no extension. Every file is read before
any SQL runs.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runApply,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	registerApplyFlags(applyCmd)
	rootCmd.AddCommand(applyCmd)
}

func registerApplyFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("single-transaction", false, "run all files in one transaction")
}

func runApply(cmd *cobra.Command, args []string) error {
	cfg := AppConfig
	ctx := commandContext(cmd)

	scripts, err := readScripts(cfg.RootPath(), args)
	if err != nil {
		return err
	}

	single, _ := cmd.Flags().GetBool("single-transaction")

	client, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeClient(ctx, client)

	exec := executor.New(client, nil,
		executor.WithSingleTransaction(single),
		executor.WithProgressCallback(printProgress(cmd.OutOrStdout())),
	)

	if err := exec.Apply(ctx, scripts); err != nil {
		return fmt.Errorf("apply failed: %w", err)
	}

	return nil
}

// readScripts loads every file up front so a missing file aborts before
// any SQL runs.
func readScripts(root string, paths []string) ([]executor.Script, error) {
	scripts := make([]executor.Script, 0, len(paths))

	for _, p := range paths {
		path := scriptPath(root, p)

		data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		scripts = append(scripts, executor.Script{Name: p, SQL: string(data)})
	}

	return scripts, nil
}

// scriptPath resolves p against root and defaults the extension to ".sql".
func scriptPath(root, p string) string {
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}

	if filepath.Ext(p) == "" {
		p += ".sql"
	}

	return p
}

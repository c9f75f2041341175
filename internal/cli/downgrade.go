package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aqasim81/migra/internal/executor"
)

var downgradeCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "downgrade",
	Short: "Revert applied migrations",
	Long: `Revert the most recently applied migration, or the last N with -n, or
every applied migration with --all. Reverts run newest first.`,
	Aliases: []string{"down"},
	Args:    cobra.NoArgs,
	RunE:    runDowngrade,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	registerDowngradeFlags(downgradeCmd)
	rootCmd.AddCommand(downgradeCmd)
}

func registerDowngradeFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("number", "n", 1, "revert the last N applied migrations")
	cmd.Flags().Bool("all", false, "revert every applied migration")
	cmd.Flags().Bool("single-transaction", false, "run all reverts in one transaction")
	cmd.MarkFlagsMutuallyExclusive("number", "all")
}

func runDowngrade(cmd *cobra.Command, _ []string) error {
	cfg := AppConfig
	ctx := commandContext(cmd)

	count, _ := cmd.Flags().GetInt("number")
	if count < 0 {
		return errNegativeNumber
	}

	revertAll, _ := cmd.Flags().GetBool("all")
	single, _ := cmd.Flags().GetBool("single-transaction")

	all, src, err := loadMigrations(cfg)
	if err != nil {
		return err
	}

	client, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeClient(ctx, client)

	exec := executor.New(client, src,
		executor.WithSingleTransaction(single),
		executor.WithProgressCallback(printProgress(cmd.OutOrStdout())),
	)

	if _, err := exec.Downgrade(ctx, all, executor.DowngradeOptions{Count: count, All: revertAll}); err != nil {
		return fmt.Errorf("downgrade failed: %w", err)
	}

	return nil
}

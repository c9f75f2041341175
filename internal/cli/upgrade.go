package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aqasim81/migra/internal/executor"
)

var upgradeCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "upgrade [NAME]",
	Short: "Apply pending migrations",
	Long: `Apply pending migrations in order. With NAME only that pending migration
is applied; with -n only the first N. Each migration runs in its own
transaction unless --single-transaction is set.`,
	Aliases: []string{"up"},
	Args:    cobra.MaximumNArgs(1),
	RunE:    runUpgrade,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	registerUpgradeFlags(upgradeCmd)
	rootCmd.AddCommand(upgradeCmd)
}

func registerUpgradeFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("number", "n", 0, "apply at most N pending migrations (default all)")
	cmd.Flags().Bool("single-transaction", false, "run all migrations in one transaction")
}

func runUpgrade(cmd *cobra.Command, args []string) error {
	cfg := AppConfig
	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()

	var opts executor.UpgradeOptions
	if len(args) > 0 {
		opts.Target = args[0]
	}

	if cmd.Flags().Changed("number") {
		limit, _ := cmd.Flags().GetInt("number")
		if limit < 0 {
			return errNegativeNumber
		}

		opts.Limit = executor.Limit(limit)
	}

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
		executor.WithProgressCallback(printProgress(out)),
	)

	result, err := exec.Upgrade(ctx, all, opts)
	if err != nil {
		return fmt.Errorf("upgrade failed: %w", err)
	}

	switch {
	case result.UpToDate:
		fmt.Fprintln(out, "Up to date")
	case result.MissingTarget != "":
		fmt.Fprintf(cmd.ErrOrStderr(), "Cannot find migration with %q name\n", result.MissingTarget)
	}

	return nil
}

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aqasim81/migra/internal/database"
	"github.com/aqasim81/migra/internal/executor"
)

const emDash = "—"

var listCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "list",
	Short: "Show applied and pending migrations",
	Long: `Print applied migrations (newest first) and pending migrations (in the
order they would be applied). Without a database connection only the pending
list is printed.`,
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
	RunE:    runList,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	cfg := AppConfig
	ctx := commandContext(cmd)

	all, _, err := loadMigrations(cfg)
	if err != nil {
		return err
	}

	var mm database.MigrationManager

	client, err := connect(ctx, cfg)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "WARNING:", err)
		fmt.Fprintln(cmd.ErrOrStderr(), "WARNING: No connection to database")
	} else {
		defer closeClient(ctx, client)

		mm = client
	}

	status, err := executor.ReadStatus(ctx, mm, all)
	if err != nil {
		return fmt.Errorf("listing migrations: %w", err)
	}

	printStatus(cmd.OutOrStdout(), status)

	return nil
}

func printStatus(out io.Writer, status executor.Status) {
	if !status.Offline {
		printSection(out, "Applied migrations:", status.Applied.Names())
		fmt.Fprintln(out)
	}

	printSection(out, "Pending migrations:", status.Pending.Names())
}

func printSection(out io.Writer, title string, names []string) {
	fmt.Fprintln(out, title)

	if len(names) == 0 {
		fmt.Fprintln(out, emDash)

		return
	}

	for _, name := range names {
		fmt.Fprintln(out, name)
	}
}

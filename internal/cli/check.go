package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aqasim81/migra/internal/analyzer"
	"github.com/aqasim81/migra/internal/analyzer/rules"
	"github.com/aqasim81/migra/internal/database"
)

const maxStatementWidth = 120

var checkCmd = &cobra.Command{ //nolint:gochecknoglobals // standard Cobra pattern
	Use:   "check",
	Short: "Lint migrations for risky PostgreSQL statements",
	Long: `Parse every up.sql with the PostgreSQL parser and report statements that
lock tables, lose data or cannot run inside the per-migration transaction.
Reports findings with severity levels and suggests safer alternatives.
No database connection is needed.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() { //nolint:gochecknoinits // standard Cobra pattern for flag registration
	registerCheckFlags(checkCmd)
	rootCmd.AddCommand(checkCmd)
}

func registerCheckFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("fail-on-high", false, "exit with non-zero code if high/critical findings exist")
	cmd.Flags().String("min-severity", "low", "hide findings below this severity (low, medium, high, critical)")
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg := AppConfig
	out := cmd.OutOrStdout()

	kind, err := cfg.ClientKind()
	if err != nil {
		return err //nolint:wrapcheck // config sentinels are user-facing
	}

	if kind != database.KindPostgres {
		fmt.Fprintf(out, "check uses the PostgreSQL grammar; skipping %s migrations.\n", kind)

		return nil
	}

	minLabel, _ := cmd.Flags().GetString("min-severity")

	minSeverity, err := analyzer.ParseSeverity(minLabel)
	if err != nil {
		return err //nolint:wrapcheck // sentinel already descriptive
	}

	all, src, err := loadMigrations(cfg)
	if err != nil {
		return err
	}

	if all.IsEmpty() {
		fmt.Fprintln(out, "No migration files found.")

		return nil
	}

	a := analyzer.New(analyzer.WithRegistry(rules.NewDefaultRegistry()))

	results, err := a.AnalyzeAll(all, src)
	if err != nil {
		return fmt.Errorf("analyzing migrations: %w", err)
	}

	hasHighOrCritical := printAnalysisResults(out, results, minSeverity)

	failOnHigh, _ := cmd.Flags().GetBool("fail-on-high")
	if failOnHigh && hasHighOrCritical {
		return errHighSeverityFindings
	}

	return nil
}

// printAnalysisResults prints findings at or above minSeverity and reports
// whether any migration holds a high or critical finding.
func printAnalysisResults(out io.Writer, results []analyzer.Result, minSeverity analyzer.Severity) bool {
	totalFindings := 0
	migrationsWithFindings := 0
	hasHighOrCritical := false

	for _, r := range results {
		if r.HasHighOrCritical() {
			hasHighOrCritical = true
		}

		shown := visibleFindings(r.Findings, minSeverity)
		if len(shown) == 0 {
			continue
		}

		fmt.Fprintf(out, "\n=== %s ===\n", r.Name)

		for _, f := range shown {
			fmt.Fprintf(out, "  [%s] %s\n", f.Severity, f.Message)

			if f.Table != "" {
				fmt.Fprintf(out, "    Table: %s\n", f.Table)
			}

			fmt.Fprintf(out, "    Rule:  %s\n", f.Rule)

			if f.Statement != "" {
				fmt.Fprintf(out, "    SQL:   %s\n", analyzer.TruncateSQL(f.Statement, maxStatementWidth))
			}

			fmt.Fprintf(out, "    Fix:   %s\n\n", f.Suggestion)
		}

		totalFindings += len(shown)
		migrationsWithFindings++
	}

	if totalFindings == 0 {
		fmt.Fprintln(out, "No dangerous operations detected.")
	} else {
		fmt.Fprintf(out, "Found %d finding(s) across %d migration(s).\n", totalFindings, migrationsWithFindings)
	}

	return hasHighOrCritical
}

func visibleFindings(findings []analyzer.Finding, minSeverity analyzer.Severity) []analyzer.Finding {
	var shown []analyzer.Finding

	for _, f := range findings {
		if f.Severity >= minSeverity {
			shown = append(shown, f)
		}
	}

	return shown
}

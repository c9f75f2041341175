package rules

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/aqasim81/migra/internal/analyzer"
)

// NewCreateIndexRule flags CREATE INDEX, which blocks writes while it builds.
func NewCreateIndexRule() analyzer.Rule {
	return analyzer.NewRule("create-index-blocking", func(node *pg_query.Node, _ *analyzer.RuleContext) []analyzer.Finding {
		n, ok := node.Node.(*pg_query.Node_IndexStmt)
		if !ok || n.IndexStmt.Concurrent {
			return nil
		}

		return []analyzer.Finding{{
			Severity:   analyzer.Medium,
			Table:      analyzer.TableName(n.IndexStmt.Relation),
			Message:    "CREATE INDEX holds a SHARE lock and blocks writes until the build finishes",
			Suggestion: "Keep the index in a migration of its own so the lock is released as soon as it commits",
		}}
	})
}

// NewAlterColumnTypeRule flags ALTER COLUMN TYPE, which rewrites the table.
func NewAlterColumnTypeRule() analyzer.Rule {
	return alterTableRule("alter-column-type", pg_query.AlterTableType_AT_AlterColumnType, analyzer.Finding{
		Severity:   analyzer.High,
		Message:    "ALTER COLUMN TYPE rewrites the entire table while holding an ACCESS EXCLUSIVE lock",
		Suggestion: "Add a new column, backfill it, then swap columns in a later migration",
	})
}

// NewSetNotNullRule flags SET NOT NULL, which scans the whole table.
func NewSetNotNullRule() analyzer.Rule {
	return alterTableRule("set-not-null", pg_query.AlterTableType_AT_SetNotNull, analyzer.Finding{
		Severity:   analyzer.Medium,
		Message:    "SET NOT NULL scans the whole table under an ACCESS EXCLUSIVE lock",
		Suggestion: "Add CHECK (col IS NOT NULL) NOT VALID, validate it in a later migration, then SET NOT NULL",
	})
}

// NewAddConstraintRule flags CHECK and FOREIGN KEY constraints added without
// NOT VALID, which validate every existing row under the lock.
func NewAddConstraintRule() analyzer.Rule {
	return analyzer.NewRule("add-constraint-without-not-valid", func(node *pg_query.Node, _ *analyzer.RuleContext) []analyzer.Finding {
		n, ok := node.Node.(*pg_query.Node_AlterTableStmt)
		if !ok {
			return nil
		}

		var findings []analyzer.Finding

		for _, cmdNode := range n.AlterTableStmt.Cmds {
			cmd, ok := cmdNode.Node.(*pg_query.Node_AlterTableCmd)
			if !ok || cmd.AlterTableCmd.Subtype != pg_query.AlterTableType_AT_AddConstraint || cmd.AlterTableCmd.Def == nil {
				continue
			}

			c, ok := cmd.AlterTableCmd.Def.Node.(*pg_query.Node_Constraint)
			if !ok || c.Constraint.SkipValidation {
				continue
			}

			if c.Constraint.Contype != pg_query.ConstrType_CONSTR_CHECK && c.Constraint.Contype != pg_query.ConstrType_CONSTR_FOREIGN {
				continue
			}

			findings = append(findings, analyzer.Finding{
				Severity:   analyzer.High,
				Table:      analyzer.TableName(n.AlterTableStmt.Relation),
				Message:    "ADD CONSTRAINT without NOT VALID scans the entire table while holding a lock",
				Suggestion: "Add with NOT VALID, then VALIDATE CONSTRAINT in a later migration",
			})
		}

		return findings
	})
}

// NewLockTableRule flags explicit LOCK TABLE statements.
func NewLockTableRule() analyzer.Rule {
	return analyzer.NewRule("lock-table", func(node *pg_query.Node, _ *analyzer.RuleContext) []analyzer.Finding {
		n, ok := node.Node.(*pg_query.Node_LockStmt)
		if !ok {
			return nil
		}

		var findings []analyzer.Finding

		for _, rel := range n.LockStmt.Relations {
			rv, ok := rel.Node.(*pg_query.Node_RangeVar)
			if !ok {
				continue
			}

			findings = append(findings, analyzer.Finding{
				Severity:   analyzer.High,
				Table:      analyzer.TableName(rv.RangeVar),
				Message:    "explicit LOCK TABLE is held until the migration transaction commits",
				Suggestion: "Let PostgreSQL take the locks each statement needs",
			})
		}

		return findings
	})
}

// alterTableRule reports tmpl once per ALTER TABLE subcommand of the given type.
func alterTableRule(id string, subtype pg_query.AlterTableType, tmpl analyzer.Finding) analyzer.Rule {
	return analyzer.NewRule(id, func(node *pg_query.Node, _ *analyzer.RuleContext) []analyzer.Finding {
		n, ok := node.Node.(*pg_query.Node_AlterTableStmt)
		if !ok {
			return nil
		}

		var findings []analyzer.Finding

		for _, cmdNode := range n.AlterTableStmt.Cmds {
			cmd, ok := cmdNode.Node.(*pg_query.Node_AlterTableCmd)
			if !ok || cmd.AlterTableCmd.Subtype != subtype {
				continue
			}

			f := tmpl
			f.Table = analyzer.TableName(n.AlterTableStmt.Relation)
			findings = append(findings, f)
		}

		return findings
	})
}

package rules

import (
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/aqasim81/migra/internal/analyzer"
)

// NewDropTableRule flags DROP TABLE and TRUNCATE.
func NewDropTableRule() analyzer.Rule {
	return analyzer.NewRule("drop-table", func(node *pg_query.Node, _ *analyzer.RuleContext) []analyzer.Finding {
		switch n := node.Node.(type) {
		case *pg_query.Node_DropStmt:
			if n.DropStmt.RemoveType != pg_query.ObjectType_OBJECT_TABLE {
				return nil
			}

			return []analyzer.Finding{{
				Severity:   analyzer.Critical,
				Table:      strings.Join(dropTableNames(n.DropStmt), ", "),
				Message:    "DROP TABLE permanently deletes all data; the down migration cannot bring it back",
				Suggestion: "Take a backup and confirm no application code still reads the table",
			}}
		case *pg_query.Node_TruncateStmt:
			var tables []string

			for _, rel := range n.TruncateStmt.Relations {
				if rv, ok := rel.Node.(*pg_query.Node_RangeVar); ok {
					tables = append(tables, analyzer.TableName(rv.RangeVar))
				}
			}

			return []analyzer.Finding{{
				Severity:   analyzer.Critical,
				Table:      strings.Join(tables, ", "),
				Message:    "TRUNCATE removes every row and no down migration can restore them",
				Suggestion: "Take a backup before truncating production tables",
			}}
		default:
			return nil
		}
	})
}

// NewDropColumnRule flags ALTER TABLE ... DROP COLUMN.
func NewDropColumnRule() analyzer.Rule {
	return alterTableRule("drop-column", pg_query.AlterTableType_AT_DropColumn, analyzer.Finding{
		Severity:   analyzer.High,
		Message:    "DROP COLUMN deletes the column's data; the down migration can recreate the column but not its values",
		Suggestion: "Stop reading the column in application code first and drop it in a later release",
	})
}

// NewRenameRule flags RENAME of tables and columns.
func NewRenameRule() analyzer.Rule {
	return analyzer.NewRule("rename", func(node *pg_query.Node, _ *analyzer.RuleContext) []analyzer.Finding {
		n, ok := node.Node.(*pg_query.Node_RenameStmt)
		if !ok {
			return nil
		}

		var what string

		switch n.RenameStmt.RenameType {
		case pg_query.ObjectType_OBJECT_TABLE:
			what = "RENAME TABLE"
		case pg_query.ObjectType_OBJECT_COLUMN:
			what = "RENAME COLUMN"
		default:
			return nil
		}

		return []analyzer.Finding{{
			Severity:   analyzer.Medium,
			Table:      analyzer.TableName(n.RenameStmt.Relation),
			Message:    what + " breaks application code that still uses the old name",
			Suggestion: "Add the new name alongside the old one, migrate callers, then remove the old name",
		}}
	})
}

func dropTableNames(drop *pg_query.DropStmt) []string {
	var tables []string

	for _, obj := range drop.Objects {
		list, ok := obj.Node.(*pg_query.Node_List)
		if !ok {
			continue
		}

		var parts []string

		for _, item := range list.List.Items {
			if s, ok := item.Node.(*pg_query.Node_String_); ok {
				parts = append(parts, s.String_.Sval)
			}
		}

		if len(parts) > 0 {
			tables = append(tables, strings.Join(parts, "."))
		}
	}

	return tables
}

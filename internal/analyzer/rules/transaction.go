package rules

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/aqasim81/migra/internal/analyzer"
)

// Every migration body runs inside a transaction, so statements PostgreSQL
// refuses in a transaction block make the migration fail outright.

// NewNonTransactionalRule flags statements that cannot run in a transaction block.
func NewNonTransactionalRule() analyzer.Rule {
	return analyzer.NewRule("non-transactional", func(node *pg_query.Node, _ *analyzer.RuleContext) []analyzer.Finding {
		what, table := nonTransactional(node)
		if what == "" {
			return nil
		}

		return []analyzer.Finding{{
			Severity:   analyzer.Critical,
			Table:      table,
			Message:    what + " cannot run inside a transaction block, and migrations always run in one",
			Suggestion: "Run this statement outside migra, for example with `psql`, after the migration is applied",
		}}
	})
}

func nonTransactional(node *pg_query.Node) (string, string) {
	switch n := node.Node.(type) {
	case *pg_query.Node_IndexStmt:
		if n.IndexStmt.Concurrent {
			return "CREATE INDEX CONCURRENTLY", analyzer.TableName(n.IndexStmt.Relation)
		}
	case *pg_query.Node_DropStmt:
		if n.DropStmt.Concurrent {
			return "DROP INDEX CONCURRENTLY", ""
		}
	case *pg_query.Node_ReindexStmt:
		if hasOption(n.ReindexStmt.Params, "concurrently") {
			return "REINDEX CONCURRENTLY", analyzer.TableName(n.ReindexStmt.Relation)
		}
	case *pg_query.Node_VacuumStmt:
		if n.VacuumStmt.IsVacuumcmd {
			return "VACUUM", vacuumTable(n.VacuumStmt)
		}
	case *pg_query.Node_CreatedbStmt:
		return "CREATE DATABASE", ""
	case *pg_query.Node_DropdbStmt:
		return "DROP DATABASE", ""
	case *pg_query.Node_AlterSystemStmt:
		return "ALTER SYSTEM", ""
	case *pg_query.Node_CreateTableSpaceStmt:
		return "CREATE TABLESPACE", ""
	case *pg_query.Node_DropTableSpaceStmt:
		return "DROP TABLESPACE", ""
	}

	return "", ""
}

// NewTransactionControlRule flags explicit BEGIN, COMMIT and ROLLBACK.
func NewTransactionControlRule() analyzer.Rule {
	return analyzer.NewRule("transaction-control", func(node *pg_query.Node, _ *analyzer.RuleContext) []analyzer.Finding {
		n, ok := node.Node.(*pg_query.Node_TransactionStmt)
		if !ok {
			return nil
		}

		switch n.TransactionStmt.Kind {
		case pg_query.TransactionStmtKind_TRANS_STMT_BEGIN,
			pg_query.TransactionStmtKind_TRANS_STMT_START,
			pg_query.TransactionStmtKind_TRANS_STMT_COMMIT,
			pg_query.TransactionStmtKind_TRANS_STMT_ROLLBACK:
		default:
			return nil
		}

		return []analyzer.Finding{{
			Severity:   analyzer.High,
			Message:    "explicit transaction control ends the transaction migra opened, so the bookkeeping row is no longer atomic with the body",
			Suggestion: "Remove BEGIN/COMMIT/ROLLBACK and use --single-transaction to group migrations",
		}}
	})
}

func hasOption(params []*pg_query.Node, name string) bool {
	for _, p := range params {
		if de, ok := p.Node.(*pg_query.Node_DefElem); ok && de.DefElem.Defname == name {
			return true
		}
	}

	return false
}

func vacuumTable(v *pg_query.VacuumStmt) string {
	for _, rel := range v.Rels {
		vr, ok := rel.Node.(*pg_query.Node_VacuumRelation)
		if ok && vr.VacuumRelation.Relation != nil {
			return analyzer.TableName(vr.VacuumRelation.Relation)
		}
	}

	return "<all tables>"
}

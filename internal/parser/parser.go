package parser //nolint:revive // intentional: does not conflict with go/parser in internal package

import (
	"errors"
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// ErrSyntax indicates the SQL is not valid PostgreSQL.
var ErrSyntax = errors.New("invalid PostgreSQL syntax")

// ParseResult holds the parsed AST and original SQL.
type ParseResult struct {
	Stmts []*pg_query.RawStmt
	SQL   string
}

// Parse parses a PostgreSQL SQL string and returns the AST.
// Returns an empty result (zero statements) for empty or whitespace-only input.
func Parse(sql string) (*ParseResult, error) {
	if strings.TrimSpace(sql) == "" {
		return &ParseResult{SQL: sql}, nil
	}

	tree, err := pg_query.Parse(sql)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
	}

	return &ParseResult{
		Stmts: tree.Stmts,
		SQL:   sql,
	}, nil
}

// Text returns the source text of statement i, trimmed, or "" when i is
// out of range.
func (r *ParseResult) Text(i int) string {
	if i < 0 || i >= len(r.Stmts) {
		return ""
	}

	start := int(r.Stmts[i].StmtLocation)
	end := len(r.SQL)

	if length := int(r.Stmts[i].StmtLen); length > 0 {
		end = start + length
	}

	if start > len(r.SQL) || end > len(r.SQL) || start >= end {
		return ""
	}

	return strings.TrimSpace(r.SQL[start:end])
}

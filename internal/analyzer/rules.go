package analyzer

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// Rule inspects one parsed statement.
type Rule interface {
	// ID returns a unique kebab-case identifier for this rule.
	ID() string
	// Check examines a single parsed statement and returns any findings.
	Check(stmt *pg_query.RawStmt, ctx *RuleContext) []Finding
}

// RuleContext provides contextual information to rules during analysis.
type RuleContext struct {
	Migration string
	StmtIndex int
}

// CheckFunc is the body of a rule built with NewRule.
type CheckFunc func(node *pg_query.Node, ctx *RuleContext) []Finding

type funcRule struct {
	id    string
	check CheckFunc
}

// NewRule builds a Rule from an ID and a check over the statement node.
// Findings without a Rule field are stamped with id.
func NewRule(id string, check CheckFunc) Rule {
	return &funcRule{id: id, check: check}
}

func (r *funcRule) ID() string { return r.id }

func (r *funcRule) Check(stmt *pg_query.RawStmt, ctx *RuleContext) []Finding {
	if stmt == nil || stmt.Stmt == nil {
		return nil
	}

	findings := r.check(stmt.Stmt, ctx)
	for i := range findings {
		if findings[i].Rule == "" {
			findings[i].Rule = r.id
		}

		findings[i].StmtIndex = ctx.StmtIndex
	}

	return findings
}

// Registry holds a collection of rules.
type Registry struct {
	rules []Rule
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a rule to the registry.
func (r *Registry) Register(rule Rule) {
	r.rules = append(r.rules, rule)
}

// Rules returns all registered rules.
func (r *Registry) Rules() []Rule {
	return r.rules
}

// TableName extracts a qualified table name from a RangeVar.
func TableName(rv *pg_query.RangeVar) string {
	if rv == nil {
		return "<unknown>"
	}

	if rv.Schemaname != "" {
		return rv.Schemaname + "." + rv.Relname
	}

	return rv.Relname
}

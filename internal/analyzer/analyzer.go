package analyzer

import (
	"fmt"

	"github.com/aqasim81/migra/internal/migration"
	"github.com/aqasim81/migra/internal/parser"
)

// Option configures the Analyzer.
type Option func(*Analyzer)

// Analyzer runs registered rules against the up bodies of migrations.
type Analyzer struct {
	registry *Registry
	parseFn  func(string) (*parser.ParseResult, error)
}

// New creates a new Analyzer with the given options.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		registry: NewRegistry(),
		parseFn:  parser.Parse,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// WithRegistry sets a custom rule registry.
func WithRegistry(r *Registry) Option {
	return func(a *Analyzer) { a.registry = r }
}

// WithParser overrides the SQL parser function (useful for testing).
func WithParser(fn func(string) (*parser.ParseResult, error)) Option {
	return func(a *Analyzer) { a.parseFn = fn }
}

// Analyze parses sql and runs every rule over each statement.
func (a *Analyzer) Analyze(name, sql string) (*Result, error) {
	parsed, err := a.parseFn(sql)
	if err != nil {
		return nil, fmt.Errorf("parsing migration %s: %w", name, err)
	}

	result := &Result{Name: name, MaxSeverity: Safe}

	for i, stmt := range parsed.Stmts {
		ctx := &RuleContext{Migration: name, StmtIndex: i}
		text := parsed.Text(i)

		for _, rule := range a.registry.Rules() {
			for _, f := range rule.Check(stmt, ctx) {
				f.Statement = text
				result.add(f)
			}
		}
	}

	return result, nil
}

// BodyReader reads the up body of a named migration.
type BodyReader interface {
	ReadUp(name string) (string, error)
}

// AnalyzeAll analyzes every migration in all, in order.
func (a *Analyzer) AnalyzeAll(all migration.Set, src BodyReader) ([]Result, error) {
	results := make([]Result, 0, all.Len())

	for _, name := range all.Names() {
		sql, err := src.ReadUp(name)
		if err != nil {
			return nil, fmt.Errorf("migration %s: %w", name, err)
		}

		r, err := a.Analyze(name, sql)
		if err != nil {
			return nil, err
		}

		results = append(results, *r)
	}

	return results, nil
}

package rules

import "github.com/aqasim81/migra/internal/analyzer"

// NewDefaultRegistry returns a Registry with all built-in rules.
func NewDefaultRegistry() *analyzer.Registry {
	r := analyzer.NewRegistry()
	r.Register(NewNonTransactionalRule())
	r.Register(NewTransactionControlRule())
	r.Register(NewCreateIndexRule())
	r.Register(NewAlterColumnTypeRule())
	r.Register(NewSetNotNullRule())
	r.Register(NewAddConstraintRule())
	r.Register(NewLockTableRule())
	r.Register(NewDropTableRule())
	r.Register(NewDropColumnRule())
	r.Register(NewRenameRule())

	return r
}

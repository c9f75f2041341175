package analyzer

// Finding represents a single risky pattern detected in a migration.
type Finding struct {
	Rule       string   // Rule ID (e.g., "non-transactional")
	Severity   Severity // Danger level
	Table      string   // Affected table name
	Statement  string   // The SQL statement text
	Message    string   // Human-readable description of the danger
	Suggestion string   // Safer alternative
	StmtIndex  int      // Index in the migration's statement list (0-based)
}

// Result holds all findings for a single migration.
type Result struct {
	Name        string
	Findings    []Finding
	MaxSeverity Severity // Highest severity across all findings
}

func (r *Result) add(f Finding) {
	if f.Severity > r.MaxSeverity {
		r.MaxSeverity = f.Severity
	}

	r.Findings = append(r.Findings, f)
}

// HasHighOrCritical returns true if any finding is High or Critical severity.
func (r *Result) HasHighOrCritical() bool {
	return r.MaxSeverity >= High
}

// TruncateSQL truncates a SQL string to maxLen characters for display.
// A maxLen below 4 leaves the string untouched.
func TruncateSQL(sql string, maxLen int) string {
	if len(sql) <= maxLen || maxLen < 4 {
		return sql
	}

	return sql[:maxLen-3] + "..."
}

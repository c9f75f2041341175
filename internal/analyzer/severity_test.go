package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqasim81/migra/internal/analyzer"
)

func TestSeverity_String_allLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		severity analyzer.Severity
		expected string
	}{
		{analyzer.Safe, "SAFE"},
		{analyzer.Low, "LOW"},
		{analyzer.Medium, "MEDIUM"},
		{analyzer.High, "HIGH"},
		{analyzer.Critical, "CRITICAL"},
		{analyzer.Severity(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.expected, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.severity.String())
		})
	}
}

func TestParseSeverity(t *testing.T) {
	t.Parallel()

	got, err := analyzer.ParseSeverity("medium")
	require.NoError(t, err)
	assert.Equal(t, analyzer.Medium, got)

	got, err = analyzer.ParseSeverity("CRITICAL")
	require.NoError(t, err)
	assert.Equal(t, analyzer.Critical, got)

	_, err = analyzer.ParseSeverity("severe")
	require.ErrorIs(t, err, analyzer.ErrUnknownSeverity)
}

func TestHasHighOrCritical(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		severity analyzer.Severity
		expected bool
	}{
		{"safe", analyzer.Safe, false},
		{"low", analyzer.Low, false},
		{"medium", analyzer.Medium, false},
		{"high", analyzer.High, true},
		{"critical", analyzer.Critical, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := &analyzer.Result{MaxSeverity: tt.severity}
			assert.Equal(t, tt.expected, r.HasHighOrCritical())
		})
	}
}

func TestTruncateSQL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "SELECT 1", analyzer.TruncateSQL("SELECT 1", 100))
	assert.Equal(t, "SELECT 1", analyzer.TruncateSQL("SELECT 1", 8))
	assert.Equal(t, "SELECT * FROM ver...", analyzer.TruncateSQL("SELECT * FROM very_long_table_name WHERE id = 1", 20))
	assert.Equal(t, "SELECT 1", analyzer.TruncateSQL("SELECT 1", 3))
}

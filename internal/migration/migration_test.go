package migration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aqasim81/migra/internal/migration"
)

func TestNewSet_dropsDuplicates(t *testing.T) {
	t.Parallel()

	s := migration.NewSet("001_a", "002_b", "001_a")

	assert.Equal(t, []string{"001_a", "002_b"}, s.Names())
	assert.Equal(t, 2, s.Len())
}

func TestSet_Contains(t *testing.T) {
	t.Parallel()

	s := migration.NewSet("001_a", "002_b")

	assert.True(t, s.Contains("001_a"))
	assert.False(t, s.Contains("003_c"))
	assert.False(t, migration.NewSet().Contains("001_a"))
}

func TestSet_Exclude(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		left     []string
		right    []string
		expected []string
	}{
		{
			name:     "removes applied and keeps left order",
			left:     []string{"001", "002", "003", "004"},
			right:    []string{"003", "001"},
			expected: []string{"002", "004"},
		},
		{
			name:     "set minus itself is empty",
			left:     []string{"001", "002"},
			right:    []string{"001", "002"},
			expected: []string{},
		},
		{
			name:     "set minus empty is unchanged",
			left:     []string{"002", "001"},
			right:    nil,
			expected: []string{"002", "001"},
		},
		{
			name:     "names missing on the left are ignored",
			left:     []string{"001"},
			right:    []string{"999"},
			expected: []string{"001"},
		},
		{
			name:     "empty left stays empty",
			left:     nil,
			right:    []string{"001"},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := migration.NewSet(tt.left...).Exclude(migration.NewSet(tt.right...))

			assert.Equal(t, tt.expected, got.Names())
		})
	}
}

func TestSet_Exclude_doesNotMutateOperands(t *testing.T) {
	t.Parallel()

	left := migration.NewSet("001", "002")
	right := migration.NewSet("001")

	_ = left.Exclude(right)

	assert.Equal(t, []string{"001", "002"}, left.Names())
	assert.Equal(t, []string{"001"}, right.Names())
}

func TestSet_Head(t *testing.T) {
	t.Parallel()

	s := migration.NewSet("001", "002", "003")

	assert.Equal(t, []string{"001", "002"}, s.Head(2).Names())
	assert.Equal(t, []string{"001", "002", "003"}, s.Head(10).Names())
	assert.True(t, s.Head(0).IsEmpty())
	assert.True(t, s.Head(-1).IsEmpty())
}

func TestSet_Find(t *testing.T) {
	t.Parallel()

	s := migration.NewSet("001_a", "002_b")

	r, ok := s.Find("002_b")
	assert.True(t, ok)
	assert.Equal(t, migration.Record{Name: "002_b"}, r)

	_, ok = s.Find("nope")
	assert.False(t, ok)
}

func TestSet_Records_returnsCopy(t *testing.T) {
	t.Parallel()

	s := migration.NewSet("001")
	records := s.Records()
	records[0].Name = "changed"

	assert.Equal(t, []string{"001"}, s.Names())
}

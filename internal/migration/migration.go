package migration

// Record identifies a single migration. Name is the directory name on disk
// (e.g., "210218232851_create_articles") and is the only field used for
// equality and ordering.
type Record struct {
	Name string
}

// Set is an ordered collection of migration records with unique names.
// The order is whatever the producer chose: lexical for on-disk sets,
// most-recent-first for sets read from the bookkeeping table.
type Set struct {
	records []Record
}

// NewSet builds a Set from names, keeping the given order.
// Later duplicates of a name are dropped.
func NewSet(names ...string) Set {
	s := Set{records: make([]Record, 0, len(names))}

	seen := make(map[string]struct{}, len(names))

	for _, n := range names {
		if _, dup := seen[n]; dup {
			continue
		}

		seen[n] = struct{}{}
		s.records = append(s.records, Record{Name: n})
	}

	return s
}

// Len returns the number of records in the set.
func (s Set) Len() int {
	return len(s.records)
}

// IsEmpty reports whether the set has no records.
func (s Set) IsEmpty() bool {
	return len(s.records) == 0
}

// Records returns a copy of the records in set order.
func (s Set) Records() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)

	return out
}

// Names returns the record names in set order.
func (s Set) Names() []string {
	names := make([]string, len(s.records))
	for i, r := range s.records {
		names[i] = r.Name
	}

	return names
}

// Contains reports whether a record with the given name is in the set.
func (s Set) Contains(name string) bool {
	_, ok := s.Find(name)

	return ok
}

// Find returns the record with the given name.
func (s Set) Find(name string) (Record, bool) {
	for _, r := range s.records {
		if r.Name == name {
			return r, true
		}
	}

	return Record{}, false
}

// Exclude returns the records of s whose names are not in other,
// preserving the order of s.
func (s Set) Exclude(other Set) Set {
	skip := make(map[string]struct{}, other.Len())
	for _, r := range other.records {
		skip[r.Name] = struct{}{}
	}

	out := Set{records: make([]Record, 0, len(s.records))}

	for _, r := range s.records {
		if _, found := skip[r.Name]; found {
			continue
		}

		out.records = append(out.records, r)
	}

	return out
}

// Head returns the first n records. n is clamped to [0, Len()].
func (s Set) Head(n int) Set {
	n = max(0, min(n, len(s.records)))

	out := Set{records: make([]Record, n)}
	copy(out.records, s.records[:n])

	return out
}

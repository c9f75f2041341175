package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
)

// File names every migration directory must contain.
const (
	UpFileName   = "up.sql"
	DownFileName = "down.sql"
)

// LoadFromDir scans dir for immediate subdirectories holding both an up.sql
// and a down.sql file, and returns them as a Set sorted lexically by
// directory name. A missing directory yields an empty Set.
func LoadFromDir(dir string) (Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewSet(), nil
		}

		return Set{}, fmt.Errorf("reading migrations directory %s: %w", dir, err)
	}

	var names []string

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		ok, err := isMigrationDir(filepath.Join(dir, entry.Name()))
		if err != nil {
			return Set{}, err
		}

		if ok {
			names = append(names, entry.Name())
		}
	}

	slices.Sort(names)

	return NewSet(names...), nil
}

// isMigrationDir reports whether path contains both migration files.
func isMigrationDir(path string) (bool, error) {
	for _, name := range []string{UpFileName, DownFileName} {
		info, err := os.Stat(filepath.Join(path, name))
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}

		if err != nil {
			return false, fmt.Errorf("inspecting migration directory %s: %w", path, err)
		}

		if info.IsDir() {
			return false, nil
		}
	}

	return true, nil
}

// Source reads migration bodies from the directory they were discovered in.
type Source struct {
	Dir string
}

// NewSource returns a Source rooted at dir.
func NewSource(dir string) *Source {
	return &Source{Dir: dir}
}

// ReadUp returns the contents of the migration's up.sql.
func (s *Source) ReadUp(name string) (string, error) {
	return s.read(name, UpFileName)
}

// ReadDown returns the contents of the migration's down.sql.
func (s *Source) ReadDown(name string) (string, error) {
	return s.read(name, DownFileName)
}

func (s *Source) read(name, file string) (string, error) {
	path := filepath.Join(s.Dir, name, file)

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading migration file %s: %w", path, err)
	}

	return string(data), nil
}

package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultDateLayout prefixes new migration directories, e.g. "210218232851".
const DefaultDateLayout = "060102150405"

const (
	upTemplate   = "-- Your SQL goes here\n\n"
	downTemplate = "-- This file should undo anything in `up.sql`\n\n"
)

// ErrEmptyName indicates a migration name with no usable characters.
var ErrEmptyName = errors.New("migration name is empty")

// ErrStrftimeLayout indicates a date format written with strftime
// directives instead of a Go time layout.
var ErrStrftimeLayout = errors.New("date_format must be a Go time layout such as " + DefaultDateLayout + ", not strftime")

// Slug lower-cases name and replaces every character outside [0-9a-z] with "_".
func Slug(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z':
			return r
		default:
			return '_'
		}
	}, strings.ToLower(name))
}

// Scaffold creates <dir>/<timestamp>_<slug>/ with template up.sql and
// down.sql files. Existing files are left untouched. It returns the path
// of the migration directory.
func Scaffold(dir, name string, now time.Time, layout string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", ErrEmptyName
	}

	if layout == "" {
		layout = DefaultDateLayout
	}

	if strings.Contains(layout, "%") {
		return "", fmt.Errorf("%w: %q", ErrStrftimeLayout, layout)
	}

	path := filepath.Join(dir, now.Format(layout)+"_"+Slug(name))

	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", fmt.Errorf("creating migration directory %s: %w", path, err)
	}

	if err := writeIfMissing(filepath.Join(path, UpFileName), upTemplate); err != nil {
		return "", err
	}

	if err := writeIfMissing(filepath.Join(path, DownFileName), downTemplate); err != nil {
		return "", err
	}

	return path, nil
}

func writeIfMissing(path, content string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}

	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("inspecting %s: %w", path, err)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}

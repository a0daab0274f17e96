package staticmap

import (
	"fmt"
	"strings"
)

// StyleTable maps the user-facing map type labels, in dropdown order, to
// provider style identifiers or service paths. It is immutable once built.
type StyleTable struct {
	options []string
	paths   map[string]string
}

// NewStyleTable validates that every option has a non-empty path and that
// no option is listed twice.
func NewStyleTable(options []string, paths map[string]string) (StyleTable, error) {
	if len(options) == 0 {
		return StyleTable{}, fmt.Errorf("style table: no options")
	}

	var errs []string
	seen := make(map[string]bool, len(options))
	table := StyleTable{
		options: make([]string, 0, len(options)),
		paths:   make(map[string]string, len(options)),
	}
	for _, label := range options {
		if seen[label] {
			errs = append(errs, fmt.Sprintf("%q: duplicate option", label))
			continue
		}
		seen[label] = true

		path := strings.TrimSpace(paths[label])
		if path == "" {
			errs = append(errs, fmt.Sprintf("%q: no service path", label))
			continue
		}
		table.options = append(table.options, label)
		table.paths[label] = path
	}
	for label := range paths {
		if !seen[label] {
			errs = append(errs, fmt.Sprintf("%q: path without dropdown option", label))
		}
	}

	if len(errs) > 0 {
		return StyleTable{}, fmt.Errorf("style table invalid:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return table, nil
}

// MustStyleTable is NewStyleTable for the built-in tables.
func MustStyleTable(options []string, paths map[string]string) StyleTable {
	t, err := NewStyleTable(options, paths)
	if err != nil {
		panic(err)
	}
	return t
}

// Options returns the labels in dropdown order.
func (t StyleTable) Options() []string {
	out := make([]string, len(t.options))
	copy(out, t.options)
	return out
}

// Lookup returns the path for label or ErrUnknownStyle.
func (t StyleTable) Lookup(label string) (string, error) {
	path, ok := t.paths[label]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStyle, label)
	}
	return path, nil
}

// Index returns the dropdown position of label, or -1.
func (t StyleTable) Index(label string) int {
	for i, opt := range t.options {
		if opt == label {
			return i
		}
	}
	return -1
}

package watch

import (
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"dropsort/internal/errors"
)

// Filter drops creation events before any stability probing happens.
// Browser partial-download markers are expected to be renamed away
// shortly, not dispatched, so they never advance the debounce clock.
type Filter struct {
	patterns []glob.Glob
}

// NewFilter compiles one ignore pattern per temporary extension, plus a
// hidden-file pattern when ignoreHidden is set. Extensions gain a
// leading dot when missing.
func NewFilter(tempExtensions []string, ignoreHidden bool) (*Filter, error) {
	patterns := make([]glob.Glob, 0, len(tempExtensions)+1)

	for _, ext := range tempExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		g, err := glob.Compile("*" + ext)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot compile ignore pattern for %q", ext)
		}
		patterns = append(patterns, g)
	}

	if ignoreHidden {
		g, err := glob.Compile(".*")
		if err != nil {
			return nil, errors.Wrap(err, "cannot compile hidden file pattern")
		}
		patterns = append(patterns, g)
	}

	return &Filter{patterns: patterns}, nil
}

// Ignore reports whether path should be dropped without a stability
// check. Patterns match against the lowercased base name only.
func (f *Filter) Ignore(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	for _, g := range f.patterns {
		if g.Match(name) {
			return true
		}
	}
	return false
}

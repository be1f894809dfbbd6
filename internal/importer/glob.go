package importer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// ExpandGlobs resolves file paths and doublestar patterns ("notes/**/*.md")
// into a de-duplicated list of files, in pattern order. A plain path must
// exist; a pattern that matches nothing is an error.
func ExpandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, pattern := range patterns {
		if info, err := os.Stat(pattern); err == nil {
			if info.IsDir() {
				return nil, fmt.Errorf("%s is a directory (use %s)", pattern, filepath.Join(pattern, "**", "*.md"))
			}
			add(pattern)
			continue
		}
		if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
			return nil, fmt.Errorf("invalid pattern %q", pattern)
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%q matched no files", pattern)
		}
		for _, m := range matches {
			add(m)
		}
	}
	return out, nil
}

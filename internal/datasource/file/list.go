package file

import (
	"fmt"
	"path/filepath"
	"sort"
)

// ListPattern returns the files in dir whose base name matches the glob
// pattern, sorted lexically so runs over the same inputs are deterministic.
func ListPattern(dir, pattern string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("list %s/%s: %w", dir, pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

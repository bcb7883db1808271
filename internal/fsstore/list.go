package fsstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ListJSONFiles returns the JSON file names under dir (not full paths),
// sorted for stable iteration. A missing directory is not an error.
func ListJSONFiles(dir string) ([]string, error) {
	normalized, err := normalizePath(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(normalized)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("fsstore list %s: %w", normalized, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

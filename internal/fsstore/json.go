package fsstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ReadJSON decodes the file into out. It reports found=false, with no
// error and out untouched, when the file is missing or blank, so
// callers can fall back to defaults.
func ReadJSON(path string, out any) (bool, error) {
	p, err := normalizePath(path)
	if err != nil {
		return false, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("fsstore: read %s: %w", p, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrDecodeFailed, p, err)
	}
	return true, nil
}

// WriteJSONAtomic marshals v (indented, trailing newline) and writes it
// atomically.
func WriteJSONAtomic(path string, v any, opts FileOptions) error {
	p, err := normalizePath(path)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrEncodeFailed, p, err)
	}
	return writeAtomic(p, append(data, '\n'), opts)
}

package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidatePath checks that path resolves to a location inside baseDir and
// returns the resolved path. Symlinks are followed on both sides.
func ValidatePath(path, baseDir string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("invalid upload path: %w", err)
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("invalid upload directory: %w", err)
	}

	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return "", fmt.Errorf("cannot resolve upload path: %w", err)
	}
	resolvedBase, err := filepath.EvalSymlinks(absBase)
	if err != nil {
		return "", fmt.Errorf("cannot resolve upload directory: %w", err)
	}

	rel, err := filepath.Rel(resolvedBase, resolved)
	if err != nil {
		return "", fmt.Errorf("cannot compute relative path: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("upload path escapes upload directory: %s", rel)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("upload does not exist: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("upload path is a directory: %s", resolved)
	}
	return resolved, nil
}

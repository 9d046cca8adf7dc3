// Package security validates user-supplied file paths before they are opened.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsafePath is returned for paths that are empty, contain shell
// metacharacters or escape their base directory.
var ErrUnsafePath = errors.New("unsafe file path")

var forbiddenChars = []string{";", "&", "|", "$", "`", "(", ")", "{", "}", "<", ">", "!", "\n", "\r"}

// ValidateFilePath cleans path, makes it absolute and resolves symlinks when
// the file exists.
func ValidateFilePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("%w: empty", ErrUnsafePath)
	}
	for _, c := range forbiddenChars {
		if strings.Contains(path, c) {
			return "", fmt.Errorf("%w: %q contains %q", ErrUnsafePath, path, c)
		}
	}

	clean, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", path, err)
	}

	resolved, err := filepath.EvalSymlinks(clean)
	if err != nil {
		if os.IsNotExist(err) {
			return clean, nil
		}
		return "", fmt.Errorf("resolve %q: %w", path, err)
	}
	return resolved, nil
}

// ValidateFilePathInDir is ValidateFilePath plus a check that the result stays
// inside baseDir.
func ValidateFilePathInDir(path, baseDir string) (string, error) {
	if baseDir == "" {
		return "", fmt.Errorf("%w: empty base directory", ErrUnsafePath)
	}
	clean, err := ValidateFilePath(path)
	if err != nil {
		return "", err
	}
	base, err := ValidateFilePath(baseDir)
	if err != nil {
		return "", err
	}
	if clean != base && !strings.HasPrefix(clean, base+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s is outside %s", ErrUnsafePath, path, baseDir)
	}
	return clean, nil
}

// SafeReadFile reads path after validating it.
func SafeReadFile(path string) ([]byte, error) {
	clean, err := ValidateFilePath(path)
	if err != nil {
		return nil, err
	}
	// #nosec G304 - validated above
	return os.ReadFile(clean)
}

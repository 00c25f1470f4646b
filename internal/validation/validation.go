// Package validation checks user-supplied file names and archive entry
// paths before they touch the filesystem.
package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

const (
	// MaxFilenameLength is the longest accepted file name.
	MaxFilenameLength = 255
	// MaxPathLength is the longest accepted path.
	MaxPathLength = 4096
)

// Common validation errors.
var (
	ErrPathTraversal   = errors.New("path traversal detected")
	ErrInvalidFilename = errors.New("invalid filename")
	ErrEmptyPath       = errors.New("path cannot be empty")
)

// ValidateFilename rejects names that could act as paths: separators,
// parent references, null bytes and other control characters.
func ValidateFilename(name string) error {
	if name == "" {
		return ErrInvalidFilename
	}
	if len(name) > MaxFilenameLength {
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidFilename, MaxFilenameLength)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("%w: reserved name", ErrInvalidFilename)
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: path separator not allowed", ErrInvalidFilename)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidFilename)
		}
	}
	return nil
}

// SanitizePath validates a relative path against escaping baseDir and
// returns the cleaned path. Absolute paths and any path that resolves
// outside baseDir are rejected.
func SanitizePath(baseDir, userPath string) (string, error) {
	if userPath == "" {
		return "", ErrEmptyPath
	}
	if len(userPath) > MaxPathLength {
		return "", fmt.Errorf("%w: longer than %d bytes", ErrPathTraversal, MaxPathLength)
	}
	if strings.ContainsRune(userPath, 0) {
		return "", fmt.Errorf("%w: null byte not allowed", ErrInvalidFilename)
	}
	clean := filepath.Clean(userPath)
	if filepath.IsAbs(clean) {
		return "", fmt.Errorf("%w: absolute path not allowed", ErrPathTraversal)
	}
	rel, err := filepath.Rel(baseDir, filepath.Join(baseDir, clean))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}
	return clean, nil
}

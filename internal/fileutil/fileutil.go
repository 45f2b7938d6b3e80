// Package fileutil provides file and path utility functions.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Sentinel errors for file utility operations.
var (
	ErrExtensionEmpty         = errors.New("extension cannot be empty")
	ErrExtensionPathTraversal = errors.New("extension contains path separator or null byte")
)

// TaskDirPrefix names per-conversion scratch directories.
const TaskDirPrefix = "html2pptx-"

// Output extension for generated presentations.
const PresentationExt = ".pptx"

// TaskDir creates a unique scratch directory under root (os.TempDir()
// when empty), named html2pptx-<uuid>. The cleanup function removes it
// and everything inside.
func TaskDir(root string) (path string, cleanup func(), err error) {
	if root == "" {
		root = os.TempDir()
	}
	path = filepath.Join(root, TaskDirPrefix+uuid.NewString())
	if err := os.Mkdir(path, 0o700); err != nil {
		return "", nil, fmt.Errorf("creating task directory: %w", err)
	}
	return path, func() { _ = os.RemoveAll(path) }, nil
}

// ProbeWritable checks that dir accepts new files by writing and removing
// a small file with the given extension.
func ProbeWritable(dir, extension string) error {
	if err := ValidateExtension(extension); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(dir, TaskDirPrefix+"probe-*."+extension)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	path := tmpFile.Name()
	defer func() { _ = os.Remove(path) }()

	if _, writeErr := tmpFile.WriteString("probe"); writeErr != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("writing temp file: %w", writeErr)
	}
	if closeErr := tmpFile.Close(); closeErr != nil {
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	return nil
}

// ValidateExtension checks that the extension is safe for use in temp file names.
func ValidateExtension(extension string) error {
	if extension == "" {
		return ErrExtensionEmpty
	}
	if strings.ContainsAny(extension, "/\\\x00") {
		return ErrExtensionPathTraversal
	}
	return nil
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// IsFilePath returns true if the string looks like a file path rather than a name.
// A string containing path separators (/, \) is treated as a path.
//
// Examples:
//   - "work" -> false (name)
//   - "./deck.yaml" -> true (relative path)
//   - "/etc/html2pptx.yaml" -> true (absolute)
//   - "C:\decks\deck.yaml" -> true (Windows)
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// IsHTML reports whether path has an .html or .htm extension, in any case.
func IsHTML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	}
	return false
}

// OutputPath returns the .pptx path for input. An empty outDir keeps the
// input's directory.
func OutputPath(input, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + PresentationExt
	if outDir == "" {
		return filepath.Join(filepath.Dir(input), base)
	}
	return filepath.Join(outDir, base)
}

package filesystem

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// OSFileSystem implements shared.FileSystem using the operating system primitives.
type OSFileSystem struct{}

// Stat retrieves file metadata.
func (OSFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// MkdirAll ensures a directory hierarchy exists with the provided permissions.
func (OSFileSystem) MkdirAll(path string, permissions fs.FileMode) error {
	return os.MkdirAll(path, permissions)
}

// Remove deletes a single file. Missing files are not an error.
func (OSFileSystem) Remove(path string) error {
	removeError := os.Remove(path)
	if removeError != nil && !errors.Is(removeError, fs.ErrNotExist) {
		return removeError
	}
	return nil
}

// Glob returns the paths matching a shell pattern.
func (OSFileSystem) Glob(pattern string) ([]string, error) {
	return filepath.Glob(pattern)
}

// WriteFile writes data to a file with the supplied permissions.
func (OSFileSystem) WriteFile(path string, data []byte, permissions fs.FileMode) error {
	return os.WriteFile(path, data, permissions)
}

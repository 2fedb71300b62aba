// Package storage is the file-system abstraction behind the inbox importer
// and the Markdown exporter.
package storage

import "github.com/starford/tagnote/internal/models"

// Provider performs file operations relative to a root directory.
type Provider interface {
	// List returns metadata for the .md files directly inside dir.
	// Subdirectories are not descended into.
	List(dir string) ([]models.FileMetadata, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
}

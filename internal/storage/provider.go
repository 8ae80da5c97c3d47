// Package storage walks content directories and writes export artifacts.
package storage

import "context"

// Provider is the interface for content file operations.
type Provider interface {
	// Root returns the absolute content root.
	Root() string
	// Collect returns absolute paths of every file under the root ending in ext.
	Collect(ctx context.Context, ext string) ([]string, error)
	// Rel returns path relative to the content root.
	Rel(path string) (string, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
}

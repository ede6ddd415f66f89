package storage

import (
	"context"
	"io"
)

// Storage is the interface material files are stored behind.
// Implementations: S3Storage (MinIO/S3) and LocalStorage (dev fallback).
type Storage interface {
	// Save stores a file under the given key.
	Save(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Delete removes a file by key. Returns nil if the file doesn't exist.
	Delete(ctx context.Context, key string) error

	// Exists reports whether a file is stored under the key.
	Exists(ctx context.Context, key string) (bool, error)

	// GetURL returns the public URL for a stored key.
	GetURL(key string) string
}

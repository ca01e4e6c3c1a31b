package storage

import (
	"context"
	"io"
	"time"
)

// ImageStorage is the blob area artworks point into.
type ImageStorage interface {
	// Put stores r under fileName and returns the imagePath to record.
	Put(ctx context.Context, r io.Reader, fileName string) (string, error)
	// Import hands fill a local file path to write fileName's bytes to,
	// then stores that file and returns the imagePath to record.
	Import(ctx context.Context, fileName string, fill func(localPath string) error) (string, error)
	// Delete removes the blob behind imagePath. A blob that is already gone is not an error.
	Delete(ctx context.Context, imagePath string) error
	// Owns reports whether imagePath points into this blob area.
	Owns(imagePath string) bool
}

// BlobInfo describes a stored blob for housekeeping.
type BlobInfo struct {
	ImagePath string
	ModTime   time.Time
}

// Lister is implemented by blob areas that can enumerate their content.
type Lister interface {
	List(ctx context.Context) ([]BlobInfo, error)
}

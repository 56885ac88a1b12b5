// Package storage adapts an S3-compatible object store to the narrow blob
// interface the document pipeline needs: named binary objects with key-value
// metadata attached at write time.
package storage

import "context"

// ObjectInfo describes one stored object as seen by a listing.
type ObjectInfo struct {
	Key      string
	Metadata map[string]string
}

// BlobStore is the boundary to the object store. Implementations must treat
// metadata keys as case-insensitive (S3 lowercases them).
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Head(ctx context.Context, key string) (map[string]string, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]ObjectInfo, error)
}

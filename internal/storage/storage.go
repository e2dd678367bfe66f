// Package storage archives order receipts in S3-compatible object storage.
package storage

import (
	"context"
	"io"
)

// Object is a single upload. Size is the exact byte count, or -1 when unknown.
type Object struct {
	Key         string
	Body        io.Reader
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo describes a stored object as reported by the backend.
type ObjectInfo struct {
	Key  string
	Size int64
	ETag string
}

// Storage writes objects to a single bucket.
type Storage interface {
	Put(ctx context.Context, obj Object) (ObjectInfo, error)
}

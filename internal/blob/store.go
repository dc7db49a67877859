// Package blob stores uploaded images under opaque ids.
package blob

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("blob not found")

// Upload is an object to be stored.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Object is a stored blob. Callers must close Body.
type Object struct {
	ID          string
	ContentType string
	Size        int64
	Body        io.ReadCloser
}

type Store interface {
	Put(ctx context.Context, upload Upload) (string, error)
	Get(ctx context.Context, id string) (*Object, error)
	Delete(ctx context.Context, id string) error
}

func contentTypeOrDefault(ct string) string {
	if ct == "" {
		return "application/octet-stream"
	}
	return ct
}

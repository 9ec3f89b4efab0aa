// Package domain contains core types for the asset service.
package domain

import (
	"context"
	"errors"
	"io"
)

// Service stores product images in object storage and returns their
// public URL.
type Service interface {
	UploadProductImage(ctx context.Context, orgID int64, req UploadRequest) (*Asset, error)
	DeleteObject(ctx context.Context, key string) error
}

type UploadRequest struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Asset is a stored object.
type Asset struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

const MaxImageSize = 5 << 20

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrUnsupportedType     = errors.New("unsupported_content_type")
	ErrTooLarge            = errors.New("file_too_large")
	ErrNotConfigured       = errors.New("asset_storage_not_configured")
)

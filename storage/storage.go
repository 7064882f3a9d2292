// Package storage provides a uniform blob gateway over interchangeable image
// backends: a GridFS bucket embedded in the primary database, or an
// S3-compatible hosted object store.
package storage

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Loxfxgc/lost-and-found-children-reporting/config"
	"github.com/Loxfxgc/lost-and-found-children-reporting/models"
)

var (
	// ErrNotFound means the reference does not resolve to a stored blob.
	ErrNotFound = errors.New("image not found")
	// ErrValidation marks uploads rejected before any backend I/O.
	ErrValidation = errors.New("invalid upload")
)

// Gateway is the single contract the record layer talks to. Records store
// only the opaque PhotoReference it returns, never backend-specific fields.
type Gateway interface {
	Upload(ctx context.Context, data []byte, mimeType, originalName string) (*models.PhotoReference, error)
	Fetch(ctx context.Context, ref *models.PhotoReference) ([]byte, string, error)
	Delete(ctx context.Context, ref *models.PhotoReference) error
	// HealthCheck is advisory only; a failing probe never gates uploads.
	HealthCheck(ctx context.Context) error
	Kind() string
}

// UploadLimits are enforced by every backend before touching storage.
type UploadLimits struct {
	MaxBytes     int64
	AllowedTypes []string
}

func (l UploadLimits) check(size int64, mimeType string) error {
	if size == 0 {
		return fmt.Errorf("%w: empty file", ErrValidation)
	}
	if l.MaxBytes > 0 && size > l.MaxBytes {
		return fmt.Errorf("%w: file size %d exceeds limit of %d bytes", ErrValidation, size, l.MaxBytes)
	}
	for _, t := range l.AllowedTypes {
		if t == mimeType {
			return nil
		}
	}
	return fmt.Errorf("%w: file type %q not allowed, only images (jpeg, png, gif, webp) are supported", ErrValidation, mimeType)
}

// NewGateway selects the configured backend. Selection is runtime
// configuration, never an import swap.
func NewGateway(cfg *config.Config, db *mongo.Database) (Gateway, error) {
	limits := UploadLimits{MaxBytes: cfg.MaxUploadBytes, AllowedTypes: cfg.AllowedMimeTypes}
	switch cfg.BlobBackend {
	case config.BackendS3:
		return NewS3Store(cfg.S3, limits, cfg.MaxImageDimension)
	case config.BackendGridFS:
		return NewGridFSStore(db, limits)
	default:
		return nil, fmt.Errorf("storage: unknown blob backend %q", cfg.BlobBackend)
	}
}

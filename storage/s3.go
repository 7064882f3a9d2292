package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Loxfxgc/lost-and-found-children-reporting/config"
	"github.com/Loxfxgc/lost-and-found-children-reporting/models"
)

const s3KeyPrefix = "reports/"

// S3Store keeps images in an S3-compatible hosted object store. Oversized
// images are downscaled to fit the configured bounding box before upload,
// mirroring what the hosted image service used to do.
type S3Store struct {
	client     *minio.Client
	bucket     string
	region     string
	publicBase string
	limits     UploadLimits
	maxDim     int
}

func NewS3Store(cfg config.S3Config, limits UploadLimits, maxDim int) (*S3Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return &S3Store{
		client:     client,
		bucket:     cfg.Bucket,
		region:     cfg.Region,
		publicBase: strings.TrimRight(cfg.PublicBaseURL, "/"),
		limits:     limits,
		maxDim:     maxDim,
	}, nil
}

func (s *S3Store) Kind() string { return "s3" }

// EnsureBucket makes sure the image bucket exists before first use.
func (s *S3Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
			return fmt.Errorf("make bucket %s: %w", s.bucket, err)
		}
	}
	return nil
}

func (s *S3Store) Upload(ctx context.Context, data []byte, mimeType, originalName string) (*models.PhotoReference, error) {
	if err := s.limits.check(int64(len(data)), mimeType); err != nil {
		return nil, err
	}

	data = fitToBox(data, mimeType, s.maxDim)

	format := formatFromMime(mimeType)
	key := s3KeyPrefix + uuid.NewString() + "." + format
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: mimeType})
	if err != nil {
		return nil, fmt.Errorf("s3 upload: %w", err)
	}

	return &models.PhotoReference{
		Backend:   models.BackendHosted,
		PublicID:  key,
		SecureURL: s.publicBase + "/" + key,
		Format:    format,
	}, nil
}

func (s *S3Store) Fetch(ctx context.Context, ref *models.PhotoReference) ([]byte, string, error) {
	if ref == nil || ref.PublicID == "" {
		return nil, "", ErrNotFound
	}
	obj, err := s.client.GetObject(ctx, s.bucket, ref.PublicID, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("s3 get: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("s3 read: %w", err)
	}
	stat, err := obj.Stat()
	if err != nil {
		return data, "application/octet-stream", nil
	}
	return data, stat.ContentType, nil
}

func (s *S3Store) Delete(ctx context.Context, ref *models.PhotoReference) error {
	if ref == nil || ref.PublicID == "" {
		return ErrNotFound
	}
	if _, err := s.client.StatObject(ctx, s.bucket, ref.PublicID, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return ErrNotFound
		}
		return fmt.Errorf("s3 stat: %w", err)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, ref.PublicID, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("s3 remove: %w", err)
	}
	return nil
}

func (s *S3Store) HealthCheck(ctx context.Context) error {
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if _, err := s.client.BucketExists(pctx, s.bucket); err != nil {
		return fmt.Errorf("s3 health: %w", err)
	}
	return nil
}

// fitToBox downscales an image so both dimensions fit within maxDim,
// preserving aspect ratio. Inputs that cannot be decoded (notably webp, which
// has no registered decoder) or already fit are passed through unchanged.
func fitToBox(data []byte, mimeType string, maxDim int) []byte {
	if maxDim <= 0 {
		return data
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}
	bounds := img.Bounds()
	if bounds.Dx() <= maxDim && bounds.Dy() <= maxDim {
		return data
	}

	resized := imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)

	var format imaging.Format
	switch mimeType {
	case "image/png":
		format = imaging.PNG
	case "image/gif":
		format = imaging.GIF
	case "image/jpeg":
		format = imaging.JPEG
	default:
		return data
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format); err != nil {
		return data
	}
	return buf.Bytes()
}

func formatFromMime(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	default:
		return "bin"
	}
}

package storage

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Loxfxgc/lost-and-found-children-reporting/models"
)

const gridfsBucketName = "images"

// GridFSStore keeps images as chunked files inside the primary database.
// Bytes are stored unmodified; no transform is applied on this backend.
type GridFSStore struct {
	db     *mongo.Database
	bucket *gridfs.Bucket
	limits UploadLimits
}

func NewGridFSStore(db *mongo.Database, limits UploadLimits) (*GridFSStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(gridfsBucketName))
	if err != nil {
		return nil, fmt.Errorf("gridfs bucket: %w", err)
	}
	return &GridFSStore{db: db, bucket: bucket, limits: limits}, nil
}

func (s *GridFSStore) Kind() string { return "gridfs" }

func (s *GridFSStore) Upload(ctx context.Context, data []byte, mimeType, originalName string) (*models.PhotoReference, error) {
	if err := s.limits.check(int64(len(data)), mimeType); err != nil {
		return nil, err
	}

	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	filename := hex.EncodeToString(buf) + filepath.Ext(originalName)

	opts := options.GridFSUpload().SetMetadata(bson.M{
		"contentType":  mimeType,
		"originalName": originalName,
		"size":         len(data),
		"uploadDate":   time.Now().UTC(),
	})

	if deadline, ok := ctx.Deadline(); ok {
		_ = s.bucket.SetWriteDeadline(deadline)
	}
	id, err := s.bucket.UploadFromStream(filename, bytes.NewReader(data), opts)
	if err != nil {
		return nil, fmt.Errorf("gridfs upload: %w", err)
	}

	return &models.PhotoReference{
		Backend:      models.BackendEmbedded,
		FileID:       id.Hex(),
		ContentType:  mimeType,
		OriginalName: originalName,
		Size:         int64(len(data)),
	}, nil
}

func (s *GridFSStore) Fetch(ctx context.Context, ref *models.PhotoReference) ([]byte, string, error) {
	oid, err := s.fileID(ref)
	if err != nil {
		return nil, "", err
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = s.bucket.SetReadDeadline(deadline)
	}
	var buf bytes.Buffer
	if _, err := s.bucket.DownloadToStream(oid, &buf); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("gridfs download: %w", err)
	}

	contentType := ref.ContentType
	if contentType == "" {
		contentType = s.lookupContentType(ctx, oid)
	}
	return buf.Bytes(), contentType, nil
}

func (s *GridFSStore) Delete(ctx context.Context, ref *models.PhotoReference) error {
	oid, err := s.fileID(ref)
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = s.bucket.SetWriteDeadline(deadline)
	}
	if err := s.bucket.Delete(oid); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("gridfs delete: %w", err)
	}
	return nil
}

func (s *GridFSStore) HealthCheck(ctx context.Context) error {
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return s.db.Client().Ping(pctx, readpref.Primary())
}

func (s *GridFSStore) fileID(ref *models.PhotoReference) (primitive.ObjectID, error) {
	if ref == nil || ref.FileID == "" {
		return primitive.NilObjectID, ErrNotFound
	}
	oid, err := primitive.ObjectIDFromHex(ref.FileID)
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return oid, nil
}

// lookupContentType reads the upload metadata for references written without
// a content type (old records). Falls back to a generic type.
func (s *GridFSStore) lookupContentType(ctx context.Context, oid primitive.ObjectID) string {
	var doc struct {
		Metadata struct {
			ContentType string `bson:"contentType"`
		} `bson:"metadata"`
	}
	err := s.db.Collection(gridfsBucketName+".files").
		FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil || doc.Metadata.ContentType == "" {
		return "application/octet-stream"
	}
	return doc.Metadata.ContentType
}

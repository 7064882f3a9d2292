// path: models/photo.go
package models

// Blob backends a PhotoReference can point at.
const (
	BackendEmbedded = "embedded"
	BackendHosted   = "hosted"
)

// PhotoReference is a backend-agnostic handle to a stored image. Exactly one
// backend shape is populated: the embedded form carries the GridFS file id and
// upload metadata, the hosted form carries the object key and its public URL.
type PhotoReference struct {
	Backend string `bson:"backend" json:"backend"`

	// Embedded (GridFS) shape.
	FileID       string `bson:"fileId,omitempty" json:"fileId,omitempty"`
	ContentType  string `bson:"contentType,omitempty" json:"contentType,omitempty"`
	OriginalName string `bson:"originalName,omitempty" json:"originalName,omitempty"`
	Size         int64  `bson:"size,omitempty" json:"size,omitempty"`

	// Hosted (object store) shape.
	PublicID  string `bson:"publicId,omitempty" json:"publicId,omitempty"`
	SecureURL string `bson:"secureUrl,omitempty" json:"secureUrl,omitempty"`
	Format    string `bson:"format,omitempty" json:"format,omitempty"`
}

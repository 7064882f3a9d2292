// Package config reads runtime configuration from environment variables.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAddress      = ":5000"
	defaultMaxUpload    = 5 << 20 // 5 MiB
	defaultAllowedTypes = "image/jpeg,image/png,image/gif,image/webp"
	defaultMaxDimension = 1000
	defaultPollInterval = 15 * time.Second
	defaultCORSOrigins  = "http://localhost:3000, http://localhost:3001"
)

// Blob backend selectors for BLOB_BACKEND.
const (
	BackendGridFS = "gridfs"
	BackendS3     = "s3"
)

type MongoConfig struct {
	Mode   string
	URI    string
	DBName string
}

type S3Config struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	Region        string
	UseSSL        bool
	PublicBaseURL string
}

type Config struct {
	Address     string
	CORSOrigins string

	Mongo MongoConfig

	// Blob storage gateway.
	BlobBackend       string
	MaxUploadBytes    int64
	AllowedMimeTypes  []string
	MaxImageDimension int
	S3                S3Config

	// Sync client defaults.
	PollInterval time.Duration
}

// Load builds a Config from the environment, falling back to defaults.
func Load() *Config {
	cfg := &Config{
		Address:           getenv("ADDRESS", defaultAddress),
		CORSOrigins:       getenv("CORS_ORIGINS", defaultCORSOrigins),
		Mongo:             resolveMongo(),
		BlobBackend:       strings.ToLower(getenv("BLOB_BACKEND", BackendGridFS)),
		MaxUploadBytes:    parseInt64("MAX_UPLOAD_BYTES", defaultMaxUpload),
		AllowedMimeTypes:  parseList("ALLOWED_MIME_TYPES", defaultAllowedTypes),
		MaxImageDimension: parseInt("MAX_IMAGE_DIMENSION", defaultMaxDimension),
		S3: S3Config{
			Endpoint:      getenv("S3_ENDPOINT", "localhost:9000"),
			AccessKey:     os.Getenv("S3_ACCESS_KEY"),
			SecretKey:     os.Getenv("S3_SECRET_KEY"),
			Bucket:        getenv("S3_BUCKET", "report-images"),
			Region:        getenv("S3_REGION", "us-east-1"),
			UseSSL:        parseBool("S3_USE_SSL"),
			PublicBaseURL: strings.TrimRight(os.Getenv("S3_PUBLIC_URL"), "/"),
		},
		PollInterval: parseDuration("POLL_INTERVAL", defaultPollInterval),
	}
	if cfg.BlobBackend != BackendGridFS && cfg.BlobBackend != BackendS3 {
		log.Printf("config: unknown BLOB_BACKEND %q, falling back to gridfs", cfg.BlobBackend)
		cfg.BlobBackend = BackendGridFS
	}
	if cfg.S3.PublicBaseURL == "" {
		scheme := "http"
		if cfg.S3.UseSSL {
			scheme = "https"
		}
		cfg.S3.PublicBaseURL = scheme + "://" + cfg.S3.Endpoint + "/" + cfg.S3.Bucket
	}
	return cfg
}

// resolveMongo picks the connection URI with precedence remote > explicit > local.
func resolveMongo() MongoConfig {
	mode := strings.ToLower(getenv("MONGO_MODE", "auto"))
	dbname := getenv("MONGO_DB", "lost-and-found-children")

	explicit := strings.TrimSpace(os.Getenv("MONGO_URI"))
	local := getenv("MONGO_URI_LOCAL", "mongodb://localhost:27017")
	remote := strings.TrimSpace(os.Getenv("MONGO_URI_REMOTE"))

	switch mode {
	case "local":
		return MongoConfig{Mode: "local", URI: firstNonEmpty(explicit, local), DBName: dbname}
	case "remote":
		if remote != "" {
			return MongoConfig{Mode: "remote", URI: remote, DBName: dbname}
		}
		log.Printf("config: WARNING MONGO_MODE=remote but MONGO_URI_REMOTE empty; falling back to local")
		return MongoConfig{Mode: "local", URI: firstNonEmpty(explicit, local), DBName: dbname}
	default:
		if remote != "" {
			return MongoConfig{Mode: "remote", URI: remote, DBName: dbname}
		}
		if explicit != "" {
			return MongoConfig{Mode: "auto", URI: explicit, DBName: dbname}
		}
		return MongoConfig{Mode: "local", URI: local, DBName: dbname}
	}
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func firstNonEmpty(v1, v2 string) string {
	if strings.TrimSpace(v1) != "" {
		return v1
	}
	return v2
}

func parseList(key, def string) []string {
	out := strings.Split(getenv(key, def), ",")
	for i := range out {
		out[i] = strings.TrimSpace(out[i])
	}
	return out
}

func parseInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func parseInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func parseDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}

func parseBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

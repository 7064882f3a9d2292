package database

import (
	"context"
	"errors"
	"log"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Loxfxgc/lost-and-found-children-reporting/config"
)

var client *mongo.Client
var db *mongo.Database

// Connect establishes a singleton MongoDB connection and bootstraps indexes.
func Connect(ctx context.Context, cfg config.MongoConfig) error {
	if client != nil && db != nil {
		return nil
	}

	start := time.Now()
	log.Printf("mongo: connecting mode=%s uri=%s db=%s", cfg.Mode, redactURI(cfg.URI), cfg.DBName)

	dctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	c, err := mongo.Connect(dctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return err
	}
	if err = c.Ping(dctx, nil); err != nil {
		_ = c.Disconnect(context.Background())
		return err
	}

	client = c
	db = c.Database(cfg.DBName)

	if err := createIndexes(); err != nil {
		log.Printf("mongo: index creation warnings: %v", err)
	}

	log.Printf("mongo: connected ok in %s", time.Since(start).Round(time.Millisecond))
	return nil
}

func Disconnect(ctx context.Context) error {
	if client == nil {
		return nil
	}
	defer func() { client, db = nil, nil }()
	return client.Disconnect(ctx)
}

func Client() *mongo.Client { return client }

func DB() *mongo.Database {
	if db == nil {
		panic("database not connected: call database.Connect first")
	}
	return db
}

func Col(name string) *mongo.Collection {
	return DB().Collection(name)
}

func createIndexes() error {
	if db == nil {
		return errors.New("db is nil")
	}
	ctxIdx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var errs []string

	// Radius search needs the sphere-aware 2dsphere index on both collections;
	// the rest back the common list filters.
	for col, keys := range map[string][]bson.D{
		"reports": {
			{{Key: "createdAt", Value: -1}},
			{{Key: "status", Value: 1}},
			{{Key: "reporterUid", Value: 1}},
			{{Key: "location", Value: "2dsphere"}},
		},
		"enquiries": {
			{{Key: "createdAt", Value: -1}},
			{{Key: "reportId", Value: 1}},
			{{Key: "enquirerUid", Value: 1}},
			{{Key: "location", Value: "2dsphere"}},
		},
	} {
		for _, k := range keys {
			if _, err := Col(col).Indexes().CreateOne(ctxIdx, mongo.IndexModel{Keys: k}); err != nil {
				errs = append(errs, col+": "+err.Error())
			}
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func redactURI(raw string) string {
	if raw == "" || !strings.Contains(raw, "://") {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	u.User = url.UserPassword("****", "****")
	return u.String()
}

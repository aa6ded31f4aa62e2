// Package database manages the MongoDB connection and collection bootstrap.
package database

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/lewis-cheung/grocery-bot/pkg/config"
)

const (
	CollectionUsers        = "users"
	CollectionGroceryItems = "grocery_items"
)

// Mongo bundles the client and the application database handle.
type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
	log    *slog.Logger
}

// Connect establishes a client, verifies the server is reachable and returns
// a handle on the configured database.
func Connect(ctx context.Context, cfg config.MongoConfig, log *slog.Logger) (*Mongo, error) {
	if log == nil {
		log = slog.Default()
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &Mongo{
		Client: client,
		DB:     client.Database(cfg.Database),
		log:    log,
	}, nil
}

// Close disconnects the underlying client.
func (m *Mongo) Close(ctx context.Context) error {
	if m == nil || m.Client == nil {
		return nil
	}

	return m.Client.Disconnect(ctx)
}

// EnsureSchema creates the schema-validated collections and the indexes that
// back the data invariants. Safe to run on every startup: existing
// collections are left alone and index creation is idempotent.
func (m *Mongo) EnsureSchema(ctx context.Context) error {
	if err := m.ensureCollection(ctx, CollectionUsers, userSchema); err != nil {
		return err
	}
	if err := m.ensureCollection(ctx, CollectionGroceryItems, groceryItemSchema); err != nil {
		return err
	}

	users := m.DB.Collection(CollectionUsers)
	if _, err := users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "chat_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("create users index: %w", err)
	}

	// Unique per user, case-insensitive through name_lower.
	items := m.DB.Collection(CollectionGroceryItems)
	if _, err := items.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "name_lower", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("create grocery items index: %w", err)
	}

	m.log.Info("mongodb schema ensured",
		slog.String("database", m.DB.Name()),
		slog.String("collections", CollectionUsers+","+CollectionGroceryItems),
	)

	return nil
}

func (m *Mongo) ensureCollection(ctx context.Context, name string, schema bson.M) error {
	names, err := m.DB.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	if len(names) > 0 {
		return nil
	}

	opts := options.CreateCollection().SetValidator(bson.M{"$jsonSchema": schema})
	if err := m.DB.CreateCollection(ctx, name, opts); err != nil {
		return fmt.Errorf("create collection %s: %w", name, err)
	}

	return nil
}

var userSchema = bson.M{
	"bsonType": "object",
	"required": []string{"chat_id", "created_at"},
	"properties": bson.M{
		"chat_id":         bson.M{"bsonType": "long"},
		"first_name":      bson.M{"bsonType": "string"},
		"last_name":       bson.M{"bsonType": "string"},
		"username":        bson.M{"bsonType": "string"},
		"last_command_at": bson.M{"bsonType": "date"},
		"created_at":      bson.M{"bsonType": "date"},
	},
}

var groceryItemSchema = bson.M{
	"bsonType": "object",
	"required": []string{"user_id", "name", "name_lower", "unit", "created_at"},
	"properties": bson.M{
		"user_id":    bson.M{"bsonType": "long"},
		"name":       bson.M{"bsonType": "string", "minLength": 1},
		"name_lower": bson.M{"bsonType": "string", "minLength": 1},
		"unit":       bson.M{"enum": []string{"pc", "g", "kg", "ml", "l"}},
		"pending": bson.M{
			"bsonType": "object",
			"required": []string{"quantity", "requested_at"},
			"properties": bson.M{
				"quantity":     bson.M{"bsonType": []string{"double", "int", "long"}, "minimum": 0},
				"requested_at": bson.M{"bsonType": "date"},
			},
		},
		"purchases": bson.M{
			"bsonType": "array",
			"items": bson.M{
				"bsonType": "object",
				"required": []string{"quantity", "price", "purchased_at"},
				"properties": bson.M{
					"quantity":     bson.M{"bsonType": []string{"double", "int", "long"}, "minimum": 0},
					"price":        bson.M{"bsonType": []string{"double", "int", "long"}, "minimum": 0},
					"purchased_at": bson.M{"bsonType": "date"},
				},
			},
		},
		"created_at": bson.M{"bsonType": "date"},
	},
}

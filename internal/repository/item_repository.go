package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lewis-cheung/grocery-bot/internal/database"
	"github.com/lewis-cheung/grocery-bot/internal/domain"
)

// ItemRepository defines persistence operations for grocery items.
type ItemRepository interface {
	FindByID(ctx context.Context, userID int64, id primitive.ObjectID) (*domain.GroceryItem, error)
	FindByName(ctx context.Context, userID int64, name string) (*domain.GroceryItem, error)
	ListByUser(ctx context.Context, userID int64) ([]*domain.GroceryItem, error)
	Create(ctx context.Context, item *domain.GroceryItem) error
	Delete(ctx context.Context, userID int64, id primitive.ObjectID) error
	AppendPurchase(ctx context.Context, userID int64, id primitive.ObjectID, record domain.PurchaseRecord) error
	SetPending(ctx context.Context, userID int64, id primitive.ObjectID, pending domain.PendingPurchase) error
	ClearPending(ctx context.Context, userID int64, id primitive.ObjectID) error
	ListStalePending(ctx context.Context, olderThan time.Time) ([]*domain.GroceryItem, error)
}

type itemRepository struct {
	coll *mongo.Collection
	log  *slog.Logger
}

// NewItemRepository creates a MongoDB-backed grocery item repository.
func NewItemRepository(db *mongo.Database, log *slog.Logger) ItemRepository {
	return &itemRepository{
		coll: db.Collection(database.CollectionGroceryItems),
		log:  log,
	}
}

// FindByID retrieves one of the user's items by document id.
func (r *itemRepository) FindByID(ctx context.Context, userID int64, id primitive.ObjectID) (*domain.GroceryItem, error) {
	return r.findOne(ctx, bson.M{"_id": id, "user_id": userID})
}

// FindByName retrieves the user's item whose name matches case-insensitively.
func (r *itemRepository) FindByName(ctx context.Context, userID int64, name string) (*domain.GroceryItem, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	return r.findOne(ctx, bson.M{"user_id": userID, "name_lower": lower})
}

func (r *itemRepository) findOne(ctx context.Context, filter bson.M) (*domain.GroceryItem, error) {
	var item domain.GroceryItem
	err := r.coll.FindOne(ctx, filter).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}

		if r.log != nil {
			r.log.Error("failed to fetch grocery item", slog.Any("filter", filter), slog.Any("error", err))
		}
		return nil, fmt.Errorf("find grocery item: %w", err)
	}

	return &item, nil
}

// ListByUser returns all items owned by the user, sorted by name.
func (r *itemRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.GroceryItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_lower", Value: 1}})

	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to list grocery items", slog.Int64("user_id", userID), slog.Any("error", err))
		}
		return nil, fmt.Errorf("list grocery items: %w", err)
	}
	defer cursor.Close(ctx)

	var items []*domain.GroceryItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode grocery items: %w", err)
	}

	return items, nil
}

// Create inserts a new item. The unique (user_id, name_lower) index turns
// concurrent duplicate creations into ErrDuplicate.
func (r *itemRepository) Create(ctx context.Context, item *domain.GroceryItem) error {
	res, err := r.coll.InsertOne(ctx, item)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}

		if r.log != nil {
			r.log.Error("failed to create grocery item", slog.Int64("user_id", item.UserID), slog.String("name", item.Name), slog.Any("error", err))
		}
		return fmt.Errorf("insert grocery item: %w", err)
	}

	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		item.ID = id
	}

	return nil
}

// Delete removes the user's item.
func (r *itemRepository) Delete(ctx context.Context, userID int64, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to delete grocery item", slog.Int64("user_id", userID), slog.Any("error", err))
		}
		return fmt.Errorf("delete grocery item: %w", err)
	}

	if res.DeletedCount == 0 {
		return ErrNotFound
	}

	return nil
}

// AppendPurchase pushes an immutable purchase record onto the item and clears
// any pending purchase in the same document update.
func (r *itemRepository) AppendPurchase(ctx context.Context, userID int64, id primitive.ObjectID, record domain.PurchaseRecord) error {
	update := bson.M{
		"$push":  bson.M{"purchases": record},
		"$unset": bson.M{"pending": ""},
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id, "user_id": userID}, update)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to append purchase", slog.Int64("user_id", userID), slog.Any("error", err))
		}
		return fmt.Errorf("append purchase: %w", err)
	}

	if res.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

// SetPending stores the pending purchase on the item.
func (r *itemRepository) SetPending(ctx context.Context, userID int64, id primitive.ObjectID, pending domain.PendingPurchase) error {
	update := bson.M{"$set": bson.M{"pending": pending}}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id, "user_id": userID}, update)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to set pending purchase", slog.Int64("user_id", userID), slog.Any("error", err))
		}
		return fmt.Errorf("set pending purchase: %w", err)
	}

	if res.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

// ClearPending removes the pending purchase from the item.
func (r *itemRepository) ClearPending(ctx context.Context, userID int64, id primitive.ObjectID) error {
	update := bson.M{"$unset": bson.M{"pending": ""}}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id, "user_id": userID}, update)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to clear pending purchase", slog.Int64("user_id", userID), slog.Any("error", err))
		}
		return fmt.Errorf("clear pending purchase: %w", err)
	}

	if res.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

// ListStalePending returns items whose pending purchase was requested before
// the cutoff, across all users. Used by the reminder job.
func (r *itemRepository) ListStalePending(ctx context.Context, olderThan time.Time) ([]*domain.GroceryItem, error) {
	filter := bson.M{
		"pending.requested_at": bson.M{"$lt": primitive.NewDateTimeFromTime(olderThan.UTC())},
	}

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to list stale pending purchases", slog.Any("error", err))
		}
		return nil, fmt.Errorf("list stale pending purchases: %w", err)
	}
	defer cursor.Close(ctx)

	var items []*domain.GroceryItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode stale pending items: %w", err)
	}

	return items, nil
}

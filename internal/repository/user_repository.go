package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lewis-cheung/grocery-bot/internal/database"
	"github.com/lewis-cheung/grocery-bot/internal/domain"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	FindByChatID(ctx context.Context, chatID int64) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	UpdateLastCommandAt(ctx context.Context, chatID int64, at time.Time) error
}

type userRepository struct {
	coll *mongo.Collection
	log  *slog.Logger
}

// NewUserRepository creates a MongoDB-backed user repository.
func NewUserRepository(db *mongo.Database, log *slog.Logger) UserRepository {
	return &userRepository{
		coll: db.Collection(database.CollectionUsers),
		log:  log,
	}
}

// FindByChatID retrieves a user document by Telegram chat identifier.
func (r *userRepository) FindByChatID(ctx context.Context, chatID int64) (*domain.User, error) {
	var user domain.User
	err := r.coll.FindOne(ctx, bson.M{"chat_id": chatID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}

		if r.log != nil {
			r.log.Error("failed to fetch user by chat id", slog.Int64("chat_id", chatID), slog.Any("error", err))
		}
		return nil, fmt.Errorf("find user by chat id: %w", err)
	}

	return &user, nil
}

// Create inserts a new user document.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	res, err := r.coll.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}

		if r.log != nil {
			r.log.Error("failed to create user", slog.Int64("chat_id", user.ChatID), slog.Any("error", err))
		}
		return fmt.Errorf("insert user: %w", err)
	}

	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = id
	}

	return nil
}

// UpdateLastCommandAt stamps the user's most recent command time.
func (r *userRepository) UpdateLastCommandAt(ctx context.Context, chatID int64, at time.Time) error {
	update := bson.M{"$set": bson.M{"last_command_at": primitive.NewDateTimeFromTime(at.UTC())}}

	res, err := r.coll.UpdateOne(ctx, bson.M{"chat_id": chatID}, update)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to update last command time", slog.Int64("chat_id", chatID), slog.Any("error", err))
		}
		return fmt.Errorf("update last command time: %w", err)
	}

	if res.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

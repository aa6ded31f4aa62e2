package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	telebot "gopkg.in/telebot.v3"

	"github.com/lewis-cheung/grocery-bot/internal/domain"
	"github.com/lewis-cheung/grocery-bot/internal/repository"
	"github.com/lewis-cheung/grocery-bot/internal/usercache"
)

const cacheTTL = 15 * time.Minute

// Service provides business operations over users.
type Service struct {
	repo  repository.UserRepository
	cache *usercache.Cache
	log   *slog.Logger
}

// NewService constructs a new Service instance. The cache is optional.
func NewService(repo repository.UserRepository, cache *usercache.Cache, log *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, log: log}
}

// GetOrCreate fetches a user by chat id or creates a new profile when missing.
func (s *Service) GetOrCreate(ctx context.Context, telegramUser *telebot.User) (*domain.User, error) {
	if telegramUser == nil {
		return nil, errors.New("telegram user is nil")
	}

	chatID := telegramUser.ID

	if cached, err := s.cache.Get(ctx, chatID); err == nil && cached != nil {
		return cached, nil
	}

	user, err := s.repo.FindByChatID(ctx, chatID)
	if err == nil {
		_ = s.cache.Set(ctx, chatID, user, cacheTTL)
		return user, nil
	}

	if !errors.Is(err, repository.ErrNotFound) {
		s.logError("get_or_create.find", chatID, err)
		return nil, fmt.Errorf("get user: %w", err)
	}

	now := time.Now().UTC()
	newUser := &domain.User{
		ChatID:    chatID,
		FirstName: telegramUser.FirstName,
		LastName:  telegramUser.LastName,
		Username:  telegramUser.Username,
		CreatedAt: primitive.NewDateTimeFromTime(now),
	}

	if err := s.repo.Create(ctx, newUser); err != nil {
		// Lost a create race with a parallel update. Re-read the winner.
		if errors.Is(err, repository.ErrDuplicate) {
			return s.repo.FindByChatID(ctx, chatID)
		}

		s.logError("get_or_create.create", chatID, err)
		return nil, fmt.Errorf("create user: %w", err)
	}

	_ = s.cache.Set(ctx, chatID, newUser, cacheTTL)

	return newUser, nil
}

// TouchLastCommand refreshes the last_command_at field for the user.
func (s *Service) TouchLastCommand(ctx context.Context, chatID int64) error {
	if err := s.repo.UpdateLastCommandAt(ctx, chatID, time.Now().UTC()); err != nil {
		s.logError("touch_last_command", chatID, err)
		return err
	}

	_ = s.cache.Invalidate(ctx, chatID)

	return nil
}

func (s *Service) logError(operation string, chatID int64, err error) {
	if s == nil || s.log == nil || err == nil {
		return
	}

	s.log.Error("user service operation failed",
		slog.String("operation", operation),
		slog.Int64("chat_id", chatID),
		slog.Any("error", err),
	)
}

package grocery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lewis-cheung/grocery-bot/internal/domain"
	apperrors "github.com/lewis-cheung/grocery-bot/internal/errors"
	"github.com/lewis-cheung/grocery-bot/internal/match"
	"github.com/lewis-cheung/grocery-bot/internal/repository"
	"github.com/lewis-cheung/grocery-bot/pkg/metrics"
)

// ErrDuplicateName indicates the user already tracks an item with this name.
var ErrDuplicateName = errors.New("an item with this name already exists")

// ErrItemNotFound indicates no tracked item matched the request.
var ErrItemNotFound = errors.New("item not found")

// Service provides business operations over grocery items.
type Service struct {
	items repository.ItemRepository
	topN  int
	log   *slog.Logger
}

// NewService constructs a new Service instance. topN caps the number of fuzzy
// candidates offered during name resolution.
func NewService(items repository.ItemRepository, topN int, log *slog.Logger) *Service {
	if topN <= 0 {
		topN = match.DefaultTopN
	}

	return &Service{items: items, topN: topN, log: log}
}

// CreateItem registers a new tracked item for the user.
func (s *Service) CreateItem(ctx context.Context, userID int64, name string, unit domain.Unit) (*domain.GroceryItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("item name cannot be empty")
	}

	item := domain.NewGroceryItem(userID, name, unit, primitive.NewDateTimeFromTime(time.Now().UTC()))

	if err := s.items.Create(ctx, item); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateName
		}

		s.logError("create_item", userID, err)
		return nil, apperrors.NewDatabaseError(err)
	}

	return item, nil
}

// GetItem fetches one of the user's items by id.
func (s *Service) GetItem(ctx context.Context, userID int64, id primitive.ObjectID) (*domain.GroceryItem, error) {
	item, err := s.items.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrItemNotFound
		}

		s.logError("get_item", userID, err)
		return nil, apperrors.NewDatabaseError(err)
	}

	return item, nil
}

// ListItems returns all of the user's items sorted by name.
func (s *Service) ListItems(ctx context.Context, userID int64) ([]*domain.GroceryItem, error) {
	items, err := s.items.ListByUser(ctx, userID)
	if err != nil {
		s.logError("list_items", userID, err)
		return nil, apperrors.NewDatabaseError(err)
	}

	return items, nil
}

// ResolveByName matches typed text against the user's items. An exact
// case-insensitive match wins outright, otherwise fuzzy candidates are
// returned for disambiguation.
func (s *Service) ResolveByName(ctx context.Context, userID int64, typed string) (match.Resolution, error) {
	items, err := s.items.ListByUser(ctx, userID)
	if err != nil {
		s.logError("resolve_by_name", userID, err)
		return match.Resolution{}, apperrors.NewDatabaseError(err)
	}

	return match.Resolve(typed, items, s.topN), nil
}

// RecordPurchase appends a purchase record to the item. Any pending purchase
// is cleared in the same update.
func (s *Service) RecordPurchase(ctx context.Context, userID int64, id primitive.ObjectID, quantity, price float64) (*domain.GroceryItem, error) {
	if quantity <= 0 {
		return nil, apperrors.NewValidationError("quantity must be positive")
	}
	if price < 0 {
		return nil, apperrors.NewValidationError("price cannot be negative")
	}

	record := domain.PurchaseRecord{
		Quantity:    quantity,
		Price:       price,
		PurchasedAt: primitive.NewDateTimeFromTime(time.Now().UTC()),
	}

	if err := s.items.AppendPurchase(ctx, userID, id, record); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrItemNotFound
		}

		s.logError("record_purchase", userID, err)
		return nil, apperrors.NewDatabaseError(err)
	}

	metrics.RecordPurchase()

	item, err := s.items.FindByID(ctx, userID, id)
	if err != nil {
		s.logError("record_purchase.reload", userID, err)
		return nil, apperrors.NewDatabaseError(err)
	}

	return item, nil
}

// SetPending marks the item as wanted with the requested quantity.
func (s *Service) SetPending(ctx context.Context, userID int64, id primitive.ObjectID, quantity float64) error {
	if quantity <= 0 {
		return apperrors.NewValidationError("quantity must be positive")
	}

	pending := domain.PendingPurchase{
		Quantity:    quantity,
		RequestedAt: primitive.NewDateTimeFromTime(time.Now().UTC()),
	}

	if err := s.items.SetPending(ctx, userID, id, pending); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrItemNotFound
		}

		s.logError("set_pending", userID, err)
		return apperrors.NewDatabaseError(err)
	}

	return nil
}

// ClearPending drops the pending purchase from the item.
func (s *Service) ClearPending(ctx context.Context, userID int64, id primitive.ObjectID) error {
	if err := s.items.ClearPending(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrItemNotFound
		}

		s.logError("clear_pending", userID, err)
		return apperrors.NewDatabaseError(err)
	}

	return nil
}

// DeleteItem removes the item and its entire purchase history.
func (s *Service) DeleteItem(ctx context.Context, userID int64, id primitive.ObjectID) error {
	if err := s.items.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrItemNotFound
		}

		s.logError("delete_item", userID, err)
		return apperrors.NewDatabaseError(err)
	}

	return nil
}

// StalePending lists items whose pending purchase is older than maxAge.
func (s *Service) StalePending(ctx context.Context, maxAge time.Duration) ([]*domain.GroceryItem, error) {
	cutoff := time.Now().UTC().Add(-maxAge)

	items, err := s.items.ListStalePending(ctx, cutoff)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	return items, nil
}

func (s *Service) logError(operation string, userID int64, err error) {
	if s == nil || s.log == nil || err == nil {
		return
	}

	s.log.Error("grocery service operation failed",
		slog.String("operation", operation),
		slog.Int64("user_id", userID),
		slog.Any("error", err),
	)
}

// Summary renders a short description of the item for confirmation prompts.
func Summary(item *domain.GroceryItem) string {
	if item == nil {
		return ""
	}

	if avg, ok := item.AveragePrice(); ok {
		return fmt.Sprintf("%s (%s, avg %.2f per %s)", item.Name, item.Unit, avg, item.Unit.DisplayLabel())
	}

	return fmt.Sprintf("%s (%s)", item.Name, item.Unit)
}

package grocery

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lewis-cheung/grocery-bot/internal/domain"
	"github.com/lewis-cheung/grocery-bot/internal/repository"
)

type mockItemRepository struct {
	mock.Mock
}

func (m *mockItemRepository) FindByID(ctx context.Context, userID int64, id primitive.ObjectID) (*domain.GroceryItem, error) {
	args := m.Called(ctx, userID, id)
	if item := args.Get(0); item != nil {
		return item.(*domain.GroceryItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockItemRepository) FindByName(ctx context.Context, userID int64, name string) (*domain.GroceryItem, error) {
	args := m.Called(ctx, userID, name)
	if item := args.Get(0); item != nil {
		return item.(*domain.GroceryItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockItemRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.GroceryItem, error) {
	args := m.Called(ctx, userID)
	if items := args.Get(0); items != nil {
		return items.([]*domain.GroceryItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockItemRepository) Create(ctx context.Context, item *domain.GroceryItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *mockItemRepository) Delete(ctx context.Context, userID int64, id primitive.ObjectID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *mockItemRepository) AppendPurchase(ctx context.Context, userID int64, id primitive.ObjectID, record domain.PurchaseRecord) error {
	args := m.Called(ctx, userID, id, record)
	return args.Error(0)
}

func (m *mockItemRepository) SetPending(ctx context.Context, userID int64, id primitive.ObjectID, pending domain.PendingPurchase) error {
	args := m.Called(ctx, userID, id, pending)
	return args.Error(0)
}

func (m *mockItemRepository) ClearPending(ctx context.Context, userID int64, id primitive.ObjectID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *mockItemRepository) ListStalePending(ctx context.Context, olderThan time.Time) ([]*domain.GroceryItem, error) {
	args := m.Called(ctx, olderThan)
	if items := args.Get(0); items != nil {
		return items.([]*domain.GroceryItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestService_CreateItem(t *testing.T) {
	tests := []struct {
		name       string
		itemName   string
		unit       domain.Unit
		setupMocks func(repo *mockItemRepository)
		wantErr    error
	}{
		{
			name:     "creates item",
			itemName: "Milk",
			unit:     domain.UnitLiter,
			setupMocks: func(repo *mockItemRepository) {
				repo.On("Create", mock.Anything, mock.MatchedBy(func(item *domain.GroceryItem) bool {
					return item.Name == "Milk" && item.NameLower == "milk" && item.Unit == domain.UnitLiter
				})).Return(nil)
			},
		},
		{
			name:     "duplicate name",
			itemName: "Milk",
			unit:     domain.UnitLiter,
			setupMocks: func(repo *mockItemRepository) {
				repo.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicate)
			},
			wantErr: ErrDuplicateName,
		},
		{
			name:       "empty name rejected",
			itemName:   "   ",
			unit:       domain.UnitPiece,
			setupMocks: func(repo *mockItemRepository) {},
			wantErr:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockItemRepository)
			tt.setupMocks(repo)

			svc := NewService(repo, 5, testLogger())
			item, err := svc.CreateItem(context.Background(), 42, tt.itemName, tt.unit)

			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, item)
			case tt.itemName == "   ":
				require.Error(t, err)
				assert.Nil(t, item)
			default:
				require.NoError(t, err)
				require.NotNil(t, item)
				assert.Equal(t, int64(42), item.UserID)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestService_ResolveByName(t *testing.T) {
	items := []*domain.GroceryItem{
		domain.NewGroceryItem(42, "Chocolates", domain.UnitPiece, primitive.NewDateTimeFromTime(time.Now())),
		domain.NewGroceryItem(42, "Eggs", domain.UnitPiece, primitive.NewDateTimeFromTime(time.Now())),
	}

	repo := new(mockItemRepository)
	repo.On("ListByUser", mock.Anything, int64(42)).Return(items, nil)

	svc := NewService(repo, 5, testLogger())

	res, err := svc.ResolveByName(context.Background(), 42, "chocolates")
	require.NoError(t, err)
	require.True(t, res.IsExact())
	assert.Equal(t, "Chocolates", res.Exact.Name)

	res, err = svc.ResolveByName(context.Background(), 42, "choclate")
	require.NoError(t, err)
	assert.False(t, res.IsExact())
	require.NotEmpty(t, res.Candidates)
	assert.Equal(t, "Chocolates", res.Candidates[0].Name)

	repo.AssertExpectations(t)
}

func TestService_RecordPurchase(t *testing.T) {
	id := primitive.NewObjectID()

	tests := []struct {
		name       string
		quantity   float64
		price      float64
		setupMocks func(repo *mockItemRepository)
		wantErr    bool
	}{
		{
			name:     "records purchase and reloads",
			quantity: 2,
			price:    5.50,
			setupMocks: func(repo *mockItemRepository) {
				repo.On("AppendPurchase", mock.Anything, int64(42), id, mock.MatchedBy(func(r domain.PurchaseRecord) bool {
					return r.Quantity == 2 && r.Price == 5.50
				})).Return(nil)
				repo.On("FindByID", mock.Anything, int64(42), id).Return(&domain.GroceryItem{
					ID:     id,
					UserID: 42,
					Name:   "Milk",
					Unit:   domain.UnitLiter,
					Purchases: []domain.PurchaseRecord{
						{Quantity: 2, Price: 5.50},
					},
				}, nil)
			},
		},
		{
			name:       "rejects zero quantity",
			quantity:   0,
			price:      5,
			setupMocks: func(repo *mockItemRepository) {},
			wantErr:    true,
		},
		{
			name:       "rejects negative price",
			quantity:   1,
			price:      -1,
			setupMocks: func(repo *mockItemRepository) {},
			wantErr:    true,
		},
		{
			name:     "missing item",
			quantity: 1,
			price:    1,
			setupMocks: func(repo *mockItemRepository) {
				repo.On("AppendPurchase", mock.Anything, int64(42), id, mock.Anything).Return(repository.ErrNotFound)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockItemRepository)
			tt.setupMocks(repo)

			svc := NewService(repo, 5, testLogger())
			item, err := svc.RecordPurchase(context.Background(), 42, id, tt.quantity, tt.price)

			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, item)
			} else {
				require.NoError(t, err)
				require.NotNil(t, item)
				assert.Len(t, item.Purchases, 1)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestService_SetAndClearPending(t *testing.T) {
	id := primitive.NewObjectID()

	repo := new(mockItemRepository)
	repo.On("SetPending", mock.Anything, int64(42), id, mock.MatchedBy(func(p domain.PendingPurchase) bool {
		return p.Quantity == 3
	})).Return(nil)
	repo.On("ClearPending", mock.Anything, int64(42), id).Return(nil)

	svc := NewService(repo, 5, testLogger())

	require.NoError(t, svc.SetPending(context.Background(), 42, id, 3))
	require.Error(t, svc.SetPending(context.Background(), 42, id, 0))
	require.NoError(t, svc.ClearPending(context.Background(), 42, id))

	repo.AssertExpectations(t)
}

func TestService_DeleteItem(t *testing.T) {
	id := primitive.NewObjectID()

	repo := new(mockItemRepository)
	repo.On("Delete", mock.Anything, int64(42), id).Return(repository.ErrNotFound)

	svc := NewService(repo, 5, testLogger())

	err := svc.DeleteItem(context.Background(), 42, id)
	require.ErrorIs(t, err, ErrItemNotFound)

	repo.AssertExpectations(t)
}

func TestService_StalePending(t *testing.T) {
	stale := domain.NewGroceryItem(42, "Bread", domain.UnitPiece, primitive.NewDateTimeFromTime(time.Now()))
	stale.Pending = &domain.PendingPurchase{Quantity: 1}

	repo := new(mockItemRepository)
	repo.On("ListStalePending", mock.Anything, mock.MatchedBy(func(cutoff time.Time) bool {
		return time.Since(cutoff) >= 71*time.Hour
	})).Return([]*domain.GroceryItem{stale}, nil)

	svc := NewService(repo, 5, testLogger())

	items, err := svc.StalePending(context.Background(), 72*time.Hour)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Bread", items[0].Name)

	repo.AssertExpectations(t)
}

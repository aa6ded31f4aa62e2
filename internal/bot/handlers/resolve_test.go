package handlers

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	telebot "gopkg.in/telebot.v3"

	"github.com/lewis-cheung/grocery-bot/internal/bot/keyboard"
	"github.com/lewis-cheung/grocery-bot/internal/domain"
	apperrors "github.com/lewis-cheung/grocery-bot/internal/errors"
	"github.com/lewis-cheung/grocery-bot/internal/grocery"
	"github.com/lewis-cheung/grocery-bot/internal/state"
)

// stubContext implements the slice of telebot.Context the handlers touch.
// Calls to anything else panic through the embedded nil interface.
type stubContext struct {
	telebot.Context

	sender    *telebot.User
	text      string
	callback  *telebot.Callback
	sent      []string
	responded bool
}

func (s *stubContext) Sender() *telebot.User       { return s.sender }
func (s *stubContext) Text() string                { return s.text }
func (s *stubContext) Callback() *telebot.Callback { return s.callback }

func (s *stubContext) Send(what interface{}, _ ...interface{}) error {
	if msg, ok := what.(string); ok {
		s.sent = append(s.sent, msg)
	}
	return nil
}

func (s *stubContext) Respond(_ ...*telebot.CallbackResponse) error {
	s.responded = true
	return nil
}

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

func setupFlowTest(t *testing.T) (*mockItemRepository, state.Storage, ItemFlowDeps) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	storage := state.NewRedisStorage(client, log)
	fsm := state.NewStateMachine(storage, log, client)

	repo := &mockItemRepository{}
	deps := ItemFlowDeps{
		Groceries: grocery.NewService(repo, 5, log),
		FSM:       fsm,
		Keyboard:  keyboard.NewBuilder(log),
		Log:       log,
	}

	return repo, storage, deps
}

func namedItem(userID int64, name string, unit domain.Unit) *domain.GroceryItem {
	item := domain.NewGroceryItem(userID, name, unit, primitive.NewDateTimeFromTime(time.Now()))
	item.ID = primitive.NewObjectID()
	return item
}

func TestItemFlowHandler_CommandReplacesActiveConversation(t *testing.T) {
	repo, storage, deps := setupFlowTest(t)
	ctx := context.Background()
	userID := int64(7)

	// The user is stuck halfway through an earlier purchase dialog.
	require.NoError(t, storage.SetState(ctx, userID, &state.UserState{
		UserID:       userID,
		CurrentState: state.StatePurchasePrice,
		Context:      map[string]interface{}{state.CtxFlow: state.FlowBought},
	}))

	item := namedItem(userID, "Milk", domain.UnitLiter)
	repo.On("ListByUser", mock.Anything, userID).Return([]*domain.GroceryItem{item}, nil)

	c := &stubContext{sender: &telebot.User{ID: userID}, text: "/bought Milk"}
	handler := NewItemFlowHandler(deps, state.FlowBought, "Which item did you buy?")
	require.NoError(t, handler(c))

	stored, err := deps.FSM.GetState(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, state.StatePurchaseQty, stored.CurrentState)
	assert.Equal(t, item.ID.Hex(), stored.StringValue(state.CtxItemID))

	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0], "How many")
}

func TestItemFlowHandler_PromptsWithoutArgument(t *testing.T) {
	_, _, deps := setupFlowTest(t)
	ctx := context.Background()
	userID := int64(8)

	c := &stubContext{sender: &telebot.User{ID: userID}, text: "/want"}
	handler := NewItemFlowHandler(deps, state.FlowWant, "Which item do you need?")
	require.NoError(t, handler(c))

	stored, err := deps.FSM.GetState(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, state.StateItemSelect, stored.CurrentState)
	assert.Equal(t, state.FlowWant, stored.StringValue(state.CtxFlow))

	require.Len(t, c.sent, 1)
	assert.Equal(t, "Which item do you need?", c.sent[0])
}

func TestItemSelectHandler_ExactMatchContinuesFlow(t *testing.T) {
	repo, storage, deps := setupFlowTest(t)
	ctx := context.Background()
	userID := int64(9)

	require.NoError(t, storage.SetState(ctx, userID, &state.UserState{
		UserID:       userID,
		CurrentState: state.StateItemSelect,
		Context:      map[string]interface{}{state.CtxFlow: state.FlowWant},
	}))

	item := namedItem(userID, "Eggs", domain.UnitPiece)
	repo.On("ListByUser", mock.Anything, userID).Return([]*domain.GroceryItem{item}, nil)

	c := &stubContext{sender: &telebot.User{ID: userID}, text: "eggs"}
	require.NoError(t, NewItemSelectHandler(deps)(c))

	stored, err := deps.FSM.GetState(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, state.StatePendingQty, stored.CurrentState)
	assert.Equal(t, item.ID.Hex(), stored.StringValue(state.CtxItemID))
}

func TestItemSelectHandler_UnknownNameOffersCreate(t *testing.T) {
	repo, storage, deps := setupFlowTest(t)
	ctx := context.Background()
	userID := int64(10)

	require.NoError(t, storage.SetState(ctx, userID, &state.UserState{
		UserID:       userID,
		CurrentState: state.StateItemSelect,
		Context:      map[string]interface{}{state.CtxFlow: state.FlowBought},
	}))

	repo.On("ListByUser", mock.Anything, userID).Return([]*domain.GroceryItem{namedItem(userID, "Milk", domain.UnitLiter)}, nil)

	c := &stubContext{sender: &telebot.User{ID: userID}, text: "quinoa"}
	require.NoError(t, NewItemSelectHandler(deps)(c))

	stored, err := deps.FSM.GetState(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, state.StateItemSelect, stored.CurrentState)
	assert.Equal(t, "quinoa", stored.StringValue(state.CtxTypedName))

	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0], "don't know")
}

func TestItemSelectHandler_WithoutFlow(t *testing.T) {
	_, storage, deps := setupFlowTest(t)
	ctx := context.Background()
	userID := int64(11)

	require.NoError(t, storage.SetState(ctx, userID, &state.UserState{
		UserID:       userID,
		CurrentState: state.StateItemSelect,
	}))

	c := &stubContext{sender: &telebot.User{ID: userID}, text: "milk"}
	err := NewItemSelectHandler(deps)(c)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "E400", appErr.Code)
}

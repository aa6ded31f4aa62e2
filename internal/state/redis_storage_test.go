package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedisStorage_SetAndGet(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	t.Cleanup(cleanup)

	storage := NewRedisStorage(client, testLogger())

	ctx := context.Background()
	userState := &UserState{
		UserID:       123,
		CurrentState: StatePurchaseQty,
		Context: map[string]interface{}{
			CtxFlow:     FlowBought,
			CtxItemName: "Milk",
		},
	}

	err := storage.SetState(ctx, userState.UserID, userState)
	assert.NoError(t, err)

	result, err := storage.GetState(ctx, userState.UserID)
	assert.NoError(t, err)
	if assert.NotNil(t, result) {
		assert.Equal(t, userState.UserID, result.UserID)
		assert.Equal(t, userState.CurrentState, result.CurrentState)
		assert.Equal(t, userState.Context, result.Context)
	}
}

func TestRedisStorage_GetNotFound(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	t.Cleanup(cleanup)

	storage := NewRedisStorage(client, testLogger())

	state, err := storage.GetState(context.Background(), 999)
	assert.Nil(t, state)
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestRedisStorage_ClearState(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	t.Cleanup(cleanup)

	storage := NewRedisStorage(client, testLogger())

	ctx := context.Background()
	userState := &UserState{
		UserID:       456,
		CurrentState: StatePendingQty,
		Context:      map[string]interface{}{CtxQuantity: 3.0},
	}

	err := storage.SetState(ctx, userState.UserID, userState)
	assert.NoError(t, err)

	err = storage.ClearState(ctx, userState.UserID)
	assert.NoError(t, err)

	state, err := storage.GetState(ctx, userState.UserID)
	assert.Nil(t, state)
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestRedisStorage_GetAllStates(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	t.Cleanup(cleanup)

	storage := NewRedisStorage(client, testLogger())

	ctx := context.Background()
	for _, userID := range []int64{1, 2, 3} {
		err := storage.SetState(ctx, userID, &UserState{
			UserID:       userID,
			CurrentState: StateIdle,
		})
		assert.NoError(t, err)
	}

	states, err := storage.GetAllStates(ctx)
	assert.NoError(t, err)
	assert.Len(t, states, 3)
}

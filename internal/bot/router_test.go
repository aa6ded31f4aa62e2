package bot

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	"github.com/lewis-cheung/grocery-bot/internal/bot/handlers"
	"github.com/lewis-cheung/grocery-bot/internal/state"
)

// fakeFSM serves GetState only; the router never mutates state itself.
type fakeFSM struct {
	state.StateMachine

	current state.State
}

func (f *fakeFSM) GetState(_ context.Context, userID int64) (*state.UserState, error) {
	if f.current == "" {
		return nil, state.ErrStateNotFound
	}
	return &state.UserState{UserID: userID, CurrentState: f.current}, nil
}

type routeContext struct {
	telebot.Context

	sender *telebot.User
	text   string
}

func (r *routeContext) Sender() *telebot.User       { return r.sender }
func (r *routeContext) Text() string                { return r.text }
func (r *routeContext) Callback() *telebot.Callback { return nil }

func routerTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRouter_StateDispatchRunsMiddlewares(t *testing.T) {
	log := routerTestLogger()
	dispatcher := NewDispatcher(&fakeFSM{current: state.StatePurchaseQty}, log)

	var handled, middlewareCalls int
	dispatcher.RegisterStateHandler(state.StatePurchaseQty, func(telebot.Context) error {
		handled++
		return nil
	})

	router := NewRouter(dispatcher, log)
	router.Use(func(next handlers.Handler) handlers.Handler {
		return func(c telebot.Context) error {
			middlewareCalls++
			return next(c)
		}
	})

	c := &routeContext{sender: &telebot.User{ID: 5}, text: "3"}
	require.NoError(t, router.Route(c))

	assert.Equal(t, 1, handled)
	assert.Equal(t, 1, middlewareCalls)
}

func TestRouter_CommandTakesPrecedenceOverState(t *testing.T) {
	log := routerTestLogger()
	dispatcher := NewDispatcher(&fakeFSM{current: state.StatePurchaseQty}, log)

	var stateHandled bool
	dispatcher.RegisterStateHandler(state.StatePurchaseQty, func(telebot.Context) error {
		stateHandled = true
		return nil
	})

	var commandHandled bool
	router := NewRouter(dispatcher, log)
	router.RegisterCommand("/list", func(telebot.Context) error {
		commandHandled = true
		return nil
	})

	c := &routeContext{sender: &telebot.User{ID: 6}, text: "/list"}
	require.NoError(t, router.Route(c))

	assert.True(t, commandHandled)
	assert.False(t, stateHandled)
}

func TestRouter_DefaultHandlerWithoutState(t *testing.T) {
	log := routerTestLogger()
	dispatcher := NewDispatcher(&fakeFSM{}, log)

	var defaulted bool
	router := NewRouter(dispatcher, log)
	router.SetDefault(func(telebot.Context) error {
		defaulted = true
		return nil
	})

	c := &routeContext{sender: &telebot.User{ID: 7}, text: "hello"}
	require.NoError(t, router.Route(c))

	assert.True(t, defaulted)
}

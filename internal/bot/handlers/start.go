package handlers

import (
	"context"
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/lewis-cheung/grocery-bot/internal/bot/keyboard"
	"github.com/lewis-cheung/grocery-bot/internal/state"
	"github.com/lewis-cheung/grocery-bot/internal/user"
)

// NewStartHandler greets the user, ensures a profile exists and resets the
// conversation to idle.
func NewStartHandler(users *user.Service, fsm state.StateMachine, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}

		ctx := context.Background()

		profile, err := users.GetOrCreate(ctx, sender)
		if err != nil {
			log.Error("failed to upsert user on start", slog.Int64("chat_id", sender.ID), slog.Any("error", err))
			return c.Send("An internal error occurred. Please try again later.")
		}

		if setErr := fsm.SetState(ctx, sender.ID, state.StateIdle, nil); setErr != nil {
			log.Error("failed to reset user state", slog.Int64("chat_id", sender.ID), slog.Any("error", setErr))
			return c.Send("An internal error occurred. Please try again later.")
		}

		greeting := "Welcome! I keep track of your grocery purchases and prices."
		if profile != nil && profile.FirstName != "" {
			greeting = fmt.Sprintf("Welcome, %s! I keep track of your grocery purchases and prices.", profile.FirstName)
		}

		if err := c.Send(greeting, keyboard.MainMenuReply()); err != nil {
			return err
		}

		return c.Send("Use /new to add an item, /bought after a purchase, /want to build a shopping list, /list to see everything, or /help for details.")
	}
}

package handlers

import (
	telebot "gopkg.in/telebot.v3"

	"github.com/lewis-cheung/grocery-bot/internal/state"
	"github.com/lewis-cheung/grocery-bot/pkg/metrics"
)

// NewRepromptHandler answers text typed at a button-only prompt by pointing
// the user back to the buttons.
func NewRepromptHandler(s state.State, message string) Handler {
	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		metrics.RecordReprompt(string(s))
		return c.Send(message)
	}
}

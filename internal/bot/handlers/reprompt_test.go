package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	"github.com/lewis-cheung/grocery-bot/internal/state"
)

func TestRepromptHandler_NudgesBackToButtons(t *testing.T) {
	c := &stubContext{sender: &telebot.User{ID: 3}, text: "bottles"}

	handler := NewRepromptHandler(state.StateNewItemUnit, "Please pick a unit with the buttons above, or /cancel.")
	require.NoError(t, handler(c))

	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0], "pick a unit")
}

package keyboard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lewis-cheung/grocery-bot/internal/bot/keyboard"
)

func TestMainMenuReply(t *testing.T) {
	markup := keyboard.MainMenuReply()

	require.True(t, markup.ResizeKeyboard)

	expectedRows := [][]string{
		{"/bought", "/want"},
		{"/list", "/price"},
	}

	require.Len(t, markup.ReplyKeyboard, len(expectedRows))

	for i, row := range expectedRows {
		require.Len(t, markup.ReplyKeyboard[i], len(row))
		for j, text := range row {
			assert.Equal(t, text, markup.ReplyKeyboard[i][j].Text)
		}
	}
}

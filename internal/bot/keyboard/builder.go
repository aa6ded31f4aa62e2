package keyboard

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/lewis-cheung/grocery-bot/internal/domain"
)

// Builder creates inline keyboards for bot conversations.
type Builder struct {
	log *slog.Logger
}

// NewBuilder returns a new Builder instance.
func NewBuilder(log *slog.Logger) *Builder {
	return &Builder{log: log}
}

// MainMenu builds the idle state menu.
func (b *Builder) MainMenu() *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	markup.InlineKeyboard = [][]telebot.InlineButton{
		{
			{
				Text: "I bought something 🛒",
				Data: "menu_bought",
			},
		},
		{
			{
				Text: "Add to shopping list 📝",
				Data: "menu_want",
			},
		},
		{
			{
				Text: "My items 📋",
				Data: "menu_list",
			},
		},
	}
	return markup
}

// UnitButtons builds the measurement unit picker shown when creating an item.
func (b *Builder) UnitButtons() *telebot.ReplyMarkup {
	row := make([]telebot.InlineButton, 0, len(domain.Units))
	for _, unit := range domain.Units {
		encoded, err := EncodeCallback("unit", string(unit))
		if err != nil {
			if b.log != nil {
				b.log.Error("failed to encode unit callback", slog.Any("error", err))
			}
			continue
		}

		row = append(row, telebot.InlineButton{
			Text: string(unit),
			Data: encoded,
		})
	}

	markup := &telebot.ReplyMarkup{}
	markup.InlineKeyboard = [][]telebot.InlineButton{row}
	return markup
}

// CandidateButtons builds one button per fuzzy match plus a create-new option.
func (b *Builder) CandidateButtons(candidates []*domain.GroceryItem) *telebot.ReplyMarkup {
	rows := make([][]telebot.InlineButton, 0, len(candidates)+1)

	for _, item := range candidates {
		encoded, err := EncodeCallback("pick", item.ID.Hex())
		if err != nil {
			if b.log != nil {
				b.log.Error("failed to encode pick callback", slog.Any("error", err))
			}
			continue
		}

		rows = append(rows, []telebot.InlineButton{
			{
				Text: item.Name,
				Data: encoded,
			},
		})
	}

	rows = append(rows, []telebot.InlineButton{
		{
			Text: "Create new item ➕",
			Data: "pick_new",
		},
	})

	markup := &telebot.ReplyMarkup{}
	markup.InlineKeyboard = rows
	return markup
}

// ConfirmButtons builds confirmation buttons for purchase or delete actions.
func (b *Builder) ConfirmButtons(action string) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	markup.InlineKeyboard = [][]telebot.InlineButton{
		{
			{
				Text: "Confirm ✅",
				Data: action + "_ok",
			},
			{
				Text: "Cancel ❌",
				Data: action + "_no",
			},
		},
	}
	return markup
}

// CancelButton builds a single cancel button.
func (b *Builder) CancelButton() *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	markup.InlineKeyboard = [][]telebot.InlineButton{
		{
			{
				Text: "Cancel ❌",
				Data: "cancel",
			},
		},
	}
	return markup
}

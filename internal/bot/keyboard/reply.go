package keyboard

import (
	telebot "gopkg.in/telebot.v3"
)

// MainMenuReply builds a persistent reply keyboard with the common commands.
func MainMenuReply() *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{
		ResizeKeyboard:  true,
		OneTimeKeyboard: false,
	}

	boughtBtn := markup.Text("/bought")
	wantBtn := markup.Text("/want")
	listBtn := markup.Text("/list")
	priceBtn := markup.Text("/price")

	markup.Reply(
		markup.Row(boughtBtn, wantBtn),
		markup.Row(listBtn, priceBtn),
	)

	return markup
}

package handlers

import (
	telebot "gopkg.in/telebot.v3"
)

const helpText = `Here's what I can do:

/new <name> - start tracking a grocery item
/bought <name> - record a purchase (quantity and price)
/want <name> - put an item on the shopping list
/list - show every tracked item with average prices
/price <name> - show price statistics for one item
/delete <name> - stop tracking an item
/cancel - abandon the current dialog

Item names don't have to be exact. If you make a typo I'll suggest the closest matches.`

// NewHelpHandler handles /help.
func NewHelpHandler() Handler {
	return func(c telebot.Context) error {
		return c.Send(helpText)
	}
}

package handlers

import (
	"fmt"

	telebot "gopkg.in/telebot.v3"

	"github.com/lewis-cheung/grocery-bot/internal/domain"
	"github.com/lewis-cheung/grocery-bot/internal/format"
	"github.com/lewis-cheung/grocery-bot/internal/state"
)

// NewPriceHandler handles /price, showing derived price statistics.
func NewPriceHandler(deps ItemFlowDeps) Handler {
	return NewItemFlowHandler(deps, state.FlowPrice, "Which item's price do you want to see?")
}

// SendItemStats replies with the item's purchase history summary.
func SendItemStats(c telebot.Context, item *domain.GroceryItem) error {
	if item == nil {
		return nil
	}

	var totalQty, totalPrice float64
	for _, p := range item.Purchases {
		totalQty += p.Quantity
		totalPrice += p.Price
	}

	text := fmt.Sprintf("*%s*\n", format.EscapeMarkdownV2(item.Name))

	if len(item.Purchases) == 0 {
		text += format.EscapeMarkdownV2("No purchases recorded yet.")
		return c.Send(text, telebot.ModeMarkdownV2)
	}

	avg, _ := item.AveragePrice()
	text += format.EscapeMarkdownV2(fmt.Sprintf(
		"Purchases: %d\nTotal bought: %s %s\nTotal spent: %.2f\nAverage price: %.2f per %s",
		len(item.Purchases),
		formatNumber(totalQty),
		item.Unit,
		totalPrice,
		avg,
		item.Unit.DisplayLabel(),
	))

	if item.HasPending() {
		text += format.EscapeMarkdownV2(fmt.Sprintf(
			"\nPending: %s %s",
			formatNumber(item.Pending.Quantity),
			item.Unit,
		))
	}

	return c.Send(text, telebot.ModeMarkdownV2)
}

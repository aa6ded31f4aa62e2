package handlers

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	telebot "gopkg.in/telebot.v3"

	"github.com/lewis-cheung/grocery-bot/internal/state"
	"github.com/lewis-cheung/grocery-bot/pkg/metrics"
)

// NewWantHandler handles /want, marking an item as pending purchase.
func NewWantHandler(deps ItemFlowDeps) Handler {
	return NewItemFlowHandler(deps, state.FlowWant, "Which item do you need?")
}

// NewPendingQtyHandler consumes the wanted quantity and stores the pending
// purchase.
func NewPendingQtyHandler(deps ItemFlowDeps) Handler {
	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		ctx := context.Background()
		userID := c.Sender().ID

		userState, err := deps.FSM.GetState(ctx, userID)
		if err != nil {
			return err
		}

		qty, err := parsePositiveNumber(c.Text())
		if err != nil {
			metrics.RecordReprompt(string(state.StatePendingQty))
			return c.Send(fmt.Sprintf("That doesn't look like a quantity. How many %s do you need?",
				userState.StringValue(state.CtxUnit)))
		}

		id, err := primitive.ObjectIDFromHex(userState.StringValue(state.CtxItemID))
		if err != nil {
			if clearErr := deps.FSM.ClearState(ctx, userID); clearErr != nil {
				return clearErr
			}
			return c.Send("I lost track of the item. Start again with /want.")
		}

		if err := deps.Groceries.SetPending(ctx, userID, id, qty); err != nil {
			return err
		}

		if err := deps.FSM.ClearState(ctx, userID); err != nil {
			return err
		}

		return c.Send(fmt.Sprintf("Noted. %s %s of %s is on the shopping list.",
			formatNumber(qty),
			userState.StringValue(state.CtxUnit),
			userState.StringValue(state.CtxItemName),
		))
	}
}

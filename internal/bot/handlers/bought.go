package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	telebot "gopkg.in/telebot.v3"

	"github.com/lewis-cheung/grocery-bot/internal/domain"
	"github.com/lewis-cheung/grocery-bot/internal/notify"
	"github.com/lewis-cheung/grocery-bot/internal/state"
	"github.com/lewis-cheung/grocery-bot/pkg/metrics"
)

// NewBoughtHandler handles /bought.
func NewBoughtHandler(deps ItemFlowDeps) Handler {
	return NewItemFlowHandler(deps, state.FlowBought, "Which item did you buy?")
}

// NewPurchaseQtyHandler consumes the bought quantity.
func NewPurchaseQtyHandler(deps ItemFlowDeps) Handler {
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
			metrics.RecordReprompt(string(state.StatePurchaseQty))
			return c.Send(fmt.Sprintf("That doesn't look like a quantity. How many %s did you buy?",
				userState.StringValue(state.CtxUnit)))
		}

		if err := deps.FSM.TransitionTo(ctx, userID, state.StatePurchasePrice, map[string]interface{}{
			state.CtxFlow:     userState.StringValue(state.CtxFlow),
			state.CtxItemID:   userState.StringValue(state.CtxItemID),
			state.CtxItemName: userState.StringValue(state.CtxItemName),
			state.CtxUnit:     userState.StringValue(state.CtxUnit),
			state.CtxQuantity: qty,
		}); err != nil {
			return err
		}

		return c.Send("How much did you pay in total?")
	}
}

// NewPurchasePriceHandler consumes the total price and asks for confirmation.
func NewPurchasePriceHandler(deps ItemFlowDeps) Handler {
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

		price, err := parseNonNegativeNumber(c.Text())
		if err != nil {
			metrics.RecordReprompt(string(state.StatePurchasePrice))
			return c.Send("That doesn't look like a price. How much did you pay in total?")
		}

		qty, _ := userState.FloatValue(state.CtxQuantity)

		if err := deps.FSM.TransitionTo(ctx, userID, state.StatePurchaseConfirm, map[string]interface{}{
			state.CtxFlow:     userState.StringValue(state.CtxFlow),
			state.CtxItemID:   userState.StringValue(state.CtxItemID),
			state.CtxItemName: userState.StringValue(state.CtxItemName),
			state.CtxUnit:     userState.StringValue(state.CtxUnit),
			state.CtxQuantity: qty,
			state.CtxPrice:    price,
		}); err != nil {
			return err
		}

		return c.Send(
			fmt.Sprintf("Record %s %s of %s for %.2f?",
				formatNumber(qty),
				userState.StringValue(state.CtxUnit),
				userState.StringValue(state.CtxItemName),
				price,
			),
			deps.Keyboard.ConfirmButtons("buy"),
		)
	}
}

// NewBuyConfirmHandler records the purchase once the user confirms.
func NewBuyConfirmHandler(deps ItemFlowDeps, notifier *notify.Notifier) CallbackHandler {
	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		ctx := context.Background()
		sender := c.Sender()
		userID := sender.ID

		userState, err := deps.FSM.GetState(ctx, userID)
		if err != nil {
			return err
		}

		id, err := primitive.ObjectIDFromHex(userState.StringValue(state.CtxItemID))
		if err != nil {
			if clearErr := deps.FSM.ClearState(ctx, userID); clearErr != nil {
				return clearErr
			}
			return c.Send("This purchase can no longer be recorded. Start again with /bought.")
		}

		qty, _ := userState.FloatValue(state.CtxQuantity)
		price, _ := userState.FloatValue(state.CtxPrice)

		if respondErr := c.Respond(); respondErr != nil {
			deps.logger().Warn("callback respond failed", slog.Any("error", respondErr))
		}

		item, err := deps.Groceries.RecordPurchase(ctx, userID, id, qty, price)
		if err != nil {
			return err
		}

		if err := deps.FSM.ClearState(ctx, userID); err != nil {
			return err
		}

		notifier.PurchaseRecorded(ctx, &domain.User{
			ChatID:    sender.ID,
			FirstName: sender.FirstName,
			LastName:  sender.LastName,
			Username:  sender.Username,
		}, item, qty, price)

		reply := fmt.Sprintf("Recorded %s %s of %s for %.2f.", formatNumber(qty), item.Unit, item.Name, price)
		if avg, ok := item.AveragePrice(); ok {
			reply += fmt.Sprintf(" Average price: %.2f per %s.", avg, item.Unit.DisplayLabel())
		}

		return c.Send(reply)
	}
}

// NewBuyCancelHandler aborts the in-flight purchase.
func NewBuyCancelHandler(deps ItemFlowDeps) CallbackHandler {
	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		if respondErr := c.Respond(); respondErr != nil {
			deps.logger().Warn("callback respond failed", slog.Any("error", respondErr))
		}

		if err := deps.FSM.ClearState(context.Background(), c.Sender().ID); err != nil {
			return err
		}

		return c.Send("Purchase discarded.")
	}
}

func parsePositiveNumber(text string) (float64, error) {
	v, err := parseNonNegativeNumber(text)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, fmt.Errorf("value must be positive: %v", v)
	}
	return v, nil
}

func parseNonNegativeNumber(text string) (float64, error) {
	text = strings.TrimSpace(strings.ReplaceAll(text, ",", "."))
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("value cannot be negative: %v", v)
	}
	return v, nil
}

func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	return s
}

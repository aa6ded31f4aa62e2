package handlers

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson/primitive"
	telebot "gopkg.in/telebot.v3"

	"github.com/lewis-cheung/grocery-bot/internal/state"
)

// NewDeleteHandler handles /delete.
func NewDeleteHandler(deps ItemFlowDeps) Handler {
	return NewItemFlowHandler(deps, state.FlowDelete, "Which item should I delete?")
}

// NewDeleteConfirmHandler removes the item once the user confirms.
func NewDeleteConfirmHandler(deps ItemFlowDeps) CallbackHandler {
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

		name := userState.StringValue(state.CtxItemName)

		id, err := primitive.ObjectIDFromHex(userState.StringValue(state.CtxItemID))
		if err != nil {
			if clearErr := deps.FSM.ClearState(ctx, userID); clearErr != nil {
				return clearErr
			}
			return c.Send("I lost track of the item. Start again with /delete.")
		}

		if respondErr := c.Respond(); respondErr != nil {
			deps.logger().Warn("callback respond failed", slog.Any("error", respondErr))
		}

		if err := deps.Groceries.DeleteItem(ctx, userID, id); err != nil {
			return err
		}

		if err := deps.FSM.ClearState(ctx, userID); err != nil {
			return err
		}

		return c.Send(fmt.Sprintf("Deleted %s and its purchase history.", name))
	}
}

// NewDeleteCancelHandler aborts the deletion.
func NewDeleteCancelHandler(deps ItemFlowDeps) CallbackHandler {
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

		return c.Send("Nothing was deleted.")
	}
}

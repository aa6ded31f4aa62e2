package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/lewis-cheung/grocery-bot/internal/bot/keyboard"
	"github.com/lewis-cheung/grocery-bot/internal/domain"
	"github.com/lewis-cheung/grocery-bot/internal/grocery"
	"github.com/lewis-cheung/grocery-bot/internal/state"
	"github.com/lewis-cheung/grocery-bot/pkg/metrics"
)

// NewNewItemHandler handles /new, starting the item creation dialog. A name
// may follow the command directly.
func NewNewItemHandler(deps ItemFlowDeps) Handler {
	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		ctx := context.Background()
		userID := c.Sender().ID

		if name := commandArgument(c.Text()); name != "" {
			if err := deps.FSM.SetState(ctx, userID, state.StateNewItemUnit, map[string]interface{}{
				state.CtxItemName: name,
			}); err != nil {
				return err
			}

			return c.Send(fmt.Sprintf("In which unit is %q measured?", name), deps.Keyboard.UnitButtons())
		}

		if err := deps.FSM.SetState(ctx, userID, state.StateNewItemName, nil); err != nil {
			return err
		}

		return c.Send("What is the item called?", deps.Keyboard.CancelButton())
	}
}

// NewItemNameHandler consumes the typed name for a new item.
func NewItemNameHandler(deps ItemFlowDeps) Handler {
	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		ctx := context.Background()
		userID := c.Sender().ID

		name := strings.TrimSpace(c.Text())
		if name == "" || strings.HasPrefix(name, "/") {
			metrics.RecordReprompt(string(state.StateNewItemName))
			return c.Send("Please type a name for the item.")
		}

		userState, err := deps.FSM.GetState(ctx, userID)
		if err != nil {
			return err
		}

		if err := deps.FSM.TransitionTo(ctx, userID, state.StateNewItemUnit, map[string]interface{}{
			state.CtxFlow:     userState.StringValue(state.CtxFlow),
			state.CtxItemName: name,
		}); err != nil {
			return err
		}

		return c.Send(fmt.Sprintf("In which unit is %q measured?", name), deps.Keyboard.UnitButtons())
	}
}

// NewUnitCallbackHandler finishes item creation once a unit button is pressed,
// then resumes the originating flow when there is one.
func NewUnitCallbackHandler(deps ItemFlowDeps) CallbackHandler {
	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil || c.Callback() == nil {
			return nil
		}

		ctx := context.Background()
		userID := c.Sender().ID

		_, rawUnit, err := keyboard.DecodeCallback(strings.TrimSpace(c.Callback().Data))
		if err != nil {
			return err
		}

		unit, err := domain.ParseUnit(rawUnit)
		if err != nil {
			deps.logger().Warn("unknown unit callback", slog.String("unit", rawUnit))
			return c.Respond()
		}

		userState, err := deps.FSM.GetState(ctx, userID)
		if err != nil {
			return err
		}

		name := userState.StringValue(state.CtxItemName)
		if name == "" {
			if clearErr := deps.FSM.ClearState(ctx, userID); clearErr != nil {
				return clearErr
			}
			return c.Send("I lost track of the item name. Start again with /new.")
		}

		if respondErr := c.Respond(); respondErr != nil {
			deps.logger().Warn("callback respond failed", slog.Any("error", respondErr))
		}

		item, err := deps.Groceries.CreateItem(ctx, userID, name, unit)
		if err != nil {
			if errors.Is(err, grocery.ErrDuplicateName) {
				if clearErr := deps.FSM.ClearState(ctx, userID); clearErr != nil {
					return clearErr
				}
				return c.Send(fmt.Sprintf("You already track %q.", name))
			}
			return err
		}

		flow := userState.StringValue(state.CtxFlow)
		switch flow {
		case state.FlowBought, state.FlowWant:
			return proceedWithItem(c, deps, flow, item, false)
		default:
			if err := deps.FSM.ClearState(ctx, userID); err != nil {
				return err
			}
			return c.Send(fmt.Sprintf("Added %s, measured in %s.", item.Name, item.Unit))
		}
	}
}

package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	telebot "gopkg.in/telebot.v3"

	"github.com/lewis-cheung/grocery-bot/internal/bot/keyboard"
	"github.com/lewis-cheung/grocery-bot/internal/domain"
	apperrors "github.com/lewis-cheung/grocery-bot/internal/errors"
	"github.com/lewis-cheung/grocery-bot/internal/grocery"
	"github.com/lewis-cheung/grocery-bot/internal/state"
)

// ItemFlowDeps bundles the dependencies shared by every item-centric flow.
type ItemFlowDeps struct {
	Groceries *grocery.Service
	FSM       state.StateMachine
	Keyboard  *keyboard.Builder
	Log       *slog.Logger
}

func (d ItemFlowDeps) logger() *slog.Logger {
	if d.Log != nil {
		return d.Log
	}
	return slog.Default()
}

// NewItemFlowHandler returns the command handler for flows that start by
// naming an item (/bought, /want, /delete, /price). Text after the command is
// resolved immediately, otherwise the user is prompted for a name.
func NewItemFlowHandler(deps ItemFlowDeps, flow string, prompt string) Handler {
	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		ctx := context.Background()
		userID := c.Sender().ID

		typed := commandArgument(c.Text())
		if typed == "" {
			if err := deps.FSM.SetState(ctx, userID, state.StateItemSelect, map[string]interface{}{
				state.CtxFlow: flow,
			}); err != nil {
				return err
			}

			return c.Send(prompt, deps.Keyboard.CancelButton())
		}

		return resolveAndProceed(c, deps, flow, typed, true)
	}
}

// NewItemPromptCallbackHandler starts an item flow from a menu button press.
func NewItemPromptCallbackHandler(deps ItemFlowDeps, flow string, prompt string) CallbackHandler {
	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		if respondErr := c.Respond(); respondErr != nil {
			deps.logger().Warn("callback respond failed", slog.Any("error", respondErr))
		}

		if err := deps.FSM.SetState(context.Background(), c.Sender().ID, state.StateItemSelect, map[string]interface{}{
			state.CtxFlow: flow,
		}); err != nil {
			return err
		}

		return c.Send(prompt, deps.Keyboard.CancelButton())
	}
}

// NewItemSelectHandler handles free text typed while the user is choosing an
// item.
func NewItemSelectHandler(deps ItemFlowDeps) Handler {
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

		flow := userState.StringValue(state.CtxFlow)
		if flow == "" {
			return apperrors.NewStateError("item selection reached without an active flow")
		}

		return resolveAndProceed(c, deps, flow, strings.TrimSpace(c.Text()), false)
	}
}

// NewPickCallbackHandler resolves a disambiguation button press into the
// selected item and continues the active flow.
func NewPickCallbackHandler(deps ItemFlowDeps) CallbackHandler {
	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil || c.Callback() == nil {
			return nil
		}

		ctx := context.Background()
		userID := c.Sender().ID

		_, hexID, err := keyboard.DecodeCallback(strings.TrimSpace(c.Callback().Data))
		if err != nil {
			return err
		}

		id, err := primitive.ObjectIDFromHex(hexID)
		if err != nil {
			deps.logger().Warn("malformed pick callback", slog.String("data", hexID))
			return c.Respond()
		}

		userState, err := deps.FSM.GetState(ctx, userID)
		if err != nil {
			return err
		}

		flow := userState.StringValue(state.CtxFlow)

		item, err := deps.Groceries.GetItem(ctx, userID, id)
		if err != nil {
			return err
		}

		if respondErr := c.Respond(); respondErr != nil {
			deps.logger().Warn("callback respond failed", slog.Any("error", respondErr))
		}

		return proceedWithItem(c, deps, flow, item, false)
	}
}

// NewPickNewCallbackHandler starts creating an item from the typed name that
// failed to match.
func NewPickNewCallbackHandler(deps ItemFlowDeps) CallbackHandler {
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

		flow := userState.StringValue(state.CtxFlow)
		typed := userState.StringValue(state.CtxTypedName)

		if respondErr := c.Respond(); respondErr != nil {
			deps.logger().Warn("callback respond failed", slog.Any("error", respondErr))
		}

		if typed == "" {
			if err := deps.FSM.TransitionTo(ctx, userID, state.StateNewItemName, map[string]interface{}{
				state.CtxFlow: flow,
			}); err != nil {
				return err
			}

			return c.Send("What is the item called?")
		}

		if err := deps.FSM.TransitionTo(ctx, userID, state.StateNewItemUnit, map[string]interface{}{
			state.CtxFlow:     flow,
			state.CtxItemName: typed,
		}); err != nil {
			return err
		}

		return c.Send(fmt.Sprintf("In which unit is %q measured?", typed), deps.Keyboard.UnitButtons())
	}
}

func resolveAndProceed(c telebot.Context, deps ItemFlowDeps, flow, typed string, fromCommand bool) error {
	ctx := context.Background()
	userID := c.Sender().ID

	if typed == "" {
		return c.Send("Please type an item name.")
	}

	res, err := deps.Groceries.ResolveByName(ctx, userID, typed)
	if err != nil {
		return err
	}

	if res.IsExact() {
		return proceedWithItem(c, deps, flow, res.Exact, fromCommand)
	}

	if err := deps.FSM.SetState(ctx, userID, state.StateItemSelect, map[string]interface{}{
		state.CtxFlow:      flow,
		state.CtxTypedName: typed,
	}); err != nil {
		return err
	}

	if res.IsMiss() {
		return c.Send(
			fmt.Sprintf("I don't know %q yet.", typed),
			deps.Keyboard.CandidateButtons(nil),
		)
	}

	return c.Send(
		fmt.Sprintf("Did you mean one of these instead of %q?", typed),
		deps.Keyboard.CandidateButtons(res.Candidates),
	)
}

func proceedWithItem(c telebot.Context, deps ItemFlowDeps, flow string, item *domain.GroceryItem, fromCommand bool) error {
	ctx := context.Background()
	userID := c.Sender().ID

	// A fresh command replaces whatever conversation was in progress, even
	// from a mid-flow state. Only intra-flow steps consult the transitions
	// table.
	advance := deps.FSM.TransitionTo
	if fromCommand {
		advance = deps.FSM.SetState
	}

	switch flow {
	case state.FlowBought:
		if err := advance(ctx, userID, state.StatePurchaseQty, map[string]interface{}{
			state.CtxFlow:     flow,
			state.CtxItemID:   item.ID.Hex(),
			state.CtxItemName: item.Name,
			state.CtxUnit:     string(item.Unit),
		}); err != nil {
			return err
		}

		return c.Send(fmt.Sprintf("How many %s of %s did you buy?", item.Unit, item.Name))

	case state.FlowWant:
		if err := advance(ctx, userID, state.StatePendingQty, map[string]interface{}{
			state.CtxFlow:     flow,
			state.CtxItemID:   item.ID.Hex(),
			state.CtxItemName: item.Name,
			state.CtxUnit:     string(item.Unit),
		}); err != nil {
			return err
		}

		return c.Send(fmt.Sprintf("How many %s of %s do you need?", item.Unit, item.Name))

	case state.FlowDelete:
		if err := advance(ctx, userID, state.StateDeleteConfirm, map[string]interface{}{
			state.CtxFlow:     flow,
			state.CtxItemID:   item.ID.Hex(),
			state.CtxItemName: item.Name,
		}); err != nil {
			return err
		}

		return c.Send(
			fmt.Sprintf("Delete %s and its whole purchase history?", grocery.Summary(item)),
			deps.Keyboard.ConfirmButtons("del"),
		)

	case state.FlowPrice:
		if err := deps.FSM.ClearState(ctx, userID); err != nil {
			return err
		}

		return SendItemStats(c, item)

	default:
		deps.logger().Warn("unknown flow", slog.String("flow", flow))
		return deps.FSM.ClearState(ctx, userID)
	}
}

// commandArgument strips the leading /command token and returns the rest.
func commandArgument(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return text
	}

	parts := strings.SplitN(text, " ", 2)
	if len(parts) < 2 {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

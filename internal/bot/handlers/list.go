package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/lewis-cheung/grocery-bot/internal/bot/keyboard"
	"github.com/lewis-cheung/grocery-bot/internal/domain"
	"github.com/lewis-cheung/grocery-bot/internal/format"
)

const listPageSize = 10

// NewListHandler handles /list, rendering the first page of tracked items.
func NewListHandler(deps ItemFlowDeps) Handler {
	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		return sendItemsPage(c, deps, 1)
	}
}

// NewListPageCallbackHandler handles pagination button presses.
func NewListPageCallbackHandler(deps ItemFlowDeps) CallbackHandler {
	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil || c.Callback() == nil {
			return nil
		}

		_, raw, err := keyboard.DecodeCallback(strings.TrimSpace(c.Callback().Data))
		if err != nil {
			return err
		}

		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			page = 1
		}

		if respondErr := c.Respond(); respondErr != nil {
			deps.logger().Warn("callback respond failed", slog.Any("error", respondErr))
		}

		return sendItemsPage(c, deps, page)
	}
}

func sendItemsPage(c telebot.Context, deps ItemFlowDeps, page int) error {
	ctx := context.Background()
	userID := c.Sender().ID

	items, err := deps.Groceries.ListItems(ctx, userID)
	if err != nil {
		return err
	}

	if len(items) == 0 {
		return c.Send("You aren't tracking any items yet. Add one with /new.")
	}

	totalPages := (len(items) + listPageSize - 1) / listPageSize
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * listPageSize
	end := start + listPageSize
	if end > len(items) {
		end = len(items)
	}

	text := renderItemList(items[start:end])

	if totalPages == 1 {
		return c.Send(text, telebot.ModeMarkdownV2)
	}

	markup, err := keyboard.NewInlineKeyboard().
		AddRow(keyboard.PaginationButtons("page", page, totalPages)...).
		Build()
	if err != nil {
		return err
	}

	return c.Send(text, markup, telebot.ModeMarkdownV2)
}

func renderItemList(items []*domain.GroceryItem) string {
	var sb strings.Builder
	sb.WriteString("*Your items*\n")

	for _, item := range items {
		line := fmt.Sprintf("• %s (%s)", item.Name, item.Unit)
		if avg, ok := item.AveragePrice(); ok {
			line += fmt.Sprintf(", avg %.2f per %s", avg, item.Unit.DisplayLabel())
		}
		if item.HasPending() {
			line += fmt.Sprintf(", need %s %s", formatNumber(item.Pending.Quantity), item.Unit)
		}

		sb.WriteString(format.EscapeMarkdownV2(line))
		sb.WriteString("\n")
	}

	return sb.String()
}

package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/lewis-cheung/grocery-bot/internal/domain"
	apperrors "github.com/lewis-cheung/grocery-bot/internal/errors"
	"github.com/lewis-cheung/grocery-bot/internal/format"
)

// Sender is the subset of telebot.Bot the notifier needs.
type Sender interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// Notifier fans out purchase announcements to the configured chats. Failures
// never propagate to the triggering handler.
type Notifier struct {
	sender  Sender
	chats   []int64
	breaker *apperrors.CircuitBreaker
	retry   apperrors.RetryConfig
	log     *slog.Logger
}

func New(sender Sender, chats []int64, log *slog.Logger) *Notifier {
	if log == nil {
		log = slog.Default()
	}

	return &Notifier{
		sender:  sender,
		chats:   chats,
		breaker: apperrors.NewCircuitBreaker(5, 30*time.Second),
		retry:   apperrors.DefaultRetryConfig(),
		log:     log,
	}
}

// PurchaseRecorded announces a recorded purchase to every notification chat.
func (n *Notifier) PurchaseRecorded(ctx context.Context, user *domain.User, item *domain.GroceryItem, quantity, price float64) {
	if n == nil || n.sender == nil || len(n.chats) == 0 || item == nil {
		return
	}

	text := n.renderPurchase(user, item, quantity, price)

	for _, chatID := range n.chats {
		n.send(ctx, chatID, text)
	}
}

// PendingReminder nudges the item owner about a stale pending purchase.
func (n *Notifier) PendingReminder(ctx context.Context, item *domain.GroceryItem) {
	if n == nil || n.sender == nil || item == nil || item.Pending == nil {
		return
	}

	text := fmt.Sprintf(
		"Still need to buy *%s*? You marked %s %s as wanted\\.",
		format.EscapeMarkdownV2(item.Name),
		format.EscapeMarkdownV2(trimFloat(item.Pending.Quantity)),
		format.EscapeMarkdownV2(string(item.Unit)),
	)

	n.send(ctx, item.UserID, text)
}

func (n *Notifier) send(ctx context.Context, chatID int64, text string) {
	err := n.breaker.Execute(ctx, func(ctx context.Context) error {
		return apperrors.WithRetry(ctx, n.retry, func(ctx context.Context) error {
			_, sendErr := n.sender.Send(telebot.ChatID(chatID), text, telebot.ModeMarkdownV2)
			if sendErr != nil {
				return apperrors.NewTelegramError(sendErr)
			}
			return nil
		})
	})
	if err != nil {
		n.log.Warn("notification delivery failed",
			slog.Int64("chat_id", chatID),
			slog.Any("error", err),
		)
	}
}

func (n *Notifier) renderPurchase(user *domain.User, item *domain.GroceryItem, quantity, price float64) string {
	who := "Someone"
	if user != nil {
		if user.FirstName != "" {
			who = user.FirstName
		} else if user.Username != "" {
			who = user.Username
		}
	}

	return fmt.Sprintf(
		"%s bought %s %s of *%s* for %s\\.",
		format.EscapeMarkdownV2(who),
		format.EscapeMarkdownV2(trimFloat(quantity)),
		format.EscapeMarkdownV2(string(item.Unit)),
		format.EscapeMarkdownV2(item.Name),
		format.EscapeMarkdownV2(fmt.Sprintf("%.2f", price)),
	)
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}

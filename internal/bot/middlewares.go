package bot

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/lewis-cheung/grocery-bot/internal/bot/handlers"
	errors "github.com/lewis-cheung/grocery-bot/internal/errors"
	"github.com/lewis-cheung/grocery-bot/internal/user"
	"github.com/lewis-cheung/grocery-bot/pkg/config"
)

// RecoveryMiddleware catches panics, reports them via the centralized handler, and notifies the user.
func RecoveryMiddleware(log *slog.Logger, errHandler *errors.Handler) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("panic recovered in handler", slog.Any("panic", r), slog.String("stack", string(debug.Stack())))

					userMsg := "⚠️ Something went wrong. Please try again later."
					if errHandler != nil {
						if msg, _ := errHandler.Handle(context.Background(), fmt.Errorf("panic recovered: %v", r)); msg != "" {
							userMsg = msg
						}
					}

					if c != nil {
						if sendErr := c.Send(userMsg); sendErr != nil {
							log.Error("failed to notify user about panic", slog.Any("error", sendErr))
						}
					}

					err = nil
				}
			}()

			return next(c)
		}
	}
}

// ErrorHandlingMiddleware centralizes error reporting and user messaging for handler failures.
func ErrorHandlingMiddleware(errHandler *errors.Handler) handlers.Middleware {
	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			userMsg := "Something went wrong. Please try again later."
			if errHandler != nil {
				if msg, _ := errHandler.Handle(context.Background(), err); msg != "" {
					userMsg = msg
				}
			}

			if c != nil {
				_ = c.Send(userMsg)
			}

			return nil
		}
	}
}

// LoggingMiddleware logs basic telemetry about incoming updates.
func LoggingMiddleware(log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			start := time.Now()
			userID := int64(0)
			if c != nil && c.Sender() != nil {
				userID = c.Sender().ID
			}

			action := ""
			if c != nil {
				if cb := c.Callback(); cb != nil {
					action = cb.Data
				} else {
					action = c.Text()
				}
			}

			log.Info("handling update", slog.Int64("user_id", userID), slog.String("action", action))
			err := next(c)
			log.Info("handled update",
				slog.Int64("user_id", userID),
				slog.String("action", action),
				slog.Duration("duration", time.Since(start)),
				slog.Any("error", err),
			)

			return err
		}
	}
}

// WhitelistMiddleware drops updates from chats outside the configured whitelist.
func WhitelistMiddleware(cfg config.BotConfig, log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			if c == nil || c.Sender() == nil {
				return nil
			}

			if !cfg.ChatAllowed(c.Sender().ID) {
				log.Warn("rejected update from non-whitelisted chat", slog.Int64("chat_id", c.Sender().ID))
				return c.Send("Sorry, this bot is private.")
			}

			return next(c)
		}
	}
}

// AuthMiddleware ensures that each incoming request is associated with a user record.
func AuthMiddleware(userService *user.Service, log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			if userService == nil || c == nil || c.Sender() == nil {
				return next(c)
			}

			if _, err := userService.GetOrCreate(context.Background(), c.Sender()); err != nil {
				log.Error("failed to upsert user", slog.Int64("chat_id", c.Sender().ID), slog.Any("error", err))
				return err
			}

			return next(c)
		}
	}
}

// LastCommandMiddleware records command timestamps without blocking request flow.
func LastCommandMiddleware(userService *user.Service) handlers.Middleware {
	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			if userService != nil && c != nil && c.Sender() != nil {
				chatID := c.Sender().ID

				go func(id int64) {
					_ = userService.TouchLastCommand(context.Background(), id)
				}(chatID)
			}

			return next(c)
		}
	}
}

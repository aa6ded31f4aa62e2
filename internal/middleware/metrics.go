package middleware

import (
	"strings"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/lewis-cheung/grocery-bot/internal/bot/handlers"
	"github.com/lewis-cheung/grocery-bot/internal/bot/keyboard"
	"github.com/lewis-cheung/grocery-bot/pkg/metrics"
)

// Metrics measures execution time and status for bot handlers, reporting them
// to Prometheus.
func Metrics(next handlers.Handler) handlers.Handler {
	if next == nil {
		return nil
	}

	return func(c telebot.Context) error {
		start := time.Now()
		err := next(c)

		status := "ok"
		if err != nil {
			status = "error"
		}

		metrics.RecordCommand(commandLabel(c), status, time.Since(start))

		return err
	}
}

// commandLabel maps an update to a bounded metric label. Free text typed
// during a conversation step must not become a label value, and callback
// payloads carry item ids, so both are reduced to their action token.
func commandLabel(c telebot.Context) string {
	if c == nil {
		return "unknown"
	}

	if cb := c.Callback(); cb != nil && cb.Data != "" {
		unique, _, err := keyboard.DecodeCallback(strings.TrimSpace(cb.Data))
		if err != nil {
			return "callback"
		}
		return "cb:" + unique
	}

	text := c.Text()
	if strings.HasPrefix(text, "/") {
		if idx := strings.IndexByte(text, ' '); idx > 0 {
			text = text[:idx]
		}
		return text
	}

	if text != "" {
		return "text"
	}

	return "unknown"
}

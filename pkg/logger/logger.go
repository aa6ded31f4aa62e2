// Package logger builds the application slog pipeline.
package logger

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/lewis-cheung/grocery-bot/pkg/config"
)

// New assembles a slog.Logger according to the logging config: stdout (text or
// JSON) plus optional rotated file output, sensitive-field masking, and a
// Sentry fan-out for warn-and-above when Sentry is enabled.
func New(cfg config.LoggingConfig, sentryEnabled bool) *slog.Logger {
	level := parseLevel(cfg.Level)

	var out io.Writer = os.Stdout
	if cfg.File.Enabled && cfg.File.Path != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.File.Path,
			MaxSize:    cfg.File.MaxSizeMB,
			MaxBackups: cfg.File.MaxBackups,
			MaxAge:     cfg.File.MaxAgeDays,
			Compress:   true,
		})
	}

	opts := &slog.HandlerOptions{Level: level}

	var base slog.Handler
	if cfg.Format == "json" {
		base = slog.NewJSONHandler(out, opts)
	} else {
		base = slog.NewTextHandler(out, opts)
	}

	if sentryEnabled {
		sentryHandler := slogsentry.Option{Level: slog.LevelWarn}.NewSentryHandler()
		base = slogmulti.Fanout(base, sentryHandler)
	}

	return slog.New(NewMaskingHandler(base))
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

package handlers

import (
	telebot "gopkg.in/telebot.v3"
)

// Handler processes a bot command or a dispatched conversation step.
type Handler func(c telebot.Context) error

// CallbackHandler processes inline keyboard callback events.
type CallbackHandler func(c telebot.Context) error

// Middleware wraps a Handler with cross-cutting behavior.
type Middleware func(Handler) Handler

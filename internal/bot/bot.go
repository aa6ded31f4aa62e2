package bot

import (
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/lewis-cheung/grocery-bot/internal/bot/handlers"
	"github.com/lewis-cheung/grocery-bot/internal/bot/keyboard"
	errors "github.com/lewis-cheung/grocery-bot/internal/errors"
	"github.com/lewis-cheung/grocery-bot/internal/grocery"
	"github.com/lewis-cheung/grocery-bot/internal/idempotency"
	"github.com/lewis-cheung/grocery-bot/internal/middleware"
	"github.com/lewis-cheung/grocery-bot/internal/notify"
	"github.com/lewis-cheung/grocery-bot/internal/state"
	"github.com/lewis-cheung/grocery-bot/internal/user"
	"github.com/lewis-cheung/grocery-bot/pkg/config"
)

// Bot wraps telebot.Bot with application dependencies required for handling updates.
type Bot struct {
	telebot            *telebot.Bot
	log                *slog.Logger
	cfg                config.Config
	fsm                state.StateMachine
	rateLimitMw        *middleware.RateLimitMiddleware
	router             *Router
	dispatcher         *Dispatcher
	keyboard           *keyboard.Builder
	errHandler         *errors.Handler
	idempotencyManager idempotency.Manager
	notifier           *notify.Notifier
}

// New builds a telegram bot instance configured according to the application settings.
func New(
	cfg config.Config,
	log *slog.Logger,
	fsm state.StateMachine,
	idempotencyManager idempotency.Manager,
	rateLimitMw *middleware.RateLimitMiddleware,
	userService *user.Service,
	groceryService *grocery.Service,
) (*Bot, error) {
	settings := telebot.Settings{
		Token: cfg.Bot.Token,
	}

	if cfg.Bot.Mode == "webhook" {
		settings.Poller = &telebot.Webhook{
			Listen: cfg.Server.Port,
		}
	} else {
		settings.Poller = &telebot.LongPoller{
			Timeout: cfg.Bot.Timeout,
		}
	}

	tb, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	kb := keyboard.NewBuilder(log)
	dispatcher := NewDispatcher(fsm, log)
	router := NewRouter(dispatcher, log)
	errHandler := errors.NewHandler(log, cfg.Sentry.Enabled)
	notifier := notify.New(tb, cfg.Bot.NotifyChats, log)

	b := &Bot{
		telebot:            tb,
		log:                log,
		cfg:                cfg,
		fsm:                fsm,
		rateLimitMw:        rateLimitMw,
		router:             router,
		dispatcher:         dispatcher,
		keyboard:           kb,
		errHandler:         errHandler,
		idempotencyManager: idempotencyManager,
		notifier:           notifier,
	}

	b.setupRouter(userService, groceryService)

	if b.rateLimitMw != nil {
		b.telebot.Use(b.rateLimitMw.Handle)
	}

	b.registerTelebotHandlers()

	return b, nil
}

// Start runs the telegram bot event loop.
func (b *Bot) Start() {
	if b.telebot != nil {
		b.telebot.Start()
	}
}

// Stop gracefully stops the telegram bot.
func (b *Bot) Stop() {
	if b.telebot == nil {
		return
	}

	if b.log != nil {
		b.log.Info("stopping telegram bot...")
	}

	b.telebot.Stop()
}

// Telebot exposes the underlying telebot.Bot instance for integrations such as health checks.
func (b *Bot) Telebot() *telebot.Bot {
	return b.telebot
}

// Notifier exposes the purchase notifier for background jobs.
func (b *Bot) Notifier() *notify.Notifier {
	return b.notifier
}

func (b *Bot) setupRouter(userService *user.Service, groceryService *grocery.Service) {
	if b.router == nil {
		return
	}

	b.router.Use(RecoveryMiddleware(b.log, b.errHandler))
	b.router.Use(middleware.Idempotency(b.idempotencyManager, b.log))
	b.router.Use(ErrorHandlingMiddleware(b.errHandler))
	b.router.Use(LoggingMiddleware(b.log))
	b.router.Use(WhitelistMiddleware(b.cfg.Bot, b.log))
	b.router.Use(AuthMiddleware(userService, b.log))
	b.router.Use(LastCommandMiddleware(userService))
	b.router.Use(middleware.Metrics)

	deps := handlers.ItemFlowDeps{
		Groceries: groceryService,
		FSM:       b.fsm,
		Keyboard:  b.keyboard,
		Log:       b.log,
	}

	b.router.RegisterCommand(CommandStart, handlers.NewStartHandler(userService, b.fsm, b.log))
	b.router.RegisterCommand(CommandHelp, handlers.NewHelpHandler())
	b.router.RegisterCommand(CommandNew, handlers.NewNewItemHandler(deps))
	b.router.RegisterCommand(CommandBought, handlers.NewBoughtHandler(deps))
	b.router.RegisterCommand(CommandWant, handlers.NewWantHandler(deps))
	b.router.RegisterCommand(CommandList, handlers.NewListHandler(deps))
	b.router.RegisterCommand(CommandPrice, handlers.NewPriceHandler(deps))
	b.router.RegisterCommand(CommandDelete, handlers.NewDeleteHandler(deps))
	b.router.RegisterCommand(CommandCancel, handlers.NewCancelHandler(b.fsm, b.keyboard, b.log))

	cancelCallback := handlers.CallbackHandler(handlers.NewCancelHandler(b.fsm, b.keyboard, b.log))

	// pick is registered with its separator so pick_new never matches it.
	b.router.RegisterCallback(CallbackPickNew, handlers.NewPickNewCallbackHandler(deps))
	b.router.RegisterCallback(CallbackPick+keyboard.CallbackDataSeparator, handlers.NewPickCallbackHandler(deps))
	b.router.RegisterCallback(CallbackUnit+keyboard.CallbackDataSeparator, handlers.NewUnitCallbackHandler(deps))
	b.router.RegisterCallback(CallbackBuyConfirm, handlers.NewBuyConfirmHandler(deps, b.notifier))
	b.router.RegisterCallback(CallbackBuyCancel, handlers.NewBuyCancelHandler(deps))
	b.router.RegisterCallback(CallbackDeleteConfirm, handlers.NewDeleteConfirmHandler(deps))
	b.router.RegisterCallback(CallbackDeleteCancel, handlers.NewDeleteCancelHandler(deps))
	b.router.RegisterCallback(CallbackListPage+keyboard.CallbackDataSeparator, handlers.NewListPageCallbackHandler(deps))
	b.router.RegisterCallback("menu_bought", handlers.NewItemPromptCallbackHandler(deps, state.FlowBought, "Which item did you buy?"))
	b.router.RegisterCallback("menu_want", handlers.NewItemPromptCallbackHandler(deps, state.FlowWant, "Which item do you need?"))
	b.router.RegisterCallback("menu_list", handlers.CallbackHandler(handlers.NewListHandler(deps)))
	b.router.RegisterCallback("cancel", cancelCallback)

	b.dispatcher.RegisterStateHandler(state.StateItemSelect, handlers.NewItemSelectHandler(deps))
	b.dispatcher.RegisterStateHandler(state.StateNewItemName, handlers.NewItemNameHandler(deps))
	b.dispatcher.RegisterStateHandler(state.StatePurchaseQty, handlers.NewPurchaseQtyHandler(deps))
	b.dispatcher.RegisterStateHandler(state.StatePurchasePrice, handlers.NewPurchasePriceHandler(deps))
	b.dispatcher.RegisterStateHandler(state.StatePendingQty, handlers.NewPendingQtyHandler(deps))
	b.dispatcher.RegisterStateHandler(state.StateNewItemUnit,
		handlers.NewRepromptHandler(state.StateNewItemUnit, "Please pick a unit with the buttons above, or /cancel."))
	b.dispatcher.RegisterStateHandler(state.StatePurchaseConfirm,
		handlers.NewRepromptHandler(state.StatePurchaseConfirm, "Please answer with the buttons above, or /cancel."))
	b.dispatcher.RegisterStateHandler(state.StateDeleteConfirm,
		handlers.NewRepromptHandler(state.StateDeleteConfirm, "Please answer with the buttons above, or /cancel."))
}

func (b *Bot) registerTelebotHandlers() {
	if b.telebot == nil || b.router == nil {
		return
	}

	b.telebot.Handle(telebot.OnText, b.router.Route)
	b.telebot.Handle(telebot.OnCallback, b.router.Route)
}

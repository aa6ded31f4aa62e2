package bot

// Command constants for Telegram bot commands.
const (
	CommandStart  = "/start"
	CommandHelp   = "/help"
	CommandNew    = "/new"
	CommandBought = "/bought"
	CommandWant   = "/want"
	CommandList   = "/list"
	CommandPrice  = "/price"
	CommandDelete = "/delete"
	CommandCancel = "/cancel"
)

// Callback prefix constants for inline button interactions.
const (
	CallbackPick          = "pick"
	CallbackPickNew       = "pick_new"
	CallbackUnit          = "unit"
	CallbackBuyConfirm    = "buy_ok"
	CallbackBuyCancel     = "buy_no"
	CallbackDeleteConfirm = "del_ok"
	CallbackDeleteCancel  = "del_no"
	CallbackListPage      = "page"
)

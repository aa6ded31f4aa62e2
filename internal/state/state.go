package state

import "time"

// State represents a finite-state machine state in a conversation.
type State string

const (
	// StateIdle indicates that the bot is waiting for the next command.
	StateIdle State = "idle"
	// StateItemSelect indicates the user is disambiguating fuzzy name matches.
	StateItemSelect State = "item_select"
	// StateNewItemName indicates the user is typing a name for a new item.
	StateNewItemName State = "new_item_name"
	// StateNewItemUnit indicates the user is choosing a unit for a new item.
	StateNewItemUnit State = "new_item_unit"
	// StatePurchaseQty indicates the user is entering a bought quantity.
	StatePurchaseQty State = "purchase_qty"
	// StatePurchasePrice indicates the user is entering the paid price.
	StatePurchasePrice State = "purchase_price"
	// StatePurchaseConfirm indicates the user is confirming the purchase.
	StatePurchaseConfirm State = "purchase_confirm"
	// StatePendingQty indicates the user is entering a wanted quantity.
	StatePendingQty State = "pending_qty"
	// StateDeleteConfirm indicates the user is confirming an item deletion.
	StateDeleteConfirm State = "delete_confirm"
	// StateError indicates the conversation needs recovery.
	StateError State = "error"
)

// Context keys shared between handlers across prompt steps.
const (
	CtxFlow      = "flow"
	CtxItemID    = "item_id"
	CtxItemName  = "item_name"
	CtxTypedName = "typed_name"
	CtxUnit      = "unit"
	CtxQuantity  = "quantity"
	CtxPrice     = "price"
)

// Flow values stored under CtxFlow.
const (
	FlowBought = "bought"
	FlowWant   = "want"
	FlowDelete = "delete"
	FlowPrice  = "price"
)

// UserState captures the current FSM state for a Telegram user.
type UserState struct {
	UserID       int64                  `json:"user_id"`
	CurrentState State                  `json:"current_state"`
	Context      map[string]interface{} `json:"context"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// StringValue returns the context value under key as a string. The context
// map round-trips through JSON, so every stored value comes back untyped.
func (s *UserState) StringValue(key string) string {
	if s == nil || s.Context == nil {
		return ""
	}

	if v, ok := s.Context[key].(string); ok {
		return v
	}

	return ""
}

// FloatValue returns the context value under key as a float64.
func (s *UserState) FloatValue(key string) (float64, bool) {
	if s == nil || s.Context == nil {
		return 0, false
	}

	v, ok := s.Context[key].(float64)
	return v, ok
}

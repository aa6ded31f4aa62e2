package state

// validTransitions contains the permitted non-recovery transitions between
// conversation states. Transitions back to idle and into the error state are
// always allowed.
var validTransitions = map[State][]State{
	StateIdle: {
		StateItemSelect,
		StateNewItemName,
		StatePurchaseQty,
		StatePendingQty,
		StateDeleteConfirm,
	},
	StateItemSelect: {
		StatePurchaseQty,
		StatePendingQty,
		StateDeleteConfirm,
		StateNewItemName,
		StateNewItemUnit,
		StateItemSelect,
	},
	StateNewItemName: {
		StateNewItemUnit,
	},
	StateNewItemUnit: {
		StatePurchaseQty,
		StatePendingQty,
	},
	StatePurchaseQty: {
		StatePurchasePrice,
	},
	StatePurchasePrice: {
		StatePurchaseConfirm,
	},
	StatePurchaseConfirm: {},
	StatePendingQty:      {},
	StateDeleteConfirm:   {},
}

// IsTransitionAllowed reports whether moving from one state to another is
// valid.
func IsTransitionAllowed(from, to State) bool {
	if to == StateError || to == StateIdle {
		return true
	}

	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}

	for _, state := range allowed {
		if state == to {
			return true
		}
	}

	return false
}

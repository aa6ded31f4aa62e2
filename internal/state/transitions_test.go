package state

import "testing"

func TestIsTransitionAllowed(t *testing.T) {
	tests := []struct {
		name string
		from State
		to   State
		want bool
	}{
		{name: "idle to item select", from: StateIdle, to: StateItemSelect, want: true},
		{name: "idle to new item name", from: StateIdle, to: StateNewItemName, want: true},
		{name: "idle skips straight to confirm", from: StateIdle, to: StatePurchaseConfirm, want: false},
		{name: "item select to purchase qty", from: StateItemSelect, to: StatePurchaseQty, want: true},
		{name: "item select to unit pick for new item", from: StateItemSelect, to: StateNewItemUnit, want: true},
		{name: "qty to price", from: StatePurchaseQty, to: StatePurchasePrice, want: true},
		{name: "price to confirm", from: StatePurchasePrice, to: StatePurchaseConfirm, want: true},
		{name: "qty cannot jump to confirm", from: StatePurchaseQty, to: StatePurchaseConfirm, want: false},
		{name: "new item name to unit", from: StateNewItemName, to: StateNewItemUnit, want: true},
		{name: "unit pick continues into qty", from: StateNewItemUnit, to: StatePurchaseQty, want: true},
		{name: "unit pick continues into pending qty", from: StateNewItemUnit, to: StatePendingQty, want: true},
		{name: "any state back to idle", from: StatePurchaseConfirm, to: StateIdle, want: true},
		{name: "any state into error", from: StatePendingQty, to: StateError, want: true},
		{name: "unknown source state", from: State("bogus"), to: StateItemSelect, want: false},
		{name: "unknown source back to idle", from: State("bogus"), to: StateIdle, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransitionAllowed(tt.from, tt.to); got != tt.want {
				t.Errorf("IsTransitionAllowed(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

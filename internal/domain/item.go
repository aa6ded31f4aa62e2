package domain

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Unit is the measurement unit of a grocery item.
type Unit string

const (
	UnitPiece      Unit = "pc"
	UnitGram       Unit = "g"
	UnitKilogram   Unit = "kg"
	UnitMilliliter Unit = "ml"
	UnitLiter      Unit = "l"
)

// Units lists every supported unit in presentation order.
var Units = []Unit{UnitPiece, UnitGram, UnitKilogram, UnitMilliliter, UnitLiter}

// ParseUnit converts user input into a Unit.
func ParseUnit(s string) (Unit, error) {
	u := Unit(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Units {
		if u == known {
			return known, nil
		}
	}

	return "", fmt.Errorf("unknown unit %q", s)
}

// DisplayDenominator returns the quantity that average prices are quoted
// against. Loose goods are quoted per 100 of the base unit so the numbers stay
// readable (price per 100 g rather than per gram).
func (u Unit) DisplayDenominator() float64 {
	switch u {
	case UnitGram, UnitMilliliter:
		return 100
	default:
		return 1
	}
}

// DisplayLabel describes the denominator for rendering, e.g. "100 g".
func (u Unit) DisplayLabel() string {
	denom := u.DisplayDenominator()
	if denom == 1 {
		return string(u)
	}

	return fmt.Sprintf("%.0f %s", denom, string(u))
}

// PurchaseRecord is an immutable log entry of a completed purchase.
type PurchaseRecord struct {
	Quantity    float64            `json:"quantity" bson:"quantity"`
	Price       float64            `json:"price" bson:"price"`
	PurchasedAt primitive.DateTime `json:"purchased_at" bson:"purchased_at"`
}

// PendingPurchase marks an item as wanted but not yet bought.
type PendingPurchase struct {
	Quantity    float64            `json:"quantity" bson:"quantity"`
	RequestedAt primitive.DateTime `json:"requested_at" bson:"requested_at"`
}

// GroceryItem is a tracked grocery item owned by a single user. The name is
// unique per user, case-insensitively, which the collection enforces through
// a compound index on (user_id, name_lower).
type GroceryItem struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID    int64              `json:"user_id" bson:"user_id"`
	Name      string             `json:"name" bson:"name"`
	NameLower string             `json:"name_lower" bson:"name_lower"`
	Unit      Unit               `json:"unit" bson:"unit"`
	Pending   *PendingPurchase   `json:"pending,omitempty" bson:"pending,omitempty"`
	Purchases []PurchaseRecord   `json:"purchases" bson:"purchases"`
	CreatedAt primitive.DateTime `json:"created_at" bson:"created_at"`
}

// NewGroceryItem builds an item with the derived lowercase name set.
func NewGroceryItem(userID int64, name string, unit Unit, now primitive.DateTime) *GroceryItem {
	name = strings.TrimSpace(name)

	return &GroceryItem{
		UserID:    userID,
		Name:      name,
		NameLower: strings.ToLower(name),
		Unit:      unit,
		Purchases: []PurchaseRecord{},
		CreatedAt: now,
	}
}

// AveragePrice reduces the purchase history to a mean price per display
// denominator. It reports false when no priced quantity has been recorded.
func (i *GroceryItem) AveragePrice() (float64, bool) {
	var totalPrice, totalQty float64
	for _, p := range i.Purchases {
		totalPrice += p.Price
		totalQty += p.Quantity
	}

	if totalQty == 0 {
		return 0, false
	}

	return totalPrice / totalQty * i.Unit.DisplayDenominator(), true
}

// HasPending reports whether a pending purchase is set.
func (i *GroceryItem) HasPending() bool {
	return i.Pending != nil
}

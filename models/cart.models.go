package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxLineQuantity is the largest quantity a buyer can type for one line
const MaxLineQuantity = 99

// ProductRef is the product snapshot stored on a cart line
type ProductRef struct {
	ID    string          `json:"_id"`
	Name  string          `json:"name,omitempty"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image,omitempty"`
	Unit  string          `json:"unit,omitempty"`
}

// CartLine represents one product (optionally variant-qualified) in the cart
type CartLine struct {
	Product   ProductRef `json:"product"`
	Quantity  int        `json:"quantity"`
	VariantID string     `json:"variantId,omitempty"`
	AddedAt   time.Time  `json:"addedAt"`
}

// Matches reports whether the line holds the given product and variant
func (l CartLine) Matches(productID, variantID string) bool {
	return l.Product.ID == productID && l.VariantID == variantID
}

// Subtotal is price times quantity for the line
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartTotal sums the line subtotals
func CartTotal(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// CartCount sums the line quantities
func CartCount(lines []CartLine) int {
	count := 0
	for _, l := range lines {
		count += l.Quantity
	}
	return count
}

package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Address represents a shipping address for delivery
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	Country    string `json:"country"`
	PostalCode string `json:"postalCode,omitempty"`
}

// Missing lists the required fields that are blank
func (a Address) Missing() []string {
	var missing []string
	if strings.TrimSpace(a.Street) == "" {
		missing = append(missing, "street")
	}
	if strings.TrimSpace(a.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(a.Country) == "" {
		missing = append(missing, "country")
	}
	return missing
}

// OrderStatus is the fulfilment state of an order
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
}

// CanTransitionTo reports whether a farmer may move an order from s to next
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Known reports whether s is a recognised status
func (s OrderStatus) Known() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// OrderProduct is the product reference inside an order line. The backend
// returns either the bare id or the populated product document.
type OrderProduct struct {
	ID    string          `json:"_id"`
	Name  string          `json:"name,omitempty"`
	Price decimal.Decimal `json:"price,omitempty"`
}

// UnmarshalJSON accepts both `"<id>"` and `{"_id": "<id>", ...}`
func (p *OrderProduct) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &p.ID)
	}
	type plain OrderProduct
	return json.Unmarshal(b, (*plain)(p))
}

// OrderItem represents a single product line of an order
type OrderItem struct {
	Product  OrderProduct    `json:"product"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price,omitempty"`
}

// Order represents an order as stored by the backend
type Order struct {
	ID              string          `json:"_id"`
	Buyer           *UserRef        `json:"buyer,omitempty"`
	Products        []OrderItem     `json:"products"`
	ShippingAddress Address         `json:"shippingAddress"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	Status          OrderStatus     `json:"status"` // e.g., "pending", "shipped"
	Total           decimal.Decimal `json:"total"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// Amount returns whichever total the backend filled in
func (o Order) Amount() decimal.Decimal {
	if !o.Total.IsZero() {
		return o.Total
	}
	return o.TotalAmount
}

// OrderLine is one entry of the order-creation payload
type OrderLine struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

// OrderRequest is the body posted to /orders
type OrderRequest struct {
	Products        []OrderLine     `json:"products"`
	ShippingAddress Address         `json:"shippingAddress"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	PaymentDetails  *PaymentDetails `json:"paymentDetails,omitempty"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
}

// OrderSummary aggregates the orders a farmer received
type OrderSummary struct {
	Total    int                 `json:"total"`
	ByStatus map[OrderStatus]int `json:"byStatus"`
	Revenue  decimal.Decimal     `json:"totalRevenue"`
}

// Summarize counts orders per status and sums their totals
func Summarize(orders []Order) OrderSummary {
	summary := OrderSummary{
		Total: len(orders),
		ByStatus: map[OrderStatus]int{
			StatusProcessing: 0,
			StatusShipped:    0,
			StatusDelivered:  0,
			StatusCancelled:  0,
		},
		Revenue: decimal.Zero,
	}
	for _, o := range orders {
		if _, tracked := summary.ByStatus[o.Status]; tracked {
			summary.ByStatus[o.Status]++
		}
		summary.Revenue = summary.Revenue.Add(o.Amount())
	}
	return summary
}

package models

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how the buyer settles an order
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentMobile PaymentMethod = "mobile"
)

// Valid reports whether m is an accepted payment method
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentMobile:
		return true
	}
	return false
}

// PaymentDetails carries card or mobile-money details, depending on the method
type PaymentDetails struct {
	CardNumber string `json:"cardNumber,omitempty"`
	Expiry     string `json:"expiry,omitempty"`
	CVV        string `json:"cvv,omitempty"`
	Provider   string `json:"provider,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// Payment represents a payment capture request for an order
type Payment struct {
	OrderID string          `json:"orderId"`
	Amount  decimal.Decimal `json:"amount"`
	Method  PaymentMethod   `json:"method"`
	PaymentDetails
}

var (
	cardNumberPattern = regexp.MustCompile(`^\d{16}$`)
	cvvPattern        = regexp.MustCompile(`^\d{3,4}$`)
	phonePattern      = regexp.MustCompile(`^\d{10}$`)
)

// Problem returns a user-facing reason the payment cannot be sent, or "".
func (p Payment) Problem() string {
	if strings.TrimSpace(p.OrderID) == "" || !p.Amount.IsPositive() {
		return "Invalid payment data"
	}
	switch p.Method {
	case PaymentCard:
		if p.CardNumber == "" || p.Expiry == "" || p.CVV == "" {
			return "Incomplete card details"
		}
		if !cardNumberPattern.MatchString(strings.ReplaceAll(p.CardNumber, " ", "")) {
			return "Invalid card number"
		}
		if !cvvPattern.MatchString(p.CVV) {
			return "Invalid CVV"
		}
	case PaymentMobile:
		if p.Provider == "" || p.Phone == "" {
			return "Incomplete mobile money details"
		}
		if !phonePattern.MatchString(p.Phone) {
			return "Invalid phone number"
		}
	}
	return ""
}

// PaymentReceipt is what /payments/process answers with
type PaymentReceipt struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

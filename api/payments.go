package api

import (
	"context"
	"net/http"

	"agrilink-storefront/models"
)

// ProcessPayment captures a payment for an order. A 2xx answer with
// success=false is reported as a *ResponseError carrying the backend message.
func (c *Client) ProcessPayment(ctx context.Context, p models.Payment) (*models.PaymentReceipt, error) {
	env, err := c.Do(ctx, http.MethodPost, "/payments/process", nil, p)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "Payment processing failed"
		}
		return nil, &ResponseError{Status: http.StatusOK, Message: msg, URL: "/payments/process"}
	}

	msg := env.Message
	if msg == "" {
		msg = "Payment processed successfully"
	}
	return &models.PaymentReceipt{Success: true, Message: msg, Data: env.Data}, nil
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"agrilink-storefront/models"
)

// ListOrders returns every order visible to the user, filtered by query
func (c *Client) ListOrders(ctx context.Context, query url.Values) ([]models.Order, error) {
	return c.listOrders(ctx, "/orders", query)
}

// MyOrders returns the orders the signed-in buyer placed
func (c *Client) MyOrders(ctx context.Context) ([]models.Order, error) {
	return c.listOrders(ctx, "/orders/my-orders", nil)
}

// ReceivedOrders returns the orders placed against the signed-in farmer's products
func (c *Client) ReceivedOrders(ctx context.Context) ([]models.Order, error) {
	return c.listOrders(ctx, "/orders/received", nil)
}

func (c *Client) listOrders(ctx context.Context, path string, query url.Values) ([]models.Order, error) {
	env, err := c.Do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	orders := []models.Order{}
	if err := env.DecodeList(&orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder fetches one order
func (c *Client) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	env, err := c.Do(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeOrder(env)
}

// CreateOrder places an order and returns the created document with the
// backend's message.
func (c *Client) CreateOrder(ctx context.Context, req models.OrderRequest) (*models.Order, string, error) {
	env, err := c.Do(ctx, http.MethodPost, "/orders", nil, req)
	if err != nil {
		return nil, "", err
	}
	order, err := decodeOrder(env)
	if err != nil {
		return nil, "", err
	}
	return order, env.Message, nil
}

// UpdateOrderStatus moves an order along the fulfilment workflow
func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	body := map[string]models.OrderStatus{"status": status}
	env, err := c.Do(ctx, http.MethodPatch, "/orders/"+url.PathEscape(id), nil, body)
	if err != nil {
		return nil, err
	}
	order, err := decodeOrder(env)
	if err != nil {
		return nil, err
	}
	if order.ID == "" {
		order.ID = id
	}
	if order.Status == "" {
		order.Status = status
	}
	return order, nil
}

// decodeOrder accepts the order either directly under data or under data.order
func decodeOrder(env *Envelope) (*models.Order, error) {
	if !env.HasData() && len(bytes.TrimSpace(env.raw)) == 0 {
		return &models.Order{}, nil
	}

	var wrapped struct {
		Order *models.Order `json:"order"`
	}
	var order models.Order
	if err := env.Decode(&order); err != nil {
		return nil, err
	}
	if order.ID != "" {
		return &order, nil
	}

	src := env.raw
	if env.HasData() {
		src = env.Data
	}
	if err := json.Unmarshal(src, &wrapped); err == nil && wrapped.Order != nil {
		return wrapped.Order, nil
	}
	return &order, nil
}

package stores

import (
	"context"
	"net/url"

	"agrilink-storefront/api"
	"agrilink-storefront/models"

	"github.com/sirupsen/logrus"
)

// Orders reads orders for buyers and farmers and moves them through the
// fulfilment workflow.
type Orders struct {
	client *api.Client
	log    *logrus.Entry
}

func NewOrders(client *api.Client, log *logrus.Entry) *Orders {
	return &Orders{client: client, log: log}
}

// ReceivedOrders is a farmer's incoming orders with their analytics
type ReceivedOrders struct {
	Orders  []models.Order      `json:"orders"`
	Summary models.OrderSummary `json:"summary"`
}

// All lists the orders visible to the user; query is passed through as-is
func (o *Orders) All(ctx context.Context, query url.Values) ([]models.Order, error) {
	orders, err := o.client.ListOrders(ctx, query)
	if err != nil {
		return nil, o.fail("orders.all", err, "Failed to fetch orders")
	}
	return orders, nil
}

// Mine lists the buyer's own orders, skipping malformed entries
func (o *Orders) Mine(ctx context.Context) ([]models.Order, error) {
	orders, err := o.client.MyOrders(ctx)
	if err != nil {
		return nil, o.fail("orders.mine", err, "Failed to fetch your orders")
	}
	valid := models.ValidOrders(orders)
	if dropped := len(orders) - len(valid); dropped > 0 {
		o.log.WithField("dropped", dropped).Warn("ignoring malformed orders")
	}
	return valid, nil
}

func (o *Orders) Received(ctx context.Context) (*ReceivedOrders, error) {
	orders, err := o.client.ReceivedOrders(ctx)
	if err != nil {
		return nil, o.fail("orders.received", err, "Failed to fetch received orders")
	}
	return &ReceivedOrders{Orders: orders, Summary: models.Summarize(orders)}, nil
}

func (o *Orders) Get(ctx context.Context, id string) (*models.Order, error) {
	if !models.IsValidID(id) {
		return nil, newError("orders.get", KindInvalidInput, "Invalid order ID")
	}
	order, err := o.client.GetOrder(ctx, id)
	if err != nil {
		return nil, o.fail("orders.get", err, "Failed to fetch order details")
	}
	return order, nil
}

// UpdateStatus moves an order to next if the workflow allows it from the
// order's current status.
func (o *Orders) UpdateStatus(ctx context.Context, id string, next models.OrderStatus) (*models.Order, error) {
	const op = "orders.update"

	if !models.IsValidID(id) {
		return nil, newError(op, KindInvalidInput, "Invalid order ID")
	}
	if !next.Known() {
		return nil, newError(op, KindInvalidInput, "Unknown order status")
	}

	current, err := o.client.GetOrder(ctx, id)
	if err != nil {
		return nil, o.fail(op, err, "Failed to fetch order details")
	}
	if !current.Status.CanTransitionTo(next) {
		return nil, newError(op, KindInvalidInput,
			"Cannot change order from "+string(current.Status)+" to "+string(next))
	}

	updated, err := o.client.UpdateOrderStatus(ctx, id, next)
	if err != nil {
		return nil, o.fail(op, err, "Failed to update order status")
	}
	o.log.WithFields(logrus.Fields{
		"order_id": id,
		"from":     current.Status,
		"to":       next,
	}).Info("order status updated")
	return updated, nil
}

func (o *Orders) fail(op string, err error, fallback string) *Error {
	e := classify(op, err, fallback)
	o.log.WithField("kind", e.Kind).WithError(err).Warn(fallback)
	return e
}

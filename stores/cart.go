package stores

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"agrilink-storefront/api"
	"agrilink-storefront/models"
	"agrilink-storefront/storage"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Checkout is what the buyer fills in on the checkout page
type Checkout struct {
	ShippingAddress models.Address         `json:"shippingAddress"`
	PaymentMethod   models.PaymentMethod   `json:"paymentMethod"`
	PaymentDetails  *models.PaymentDetails `json:"paymentDetails,omitempty"`
}

// OrderResult is the outcome of SubmitOrder
type OrderResult struct {
	Success bool          `json:"success"`
	Order   *models.Order `json:"order,omitempty"`
	Message string        `json:"message,omitempty"`
	Err     *Error        `json:"error,omitempty"`
}

// PaymentResult is the outcome of ProcessPayment
type PaymentResult struct {
	Success bool                   `json:"success"`
	Receipt *models.PaymentReceipt `json:"receipt,omitempty"`
	Message string                 `json:"message,omitempty"`
	Err     *Error                 `json:"error,omitempty"`
}

// Cart owns the buyer's cart lines and mirrors them to durable storage
// after every change.
type Cart struct {
	client  *api.Client
	storage storage.Store
	log     *logrus.Entry
	now     func() time.Time

	mu    sync.Mutex
	lines []models.CartLine
}

// NewCart restores the saved cart. A missing or unreadable snapshot gives
// an empty cart.
func NewCart(ctx context.Context, client *api.Client, st storage.Store, log *logrus.Entry) *Cart {
	c := &Cart{
		client:  client,
		storage: st,
		log:     log,
		now:     time.Now,
		lines:   []models.CartLine{},
	}

	raw, ok, err := storage.Lookup(ctx, st, storage.CartKey)
	switch {
	case err != nil:
		log.WithError(err).Error("failed to read saved cart")
	case ok && strings.TrimSpace(raw) != "":
		var lines []models.CartLine
		if err := json.Unmarshal([]byte(raw), &lines); err != nil {
			log.WithError(err).Warn("discarding corrupt cart snapshot")
		} else {
			c.lines = sanitize(lines)
		}
	}
	return c
}

// sanitize drops lines a hand-edited snapshot could carry but the cart
// never produces, and folds repeated (product, variant) lines into the
// first one so each pair appears once.
func sanitize(lines []models.CartLine) []models.CartLine {
	clean := make([]models.CartLine, 0, len(lines))
next:
	for _, l := range lines {
		if l.Product.ID == "" || l.Quantity < 1 {
			continue
		}
		for i := range clean {
			if clean[i].Matches(l.Product.ID, l.VariantID) {
				clean[i].Quantity += l.Quantity
				continue next
			}
		}
		clean = append(clean, l)
	}
	return clean
}

// Lines returns a copy of the cart lines in insertion order
func (c *Cart) Lines() []models.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyLocked()
}

func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return models.CartTotal(c.lines)
}

func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return models.CartCount(c.lines)
}

// Snapshot is the cart as the UI renders it
type Snapshot struct {
	Items []models.CartLine `json:"items"`
	Total decimal.Decimal   `json:"total"`
	Count int               `json:"count"`
}

func (c *Cart) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Items: c.copyLocked(),
		Total: models.CartTotal(c.lines),
		Count: models.CartCount(c.lines),
	}
}

func (c *Cart) copyLocked() []models.CartLine {
	out := make([]models.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// AddItem adds quantity of product, merging with an existing line for the
// same product and variant.
func (c *Cart) AddItem(ctx context.Context, product models.ProductRef, quantity int, variantID string) error {
	if strings.TrimSpace(product.ID) == "" {
		return newError("cart.add", KindInvalidInput, "Product is required")
	}
	if quantity < 1 {
		return newError("cart.add", KindInvalidInput, "Quantity must be at least 1")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].Matches(product.ID, variantID) {
			c.lines[i].Quantity += quantity
			c.persistLocked(ctx)
			return nil
		}
	}
	c.lines = append(c.lines, models.CartLine{
		Product:   product,
		Quantity:  quantity,
		VariantID: variantID,
		AddedAt:   c.now(),
	})
	c.persistLocked(ctx)
	return nil
}

// UpdateQuantity sets the quantity of a line. Anything below 1 removes it.
func (c *Cart) UpdateQuantity(ctx context.Context, productID string, quantity int, variantID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setQuantityLocked(ctx, productID, quantity, variantID)
}

// UpdateQuantityInput is UpdateQuantity for raw text typed by the buyer.
// Decimals are truncated.
func (c *Cart) UpdateQuantityInput(ctx context.Context, productID, raw, variantID string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return newError("cart.update", KindInvalidInput, "Quantity must be a number")
	}
	f = math.Trunc(f)
	if f > models.MaxLineQuantity {
		f = models.MaxLineQuantity
	}
	if f < 0 {
		f = 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.setQuantityLocked(ctx, productID, int(f), variantID)
	return nil
}

func (c *Cart) setQuantityLocked(ctx context.Context, productID string, quantity int, variantID string) {
	if quantity < 1 {
		c.removeLocked(ctx, productID, variantID)
		return
	}
	if quantity > models.MaxLineQuantity {
		quantity = models.MaxLineQuantity
	}
	for i := range c.lines {
		if c.lines[i].Matches(productID, variantID) {
			c.lines[i].Quantity = quantity
			c.persistLocked(ctx)
			return
		}
	}
}

// RemoveItem drops a line; removing a line that is not there is a no-op
func (c *Cart) RemoveItem(ctx context.Context, productID, variantID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(ctx, productID, variantID)
}

func (c *Cart) removeLocked(ctx context.Context, productID, variantID string) {
	kept := c.lines[:0:0]
	for _, l := range c.lines {
		if !l.Matches(productID, variantID) {
			kept = append(kept, l)
		}
	}
	c.lines = kept
	c.persistLocked(ctx)
}

// Clear empties the cart
func (c *Cart) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = []models.CartLine{}
	c.persistLocked(ctx)
}

// persistLocked mirrors the lines to storage. Failures are logged and the
// in-memory cart stays as it is.
func (c *Cart) persistLocked(ctx context.Context) {
	lines := c.lines
	if lines == nil {
		lines = []models.CartLine{}
	}
	b, err := json.Marshal(lines)
	if err != nil {
		c.log.WithError(err).Error("failed to encode cart")
		return
	}
	if err := c.storage.Set(ctx, storage.CartKey, string(b)); err != nil {
		c.log.WithError(err).WithField("items", len(lines)).Error("failed to persist cart")
	}
}

// SubmitOrder turns the cart into an order. The cart is cleared only when
// the backend accepts the order.
func (c *Cart) SubmitOrder(ctx context.Context, checkout Checkout) OrderResult {
	const op = "cart.submit"

	c.mu.Lock()
	lines := c.copyLocked()
	c.mu.Unlock()

	if len(lines) == 0 {
		return orderFailure(newError(op, KindEmptyCart, "Your cart is empty"))
	}
	if missing := checkout.ShippingAddress.Missing(); len(missing) > 0 {
		return orderFailure(newError(op, KindIncompleteAddress, "Please complete your shipping address", missing...))
	}
	if !checkout.PaymentMethod.Valid() {
		return orderFailure(newError(op, KindInvalidInput, "Please choose a valid payment method"))
	}

	req := models.OrderRequest{
		Products:        make([]models.OrderLine, 0, len(lines)),
		ShippingAddress: checkout.ShippingAddress,
		PaymentMethod:   checkout.PaymentMethod,
		PaymentDetails:  checkout.PaymentDetails,
		TotalAmount:     models.CartTotal(lines),
	}
	for _, l := range lines {
		req.Products = append(req.Products, models.OrderLine{Product: l.Product.ID, Quantity: l.Quantity})
	}

	order, msg, err := c.client.CreateOrder(ctx, req)
	if err != nil {
		e := classify(op, err, "Failed to place order")
		c.log.WithField("kind", e.Kind).WithError(err).Warn("order submission failed")
		return orderFailure(e)
	}

	c.Clear(ctx)
	if msg == "" {
		msg = "Order placed successfully"
	}
	c.log.WithField("order_id", order.ID).Info("order placed")
	return OrderResult{Success: true, Order: order, Message: msg}
}

func orderFailure(e *Error) OrderResult {
	return OrderResult{Message: e.Message, Err: e}
}

// ProcessPayment captures payment for a placed order
func (c *Cart) ProcessPayment(ctx context.Context, payment models.Payment) PaymentResult {
	const op = "cart.payment"

	if problem := payment.Problem(); problem != "" {
		e := newError(op, KindInvalidInput, problem)
		return PaymentResult{Message: e.Message, Err: e}
	}
	if !payment.Method.Valid() {
		e := newError(op, KindInvalidInput, "Please choose a valid payment method")
		return PaymentResult{Message: e.Message, Err: e}
	}
	payment.CardNumber = strings.ReplaceAll(payment.CardNumber, " ", "")

	receipt, err := c.client.ProcessPayment(ctx, payment)
	if err != nil {
		e := classify(op, err, "Payment processing failed")
		c.log.WithField("order_id", payment.OrderID).WithError(err).Warn("payment failed")
		return PaymentResult{Message: e.Message, Err: e}
	}
	return PaymentResult{Success: true, Receipt: receipt, Message: receipt.Message}
}

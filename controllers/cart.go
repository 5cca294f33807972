package controllers

import (
	"encoding/json"
	"net/http"

	"agrilink-storefront/models"
	"agrilink-storefront/stores"

	"github.com/gorilla/mux"
)

// CartController handles cart-related requests
type CartController struct {
	Cart *stores.Cart
}

// NewCartController creates a new CartController
func NewCartController(cart *stores.Cart) *CartController {
	return &CartController{Cart: cart}
}

// GetCart returns the cart lines with their total and count
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, "", cc.Cart.Snapshot())
}

// AddToCart adds a product to the cart
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	var item struct {
		Product   models.ProductRef `json:"product"`
		Quantity  *int              `json:"quantity"`
		VariantID string            `json:"variantId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		badInput(w)
		return
	}
	quantity := 1
	if item.Quantity != nil {
		quantity = *item.Quantity
	}

	if err := cc.Cart.AddItem(r.Context(), item.Product, quantity, item.VariantID); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Item added to cart", cc.Cart.Snapshot())
}

// UpdateQuantity sets the quantity of a line. The quantity may be sent as
// a number or as the raw text the buyer typed.
func (cc *CartController) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Quantity json.RawMessage `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badInput(w)
		return
	}

	raw := string(body.Quantity)
	var text string
	if err := json.Unmarshal(body.Quantity, &text); err == nil {
		raw = text
	}

	productID := mux.Vars(r)["productId"]
	variantID := r.URL.Query().Get("variant")
	if err := cc.Cart.UpdateQuantityInput(r.Context(), productID, raw, variantID); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Cart updated", cc.Cart.Snapshot())
}

// RemoveFromCart removes a product from the cart
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	productID := mux.Vars(r)["productId"]
	cc.Cart.RemoveItem(r.Context(), productID, r.URL.Query().Get("variant"))
	writeData(w, http.StatusOK, "Item removed from cart", cc.Cart.Snapshot())
}

// ClearCart empties the cart
func (cc *CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	cc.Cart.Clear(r.Context())
	writeData(w, http.StatusOK, "Cart cleared", cc.Cart.Snapshot())
}

// Checkout places an order for everything in the cart
func (cc *CartController) Checkout(w http.ResponseWriter, r *http.Request) {
	var checkout stores.Checkout
	if err := json.NewDecoder(r.Body).Decode(&checkout); err != nil {
		badInput(w)
		return
	}

	res := cc.Cart.SubmitOrder(r.Context(), checkout)
	if !res.Success {
		writeError(w, res.Err)
		return
	}
	writeData(w, http.StatusCreated, res.Message, res.Order)
}

// ProcessPayment captures payment for an order
func (cc *CartController) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	var payment models.Payment
	if err := json.NewDecoder(r.Body).Decode(&payment); err != nil {
		badInput(w)
		return
	}

	res := cc.Cart.ProcessPayment(r.Context(), payment)
	if !res.Success {
		writeError(w, res.Err)
		return
	}
	writeData(w, http.StatusOK, res.Message, res.Receipt)
}

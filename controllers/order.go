// controllers/order.go
package controllers

import (
	"encoding/json"
	"net/http"

	"agrilink-storefront/models"
	"agrilink-storefront/stores"

	"github.com/gorilla/mux"
)

// OrderController handles order-related requests
type OrderController struct {
	Orders *stores.Orders
}

// NewOrderController creates a new OrderController
func NewOrderController(orders *stores.Orders) *OrderController {
	return &OrderController{Orders: orders}
}

// GetOrders lists every order visible to the user; the query string is
// forwarded to the backend
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := oc.Orders.All(r.Context(), r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "", orders)
}

// GetMyOrders lists the buyer's own orders
func (oc *OrderController) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := oc.Orders.Mine(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "", orders)
}

// GetReceivedOrders lists a farmer's incoming orders with their summary
func (oc *OrderController) GetReceivedOrders(w http.ResponseWriter, r *http.Request) {
	received, err := oc.Orders.Received(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "", received)
}

// GetOrder returns one order
func (oc *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := oc.Orders.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "", order)
}

// UpdateOrderStatus moves an order along the fulfilment workflow
func (oc *OrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badInput(w)
		return
	}

	order, err := oc.Orders.UpdateStatus(r.Context(), mux.Vars(r)["id"], body.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Order status updated", order)
}

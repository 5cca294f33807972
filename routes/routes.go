// routes/routes.go
package routes

import (
	"agrilink-storefront/controllers"
	"agrilink-storefront/middleware"
	"agrilink-storefront/models"

	"github.com/gorilla/mux"
)

// Controllers groups the handlers the router dispatches to
type Controllers struct {
	User    *controllers.UserController
	Cart    *controllers.CartController
	Product *controllers.ProductController
	Order   *controllers.OrderController
}

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, session middleware.UserSource, c Controllers) {
	// Session routes
	router.HandleFunc("/session", c.User.GetProfile).Methods("GET")
	router.HandleFunc("/session/login", c.User.Login).Methods("POST")
	router.HandleFunc("/session/register", c.User.Register).Methods("POST")
	router.HandleFunc("/session/logout", c.User.Logout).Methods("POST")
	router.HandleFunc("/session/refresh", c.User.Refresh).Methods("POST")

	// Cart routes; the cart lives on this device and needs no session
	router.HandleFunc("/cart", c.Cart.GetCart).Methods("GET")
	router.HandleFunc("/cart", c.Cart.ClearCart).Methods("DELETE")
	router.HandleFunc("/cart/items", c.Cart.AddToCart).Methods("POST")
	router.HandleFunc("/cart/items/{productId}", c.Cart.UpdateQuantity).Methods("PUT")
	router.HandleFunc("/cart/items/{productId}", c.Cart.RemoveFromCart).Methods("DELETE")

	// Public product routes
	router.HandleFunc("/products", c.Product.GetProducts).Methods("GET")

	// Farmer routes; registered before the general protected routes so
	// /orders/received is not taken for an order id
	farmer := router.NewRoute().Subrouter()
	farmer.Use(middleware.RequireSession(session))
	farmer.Use(middleware.RequireRole(models.RoleFarmer))
	farmer.HandleFunc("/products/mine", c.Product.GetMyProducts).Methods("GET")
	farmer.HandleFunc("/products", c.Product.CreateProduct).Methods("POST")
	farmer.HandleFunc("/products/{id}", c.Product.UpdateProduct).Methods("PUT")
	farmer.HandleFunc("/products/{id}", c.Product.DeleteProduct).Methods("DELETE")
	farmer.HandleFunc("/orders/received", c.Order.GetReceivedOrders).Methods("GET")
	farmer.HandleFunc("/orders/{id}", c.Order.UpdateOrderStatus).Methods("PATCH")

	// Protected routes
	protected := router.NewRoute().Subrouter()
	protected.Use(middleware.RequireSession(session))
	protected.HandleFunc("/cart/checkout", c.Cart.Checkout).Methods("POST")
	protected.HandleFunc("/payments", c.Cart.ProcessPayment).Methods("POST")
	protected.HandleFunc("/orders", c.Order.GetOrders).Methods("GET")
	protected.HandleFunc("/orders/mine", c.Order.GetMyOrders).Methods("GET")
	protected.HandleFunc("/orders/{id}", c.Order.GetOrder).Methods("GET")
}

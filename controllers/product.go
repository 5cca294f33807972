package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"agrilink-storefront/models"
	"agrilink-storefront/stores"

	"github.com/gorilla/mux"
)

// defaultNearbyKm is used when lat/lng are given without a distance
const defaultNearbyKm = 50

// ProductController handles product-related requests
type ProductController struct {
	Catalog *stores.Catalog
}

// NewProductController creates a new ProductController
func NewProductController(catalog *stores.Catalog) *ProductController {
	return &ProductController{Catalog: catalog}
}

// GetProducts lists the catalog, near ?lat=&lng=&distance= when given
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	near, ok := nearbyQuery(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, response{Message: "lat, lng and distance must be numbers", Kind: stores.KindInvalidInput})
		return
	}

	products, err := pc.Catalog.List(r.Context(), near)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "", products)
}

func nearbyQuery(r *http.Request) (*models.NearbyQuery, bool) {
	q := r.URL.Query()
	if q.Get("lat") == "" && q.Get("lng") == "" {
		return nil, true
	}
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		return nil, false
	}
	lng, err := strconv.ParseFloat(q.Get("lng"), 64)
	if err != nil {
		return nil, false
	}
	distance := float64(defaultNearbyKm)
	if d := q.Get("distance"); d != "" {
		if distance, err = strconv.ParseFloat(d, 64); err != nil {
			return nil, false
		}
	}
	return &models.NearbyQuery{Lat: lat, Lng: lng, Distance: distance}, true
}

// GetMyProducts lists the signed-in farmer's products
func (pc *ProductController) GetMyProducts(w http.ResponseWriter, r *http.Request) {
	products, err := pc.Catalog.Mine(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "", products)
}

// CreateProduct handles adding a new product (farmers only)
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		badInput(w)
		return
	}

	created, err := pc.Catalog.Create(r.Context(), product)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, "Product created", created)
}

// UpdateProduct handles updating an existing product (farmers only)
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		badInput(w)
		return
	}

	updated, err := pc.Catalog.Update(r.Context(), mux.Vars(r)["id"], product)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Product updated", updated)
}

// DeleteProduct handles deleting a product (farmers only)
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := pc.Catalog.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Product deleted", nil)
}

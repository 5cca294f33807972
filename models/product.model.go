package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// The backend expects prices as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is a catalog entry as listed by the backend
type Product struct {
	ID          string          `json:"_id,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"` // stock on hand
	Unit        string          `json:"unit,omitempty"`
	Category    string          `json:"category,omitempty"`
	Image       string          `json:"image,omitempty"`
	Farmer      *UserRef        `json:"farmer,omitempty"`
	Location    *Location       `json:"location,omitempty"`
}

// Ref returns the subset of the product kept on a cart line
func (p Product) Ref() ProductRef {
	return ProductRef{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.Price,
		Image: p.Image,
		Unit:  p.Unit,
	}
}

// Validate returns field errors for a product about to be created or updated,
// or nil when the product is acceptable.
func (p Product) Validate() map[string]string {
	errs := map[string]string{}
	if len(strings.TrimSpace(p.Name)) < 3 {
		errs["name"] = "Name must be at least 3 characters"
	}
	if !p.Price.IsPositive() {
		errs["price"] = "Price must be a positive number"
	}
	if p.Quantity < 0 {
		errs["quantity"] = "Quantity must be 0 or more"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// NearbyQuery narrows a product listing to farms around a point
type NearbyQuery struct {
	Lat      float64
	Lng      float64
	Distance float64 // kilometres
}

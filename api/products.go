package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"agrilink-storefront/models"
)

// ListProducts returns the public catalog, optionally narrowed to farms near a point
func (c *Client) ListProducts(ctx context.Context, near *models.NearbyQuery) ([]models.Product, error) {
	var query url.Values
	if near != nil {
		query = url.Values{}
		query.Set("lat", strconv.FormatFloat(near.Lat, 'f', -1, 64))
		query.Set("lng", strconv.FormatFloat(near.Lng, 'f', -1, 64))
		query.Set("distance", strconv.FormatFloat(near.Distance, 'f', -1, 64))
	}
	return c.listProducts(ctx, "/products", query)
}

// MyProducts returns the products of the signed-in farmer
func (c *Client) MyProducts(ctx context.Context) ([]models.Product, error) {
	return c.listProducts(ctx, "/products/my-products", nil)
}

func (c *Client) listProducts(ctx context.Context, path string, query url.Values) ([]models.Product, error) {
	env, err := c.Do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	products := []models.Product{}
	if err := env.DecodeList(&products); err != nil {
		return nil, err
	}
	return products, nil
}

// CreateProduct adds a product to the farmer's listing
func (c *Client) CreateProduct(ctx context.Context, p models.Product) (*models.Product, error) {
	env, err := c.Do(ctx, http.MethodPost, "/products", nil, p)
	if err != nil {
		return nil, err
	}
	return decodeProduct(env, p)
}

// UpdateProduct replaces the editable fields of a product
func (c *Client) UpdateProduct(ctx context.Context, id string, p models.Product) (*models.Product, error) {
	p.ID = ""
	env, err := c.Do(ctx, http.MethodPut, "/products/"+url.PathEscape(id), nil, p)
	if err != nil {
		return nil, err
	}
	p.ID = id
	return decodeProduct(env, p)
}

// DeleteProduct removes a product
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	_, err := c.Do(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), nil, nil)
	return err
}

// decodeProduct reads the product echoed back by the backend, falling back
// to what was sent when the answer carries no document.
func decodeProduct(env *Envelope, sent models.Product) (*models.Product, error) {
	if !env.HasData() {
		return &sent, nil
	}
	var p models.Product
	if err := env.Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

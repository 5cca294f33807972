package stores

import (
	"context"
	"sort"
	"strings"

	"agrilink-storefront/api"
	"agrilink-storefront/models"

	"github.com/sirupsen/logrus"
)

// Catalog reads the public product listing and manages a farmer's own products
type Catalog struct {
	client *api.Client
	log    *logrus.Entry
}

func NewCatalog(client *api.Client, log *logrus.Entry) *Catalog {
	return &Catalog{client: client, log: log}
}

// List returns the public catalog. With near set, only products of farms
// within near.Distance kilometres are returned.
func (c *Catalog) List(ctx context.Context, near *models.NearbyQuery) ([]models.Product, error) {
	if near != nil {
		if near.Lat < -90 || near.Lat > 90 || near.Lng < -180 || near.Lng > 180 {
			return nil, newError("catalog.list", KindInvalidInput, "Invalid location")
		}
		if near.Distance <= 0 {
			return nil, newError("catalog.list", KindInvalidInput, "Distance must be positive")
		}
	}
	products, err := c.client.ListProducts(ctx, near)
	if err != nil {
		return nil, c.fail("catalog.list", err, "Failed to load products")
	}
	return products, nil
}

// Mine returns the signed-in farmer's products
func (c *Catalog) Mine(ctx context.Context) ([]models.Product, error) {
	products, err := c.client.MyProducts(ctx)
	if err != nil {
		return nil, c.fail("catalog.mine", err, "Failed to load your products")
	}
	return products, nil
}

func (c *Catalog) Create(ctx context.Context, p models.Product) (*models.Product, error) {
	if err := validateProduct("catalog.create", p); err != nil {
		return nil, err
	}
	created, err := c.client.CreateProduct(ctx, p)
	if err != nil {
		return nil, c.fail("catalog.create", err, "Failed to create product")
	}
	c.log.WithField("product_id", created.ID).Info("product created")
	return created, nil
}

func (c *Catalog) Update(ctx context.Context, id string, p models.Product) (*models.Product, error) {
	if !models.IsValidID(id) {
		return nil, newError("catalog.update", KindInvalidInput, "Invalid product ID")
	}
	if err := validateProduct("catalog.update", p); err != nil {
		return nil, err
	}
	updated, err := c.client.UpdateProduct(ctx, id, p)
	if err != nil {
		return nil, c.fail("catalog.update", err, "Failed to update product")
	}
	return updated, nil
}

func (c *Catalog) Delete(ctx context.Context, id string) error {
	if !models.IsValidID(id) {
		return newError("catalog.delete", KindInvalidInput, "Invalid product ID")
	}
	if err := c.client.DeleteProduct(ctx, id); err != nil {
		return c.fail("catalog.delete", err, "Failed to delete product")
	}
	c.log.WithField("product_id", id).Info("product deleted")
	return nil
}

func (c *Catalog) fail(op string, err error, fallback string) *Error {
	e := classify(op, err, fallback)
	c.log.WithField("kind", e.Kind).WithError(err).Warn(fallback)
	return e
}

func validateProduct(op string, p models.Product) error {
	problems := p.Validate()
	if problems == nil {
		return nil
	}
	fields := make([]string, 0, len(problems))
	for _, msg := range problems {
		fields = append(fields, msg)
	}
	sort.Strings(fields)
	return newError(op, KindValidation, strings.Join(fields, ", "), fields...)
}

package iproductrepo

import (
	"context"

	"github.com/mettware/slack-notifier/internal/service/models/product"
)

// IProductRepository is an interface for the product lookup used to hydrate
// order line items.
type IProductRepository interface {
	// FetchByIDs returns the products with the given IDs keyed by ID, with
	// translations, ordered variant options and a one-level parent reference.
	FetchByIDs(ctx context.Context, ids []string) (map[string]*product.Product, error)
}

// Package storefront loads a single seller's public store page.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lukman83/campusfair/internal/catalog"
	"github.com/lukman83/campusfair/internal/feed"
	"github.com/lukman83/campusfair/internal/models"
)

type Store struct {
	Seller   models.Seller            `json:"seller"`
	Products []models.EnrichedProduct `json:"products"`
}

// Empty reports a store with no listings yet.
func (s Store) Empty() bool { return len(s.Products) == 0 }

// Load finds the seller by its stored slug and returns its products newest
// first. An unknown slug yields catalog.ErrNotFound.
func Load(ctx context.Context, src catalog.Source, storeSlug string) (*Store, error) {
	storeSlug = strings.Trim(strings.TrimSpace(storeSlug), "/")
	if storeSlug == "" {
		return nil, catalog.ErrNotFound
	}

	seller, err := src.FindSellerBySlug(ctx, storeSlug)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, catalog.Fetchf(src.Name(), "find seller", err)
	}

	catalog.ReportProgress(ctx, fmt.Sprintf("Fetching products for %s...", seller.StoreName))
	products, err := src.FetchProductsBySeller(ctx, seller.ID)
	if err != nil {
		return nil, catalog.Fetchf(src.Name(), "fetch store products", err)
	}

	return &Store{
		Seller:   *seller,
		Products: feed.Enrich(products, map[string]models.Seller{seller.ID: *seller}),
	}, nil
}

// Link is the public address of a store.
func Link(publicURL, storeSlug string) string {
	return strings.TrimRight(publicURL, "/") + "/s/" + storeSlug
}

package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/lukman83/campusfair/internal/models"
)

// SellerBatchSize is the most seller ids sent in one lookup. It matches
// Firestore's limit for "in" filters so every backend batches the same way.
const SellerBatchSize = 30

// ErrNotFound is returned when a single record lookup matches nothing.
var ErrNotFound = errors.New("not found")

// Source is a read-only view of the marketplace backend.
type Source interface {
	Name() string
	// FetchAllProducts returns every listed product, newest first.
	FetchAllProducts(ctx context.Context) ([]models.Product, error)
	// FetchSellersByIDs returns the sellers it could find. Unknown ids are
	// simply absent from the map.
	FetchSellersByIDs(ctx context.Context, ids []string) (map[string]models.Seller, error)
	FindSellerBySlug(ctx context.Context, slug string) (*models.Seller, error)
	// FetchProductsBySeller returns one seller's products, newest first.
	FetchProductsBySeller(ctx context.Context, sellerID string) ([]models.Product, error)
}

// Writer is implemented by sources that accept new records.
type Writer interface {
	CreateSeller(ctx context.Context, s models.Seller) error
	AddProduct(ctx context.Context, p models.Product) error
	SlugTaken(ctx context.Context, slug string) (bool, error)
	StoreNameTaken(ctx context.Context, lower string) (bool, error)
	NextSellerCode(ctx context.Context) (string, error)
}

// Editor is implemented by sources that let a seller change or remove what
// they already stored. Product writes match on both the product id and its
// owner; every method returns ErrNotFound when nothing matched.
type Editor interface {
	FindProduct(ctx context.Context, id string) (*models.Product, error)
	UpdateProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, sellerID, productID string) error
	// UpdateSeller replaces the editable profile fields. The store slug is
	// permanent and never written.
	UpdateSeller(ctx context.Context, s models.Seller) error
}

// Invalidator is implemented by sources that hold cached reads. A refresh
// calls Invalidate before reloading.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// FetchError reports a failed read against a backend.
type FetchError struct {
	Op     string
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Source, e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetchf wraps err as a FetchError unless it already is one.
func Fetchf(source, op string, err error) error {
	if err == nil {
		return nil
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return err
	}
	return &FetchError{Op: op, Source: source, Err: err}
}

// Batches splits ids into chunks of at most size.
func Batches(ids []string, size int) [][]string {
	if size <= 0 {
		size = SellerBatchSize
	}
	var out [][]string
	for len(ids) > 0 {
		n := min(size, len(ids))
		out = append(out, ids[:n:n])
		ids = ids[n:]
	}
	return out
}

// SellerCode formats the n-th seller registration code.
func SellerCode(n int) string {
	return fmt.Sprintf("CF-%03d", n)
}

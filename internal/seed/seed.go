// Package seed registers sellers and lists products against a writable
// catalog source.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lukman83/campusfair/internal/catalog"
	"github.com/lukman83/campusfair/internal/keywords"
	"github.com/lukman83/campusfair/internal/models"
	"github.com/lukman83/campusfair/internal/slug"
)

const minPhoneLen = 10

var (
	ErrInvalidPhone   = errors.New("enter a valid WhatsApp number")
	ErrStoreNameTaken = errors.New("store name already taken")
	ErrMissingName    = errors.New("store name is required")
	ErrInvalidPrice   = errors.New("price must not be negative")
	ErrMissingProduct = errors.New("product name is required")
	ErrNotOwner       = errors.New("product belongs to another seller")
)

// Registration is what a new seller submits.
type Registration struct {
	ID               string `json:"id"`
	OwnerName        string `json:"owner_name"`
	StoreName        string `json:"store_name"`
	StoreDescription string `json:"store_description"`
	Phone            string `json:"phone"`
	Email            string `json:"email"`
}

// Clock is swapped out in tests.
var Clock = time.Now

// RegisterSeller validates r, assigns a permanent slug and seller code and
// stores the seller.
func RegisterSeller(ctx context.Context, w catalog.Writer, r Registration) (models.Seller, error) {
	name := strings.TrimSpace(r.StoreName)
	if name == "" {
		return models.Seller{}, ErrMissingName
	}
	phone := strings.TrimSpace(r.Phone)
	if len(phone) < minPhoneLen {
		return models.Seller{}, ErrInvalidPhone
	}

	lower := slug.Lower(name)
	taken, err := w.StoreNameTaken(ctx, lower)
	if err != nil {
		return models.Seller{}, fmt.Errorf("check store name: %w", err)
	}
	if taken {
		return models.Seller{}, fmt.Errorf("%w: %s", ErrStoreNameTaken, name)
	}

	storeSlug, err := slug.Unique(ctx, slug.Make(name), w.SlugTaken)
	if err != nil {
		return models.Seller{}, err
	}
	code, err := w.NextSellerCode(ctx)
	if err != nil {
		return models.Seller{}, fmt.Errorf("next seller code: %w", err)
	}

	id := r.ID
	if id == "" {
		id = uuid.NewString()
	}
	s := models.Seller{
		ID:               id,
		OwnerName:        strings.TrimSpace(r.OwnerName),
		StoreName:        name,
		StoreNameLower:   lower,
		StoreSlug:        storeSlug,
		Phone:            phone,
		StoreDescription: strings.TrimSpace(r.StoreDescription),
		Email:            strings.TrimSpace(r.Email),
		SellerCode:       code,
		Active:           true,
		CreatedAt:        Clock(),
	}
	if err := w.CreateSeller(ctx, s); err != nil {
		return models.Seller{}, fmt.Errorf("create seller: %w", err)
	}
	return s, nil
}

// Listing is what a seller submits for a new product.
type Listing struct {
	ID          string `json:"id"`
	SellerID    string `json:"seller_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	ImageURL    string `json:"image_url"`
}

func (l Listing) validate() (string, error) {
	name := strings.TrimSpace(l.Name)
	if name == "" {
		return "", ErrMissingProduct
	}
	if l.Price < 0 {
		return "", ErrInvalidPrice
	}
	return name, nil
}

// AddProduct stores a listing with its search keywords and creation time.
func AddProduct(ctx context.Context, w catalog.Writer, l Listing) (models.Product, error) {
	name, err := l.validate()
	if err != nil {
		return models.Product{}, err
	}
	id := l.ID
	if id == "" {
		id = uuid.NewString()
	}
	p := models.Product{
		ID:          id,
		Name:        name,
		Description: strings.TrimSpace(l.Description),
		Price:       l.Price,
		ImageURL:    l.ImageURL,
		SellerID:    l.SellerID,
		CreatedAt:   Clock(),
		Keywords:    keywords.Generate(name, l.Description),
	}
	if err := w.AddProduct(ctx, p); err != nil {
		return models.Product{}, fmt.Errorf("add product: %w", err)
	}
	return p, nil
}

// EditProduct replaces the name, description, price and image of a product
// owned by sellerID and regenerates its keywords. An empty ImageURL keeps
// the current image. The id, owner and creation time never change.
func EditProduct(ctx context.Context, e catalog.Editor, sellerID, productID string, l Listing) (models.Product, error) {
	name, err := l.validate()
	if err != nil {
		return models.Product{}, err
	}
	p, err := owned(ctx, e, sellerID, productID)
	if err != nil {
		return models.Product{}, err
	}
	p.Name = name
	p.Description = strings.TrimSpace(l.Description)
	p.Price = l.Price
	if l.ImageURL != "" {
		p.ImageURL = l.ImageURL
	}
	p.Keywords = keywords.Generate(p.Name, p.Description)
	if err := e.UpdateProduct(ctx, p); err != nil {
		return models.Product{}, fmt.Errorf("update product: %w", err)
	}
	return p, nil
}

// RemoveProduct deletes a product owned by sellerID.
func RemoveProduct(ctx context.Context, e catalog.Editor, sellerID, productID string) error {
	if _, err := owned(ctx, e, sellerID, productID); err != nil {
		return err
	}
	if err := e.DeleteProduct(ctx, sellerID, productID); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func owned(ctx context.Context, e catalog.Editor, sellerID, productID string) (models.Product, error) {
	p, err := e.FindProduct(ctx, productID)
	if err != nil {
		return models.Product{}, fmt.Errorf("product %s: %w", productID, err)
	}
	if p.SellerID != sellerID {
		return models.Product{}, fmt.Errorf("%w: %s", ErrNotOwner, productID)
	}
	return *p, nil
}

// Profile holds the store settings a seller may change after registering.
// Empty fields keep their current value.
type Profile struct {
	OwnerName        string `json:"owner_name"`
	StoreName        string `json:"store_name"`
	StoreDescription string `json:"store_description"`
	Phone            string `json:"phone"`
	Email            string `json:"email"`
}

// Backend is a source that accepts registrations and edits.
type Backend interface {
	catalog.Source
	catalog.Writer
	catalog.Editor
}

// UpdateProfile applies p to the seller's store settings. A new store name
// must be free, but the store slug stays what it was at registration so
// shared links keep working.
func UpdateProfile(ctx context.Context, b Backend, sellerID string, p Profile) (models.Seller, error) {
	found, err := b.FetchSellersByIDs(ctx, []string{sellerID})
	if err != nil {
		return models.Seller{}, fmt.Errorf("load seller: %w", err)
	}
	sel, ok := found[sellerID]
	if !ok {
		return models.Seller{}, fmt.Errorf("seller %s: %w", sellerID, catalog.ErrNotFound)
	}

	if name := strings.TrimSpace(p.StoreName); name != "" {
		lower := slug.Lower(name)
		if lower != sel.StoreNameLower {
			taken, err := b.StoreNameTaken(ctx, lower)
			if err != nil {
				return models.Seller{}, fmt.Errorf("check store name: %w", err)
			}
			if taken {
				return models.Seller{}, fmt.Errorf("%w: %s", ErrStoreNameTaken, name)
			}
		}
		sel.StoreName = name
		sel.StoreNameLower = lower
	}
	if phone := strings.TrimSpace(p.Phone); phone != "" {
		if len(phone) < minPhoneLen {
			return models.Seller{}, ErrInvalidPhone
		}
		sel.Phone = phone
	}
	if v := strings.TrimSpace(p.OwnerName); v != "" {
		sel.OwnerName = v
	}
	if v := strings.TrimSpace(p.StoreDescription); v != "" {
		sel.StoreDescription = v
	}
	if v := strings.TrimSpace(p.Email); v != "" {
		sel.Email = v
	}

	if err := b.UpdateSeller(ctx, sel); err != nil {
		return models.Seller{}, fmt.Errorf("update seller: %w", err)
	}
	return sel, nil
}

// Batch is the seed file layout: sellers to register, then their listings.
// A listing refers to its seller by the registration id.
type Batch struct {
	Sellers  []Registration `json:"sellers"`
	Products []Listing      `json:"products"`
}

// Result counts what Import stored.
type Result struct {
	Sellers  []models.Seller
	Products int
}

// Import registers every seller and adds every listing in order. Listings
// are stored oldest first so the last one in the file is the newest.
func Import(ctx context.Context, w catalog.Writer, b Batch) (Result, error) {
	var res Result
	for _, r := range b.Sellers {
		s, err := RegisterSeller(ctx, w, r)
		if err != nil {
			return res, fmt.Errorf("seller %q: %w", r.StoreName, err)
		}
		res.Sellers = append(res.Sellers, s)
		catalog.ReportProgress(ctx, fmt.Sprintf("Registered %s at /s/%s", s.StoreName, s.StoreSlug))
	}
	for _, l := range b.Products {
		if _, err := AddProduct(ctx, w, l); err != nil {
			return res, fmt.Errorf("product %q: %w", l.Name, err)
		}
		res.Products++
	}
	return res, nil
}

// Writable picks the writer behind a source, if it has one.
func Writable(src catalog.Source) (catalog.Writer, bool) {
	w, ok := src.(catalog.Writer)
	return w, ok
}

// Editable picks the editable backend behind a source, if it has one.
func Editable(src catalog.Source) (Backend, bool) {
	b, ok := src.(Backend)
	return b, ok
}

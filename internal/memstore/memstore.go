// Package memstore is an in-memory catalog source, optionally seeded from a
// JSON fixture file. It backs the "file" source and the tests.
package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/lukman83/campusfair/internal/catalog"
	"github.com/lukman83/campusfair/internal/models"
)

// Fixture is the on-disk layout of a catalog snapshot.
type Fixture struct {
	Sellers  []models.Seller  `json:"sellers"`
	Products []models.Product `json:"products"`
}

var (
	_ catalog.Source = (*Store)(nil)
	_ catalog.Writer = (*Store)(nil)
	_ catalog.Editor = (*Store)(nil)
)

type Store struct {
	mu       sync.RWMutex
	sellers  map[string]models.Seller
	products []models.Product
	codes    int
	// Fail, when set, is returned by every read. Tests use it to simulate
	// an unreachable backend.
	Fail error
}

func New() *Store {
	return &Store{sellers: make(map[string]models.Seller)}
}

// FromFixture builds a store holding the fixture's records.
func FromFixture(f Fixture) *Store {
	s := New()
	for _, sel := range f.Sellers {
		s.sellers[sel.ID] = sel
	}
	s.codes = len(f.Sellers)
	s.products = append(s.products, f.Products...)
	return s
}

// Open reads a fixture file.
func Open(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return FromFixture(f), nil
}

func (s *Store) Name() string { return "file" }

func (s *Store) FetchAllProducts(ctx context.Context) ([]models.Product, error) {
	if err := s.readErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newestFirst(s.products, func(models.Product) bool { return true }), nil
}

func (s *Store) FetchSellersByIDs(ctx context.Context, ids []string) (map[string]models.Seller, error) {
	if err := s.readErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]models.Seller, len(ids))
	for _, id := range ids {
		if sel, ok := s.sellers[id]; ok {
			out[id] = sel
		}
	}
	return out, nil
}

func (s *Store) FindSellerBySlug(ctx context.Context, slug string) (*models.Seller, error) {
	if err := s.readErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sel := range s.sellers {
		if sel.StoreSlug == slug {
			return &sel, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (s *Store) FetchProductsBySeller(ctx context.Context, sellerID string) ([]models.Product, error) {
	if err := s.readErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newestFirst(s.products, func(p models.Product) bool { return p.SellerID == sellerID }), nil
}

func (s *Store) CreateSeller(ctx context.Context, sel models.Seller) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sellers[sel.ID]; ok {
		return fmt.Errorf("seller %s already exists", sel.ID)
	}
	s.sellers[sel.ID] = sel
	return nil
}

func (s *Store) AddProduct(ctx context.Context, p models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel, ok := s.sellers[p.SellerID]
	if ok {
		sel.ProductCount++
		s.sellers[p.SellerID] = sel
	}
	s.products = append(s.products, p)
	return nil
}

func (s *Store) SlugTaken(ctx context.Context, slug string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sel := range s.sellers {
		if sel.StoreSlug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) StoreNameTaken(ctx context.Context, lower string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sel := range s.sellers {
		if sel.StoreNameLower == lower {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) NextSellerCode(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes++
	return catalog.SellerCode(s.codes), nil
}

func (s *Store) FindProduct(ctx context.Context, id string) (*models.Product, error) {
	if err := s.readErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.productIndex(id, ""); i >= 0 {
		p := s.products[i]
		return &p, nil
	}
	return nil, catalog.ErrNotFound
}

func (s *Store) UpdateProduct(ctx context.Context, p models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.productIndex(p.ID, p.SellerID)
	if i < 0 {
		return catalog.ErrNotFound
	}
	s.products[i] = p
	return nil
}

// DeleteProduct removes the product and lowers the owner's product counter.
func (s *Store) DeleteProduct(ctx context.Context, sellerID, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.productIndex(productID, sellerID)
	if i < 0 {
		return catalog.ErrNotFound
	}
	s.products = append(s.products[:i], s.products[i+1:]...)
	if sel, ok := s.sellers[sellerID]; ok && sel.ProductCount > 0 {
		sel.ProductCount--
		s.sellers[sellerID] = sel
	}
	return nil
}

func (s *Store) UpdateSeller(ctx context.Context, sel models.Seller) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.sellers[sel.ID]
	if !ok {
		return catalog.ErrNotFound
	}
	cur.OwnerName = sel.OwnerName
	cur.StoreName = sel.StoreName
	cur.StoreNameLower = sel.StoreNameLower
	cur.StoreDescription = sel.StoreDescription
	cur.Phone = sel.Phone
	cur.Email = sel.Email
	s.sellers[sel.ID] = cur
	return nil
}

// productIndex finds a product by id, and by owner too when sellerID is set.
func (s *Store) productIndex(id, sellerID string) int {
	for i, p := range s.products {
		if p.ID == id && (sellerID == "" || p.SellerID == sellerID) {
			return i
		}
	}
	return -1
}

// Snapshot returns the store contents as a fixture.
func (s *Store) Snapshot() Fixture {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f := Fixture{Products: append([]models.Product(nil), s.products...)}
	for _, sel := range s.sellers {
		f.Sellers = append(f.Sellers, sel)
	}
	sort.Slice(f.Sellers, func(i, j int) bool { return f.Sellers[i].ID < f.Sellers[j].ID })
	return f
}

// Save writes the store contents to path as a fixture.
func (s *Store) Save(path string) error {
	data, err := json.MarshalIndent(s.Snapshot(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) readErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.Fail
}

func newestFirst(products []models.Product, keep func(models.Product) bool) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

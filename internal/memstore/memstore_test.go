package memstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/lukman83/campusfair/internal/catalog"
	"github.com/lukman83/campusfair/internal/models"
)

func TestReadsNewestFirst(t *testing.T) {
	s := FromFixture(Fixture{
		Sellers: []models.Seller{{ID: "s1", StoreSlug: "one"}, {ID: "s2", StoreSlug: "two"}},
		Products: []models.Product{
			{ID: "a", SellerID: "s1", CreatedAt: time.Unix(10, 0)},
			{ID: "b", SellerID: "s2", CreatedAt: time.Unix(30, 0)},
			{ID: "c", SellerID: "s1", CreatedAt: time.Unix(20, 0)},
		},
	})
	ctx := context.Background()

	all, _ := s.FetchAllProducts(ctx)
	if len(all) != 3 || all[0].ID != "b" || all[1].ID != "c" || all[2].ID != "a" {
		t.Errorf("all = %v", all)
	}
	mine, _ := s.FetchProductsBySeller(ctx, "s1")
	if len(mine) != 2 || mine[0].ID != "c" {
		t.Errorf("by seller = %v", mine)
	}
	sellers, _ := s.FetchSellersByIDs(ctx, []string{"s2", "ghost"})
	if len(sellers) != 1 || sellers["s2"].StoreSlug != "two" {
		t.Errorf("sellers = %v", sellers)
	}
	if _, err := s.FindSellerBySlug(ctx, "three"); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("missing slug err = %v", err)
	}
}

func TestFail(t *testing.T) {
	s := New()
	s.Fail = errors.New("offline")
	if _, err := s.FetchAllProducts(context.Background()); err == nil {
		t.Error("expected failure")
	}
}

func TestWritesAndSave(t *testing.T) {
	ctx := context.Background()
	s := FromFixture(Fixture{Sellers: []models.Seller{{ID: "s1", StoreSlug: "one", StoreNameLower: "one"}}})

	if code, _ := s.NextSellerCode(ctx); code != "CF-002" {
		t.Errorf("code = %s", code)
	}
	if err := s.CreateSeller(ctx, models.Seller{ID: "s1"}); err == nil {
		t.Error("duplicate seller accepted")
	}
	if err := s.AddProduct(ctx, models.Product{ID: "p1", SellerID: "s1"}); err != nil {
		t.Fatal(err)
	}
	if taken, _ := s.SlugTaken(ctx, "one"); !taken {
		t.Error("slug not taken")
	}
	if taken, _ := s.StoreNameTaken(ctx, "two"); taken {
		t.Error("unused name reported taken")
	}

	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := s.Save(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	sellers, _ := loaded.FetchSellersByIDs(ctx, []string{"s1"})
	if sellers["s1"].ProductCount != 1 {
		t.Errorf("product count = %d", sellers["s1"].ProductCount)
	}
	if products, _ := loaded.FetchAllProducts(ctx); len(products) != 1 {
		t.Errorf("products = %v", products)
	}
}

func TestOpenMissing(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error")
	}
}

func TestEditAndDelete(t *testing.T) {
	s := FromFixture(Fixture{
		Sellers: []models.Seller{{ID: "s1", StoreName: "Gadget Hub", StoreSlug: "gadget-hub", ProductCount: 2}},
		Products: []models.Product{
			{ID: "a", SellerID: "s1", Name: "Case"},
			{ID: "b", SellerID: "s1", Name: "Cable"},
		},
	})
	ctx := context.Background()

	if err := s.UpdateProduct(ctx, models.Product{ID: "a", SellerID: "s2", Name: "Stolen"}); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("update by other seller err = %v", err)
	}
	if err := s.UpdateProduct(ctx, models.Product{ID: "a", SellerID: "s1", Name: "Slim Case"}); err != nil {
		t.Fatal(err)
	}
	p, err := s.FindProduct(ctx, "a")
	if err != nil || p.Name != "Slim Case" {
		t.Errorf("after update = %+v, %v", p, err)
	}

	if err := s.DeleteProduct(ctx, "s2", "b"); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("delete by other seller err = %v", err)
	}
	if err := s.DeleteProduct(ctx, "s1", "b"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.FindProduct(ctx, "b"); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("deleted product err = %v", err)
	}
	sellers, _ := s.FetchSellersByIDs(ctx, []string{"s1"})
	if sellers["s1"].ProductCount != 1 {
		t.Errorf("product count = %d, want 1", sellers["s1"].ProductCount)
	}

	err = s.UpdateSeller(ctx, models.Seller{ID: "s1", StoreName: "Gadget World", StoreNameLower: "gadget world", StoreSlug: "gadget-world"})
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.FindSellerBySlug(ctx, "gadget-hub")
	if err != nil {
		t.Fatalf("slug lookup after rename: %v", err)
	}
	if got.StoreName != "Gadget World" || got.ProductCount != 1 {
		t.Errorf("seller = %+v", got)
	}
	if err := s.UpdateSeller(ctx, models.Seller{ID: "ghost"}); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("unknown seller err = %v", err)
	}
}

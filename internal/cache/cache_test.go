package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/lukman83/campusfair/internal/catalog"
	"github.com/lukman83/campusfair/internal/memstore"
	"github.com/lukman83/campusfair/internal/models"
	"github.com/redis/go-redis/v9"
)

type countingStore struct {
	*memstore.Store
	products atomic.Int32
	sellers  atomic.Int32
	asked    [][]string
}

func (c *countingStore) FetchAllProducts(ctx context.Context) ([]models.Product, error) {
	c.products.Add(1)
	return c.Store.FetchAllProducts(ctx)
}

func (c *countingStore) FetchSellersByIDs(ctx context.Context, ids []string) (map[string]models.Seller, error) {
	c.sellers.Add(1)
	c.asked = append(c.asked, ids)
	return c.Store.FetchSellersByIDs(ctx, ids)
}

func setup(t *testing.T) (*Source, *countingStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	store := &countingStore{Store: memstore.FromFixture(memstore.Fixture{
		Sellers: []models.Seller{
			{ID: "s1", StoreName: "Gadget Hub", StoreSlug: "gadget-hub"},
			{ID: "s2", StoreName: "Book Nook", StoreSlug: "book-nook"},
		},
		Products: []models.Product{
			{ID: "p1", Name: "Phone Case", SellerID: "s1", CreatedAt: time.Unix(20, 0)},
			{ID: "p2", Name: "Novel", SellerID: "s2", CreatedAt: time.Unix(10, 0)},
		},
	})}
	return New(store, rdb, time.Minute), store, mr
}

func TestProductsAreCached(t *testing.T) {
	src, store, mr := setup(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := src.FetchAllProducts(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 || got[0].ID != "p1" || !got[0].CreatedAt.Equal(time.Unix(20, 0)) {
			t.Fatalf("products = %+v", got)
		}
	}
	if n := store.products.Load(); n != 1 {
		t.Errorf("backend reads = %d, want 1", n)
	}
	if ttl := mr.TTL("campusfair:products:all"); ttl != time.Minute {
		t.Errorf("ttl = %v", ttl)
	}

	if err := src.Invalidate(ctx); err != nil {
		t.Fatal(err)
	}
	src.FetchAllProducts(ctx)
	if n := store.products.Load(); n != 2 {
		t.Errorf("backend reads after invalidate = %d", n)
	}
}

func TestSellersPartiallyCached(t *testing.T) {
	src, store, _ := setup(t)
	ctx := context.Background()

	if _, err := src.FetchSellersByIDs(ctx, []string{"s1"}); err != nil {
		t.Fatal(err)
	}
	got, err := src.FetchSellersByIDs(ctx, []string{"s1", "s2", "ghost"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got["s2"].StoreName != "Book Nook" {
		t.Errorf("sellers = %+v", got)
	}
	if len(store.asked) != 2 || len(store.asked[1]) != 2 || store.asked[1][0] != "s2" {
		t.Errorf("backend asked for %v", store.asked)
	}
}

func TestSlugNotFoundIsNotCached(t *testing.T) {
	src, _, mr := setup(t)
	ctx := context.Background()

	if _, err := src.FindSellerBySlug(ctx, "nope"); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
	if mr.Exists("campusfair:store:nope") {
		t.Error("miss was cached")
	}
	s, err := src.FindSellerBySlug(ctx, "book-nook")
	if err != nil || s.ID != "s2" || !mr.Exists("campusfair:store:book-nook") {
		t.Errorf("seller = %+v, %v", s, err)
	}
}

func TestRedisDownFallsThrough(t *testing.T) {
	src, store, mr := setup(t)
	mr.Close()

	var msgs []string
	ctx := catalog.WithProgress(context.Background(), func(m string) { msgs = append(msgs, m) })
	got, err := src.FetchAllProducts(ctx)
	if err != nil || len(got) != 2 {
		t.Fatalf("got %d, %v", len(got), err)
	}
	sellers, err := src.FetchSellersByIDs(ctx, []string{"s1", "s2"})
	if err != nil || len(sellers) != 2 {
		t.Fatalf("sellers %d, %v", len(sellers), err)
	}
	if store.products.Load() != 1 || len(msgs) == 0 {
		t.Errorf("reads %d, msgs %v", store.products.Load(), msgs)
	}
}

func TestUnwrap(t *testing.T) {
	src, store, _ := setup(t)
	if src.Unwrap() != catalog.Source(store) {
		t.Error("Unwrap did not return the backend")
	}
	if src.Name() != "file" {
		t.Errorf("Name() = %q", src.Name())
	}
}

func TestInvalidateDropsStorePages(t *testing.T) {
	src, store, mr := setup(t)
	ctx := context.Background()
	mr.Set("other:key", "kept")

	src.FetchAllProducts(ctx)
	src.FetchSellersByIDs(ctx, []string{"s1"})
	src.FindSellerBySlug(ctx, "gadget-hub")
	before, _ := src.FetchProductsBySeller(ctx, "s1")

	store.AddProduct(ctx, models.Product{ID: "p9", Name: "Charger", SellerID: "s1", CreatedAt: time.Unix(30, 0)})
	if err := src.Invalidate(ctx); err != nil {
		t.Fatal(err)
	}
	for _, k := range mr.Keys() {
		if k != "other:key" {
			t.Errorf("key %q survived invalidation", k)
		}
	}

	after, err := src.FetchProductsBySeller(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(before) != 1 || len(after) != 2 || after[0].ID != "p9" {
		t.Errorf("store products before %d, after %v", len(before), after)
	}
}

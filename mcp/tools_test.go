package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lukman83/campusfair/internal/feed"
	"github.com/lukman83/campusfair/internal/memstore"
	"github.com/lukman83/campusfair/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

func testCatalog() *Catalog {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := memstore.FromFixture(memstore.Fixture{
		Sellers: []models.Seller{
			{ID: "s1", StoreName: "Gadget Hub", StoreSlug: "gadget-hub", Phone: "08031234567"},
			{ID: "s2", StoreName: "Book Nook", StoreSlug: "book-nook"},
		},
		Products: []models.Product{
			{ID: "p1", Name: "Phone Case", Price: 1500, SellerID: "s1", CreatedAt: base},
			{ID: "p2", Name: "Novel", Price: 800, SellerID: "s2", CreatedAt: base.Add(-time.Hour)},
			{ID: "p3", Name: "Phone Charger", Price: 2500, SellerID: "s1", CreatedAt: base.Add(-2 * time.Hour)},
		},
	})
	return &Catalog{
		Feed:      feed.NewController(store, feed.WithPageSize(2)),
		Source:    store,
		PublicURL: "https://campusfair.ng",
	}
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty result")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T", res.Content[0])
	}
	return tc.Text
}

func TestBrowseFeedLoadsOnDemand(t *testing.T) {
	h := &handlers{cat: testCatalog()}
	res, err := h.browseFeed(context.Background(), call(map[string]any{"page": 2}))
	if err != nil || res.IsError {
		t.Fatalf("res = %+v, err = %v", res, err)
	}

	var page struct {
		Items   []models.EnrichedProduct `json:"items"`
		Current int                      `json:"current"`
		Total   int                      `json:"total"`
	}
	if err := json.Unmarshal([]byte(text(t, res)), &page); err != nil {
		t.Fatal(err)
	}
	// fair order: p1 (s1), p2 (s2), p3 (s1)
	if page.Current != 2 || page.Total != 2 || len(page.Items) != 1 || page.Items[0].ID != "p3" {
		t.Errorf("page = %+v", page)
	}
}

func TestSearchFeed(t *testing.T) {
	h := &handlers{cat: testCatalog()}
	ctx := context.Background()

	res, _ := h.searchFeed(ctx, call(map[string]any{}))
	if !res.IsError {
		t.Error("missing query accepted")
	}

	res, err := h.searchFeed(ctx, call(map[string]any{"query": "  PHONE "}))
	if err != nil || res.IsError {
		t.Fatalf("res = %+v, err = %v", res, err)
	}
	out := text(t, res)
	if !strings.Contains(out, "Phone Case") || !strings.Contains(out, "Phone Charger") || strings.Contains(out, "Novel") {
		t.Errorf("search output:\n%s", out)
	}
}

func TestStorePage(t *testing.T) {
	h := &handlers{cat: testCatalog()}
	ctx := context.Background()

	res, err := h.storePage(ctx, call(map[string]any{"slug": "gadget-hub"}))
	if err != nil || res.IsError {
		t.Fatalf("res = %+v, err = %v", res, err)
	}
	out := text(t, res)
	if !strings.Contains(out, `"link": "https://campusfair.ng/s/gadget-hub"`) || !strings.Contains(out, "Phone Charger") {
		t.Errorf("store output:\n%s", out)
	}

	res, _ = h.storePage(ctx, call(map[string]any{"slug": "nope"}))
	if !res.IsError || !strings.Contains(text(t, res), "not found") {
		t.Errorf("unknown slug: %+v", res)
	}
}

func TestContactLink(t *testing.T) {
	h := &handlers{cat: testCatalog()}
	ctx := context.Background()

	res, err := h.contactLink(ctx, call(map[string]any{"product_id": "p1"}))
	if err != nil || res.IsError {
		t.Fatalf("res = %+v, err = %v", res, err)
	}
	want := "https://wa.me/2348031234567?text=Hi%2C%20I%20want%20to%20purchase%20Phone%20Case%20for%20%E2%82%A61500"
	if !strings.Contains(text(t, res), want) {
		t.Errorf("link output:\n%s", text(t, res))
	}

	// Book Nook has no phone on file.
	res, _ = h.contactLink(ctx, call(map[string]any{"product_id": "p2"}))
	if !res.IsError {
		t.Error("expected error for seller without phone")
	}
	res, _ = h.contactLink(ctx, call(map[string]any{"product_id": "missing"}))
	if !res.IsError {
		t.Error("expected error for unknown product")
	}
}

func TestRefreshFeed(t *testing.T) {
	cat := testCatalog()
	h := &handlers{cat: cat}
	res, err := h.refreshFeed(context.Background(), call(nil))
	if err != nil || res.IsError {
		t.Fatalf("res = %+v, err = %v", res, err)
	}
	if !strings.Contains(text(t, res), `"status": "ready"`) {
		t.Errorf("refresh output: %s", text(t, res))
	}
	if cat.Feed.State().Status != feed.Ready {
		t.Error("feed not ready after refresh")
	}
}

func TestBearerAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := BearerAuth("secret", ok)

	tests := []struct {
		header string
		want   int
	}{
		{"", http.StatusUnauthorized},
		{"Bearer wrong", http.StatusUnauthorized},
		{"Basic secret", http.StatusUnauthorized},
		{"Bearer secret", http.StatusNoContent},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("%q: status = %d, want %d", tt.header, rec.Code, tt.want)
		}
	}
}

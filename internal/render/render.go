// Package render draws feed pages for the terminal and for JSON consumers.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/lukman83/campusfair/internal/feed"
	"github.com/lukman83/campusfair/internal/models"
	"github.com/lukman83/campusfair/internal/storefront"
)

const (
	EmptyMessage      = "No products found."
	EmptyStoreMessage = "No products yet."
)

// Text prints products in a human-friendly card layout.
type Text struct {
	mu        sync.Mutex
	w         io.Writer
	publicURL string
}

var _ feed.Renderer = (*Text)(nil)

func NewText(w io.Writer, publicURL string) *Text {
	return &Text{w: w, publicURL: publicURL}
}

func (t *Text) RenderFeed(page []models.EnrichedProduct, p feed.Pagination) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(page) == 0 {
		fmt.Fprintln(t.w, EmptyMessage)
		return
	}
	for i, ep := range page {
		if i > 0 {
			fmt.Fprintln(t.w)
		}
		fmt.Fprintf(t.w, " %d. %s\n", i+1, ep.Name)

		line := "    Price: " + FormatPrice(ep.Price) + "  |  Store: " + ep.StoreName
		fmt.Fprintln(t.w, line)

		if d := truncate(strings.TrimSpace(ep.Description), 80); d != "" {
			fmt.Fprintf(t.w, "    %s\n", d)
		}
		if ep.Attributed && ep.StoreSlug != "" && t.publicURL != "" {
			fmt.Fprintf(t.w, "    %s\n", storefront.Link(t.publicURL, ep.StoreSlug))
		}
		if ep.ImageURL != "" {
			fmt.Fprintf(t.w, "    Image: %s\n", ep.ImageURL)
		}
	}
	fmt.Fprintf(t.w, "\nPage %d of %d\n", p.Current, p.Total)
}

// RenderStore prints a storefront header followed by its products.
func (t *Text) RenderStore(s *storefront.Store) {
	t.mu.Lock()
	fmt.Fprint(t.w, s.Seller.StoreName)
	if s.Seller.SellerCode != "" {
		fmt.Fprintf(t.w, " (%s)", s.Seller.SellerCode)
	}
	fmt.Fprintln(t.w)
	if s.Seller.StoreDescription != "" {
		fmt.Fprintln(t.w, s.Seller.StoreDescription)
	}
	fmt.Fprintln(t.w)
	if s.Empty() {
		fmt.Fprintln(t.w, EmptyStoreMessage)
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	t.RenderFeed(s.Products, feed.Pagination{Current: 1, Total: 1})
}

// JSON writes each rendered page as one JSON document.
type JSON struct {
	mu  sync.Mutex
	enc *json.Encoder
}

var _ feed.Renderer = (*JSON)(nil)

func NewJSON(w io.Writer) *JSON {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return &JSON{enc: enc}
}

func (j *JSON) RenderFeed(page []models.EnrichedProduct, p feed.Pagination) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if page == nil {
		page = []models.EnrichedProduct{}
	}
	j.enc.Encode(struct {
		Items []models.EnrichedProduct `json:"items"`
		feed.Pagination
		Empty bool `json:"empty"`
	}{
		Items:      page,
		Pagination: p,
		Empty:      len(page) == 0,
	})
}

// FormatPrice formats a whole-naira price as "₦1,234,567".
func FormatPrice(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return sign + "₦" + s
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	return sign + "₦" + strings.Join(parts, ",")
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

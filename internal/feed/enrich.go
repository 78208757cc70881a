package feed

import "github.com/lukman83/campusfair/internal/models"

// SellerIDs returns the distinct seller ids of products in first-seen order.
func SellerIDs(products []models.Product) []string {
	seen := make(map[string]struct{}, len(products))
	ids := make([]string, 0)
	for _, p := range products {
		if _, ok := seen[p.SellerID]; ok {
			continue
		}
		seen[p.SellerID] = struct{}{}
		ids = append(ids, p.SellerID)
	}
	return ids
}

// Enrich joins every product to its seller's public profile. A product
// whose seller is missing is kept and attributed to models.UnknownStore.
func Enrich(products []models.Product, sellers map[string]models.Seller) []models.EnrichedProduct {
	out := make([]models.EnrichedProduct, 0, len(products))
	for _, p := range products {
		ep := models.EnrichedProduct{Product: p, StoreName: models.UnknownStore}
		if s, ok := sellers[p.SellerID]; ok {
			ep.Attributed = true
			ep.SellerPhone = s.Phone
			ep.StoreSlug = s.StoreSlug
			if s.StoreName != "" {
				ep.StoreName = s.StoreName
			}
		}
		out = append(out, ep)
	}
	return out
}

package feed

import "github.com/lukman83/campusfair/internal/models"

// FairOrder interleaves products round-robin by seller so a seller with many
// listings cannot fill the first pages. Sellers are visited in the order they
// first appear in the input and each seller keeps its own relative order.
// The input slice is not modified.
func FairOrder(in []models.EnrichedProduct) []models.EnrichedProduct {
	bySeller := make(map[string][]models.EnrichedProduct)
	var visit []string
	for _, p := range in {
		if _, ok := bySeller[p.SellerID]; !ok {
			visit = append(visit, p.SellerID)
		}
		bySeller[p.SellerID] = append(bySeller[p.SellerID], p)
	}

	out := make([]models.EnrichedProduct, 0, len(in))
	next := make(map[string]int, len(visit))
	for len(out) < len(in) {
		for _, s := range visit {
			i := next[s]
			if i < len(bySeller[s]) {
				out = append(out, bySeller[s][i])
				next[s] = i + 1
			}
		}
	}
	return out
}

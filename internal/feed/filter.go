package feed

import (
	"strings"

	"github.com/lukman83/campusfair/internal/models"
)

// Filter keeps the products whose name or description contains term,
// ignoring case. A blank term returns list as is. Order is preserved.
func Filter(list []models.EnrichedProduct, term string) []models.EnrichedProduct {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return list
	}
	out := make([]models.EnrichedProduct, 0)
	for _, p := range list {
		if strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.Description), term) {
			out = append(out, p)
		}
	}
	return out
}

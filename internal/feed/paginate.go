package feed

import "github.com/lukman83/campusfair/internal/models"

// DefaultPageSize is the number of products per feed page.
const DefaultPageSize = 10

// TotalPages returns ceil(n/size), never less than 1 so an empty list still
// has a page to show its empty state on.
func TotalPages(n, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if n <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

// ClampPage keeps page inside [1, total].
func ClampPage(page, total int) int {
	if total < 1 {
		total = 1
	}
	if page < 1 {
		return 1
	}
	if page > total {
		return total
	}
	return page
}

// Paginate returns the 1-indexed page of list. Pages outside the list come
// back empty rather than failing.
func Paginate(list []models.EnrichedProduct, page, size int) []models.EnrichedProduct {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		return []models.EnrichedProduct{}
	}
	start := (page - 1) * size
	if start >= len(list) {
		return []models.EnrichedProduct{}
	}
	end := min(start+size, len(list))
	return list[start:end:end]
}

package feed

import (
	"encoding/json"

	"github.com/lukman83/campusfair/internal/models"
)

// Status is the lifecycle stage of a feed.
type Status int

const (
	Loading Status = iota
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// State is one immutable snapshot of the feed. Transitions return a new
// State and leave the receiver untouched.
type State struct {
	Status   Status
	Enriched []models.EnrichedProduct
	// Ordered is the fair-ordered permutation of Enriched.
	Ordered []models.EnrichedProduct
	Page    int
	Term    string
	Err     error
}

// Pagination is what a renderer needs to draw page controls.
type Pagination struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// Page is the visible slice of the feed.
type Page struct {
	Items []models.EnrichedProduct `json:"items"`
	Pagination
	Term  string `json:"term,omitempty"`
	Count int    `json:"count"`
	// Empty is set when nothing matches. It is not an error.
	Empty bool `json:"empty"`
}

// NewReady builds the Ready state for a freshly enriched product set.
func NewReady(enriched []models.EnrichedProduct) State {
	return State{
		Status:   Ready,
		Enriched: enriched,
		Ordered:  FairOrder(enriched),
		Page:     1,
	}
}

// View returns the ordered list after applying the search term.
func (s State) View() []models.EnrichedProduct {
	return Filter(s.Ordered, s.Term)
}

// WithPage moves to page n, clamped to the filtered view.
func (s State) WithPage(n, size int) State {
	s.Page = ClampPage(n, TotalPages(len(s.View()), size))
	return s
}

// WithTerm applies a new search term and resets to the first page.
func (s State) WithTerm(term string) State {
	s.Term = term
	s.Page = 1
	return s
}

// Current returns the page the state points at.
func (s State) Current(size int) Page {
	view := s.View()
	total := TotalPages(len(view), size)
	cur := ClampPage(s.Page, total)
	items := Paginate(view, cur, size)
	return Page{
		Items:      items,
		Pagination: Pagination{Current: cur, Total: total},
		Term:       s.Term,
		Count:      len(view),
		Empty:      len(items) == 0,
	}
}

func (s State) MarshalJSON() ([]byte, error) {
	out := struct {
		Status Status `json:"status"`
		Count  int    `json:"count"`
		Page   int    `json:"page"`
		Term   string `json:"term,omitempty"`
		Error  string `json:"error,omitempty"`
	}{Status: s.Status, Count: len(s.Ordered), Page: s.Page, Term: s.Term}
	if s.Err != nil {
		out.Error = s.Err.Error()
	}
	return json.Marshal(out)
}

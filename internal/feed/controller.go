package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/lukman83/campusfair/internal/catalog"
	"github.com/lukman83/campusfair/internal/models"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrNotReady is returned by page and search calls while the feed is
	// loading or after a failed load.
	ErrNotReady = errors.New("feed not ready")
	// ErrSuperseded is returned by a Load whose result was dropped because a
	// newer Load started before it finished.
	ErrSuperseded = errors.New("feed load superseded")
)

// Renderer receives every page the controller moves to. It is a one-way
// sink; the controller never reads anything back from it.
type Renderer interface {
	RenderFeed(page []models.EnrichedProduct, p Pagination)
}

// ImageResolver turns a stored image reference into a URL clients can load.
type ImageResolver interface {
	ResolveImage(ctx context.Context, ref string) (string, error)
}

type Option func(*Controller)

func WithPageSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

func WithRenderer(r Renderer) Option {
	return func(c *Controller) { c.renderer = r }
}

func WithImageResolver(r ImageResolver) Option {
	return func(c *Controller) { c.images = r }
}

// WithConcurrency limits how many seller batches are fetched at once.
func WithConcurrency(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.maxConcurrent = n
		}
	}
}

func WithBatchSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// Controller owns the feed state for one session.
type Controller struct {
	source        catalog.Source
	renderer      Renderer
	images        ImageResolver
	pageSize      int
	batchSize     int
	maxConcurrent int

	loads singleflight.Group

	mu    sync.Mutex
	gen   uint64
	state State
}

// NewController creates a controller in the Loading state. Call Load to
// populate it.
func NewController(source catalog.Source, opts ...Option) *Controller {
	c := &Controller{
		source:        source,
		pageSize:      DefaultPageSize,
		batchSize:     catalog.SellerBatchSize,
		maxConcurrent: 4,
		state:         State{Status: Loading},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) PageSize() int { return c.pageSize }

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Load fetches the whole catalog and moves the feed to Ready on page 1, or
// to Failed if either fetch fails. When two loads overlap, the one started
// last wins.
func (c *Controller) Load(ctx context.Context) error {
	return c.load(ctx, true)
}

// load runs one fetch. Unless showLoading is set, a Ready feed keeps
// serving its current snapshot until the fetch finishes.
func (c *Controller) load(ctx context.Context, showLoading bool) error {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	if showLoading || c.state.Status != Ready {
		c.state = State{Status: Loading}
	}
	c.mu.Unlock()

	enriched, err := c.fetch(ctx)

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return ErrSuperseded
	}
	if err != nil {
		c.state = State{Status: Failed, Err: err}
		c.mu.Unlock()
		return err
	}
	c.state = NewReady(enriched)
	page := c.state.Current(c.pageSize)
	c.mu.Unlock()

	catalog.ReportProgress(ctx, fmt.Sprintf("Loaded %d products", len(enriched)))
	c.render(page)
	return nil
}

// Retry reruns the full load sequence.
func (c *Controller) Retry(ctx context.Context) error {
	return c.Load(ctx)
}

// EnsureLoaded loads the feed unless it is already Ready. Concurrent callers
// share one load, which keeps running if a caller goes away.
func (c *Controller) EnsureLoaded(ctx context.Context) error {
	if c.State().Status == Ready {
		return nil
	}
	return c.shared(ctx, func(ctx context.Context) error {
		if c.State().Status == Ready {
			return nil
		}
		return c.load(ctx, true)
	})
}

// Refresh drops cached reads held by the source and reloads. Readers keep
// getting the previous Ready snapshot while the refresh runs. Concurrent
// refreshes share one load.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.shared(ctx, func(ctx context.Context) error {
		if inv, ok := c.source.(catalog.Invalidator); ok {
			if err := inv.Invalidate(ctx); err != nil {
				catalog.ReportProgress(ctx, fmt.Sprintf("Cache invalidation failed: %v", err))
			}
		}
		return c.load(ctx, false)
	})
}

// shared runs fn once for every concurrent caller on a context that is not
// cancelled with ctx. A caller whose ctx ends stops waiting; the load goes on.
func (c *Controller) shared(ctx context.Context, fn func(context.Context) error) error {
	detached := context.WithoutCancel(ctx)
	ch := c.loads.DoChan("load", func() (any, error) {
		return nil, fn(detached)
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SetPage moves to page n, clamped to the current view.
func (c *Controller) SetPage(n int) (Page, error) {
	return c.transition(func(s State) State { return s.WithPage(n, c.pageSize) })
}

// SetTerm applies a search term and returns to the first page.
func (c *Controller) SetTerm(term string) (Page, error) {
	return c.transition(func(s State) State { return s.WithTerm(term) })
}

// Current returns the page the feed is on without changing anything.
func (c *Controller) Current() (Page, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Status != Ready {
		return Page{}, ErrNotReady
	}
	return c.state.Current(c.pageSize), nil
}

// Browse computes a page for a term without touching the session state.
// Concurrent readers such as HTTP handlers use it.
func (c *Controller) Browse(term string, page int) (Page, error) {
	c.mu.Lock()
	s := c.state
	c.mu.Unlock()
	if s.Status != Ready {
		return Page{}, ErrNotReady
	}
	return s.WithTerm(term).WithPage(page, c.pageSize).Current(c.pageSize), nil
}

// Lookup finds a product in the loaded feed by id.
func (c *Controller) Lookup(id string) (models.EnrichedProduct, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.state.Ordered {
		if p.ID == id {
			return p, true
		}
	}
	return models.EnrichedProduct{}, false
}

func (c *Controller) transition(fn func(State) State) (Page, error) {
	c.mu.Lock()
	if c.state.Status != Ready {
		c.mu.Unlock()
		return Page{}, ErrNotReady
	}
	c.state = fn(c.state)
	page := c.state.Current(c.pageSize)
	c.mu.Unlock()

	c.render(page)
	return page, nil
}

func (c *Controller) render(p Page) {
	if c.renderer != nil {
		c.renderer.RenderFeed(p.Items, p.Pagination)
	}
}

func (c *Controller) fetch(ctx context.Context) ([]models.EnrichedProduct, error) {
	name := c.source.Name()

	catalog.ReportProgress(ctx, fmt.Sprintf("Fetching products from %s...", name))
	products, err := c.source.FetchAllProducts(ctx)
	if err != nil {
		return nil, catalog.Fetchf(name, "fetch products", err)
	}

	ids := SellerIDs(products)
	catalog.ReportProgress(ctx, fmt.Sprintf("Fetching %d sellers...", len(ids)))
	sellers, err := FetchSellers(ctx, c.source, ids, c.batchSize, c.maxConcurrent)
	if err != nil {
		return nil, catalog.Fetchf(name, "fetch sellers", err)
	}

	if c.images != nil {
		c.resolveImages(ctx, products)
	}
	return Enrich(products, sellers), nil
}

// resolveImages rewrites image references in place. A reference that cannot
// be resolved is left as stored.
func (c *Controller) resolveImages(ctx context.Context, products []models.Product) {
	for i := range products {
		if products[i].ImageURL == "" {
			continue
		}
		u, err := c.images.ResolveImage(ctx, products[i].ImageURL)
		if err != nil {
			catalog.ReportProgress(ctx, fmt.Sprintf("Image for %s unresolved: %v", products[i].ID, err))
			continue
		}
		products[i].ImageURL = u
	}
}

// FetchSellers looks sellers up in batches, several batches at a time, and
// returns only after every batch has arrived.
func FetchSellers(ctx context.Context, src catalog.Source, ids []string, batchSize, maxConcurrent int) (map[string]models.Seller, error) {
	batches := catalog.Batches(ids, batchSize)

	g, ctx := errgroup.WithContext(ctx)
	if maxConcurrent > 0 {
		g.SetLimit(maxConcurrent)
	}

	results := make([]map[string]models.Seller, len(batches))
	for i, batch := range batches {
		g.Go(func() error {
			found, err := src.FetchSellersByIDs(ctx, batch)
			if err != nil {
				return err
			}
			results[i] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sellers := make(map[string]models.Seller, len(ids))
	for _, r := range results {
		for id, s := range r {
			sellers[id] = s
		}
	}
	return sellers, nil
}

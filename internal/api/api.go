// Package api exposes the feed, store pages and contact links over HTTP and
// mounts the MCP endpoint next to them.
package api

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lukman83/campusfair/internal/cart"
	"github.com/lukman83/campusfair/internal/catalog"
	"github.com/lukman83/campusfair/internal/contact"
	"github.com/lukman83/campusfair/internal/feed"
	"github.com/lukman83/campusfair/internal/models"
	"github.com/lukman83/campusfair/internal/storefront"
	"github.com/lukman83/campusfair/mcp"
)

type Server struct {
	cat    *mcp.Catalog
	apiKey string
}

// NewRouter wires every route. Write routes and /mcp require apiKey as a
// Bearer token when it is set.
func NewRouter(cat *mcp.Catalog, apiKey string) *gin.Engine {
	s := &Server{cat: cat, apiKey: apiKey}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.GET("/feed", s.getFeed)
	api.GET("/feed/state", s.getState)
	api.POST("/feed/refresh", s.requireKey, s.refresh)
	api.GET("/stores/:slug", s.getStore)
	api.POST("/stores/:slug/checkout", s.checkout)
	api.GET("/products/:id/contact", s.getContact)

	r.Any("/mcp", gin.WrapH(mcp.NewHTTPHandler(cat, apiKey)))
	return r
}

// requireKey checks the Bearer token on write routes.
func (s *Server) requireKey(c *gin.Context) {
	if s.apiKey == "" {
		c.Next()
		return
	}
	auth := c.GetHeader("Authorization")
	if auth == "" {
		c.Header("WWW-Authenticate", `Bearer realm="campusfair"`)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header"})
		return
	}
	token, found := strings.CutPrefix(auth, "Bearer ")
	if !found || subtle.ConstantTimeCompare([]byte(token), []byte(s.apiKey)) != 1 {
		c.Header("WWW-Authenticate", `Bearer realm="campusfair", error="invalid_token"`)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	c.Next()
}

func (s *Server) getFeed(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be a number"})
		return
	}
	if err := s.cat.Feed.EnsureLoaded(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	p, err := s.cat.Feed.Browse(c.Query("q"), page)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) getState(c *gin.Context) {
	c.JSON(http.StatusOK, s.cat.Feed.State())
}

func (s *Server) refresh(c *gin.Context) {
	if err := s.cat.Feed.Refresh(c.Request.Context()); err != nil {
		if errors.Is(err, feed.ErrSuperseded) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.cat.Feed.State())
}

func (s *Server) getStore(c *gin.Context) {
	store, ok := s.loadStore(c)
	if !ok {
		return
	}
	resp := gin.H{
		"seller":   store.Seller,
		"products": store.Products,
		"empty":    store.Empty(),
	}
	if s.cat.PublicURL != "" {
		resp["link"] = storefront.Link(s.cat.PublicURL, store.Seller.StoreSlug)
	}
	c.JSON(http.StatusOK, resp)
}

type checkoutRequest struct {
	Items []struct {
		ProductID string `json:"product_id" binding:"required"`
		Qty       int    `json:"qty" binding:"required,min=1,max=1000"`
	} `json:"items" binding:"required,min=1,max=100,dive"`
}

// checkout builds the WhatsApp order link for a cart of items from one store.
func (s *Server) checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	store, ok := s.loadStore(c)
	if !ok {
		return
	}

	byID := make(map[string]models.Product, len(store.Products))
	for _, p := range store.Products {
		byID[p.ID] = p.Product
	}
	var crt cart.Cart
	for _, it := range req.Items {
		p, ok := byID[it.ProductID]
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "product " + it.ProductID + " is not sold by this store"})
			return
		}
		crt.AddQty(p, it.Qty)
	}

	link, err := contact.OrderLink(store.Seller, crt.Items(), s.cat.CountryCode)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"link":  link,
		"count": crt.Count(),
		"total": crt.Total(),
	})
}

func (s *Server) getContact(c *gin.Context) {
	if err := s.cat.Feed.EnsureLoaded(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	p, ok := s.cat.Feed.Lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	link, err := contact.ProductLink(p, s.cat.CountryCode)
	if errors.Is(err, contact.ErrNoContact) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"product_id": p.ID,
		"store_name": p.StoreName,
		"link":       link,
	})
}

func (s *Server) loadStore(c *gin.Context) (*storefront.Store, bool) {
	store, err := storefront.Load(c.Request.Context(), s.cat.Source, c.Param("slug"))
	if errors.Is(err, catalog.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "store not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return nil, false
	}
	return store, true
}

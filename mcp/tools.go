package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lukman83/campusfair/internal/catalog"
	"github.com/lukman83/campusfair/internal/contact"
	"github.com/lukman83/campusfair/internal/storefront"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type handlers struct {
	cat *Catalog
}

func registerTools(s *server.MCPServer, c *Catalog) {
	h := &handlers{cat: c}

	// browse_feed
	browseTool := mcp.NewTool("browse_feed",
		mcp.WithDescription("Browse the CampusFair product feed in fair order, one page at a time"),
		mcp.WithNumber("page",
			mcp.Description("Page number (default: 1)"),
		),
	)
	s.AddTool(browseTool, h.browseFeed)

	// search_feed
	searchTool := mcp.NewTool("search_feed",
		mcp.WithDescription("Search the feed by product name or description"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search text, matched case-insensitively"),
		),
		mcp.WithNumber("page",
			mcp.Description("Page number (default: 1)"),
		),
	)
	s.AddTool(searchTool, h.searchFeed)

	// store_page
	storeTool := mcp.NewTool("store_page",
		mcp.WithDescription("Get a seller's store page and listings by store slug"),
		mcp.WithString("slug",
			mcp.Required(),
			mcp.Description("Store slug, e.g. gadget-hub"),
		),
	)
	s.AddTool(storeTool, h.storePage)

	// contact_link
	contactTool := mcp.NewTool("contact_link",
		mcp.WithDescription("Get a WhatsApp link to message the seller about a product"),
		mcp.WithString("product_id",
			mcp.Required(),
			mcp.Description("Product id from the feed"),
		),
	)
	s.AddTool(contactTool, h.contactLink)

	// refresh_feed
	refreshTool := mcp.NewTool("refresh_feed",
		mcp.WithDescription("Reload the feed from the catalog backend"),
	)
	s.AddTool(refreshTool, h.refreshFeed)
}

func (h *handlers) browseFeed(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.page(ctx, "", request.GetInt("page", 1))
}

func (h *handlers) searchFeed(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := request.GetString("query", "")
	if query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}
	return h.page(ctx, query, request.GetInt("page", 1))
}

func (h *handlers) page(ctx context.Context, term string, n int) (*mcp.CallToolResult, error) {
	if err := h.cat.Feed.EnsureLoaded(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("feed error: %v", err)), nil
	}
	p, err := h.cat.Feed.Browse(term, n)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("feed error: %v", err)), nil
	}
	return jsonResult(p)
}

func (h *handlers) storePage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug := request.GetString("slug", "")
	if slug == "" {
		return mcp.NewToolResultError("slug is required"), nil
	}

	store, err := storefront.Load(ctx, h.cat.Source, slug)
	if errors.Is(err, catalog.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("store %q not found", slug)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("store error: %v", err)), nil
	}

	out := struct {
		*storefront.Store
		Link  string `json:"link,omitempty"`
		Empty bool   `json:"empty"`
	}{Store: store, Empty: store.Empty()}
	if h.cat.PublicURL != "" {
		out.Link = storefront.Link(h.cat.PublicURL, store.Seller.StoreSlug)
	}
	return jsonResult(out)
}

func (h *handlers) contactLink(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("product_id", "")
	if id == "" {
		return mcp.NewToolResultError("product_id is required"), nil
	}
	if err := h.cat.Feed.EnsureLoaded(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("feed error: %v", err)), nil
	}

	p, ok := h.cat.Feed.Lookup(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("product %q not found", id)), nil
	}
	link, err := contact.ProductLink(p, h.cat.countryCode())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("contact error: %v", err)), nil
	}
	return jsonResult(map[string]string{
		"product_id": p.ID,
		"store_name": p.StoreName,
		"link":       link,
	})
}

func (h *handlers) refreshFeed(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := h.cat.Feed.Refresh(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("refresh error: %v", err)), nil
	}
	return jsonResult(h.cat.Feed.State())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

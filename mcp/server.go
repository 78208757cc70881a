package mcp

import (
	"github.com/lukman83/campusfair/internal/catalog"
	"github.com/lukman83/campusfair/internal/contact"
	"github.com/lukman83/campusfair/internal/feed"
	"github.com/mark3labs/mcp-go/server"
)

const (
	serverName    = "campusfair"
	serverVersion = "1.0.0"
)

// Catalog is everything the tools read from.
type Catalog struct {
	Feed        *feed.Controller
	Source      catalog.Source
	CountryCode string
	PublicURL   string
}

func (c *Catalog) countryCode() string {
	if c.CountryCode == "" {
		return contact.DefaultCountryCode
	}
	return c.CountryCode
}

// NewServer builds an MCP server with all CampusFair tools registered.
func NewServer(c *Catalog) *server.MCPServer {
	s := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
	)

	registerTools(s, c)
	return s
}

// Serve starts the MCP stdio server with all tools registered.
func Serve(c *Catalog) error {
	return server.ServeStdio(NewServer(c))
}

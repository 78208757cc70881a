package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/lukman83/campusfair/internal/catalog"
	mcpserver "github.com/lukman83/campusfair/mcp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start MCP stdio server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cat, closeSrc, err := buildCatalog(context.Background())
	if err != nil {
		return err
	}
	defer closeSrc()

	fmt.Fprintln(cmd.ErrOrStderr(), "Starting CampusFair MCP server on stdio...")

	if err := mcpserver.Serve(cat); err != nil {
		log.Fatalf("MCP server error: %v", err)
	}
	return nil
}

// buildCatalog opens the source and warms the feed for the servers. A
// failed first load is logged and retried on the first request.
func buildCatalog(ctx context.Context) (*mcpserver.Catalog, func(), error) {
	src, closeSrc, err := initSource(ctx)
	if err != nil {
		return nil, nil, err
	}
	c, err := newController(src)
	if err != nil {
		closeSrc()
		return nil, nil, err
	}

	logCtx := catalog.WithProgress(ctx, func(msg string) { log.Println(msg) })
	if err := c.Load(logCtx); err != nil {
		log.Printf("Initial feed load failed: %v", err)
	}

	return &mcpserver.Catalog{
		Feed:        c,
		Source:      src,
		CountryCode: cfg.CountryCode,
		PublicURL:   cfg.PublicURL,
	}, closeSrc, nil
}

package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/lukman83/campusfair/internal/api"
	"github.com/spf13/cobra"
)

var serveHTTPCmd = &cobra.Command{
	Use:   "serve-http",
	Short: "Start the HTTP API and MCP server",
	Long:  "Serve the feed JSON API and the MCP endpoint (/mcp) over HTTP for remote access.",
	RunE:  runServeHTTP,
}

func init() {
	serveHTTPCmd.Flags().String("port", "", "HTTP port (default from $PORT or 8080)")
	rootCmd.AddCommand(serveHTTPCmd)
}

func runServeHTTP(cmd *cobra.Command, args []string) error {
	cat, closeSrc, err := buildCatalog(context.Background())
	if err != nil {
		return err
	}
	defer closeSrc()

	port := cfg.HTTPPort
	if p, _ := cmd.Flags().GetString("port"); p != "" {
		port = p
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      api.NewRouter(cat, cfg.APIKey),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("CampusFair HTTP server listening on %s", srv.Addr)
	return srv.ListenAndServe()
}

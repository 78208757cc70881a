package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lukman83/campusfair/internal/catalog"
	"github.com/lukman83/campusfair/internal/render"
	"github.com/lukman83/campusfair/internal/storefront"
	"github.com/lukman83/campusfair/internal/ui"
	"github.com/spf13/cobra"
)

var storeCmd = &cobra.Command{
	Use:   "store [slug]",
	Short: "Show a seller's store page",
	Args:  cobra.ExactArgs(1),
	RunE:  runStore,
}

func init() {
	storeCmd.Flags().String("format", "table", "Output format: table, json")
	rootCmd.AddCommand(storeCmd)
}

func runStore(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	src, closeSrc, err := initSource(context.Background())
	if err != nil {
		return err
	}
	defer closeSrc()

	spin := ui.NewSpinner()
	spin.Start(fmt.Sprintf("Opening store '%s'...", args[0]))
	ctx := catalog.WithProgress(context.Background(), spin.Update)
	store, err := storefront.Load(ctx, src, args[0])
	spin.Stop()
	if errors.Is(err, catalog.ErrNotFound) {
		return fmt.Errorf("store %q not found", args[0])
	}
	if err != nil {
		return fmt.Errorf("could not load store: %w", err)
	}

	switch format {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(store)
	default:
		render.NewText(cmd.OutOrStdout(), cfg.PublicURL).RenderStore(store)
		if cfg.PublicURL != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "\nShare: %s\n", storefront.Link(cfg.PublicURL, store.Seller.StoreSlug))
		}
	}
	return nil
}

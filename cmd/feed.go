package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lukman83/campusfair/internal/catalog"
	"github.com/lukman83/campusfair/internal/render"
	"github.com/lukman83/campusfair/internal/ui"
	"github.com/spf13/cobra"
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show one page of the fair-ordered product feed",
	RunE:  runFeed,
}

func init() {
	feedCmd.Flags().Int("page", 1, "Page number")
	feedCmd.Flags().String("search", "", "Filter by name or description")
	feedCmd.Flags().String("format", "table", "Output format: table, json")
	rootCmd.AddCommand(feedCmd)
}

func runFeed(cmd *cobra.Command, args []string) error {
	page, _ := cmd.Flags().GetInt("page")
	term, _ := cmd.Flags().GetString("search")
	format, _ := cmd.Flags().GetString("format")

	src, closeSrc, err := initSource(context.Background())
	if err != nil {
		return err
	}
	defer closeSrc()

	c, err := newController(src)
	if err != nil {
		return err
	}

	spin := ui.NewSpinner()
	spin.Start(fmt.Sprintf("Loading feed from %s...", src.Name()))
	ctx := catalog.WithProgress(context.Background(), spin.Update)
	err = c.Load(ctx)
	spin.Stop()
	if err != nil {
		return fmt.Errorf("could not load products: %w", err)
	}

	p, err := c.Browse(term, page)
	if err != nil {
		return err
	}
	if format == "json" {
		// Page.Count is the size of the filtered view.
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}
	render.NewText(cmd.OutOrStdout(), cfg.PublicURL).RenderFeed(p.Items, p.Pagination)
	return nil
}

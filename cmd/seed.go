package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/lukman83/campusfair/internal/catalog"
	"github.com/lukman83/campusfair/internal/memstore"
	"github.com/lukman83/campusfair/internal/seed"
	"github.com/lukman83/campusfair/internal/ui"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed [batch.json]",
	Short: "Register sellers and add products from a JSON batch",
	Long: `Register sellers and add products from a JSON batch of the form
{"sellers": [...registrations], "products": [...listings]}.
With the file source the fixture is rewritten in place.`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var batch seed.Batch
	if err := json.Unmarshal(data, &batch); err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}

	if cfg.Source == "file" {
		if _, err := os.Stat(cfg.Fixture); os.IsNotExist(err) {
			if err := memstore.New().Save(cfg.Fixture); err != nil {
				return err
			}
		}
	}

	src, closeSrc, err := initSource(context.Background())
	if err != nil {
		return err
	}
	defer closeSrc()

	w, ok := seed.Writable(unwrap(src))
	if !ok {
		return fmt.Errorf("source %s is read-only", src.Name())
	}

	spin := ui.NewSpinner()
	spin.Start("Seeding catalog...")
	ctx := catalog.WithProgress(context.Background(), spin.Update)
	res, err := seed.Import(ctx, w, batch)
	spin.Stop()
	if err != nil {
		return err
	}

	if err := commitWrites(cmd, src, w); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, s := range res.Sellers {
		fmt.Fprintf(out, "%s  %s  /s/%s\n", s.SellerCode, s.StoreName, s.StoreSlug)
	}
	fmt.Fprintf(out, "Added %d sellers and %d products\n", len(res.Sellers), res.Products)
	return nil
}

// commitWrites makes stored changes visible: it drops cached catalog pages
// and rewrites the fixture when the backend is the file store.
func commitWrites(cmd *cobra.Command, src catalog.Source, backend any) error {
	if inv, ok := src.(catalog.Invalidator); ok {
		if err := inv.Invalidate(context.Background()); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: cache not cleared: %v\n", err)
		}
	}
	if store, ok := backend.(*memstore.Store); ok {
		return store.Save(cfg.Fixture)
	}
	return nil
}

// unwrap returns the backend behind a cache decorator.
func unwrap(src catalog.Source) catalog.Source {
	if u, ok := src.(interface{ Unwrap() catalog.Source }); ok {
		return u.Unwrap()
	}
	return src
}

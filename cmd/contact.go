package cmd

import (
	"context"
	"fmt"

	"github.com/lukman83/campusfair/internal/catalog"
	"github.com/lukman83/campusfair/internal/contact"
	"github.com/lukman83/campusfair/internal/ui"
	"github.com/spf13/cobra"
)

var contactCmd = &cobra.Command{
	Use:   "contact [product-id]",
	Short: "Print the WhatsApp link for buying a product",
	Args:  cobra.ExactArgs(1),
	RunE:  runContact,
}

func init() {
	rootCmd.AddCommand(contactCmd)
}

func runContact(cmd *cobra.Command, args []string) error {
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
	spin.Start("Loading feed...")
	ctx := catalog.WithProgress(context.Background(), spin.Update)
	err = c.Load(ctx)
	spin.Stop()
	if err != nil {
		return fmt.Errorf("could not load products: %w", err)
	}

	p, ok := c.Lookup(args[0])
	if !ok {
		return fmt.Errorf("product %q not found", args[0])
	}
	link, err := contact.ProductLink(p, cfg.CountryCode)
	if err != nil {
		return fmt.Errorf("%s: %w", p.StoreName, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), link)
	return nil
}

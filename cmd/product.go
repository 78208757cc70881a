package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/lukman83/campusfair/internal/catalog"
	"github.com/lukman83/campusfair/internal/seed"
	"github.com/spf13/cobra"
)

var productCmd = &cobra.Command{
	Use:   "product",
	Short: "Edit or delete a seller's own products",
}

var productEditCmd = &cobra.Command{
	Use:   "edit [seller-id] [product-id]",
	Short: "Change a product's name, price, description or image",
	Args:  cobra.ExactArgs(2),
	RunE:  runProductEdit,
}

var productDeleteCmd = &cobra.Command{
	Use:   "delete [seller-id] [product-id]",
	Short: "Remove a product from the catalog",
	Args:  cobra.ExactArgs(2),
	RunE:  runProductDelete,
}

var settingsCmd = &cobra.Command{
	Use:   "store-settings [seller-id]",
	Short: "Update a store's name, description and contact details",
	Long: `Update a store's profile. The store link (/s/<slug>) is permanent and
does not follow a new store name.`,
	Args: cobra.ExactArgs(1),
	RunE: runSettings,
}

func init() {
	f := productEditCmd.Flags()
	f.String("name", "", "New product name")
	f.Int64("price", 0, "New price in naira")
	f.String("description", "", "New description")
	f.String("image", "", "New image URL")

	f = settingsCmd.Flags()
	f.String("name", "", "New store name")
	f.String("owner", "", "Owner name")
	f.String("description", "", "Store description")
	f.String("phone", "", "WhatsApp number")
	f.String("email", "", "Contact email")

	productCmd.AddCommand(productEditCmd, productDeleteCmd)
	rootCmd.AddCommand(productCmd, settingsCmd)
}

// openEditable opens the configured source and returns the editable backend
// behind any cache.
func openEditable() (catalog.Source, seed.Backend, func(), error) {
	src, closeSrc, err := initSource(context.Background())
	if err != nil {
		return nil, nil, nil, err
	}
	b, ok := seed.Editable(unwrap(src))
	if !ok {
		closeSrc()
		return nil, nil, nil, fmt.Errorf("source %s is read-only", src.Name())
	}
	return src, b, closeSrc, nil
}

func runProductEdit(cmd *cobra.Command, args []string) error {
	sellerID, productID := args[0], args[1]
	src, b, closeSrc, err := openEditable()
	if err != nil {
		return err
	}
	defer closeSrc()

	ctx := context.Background()
	cur, err := b.FindProduct(ctx, productID)
	if errors.Is(err, catalog.ErrNotFound) {
		return fmt.Errorf("product %q not found", productID)
	}
	if err != nil {
		return err
	}

	// Unset flags keep the stored value.
	l := seed.Listing{Name: cur.Name, Description: cur.Description, Price: cur.Price}
	flags := cmd.Flags()
	if flags.Changed("name") {
		l.Name, _ = flags.GetString("name")
	}
	if flags.Changed("price") {
		l.Price, _ = flags.GetInt64("price")
	}
	if flags.Changed("description") {
		l.Description, _ = flags.GetString("description")
	}
	l.ImageURL, _ = flags.GetString("image")

	p, err := seed.EditProduct(ctx, b, sellerID, productID, l)
	if err != nil {
		return err
	}
	if err := commitWrites(cmd, src, b); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: %s ₦%d\n", p.ID, p.Name, p.Price)
	return nil
}

func runProductDelete(cmd *cobra.Command, args []string) error {
	sellerID, productID := args[0], args[1]
	src, b, closeSrc, err := openEditable()
	if err != nil {
		return err
	}
	defer closeSrc()

	if err := seed.RemoveProduct(context.Background(), b, sellerID, productID); err != nil {
		return err
	}
	if err := commitWrites(cmd, src, b); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", productID)
	return nil
}

func runSettings(cmd *cobra.Command, args []string) error {
	src, b, closeSrc, err := openEditable()
	if err != nil {
		return err
	}
	defer closeSrc()

	flags := cmd.Flags()
	var p seed.Profile
	p.StoreName, _ = flags.GetString("name")
	p.OwnerName, _ = flags.GetString("owner")
	p.StoreDescription, _ = flags.GetString("description")
	p.Phone, _ = flags.GetString("phone")
	p.Email, _ = flags.GetString("email")

	sel, err := seed.UpdateProfile(context.Background(), b, args[0], p)
	if err != nil {
		return err
	}
	if err := commitWrites(cmd, src, b); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  /s/%s\n", sel.SellerCode, sel.StoreName, sel.StoreSlug)
	return nil
}

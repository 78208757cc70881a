package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lukman83/campusfair/internal/cart"
	"github.com/lukman83/campusfair/internal/catalog"
	"github.com/lukman83/campusfair/internal/contact"
	"github.com/lukman83/campusfair/internal/render"
	"github.com/lukman83/campusfair/internal/storefront"
	"github.com/lukman83/campusfair/internal/ui"
	"github.com/spf13/cobra"
)

var shopCmd = &cobra.Command{
	Use:   "shop [slug]",
	Short: "Fill a cart from one store and get the WhatsApp order link",
	Long: `Fill a cart from one store interactively. Commands:
  + <n>      add one of item n
  - <n>      remove one of item n
  cart       show the cart
  checkout   print the WhatsApp order link
  q          quit`,
	Args: cobra.ExactArgs(1),
	RunE: runShop,
}

func init() {
	rootCmd.AddCommand(shopCmd)
}

func runShop(cmd *cobra.Command, args []string) error {
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

	out := cmd.OutOrStdout()
	render.NewText(out, cfg.PublicURL).RenderStore(store)
	return shopLoop(cmd.InOrStdin(), out, store, cfg.CountryCode)
}

func shopLoop(in io.Reader, out io.Writer, store *storefront.Store, countryCode string) error {
	var crt cart.Cart
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())

		switch {
		case line == "q":
			return nil
		case line == "cart":
			printCart(out, &crt)
		case line == "checkout":
			link, err := contact.OrderLink(store.Seller, crt.Items(), countryCode)
			if err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			fmt.Fprintln(out, link)
		case strings.HasPrefix(line, "+ "), strings.HasPrefix(line, "- "):
			n, err := strconv.Atoi(strings.TrimSpace(line[2:]))
			if err != nil || n < 1 || n > len(store.Products) {
				fmt.Fprintf(out, "Pick an item between 1 and %d\n", len(store.Products))
				continue
			}
			p := store.Products[n-1].Product
			if line[0] == '+' {
				if !crt.Increase(p.ID) {
					crt.Add(p)
				}
			} else if !crt.Decrease(p.ID) {
				fmt.Fprintf(out, "%s is not in the cart\n", p.Name)
				continue
			}
			fmt.Fprintf(out, "Cart: %d items, %s\n", crt.Count(), render.FormatPrice(crt.Total()))
		default:
			fmt.Fprintf(out, "Unknown command %q\n", line)
		}
	}
}

func printCart(out io.Writer, crt *cart.Cart) {
	if crt.Empty() {
		fmt.Fprintln(out, "Cart is empty.")
		return
	}
	for _, it := range crt.Items() {
		fmt.Fprintf(out, "  %s × %d = %s\n", it.Product.Name, it.Qty, render.FormatPrice(it.Subtotal()))
	}
	fmt.Fprintf(out, "  Total: %s\n", render.FormatPrice(crt.Total()))
}

package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lukman83/campusfair/internal/catalog"
	"github.com/lukman83/campusfair/internal/contact"
	"github.com/lukman83/campusfair/internal/feed"
	"github.com/lukman83/campusfair/internal/render"
	"github.com/lukman83/campusfair/internal/ui"
	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Page through the feed interactively",
	Long: `Page through the feed interactively. Commands:
  n / p      next / previous page
  <number>   go to page
  /text      search (a lone / clears the search)
  c <n>      WhatsApp link for item n on the current page
  r          reload the feed
  q          quit`,
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().String("format", "table", "Page output format: table, json")
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	src, closeSrc, err := initSource(context.Background())
	if err != nil {
		return err
	}
	defer closeSrc()

	format, _ := cmd.Flags().GetString("format")
	out := cmd.OutOrStdout()
	c, err := newController(src, feed.WithRenderer(rendererFor(cmd, format)))
	if err != nil {
		return err
	}

	load := func() {
		spin := ui.NewSpinner()
		spin.Start(fmt.Sprintf("Loading feed from %s...", src.Name()))
		ctx := catalog.WithProgress(context.Background(), spin.Update)
		err := c.Retry(ctx)
		spin.Stop()
		if err != nil {
			fmt.Fprintf(out, "Could not load products: %v\nType r to retry.\n", err)
		}
	}
	load()

	return browseLoop(cmd.InOrStdin(), out, c, load)
}

func browseLoop(in io.Reader, out io.Writer, c *feed.Controller, reload func()) error {
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())

		var err error
		switch {
		case line == "q":
			return nil
		case line == "r":
			reload()
		case line == "" || line == "n":
			err = step(c, 1)
		case line == "p":
			err = step(c, -1)
		case strings.HasPrefix(line, "/"):
			_, err = c.SetTerm(strings.TrimPrefix(line, "/"))
		case strings.HasPrefix(line, "c "):
			err = printContact(out, c, strings.TrimSpace(line[2:]))
		default:
			n, convErr := strconv.Atoi(line)
			if convErr != nil {
				fmt.Fprintf(out, "Unknown command %q\n", line)
				continue
			}
			_, err = c.SetPage(n)
		}

		if errors.Is(err, feed.ErrNotReady) {
			fmt.Fprintln(out, "The feed is not loaded. Type r to retry.")
		} else if err != nil {
			fmt.Fprintln(out, err)
		}
	}
}

func step(c *feed.Controller, delta int) error {
	cur, err := c.Current()
	if err != nil {
		return err
	}
	_, err = c.SetPage(cur.Current + delta)
	return err
}

func printContact(out io.Writer, c *feed.Controller, arg string) error {
	cur, err := c.Current()
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(cur.Items) {
		return fmt.Errorf("pick an item between 1 and %d", len(cur.Items))
	}
	link, err := contact.ProductLink(cur.Items[n-1], cfg.CountryCode)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, link)
	return nil
}

func rendererFor(cmd *cobra.Command, format string) feed.Renderer {
	switch format {
	case "json":
		return render.NewJSON(cmd.OutOrStdout())
	default:
		return render.NewText(cmd.OutOrStdout(), cfg.PublicURL)
	}
}

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/lukman83/campusfair/internal/catalog"
	"github.com/lukman83/campusfair/internal/memstore"
	"github.com/lukman83/campusfair/internal/mongostore"
	"github.com/lukman83/campusfair/internal/restdb"
	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the catalog backends this build can open",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listSources(cmd.OutOrStdout(), cfg.Source)
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)

	catalog.Register("file", func(ctx context.Context) (catalog.Source, func(), error) {
		store, err := memstore.Open(cfg.Fixture)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	})
	catalog.Register("mongo", func(ctx context.Context) (catalog.Source, func(), error) {
		store, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		if err := store.EnsureIndexes(ctx); err != nil {
			store.Close(context.Background())
			return nil, nil, err
		}
		return store, func() { store.Close(context.Background()) }, nil
	})
	catalog.Register("firestore", func(ctx context.Context) (catalog.Source, func(), error) {
		src := restdb.NewSource(buildHTTPClient(), cfg.FirestoreBaseURL, cfg.FirestoreProject, cfg.FirestoreAPIKey)
		return src, func() {}, nil
	})
}

// listSources prints every registered backend and marks the configured one.
func listSources(out io.Writer, active string) error {
	for _, name := range catalog.List() {
		mark := " "
		if name == active {
			mark = "*"
		}
		if _, err := fmt.Fprintf(out, "%s %s\n", mark, name); err != nil {
			return err
		}
	}
	return nil
}

package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/lukman83/campusfair/config"
	"github.com/lukman83/campusfair/internal/cache"
	"github.com/lukman83/campusfair/internal/catalog"
	"github.com/lukman83/campusfair/internal/feed"
	"github.com/lukman83/campusfair/internal/httputil"
	"github.com/lukman83/campusfair/internal/media"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "campusfair",
	Short: "CampusFair - student marketplace feed CLI & MCP server",
	Long:  "Browse the CampusFair catalog in fair order, open store pages and contact sellers on WhatsApp.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("source", "", "Catalog backend: file, mongo, firestore")
	rootCmd.PersistentFlags().String("fixture", "", "Catalog JSON file for the file source")
	rootCmd.PersistentFlags().Int("page-size", 0, "Products per feed page")
	rootCmd.PersistentFlags().String("country-code", "", "Dialing code for local phone numbers")
}

func initConfig() {
	cfg = config.DefaultConfig()
	cfg.LoadFromEnv()

	// Override from flags
	if v, _ := rootCmd.PersistentFlags().GetString("source"); v != "" {
		cfg.Source = v
	}
	if v, _ := rootCmd.PersistentFlags().GetString("fixture"); v != "" {
		cfg.Fixture = v
	}
	if v, _ := rootCmd.PersistentFlags().GetInt("page-size"); v > 0 {
		cfg.PageSize = v
	}
	if v, _ := rootCmd.PersistentFlags().GetString("country-code"); v != "" {
		cfg.CountryCode = v
	}
}

// buildHTTPClient creates the rate-limited HTTP client from config.
func buildHTTPClient() *http.Client {
	limiter := rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst)

	baseTransport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
	}

	return httputil.NewHTTPClient(&httputil.LimitedTransport{
		Base:        baseTransport,
		RateLimiter: limiter,
	})
}

// initSource opens the configured catalog backend through the registry and
// puts the Redis cache in front of it when REDIS_ADDR is set. The returned
// func releases connections.
func initSource(ctx context.Context) (catalog.Source, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	open, err := catalog.Get(cfg.Source)
	if err != nil {
		return nil, nil, err
	}
	src, closeSource, err := open(ctx)
	if err != nil {
		return nil, nil, err
	}
	closers := []func(){closeSource}

	if cfg.RedisAddr != "" {
		rdb, err := cache.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			// The feed still works without the cache.
			fmt.Fprintf(os.Stderr, "Warning: %v; continuing without cache\n", err)
		} else {
			src = cache.New(src, rdb, cfg.CacheTTL)
			closers = append(closers, func() { rdb.Close() })
		}
	}

	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return src, closeAll, nil
}

// newController builds a feed controller for src using config settings.
func newController(src catalog.Source, opts ...feed.Option) (*feed.Controller, error) {
	base := []feed.Option{
		feed.WithPageSize(cfg.PageSize),
		feed.WithConcurrency(cfg.MaxConcurrent),
	}
	if cfg.MinioEndpoint != "" {
		images, err := media.NewResolver(media.Config{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			Region:    cfg.MinioRegion,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			return nil, err
		}
		base = append(base, feed.WithImageResolver(images))
	}
	return feed.NewController(src, append(base, opts...)...), nil
}

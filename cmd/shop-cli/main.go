// Command shop-cli is a terminal storefront running the engine in process.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	addressapp "github.com/dwikikusuma/storefront/internal/address/app"
	"github.com/dwikikusuma/storefront/internal/address/infra/viacep"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	catalogdomain "github.com/dwikikusuma/storefront/internal/catalog/domain"
	"github.com/dwikikusuma/storefront/internal/catalog/infra/memory"
	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
	checkoutdomain "github.com/dwikikusuma/storefront/internal/checkout/domain"
	"github.com/dwikikusuma/storefront/internal/checkout/infra/adapter"
	"github.com/dwikikusuma/storefront/internal/session"
	"github.com/dwikikusuma/storefront/pkg/config"
	"github.com/dwikikusuma/storefront/pkg/logger"
)

func main() {
	cfg := config.Load()
	catalogFile := flag.String("catalog", cfg.CatalogFile, "YAML catalog to load")
	logFile := flag.String("log", "", "write logs to this file (default: discard)")
	flag.Parse()

	var out io.Writer = io.Discard
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintln(os.Stderr, "open log file:", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	log := logger.New(logger.Options{Service: "shop-cli", Env: cfg.AppEnv, Level: cfg.LogLevel, Output: out, Text: true})

	repo, err := memory.LoadFile(*catalogFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	catalog := catalogapp.NewService(repo)

	ctx := context.Background()
	listed, _, err := catalog.ListProducts(ctx, catalogdomain.ListFilter{Limit: 100})
	if err != nil {
		fmt.Fprintln(os.Stderr, "list products:", err)
		os.Exit(1)
	}
	products := make([]checkoutdomain.Product, 0, len(listed))
	for _, p := range listed {
		products = append(products, adapter.ProductFromCatalog(p))
	}

	lookup := addressapp.NewService(viacep.New(cfg.ViaCEPBaseURL, cfg.AddressLookupRPS), cfg.AddressCacheSize, cfg.AddressCacheTTL, log)
	sessions, err := session.NewRegistry(1, session.Deps{
		Catalog:            adapter.NewCatalogServiceReader(catalog),
		Pricing:            checkoutapp.NewPricing(cfg.MaxInstallments),
		Address:            lookup,
		BuyNowIncludesCart: cfg.BuyNowIncludesCart,
		Log:                log,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	sess, _ := sessions.GetOrCreate("")

	_, err = tea.NewProgram(newModel(ctx, products, sess)).Run()
	// drops the session and any lookup still in flight
	sessions.Delete(sess.ID)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	addressapp "github.com/dwikikusuma/storefront/internal/address/app"
	"github.com/dwikikusuma/storefront/internal/address/infra/viacep"
	cartmetrics "github.com/dwikikusuma/storefront/internal/cart/infra/metrics"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	"github.com/dwikikusuma/storefront/internal/catalog/infra/memory"
	cpg "github.com/dwikikusuma/storefront/internal/catalog/infra/postgres"
	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
	checkoutadapter "github.com/dwikikusuma/storefront/internal/checkout/infra/adapter"
	"github.com/dwikikusuma/storefront/internal/checkout/infra/events"
	"github.com/dwikikusuma/storefront/internal/httpapi"
	"github.com/dwikikusuma/storefront/internal/session"
	"github.com/dwikikusuma/storefront/pkg/config"
	"github.com/dwikikusuma/storefront/pkg/kafka"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"github.com/dwikikusuma/storefront/pkg/metrics"
	"github.com/dwikikusuma/storefront/pkg/postgres"
	"github.com/dwikikusuma/storefront/pkg/shutdown"
)

const serviceName = "storefront"

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{Service: serviceName, Env: cfg.AppEnv, Level: cfg.LogLevel, AddSource: true})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	// Catalog
	catalogRepo, ready, closeDB, err := openCatalog(ctx, cfg, log)
	if err != nil {
		log.Error("catalog init failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer closeDB()
	catalogSvc := catalogapp.NewService(catalogRepo)

	// Address lookup
	lookup := addressapp.NewService(
		viacep.New(cfg.ViaCEPBaseURL, cfg.AddressLookupRPS),
		cfg.AddressCacheSize, cfg.AddressCacheTTL, log,
	)

	// Sessions (cart + checkout + flow per shopper)
	m := metrics.NewServerMetrics(serviceName)
	sessions, err := session.NewRegistry(cfg.MaxSessions, session.Deps{
		Catalog:            checkoutadapter.NewCatalogServiceReader(catalogSvc),
		Pricing:            checkoutapp.NewPricing(cfg.MaxInstallments),
		Address:            lookup,
		CartObserver:       cartmetrics.NewObserver(m.CartMutations),
		BuyNowIncludesCart: cfg.BuyNowIncludesCart,
		Log:                log,
	}, session.WithSizeHook(func(n int) { m.Sessions.Set(float64(n)) }))
	if err != nil {
		log.Error("session registry init failed", slog.Any("err", err))
		os.Exit(1)
	}

	publisher := newPublisher(cfg, log)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn("event publisher close failed", slog.Any("err", err))
		}
	}()

	api := httpapi.New(httpapi.Deps{
		Catalog:  catalogSvc,
		Sessions: sessions,
		Events:   publisher,
		Metrics:  m,
		Log:      log,
		Ready:    ready,
	})

	httpAddr := fmt.Sprintf(":%d", cfg.HTTPPort)
	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	grpcAddr := fmt.Sprintf(":%d", cfg.GRPCPort)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		log.Error("listen failed", slog.Any("err", err), slog.String("addr", grpcAddr))
		os.Exit(1)
	}
	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server starting", slog.String("addr", httpAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		log.Info("grpc starting", slog.String("addr", grpcAddr))
		if err := grpcServer.Serve(lis); err != nil {
			return fmt.Errorf("grpc serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown requested")
		healthSrv.Shutdown()

		return shutdown.Graceful(10*time.Second,
			httpServer.Shutdown,
			func(stopCtx context.Context) error {
				stopped := make(chan struct{})
				go func() {
					grpcServer.GracefulStop()
					close(stopped)
				}()
				select {
				case <-stopCtx.Done():
					log.Warn("graceful stop timeout, forcing stop")
					grpcServer.Stop()
				case <-stopped:
				}
				return nil
			},
		)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", slog.Any("err", err))
	}
	log.Info("bye")
}

// openCatalog picks Postgres when DATABASE_URL is set and the YAML seed file
// otherwise.
func openCatalog(ctx context.Context, cfg config.Config, log *slog.Logger) (catalogapp.ProductRepo, func(context.Context) error, func(), error) {
	if cfg.DatabaseURL != "" {
		pool, err := postgres.Open(ctx, cfg.DatabaseURL, 5*time.Second)
		if err != nil {
			return nil, nil, nil, err
		}
		log.Info("catalog backed by postgres")
		return cpg.NewProductRepo(pool), pool.Ping, pool.Close, nil
	}

	repo, err := memory.LoadFile(cfg.CatalogFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, nil, nil, err
		}
		log.Warn("catalog file missing, starting with an empty catalog", slog.String("path", cfg.CatalogFile))
		repo = memory.NewProductRepo()
	}
	log.Info("catalog loaded in memory", slog.String("path", cfg.CatalogFile))
	return repo, nil, func() {}, nil
}

type eventPublisher interface {
	httpapi.PaymentPublisher
	Close() error
}

func newPublisher(cfg config.Config, log *slog.Logger) eventPublisher {
	client := kafka.NewClient(cfg.KafkaBrokers)
	if !client.Enabled() {
		log.Info("kafka disabled, payment events are dropped")
		return events.Nop{}
	}

	w := client.NewWriter(cfg.KafkaTopic, func(msgs []kafkago.Message, err error) {
		if err != nil {
			log.Warn("payment events not delivered", slog.Int("count", len(msgs)), slog.Any("err", err))
		}
	})
	log.Info("publishing payment events", slog.String("topic", cfg.KafkaTopic))
	return events.NewKafkaPublisher(w, log)
}

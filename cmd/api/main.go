package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"shopapi/docs"
	"shopapi/internal/catalog"
	"shopapi/internal/config"
	handlers "shopapi/internal/http/handler"
	"shopapi/internal/http/middleware"
	"shopapi/internal/logger"
	"shopapi/internal/metrics"
	shopotel "shopapi/internal/otel"
	"shopapi/internal/service"
)

// @title Shop API
// @version 1.0
// @description Users, a fixed product catalog, carts, balances and checkout.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.ServiceName, cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.AppConfig, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cleanup closers
	defer cleanup.closeAll(log)

	shutdownTracing, err := shopotel.Init(ctx, cfg.ServiceName, log)
	if err != nil {
		return err
	}
	cleanup.add("tracing", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return shutdownTracing(ctx)
	})

	st, err := openStores(ctx, cfg, log, &cleanup)
	if err != nil {
		return err
	}

	seed, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		return err
	}
	products, err := st.products.Seed(ctx, seed)
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	log.Info().Str("store", cfg.StoreDriver).Int("products", len(products)).Msg("catalog ready")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	orderMetrics, err := metrics.NewOrders(reg)
	if err != nil {
		return fmt.Errorf("register order metrics: %w", err)
	}
	notifiers, err := openNotifiers(ctx, cfg, log, &cleanup)
	if err != nil {
		return err
	}
	notifiers = append([]service.OrderNotifier{orderMetrics}, notifiers...)

	svc := service.NewShopService(st.users, st.products, log, notifiers...)

	configureSwagger(cfg)
	app, err := newApp(cfg, log, reg, st.users, svc)
	if err != nil {
		return err
	}

	addr := ":" + cfg.Port
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("listening")
		return app.Listen(addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		return app.ShutdownWithTimeout(cfg.ShutdownTimeout)
	})
	return g.Wait()
}

// configureSwagger sets the documented host and schemes. An empty host makes the
// UI target whichever origin served it.
func configureSwagger(cfg *config.AppConfig) {
	docs.SwaggerInfo.Host = cfg.SwaggerHost
	docs.SwaggerInfo.Schemes = []string{}
	if len(cfg.SwaggerSchemes) > 0 {
		docs.SwaggerInfo.Schemes = cfg.SwaggerSchemes
	}
}

// newApp builds the Fiber app with middleware, API routes and operational endpoints.
func newApp(cfg *config.AppConfig, log zerolog.Logger, reg *prometheus.Registry, store handlers.Pinger, svc service.ShopService) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		AppName:               cfg.ServiceName,
		ErrorHandler:          handlers.ErrorHandler(),
		DisableStartupMessage: true,
	})

	prom, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return nil, fmt.Errorf("register http metrics: %w", err)
	}

	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/metrics"
	})))
	app.Use(middleware.Logger(log))
	app.Use(prom.Handler())

	handlers.RegisterRoutes(app, store, svc, log)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	app.Get("/swagger/*", swagger.HandlerDefault)

	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir)
	}

	return app, nil
}

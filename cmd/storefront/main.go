package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/bakehouse/storefront/internal/admin"
	cartcache "github.com/bakehouse/storefront/internal/cart/cache"
	cartsvc "github.com/bakehouse/storefront/internal/cart/service"
	catalogrepo "github.com/bakehouse/storefront/internal/catalog/repository"
	catalogsvc "github.com/bakehouse/storefront/internal/catalog/service"
	"github.com/bakehouse/storefront/internal/checkout/gateway"
	"github.com/bakehouse/storefront/internal/checkout/publisher"
	checkoutrepo "github.com/bakehouse/storefront/internal/checkout/repository"
	checkoutsvc "github.com/bakehouse/storefront/internal/checkout/service"
	customrepo "github.com/bakehouse/storefront/internal/customorder/repository"
	customsvc "github.com/bakehouse/storefront/internal/customorder/service"
	h "github.com/bakehouse/storefront/internal/http"
	"github.com/bakehouse/storefront/internal/notify"
	ordersrepo "github.com/bakehouse/storefront/internal/orders/repository"
	"github.com/bakehouse/storefront/pkg/config"
	"github.com/bakehouse/storefront/pkg/logger"
	"github.com/bakehouse/storefront/pkg/shutdown"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service: "storefront",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	if err := run(cfg, log); err != nil {
		log.Error("storefront stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := shutdown.WithSignals(context.Background())
	defer stop()

	// Catalog
	catalogRepo, err := catalogrepo.NewRepository(cfg.Catalog.DBPath)
	if err != nil {
		return err
	}
	defer catalogRepo.Close()

	if err := catalogRepo.RunMigrations(cfg.Catalog.MigrationsPath); err != nil {
		return err
	}
	catalog := catalogsvc.NewCatalog(catalogRepo, log)
	if err := catalog.Reload(ctx); err != nil {
		return err
	}

	// Carts
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return err
	}
	log.Info("redis ping succeeded", "addr", cfg.Redis.Addr)

	carts := cartsvc.NewCartService(cartcache.NewRedisStore(redisClient, cfg.HTTP.SessionTTL), catalog, log)

	// Order outbox
	checkoutCreds := &checkoutrepo.Credentials{
		Host:              cfg.Postgres.Host,
		Port:              cfg.Postgres.Port,
		User:              cfg.Postgres.User,
		Password:          cfg.Postgres.Password,
		DBName:            cfg.Postgres.DBName,
		MigrationsDirPath: cfg.Postgres.CheckoutMigrationsPath,
	}
	outbox, err := checkoutrepo.NewRepository(checkoutCreds)
	if err != nil {
		return err
	}
	defer outbox.Close()
	if err := outbox.RunMigrations(checkoutCreds); err != nil {
		return err
	}
	log.Info("checkout migrations completed")

	// Orders table, read by the admin panel
	ordersCreds := &ordersrepo.Credentials{
		Host:              cfg.Postgres.Host,
		Port:              cfg.Postgres.Port,
		User:              cfg.Postgres.User,
		Password:          cfg.Postgres.Password,
		DBName:            cfg.Postgres.DBName,
		MigrationsDirPath: cfg.Postgres.OrdersMigrationsPath,
	}
	orders, err := ordersrepo.NewRepository(ordersCreds)
	if err != nil {
		return err
	}
	defer orders.Close()
	if err := orders.RunMigrations(ordersCreds); err != nil {
		return err
	}

	// Custom cake requests
	mongoDB, err := customrepo.ConnectMongoDB(ctx, cfg.Mongo.URI, cfg.Mongo.DBName)
	if err != nil {
		return err
	}
	defer func() {
		if err := mongoDB.Client().Disconnect(context.Background()); err != nil {
			log.Warn("mongo disconnect failed", "error", err)
		}
	}()
	customRepo := customrepo.NewMongoRepository(mongoDB)
	if err := customRepo.CreateIndexes(ctx); err != nil {
		return err
	}
	customOrders := customsvc.NewCustomOrderService(customRepo, log)

	// Checkout
	gatewayClient := gateway.NewClient(gateway.Config{
		KeyID:     cfg.Gateway.KeyID,
		KeySecret: cfg.Gateway.KeySecret,
		BaseURL:   cfg.Gateway.BaseURL,
		Timeout:   cfg.Gateway.Timeout,
	}, log)
	notifier := notify.NewDispatcher(notify.Config{
		URL:     cfg.Webhook.URL,
		Timeout: cfg.Webhook.Timeout,
		Retry: notify.RetryPolicy{
			MaxAttempts:        cfg.Webhook.MaxAttempts,
			InitialInterval:    cfg.Webhook.InitialBackoff,
			BackoffCoefficient: 2.0,
			MaxInterval:        cfg.Webhook.MaxBackoff,
		},
	}, log)
	if !notifier.Configured() {
		log.Warn("order webhook not configured, orders will be placed without notification")
	}

	checkoutCfg := checkoutsvc.DefaultConfig()
	checkoutCfg.Currency = cfg.Gateway.Currency
	checkoutCfg.MerchantName = cfg.Gateway.MerchantName
	checkoutCfg.ThemeColor = cfg.Gateway.ThemeColor
	checkoutCfg.PaymentWindow = cfg.Gateway.PaymentWindow
	checkoutCfg.GatewayTimeout = cfg.Gateway.Timeout

	// Completion waits out a full webhook delivery before giving up on it.
	notifyMax := notifier.MaxDeliveryTime()
	if minimum := notifyMax + 5*time.Second; checkoutCfg.CompletionTimeout < minimum {
		log.Warn("raising checkout completion timeout to cover webhook retries",
			"from", checkoutCfg.CompletionTimeout, "to", minimum)
		checkoutCfg.CompletionTimeout = minimum
	}
	if cfg.HTTP.RequestTimeout <= notifyMax {
		log.Warn("request timeout is shorter than a full webhook delivery, checkout replies may outlast it",
			"request_timeout", cfg.HTTP.RequestTimeout, "webhook_max", notifyMax)
	}

	checkout := checkoutsvc.NewCheckoutService(
		carts,
		gatewayClient,
		notifier,
		outbox,
		checkoutsvc.NewAttemptStore(checkoutsvc.AttemptRetention),
		checkoutCfg,
		log,
	)
	defer checkout.Close()

	poller := publisher.NewOutboxPoller(outbox, cfg.Kafka.Topic, log, cfg.Kafka.Brokers...)
	defer poller.Close()

	// HTTP
	auth := admin.NewAuthenticator(admin.Config{
		PasswordHash: cfg.Admin.PasswordHash,
		JWTSecret:    cfg.Admin.JWTSecret,
		TokenTTL:     cfg.Admin.TokenTTL,
	}, log)
	if !auth.Configured() {
		log.Warn("admin login disabled, set ADMIN_PASSWORD_HASH and JWT_SECRET to enable it")
	}

	session := h.SessionOptions{TTL: cfg.HTTP.SessionTTL, Secure: cfg.HTTP.SecureCookies}
	router := h.NewRouter(h.RouterConfig{
		RequestTimeout:     cfg.HTTP.RequestTimeout,
		MaxRequestBodySize: cfg.HTTP.MaxRequestBodySize,
		Session:            session,
	}, h.Handlers{
		Products:     h.NewProductHandler(catalog, catalogsvc.FeaturedLimit),
		Carts:        h.NewCartHandler(carts, cfg.HTTP.RequestTimeout, session),
		Checkout:     h.NewCheckoutHandler(checkout, cfg.HTTP.RequestTimeout),
		CustomOrders: h.NewCustomOrderHandler(customOrders, cfg.HTTP.RequestTimeout),
		Admin:        h.NewAdminHandler(auth, catalog, orders, customOrders, cfg.HTTP.RequestTimeout, log),
		AdminAuth:    auth,
	}, log)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           otelhttp.NewHandler(router, "storefront"),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      max(cfg.HTTP.RequestTimeout, checkoutCfg.CompletionTimeout) + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("storefront listening", "port", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return poller.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down storefront")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"

	"github.com/bakehouse/storefront/internal/orders/consumer"
	"github.com/bakehouse/storefront/internal/orders/repository"
	"github.com/bakehouse/storefront/pkg/config"
	"github.com/bakehouse/storefront/pkg/logger"
	"github.com/bakehouse/storefront/pkg/shutdown"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const serviceName = "orders-consumer"

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service: serviceName,
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	if err := run(cfg, log); err != nil {
		log.Error("orders consumer stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := shutdown.WithSignals(context.Background())
	defer stop()

	creds := &repository.Credentials{
		Host:              cfg.Postgres.Host,
		Port:              cfg.Postgres.Port,
		User:              cfg.Postgres.User,
		Password:          cfg.Postgres.Password,
		DBName:            cfg.Postgres.DBName,
		MigrationsDirPath: cfg.Postgres.OrdersMigrationsPath,
	}

	repo, err := repository.NewRepository(creds)
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.RunMigrations(creds); err != nil {
		return err
	}
	log.Info("orders migrations completed")

	orderConsumer := consumer.NewConsumer(repo, cfg.Kafka.Topic, cfg.Kafka.GroupID, log, cfg.Kafka.Brokers...)
	defer func() {
		if err := orderConsumer.Close(); err != nil {
			log.Warn("error closing kafka reader", "error", err)
		}
	}()

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)
	healthServer.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("health server listening", "port", cfg.GRPCPort)
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		log.Info("consuming order events", "topic", cfg.Kafka.Topic, "group_id", cfg.Kafka.GroupID)
		return orderConsumer.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down orders consumer")
		healthServer.Shutdown()
		grpcServer.GracefulStop()
		return nil
	})

	return g.Wait()
}

package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-pdv-service/config"
	"github.com/fekuna/omnipos-pdv-service/internal/inventory"
	"github.com/fekuna/omnipos-pdv-service/internal/pkg/broker"
	"github.com/fekuna/omnipos-pdv-service/internal/pkg/cache"
	"github.com/fekuna/omnipos-pdv-service/internal/pkg/clock"
	"github.com/fekuna/omnipos-pdv-service/internal/pkg/i18n"
	"github.com/fekuna/omnipos-pdv-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pdv-service/internal/pkg/postgres"
	"github.com/fekuna/omnipos-pdv-service/internal/product"
	"github.com/fekuna/omnipos-pdv-service/internal/sale"
	"github.com/fekuna/omnipos-pdv-service/internal/server"
	"github.com/fekuna/omnipos-pdv-service/internal/store/memory"

	invH "github.com/fekuna/omnipos-pdv-service/internal/inventory/handler"
	invRepoPkg "github.com/fekuna/omnipos-pdv-service/internal/inventory/repository"
	invUCPkg "github.com/fekuna/omnipos-pdv-service/internal/inventory/usecase"

	prodH "github.com/fekuna/omnipos-pdv-service/internal/product/handler"
	prodRepoPkg "github.com/fekuna/omnipos-pdv-service/internal/product/repository"
	prodUCPkg "github.com/fekuna/omnipos-pdv-service/internal/product/usecase"

	saleH "github.com/fekuna/omnipos-pdv-service/internal/sale/handler"
	salePubPkg "github.com/fekuna/omnipos-pdv-service/internal/sale/publisher"
	saleRepoPkg "github.com/fekuna/omnipos-pdv-service/internal/sale/repository"
	saleUCPkg "github.com/fekuna/omnipos-pdv-service/internal/sale/usecase"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load()
	cfg, err := config.LoadEnv()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.IsDevelopment() {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
		logConfig.Level = cfg.Logger.Level
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	tr, err := i18n.NewTranslator()
	if err != nil {
		appLogger.Fatal("Could not load translations", zap.Error(err))
	}

	// 3. Initialize Repositories
	var (
		prodRepo product.Repository
		saleRepo sale.Repository
		invRepo  inventory.Repository
	)
	switch cfg.Store.Driver {
	case "memory":
		store := memory.NewStore()
		prodRepo, saleRepo, invRepo = store, store, store
		appLogger.Warn("Using in-memory store, sales are lost on restart")
	case "postgres":
		db, err := postgres.NewPostgres(&postgres.Config{
			Host:            cfg.Postgres.Host,
			Port:            cfg.Postgres.Port,
			User:            cfg.Postgres.User,
			Password:        cfg.Postgres.Password,
			DBName:          cfg.Postgres.DBName,
			SSLMode:         cfg.Postgres.SSLMode,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
			ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
		})
		if err != nil {
			appLogger.Fatal("Could not connect to database", zap.Error(err))
		}
		defer db.Close()
		appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

		prodRepo = prodRepoPkg.NewPGRepository(db)
		saleRepo = saleRepoPkg.NewPGRepository(db)
		invRepo = invRepoPkg.NewPGRepository(db)
	default:
		appLogger.Fatal("Unknown store driver", zap.String("driver", cfg.Store.Driver))
	}

	// 4. Initialize Redis (optional)
	var locker sale.RequestLocker
	if cfg.Redis.Addr != "" {
		redisClient, err := cache.NewRedisClient(&cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Redis, checkout request locks disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			locker = redisClient
			appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
		}
	}

	// 5. Initialize Kafka Producer (optional)
	var publisher sale.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer := broker.NewProducer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		})
		defer producer.Close()
		publisher = salePubPkg.NewKafkaPublisher(producer)
		appLogger.Info("Kafka producer ready", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	// 6. Initialize UseCases
	prodUC := prodUCPkg.NewProductUseCase(prodRepo, appLogger)
	saleUC := saleUCPkg.NewSaleUseCase(saleRepo, locker, publisher, clock.NewRealClock(), saleUCPkg.Config{
		LockTimeout:    cfg.Checkout.LockTimeout,
		RequestTimeout: cfg.Checkout.RequestTimeout,
		RequestLockTTL: cfg.Checkout.RequestLockTTL,
	}, appLogger)
	invUC := invUCPkg.NewInventoryUseCase(invRepo, appLogger)

	// 7. Initialize Handlers
	router := server.NewRouter(server.Handlers{
		Product:   prodH.NewProductHandler(prodUC, tr, appLogger),
		Sale:      saleH.NewSaleHandler(saleUC, tr, appLogger),
		Inventory: invH.NewInventoryHandler(invUC, tr, appLogger),
	}, tr, appLogger)

	httpServer := &http.Server{
		Addr:              withColon(cfg.Server.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// 8. Start gRPC health server
	lis, err := net.Listen("tcp", withColon(cfg.Server.GRPCPort))
	if err != nil {
		appLogger.Fatal("failed to listen", zap.Error(err))
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	go func() {
		appLogger.Info("Starting gRPC server", zap.String("port", cfg.Server.GRPCPort))
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve gRPC", zap.Error(err))
		}
	}()

	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", cfg.Server.HTTPPort))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve HTTP", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	healthServer.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		appLogger.Error("HTTP server forced to shut down", zap.Error(err))
	}
	grpcServer.GracefulStop()
	appLogger.Info("Server stopped")
}

func withColon(port string) string {
	if !strings.HasPrefix(port, ":") {
		return ":" + port
	}
	return port
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-parking-slot-booking/internal/api"
	"github.com/sanosuguru/go-parking-slot-booking/internal/api/handler"
	custommw "github.com/sanosuguru/go-parking-slot-booking/internal/api/middleware"
	"github.com/sanosuguru/go-parking-slot-booking/internal/application"
	"github.com/sanosuguru/go-parking-slot-booking/internal/config"
	"github.com/sanosuguru/go-parking-slot-booking/internal/infrastructure/postgres"
	"github.com/sanosuguru/go-parking-slot-booking/internal/infrastructure/rabbitmq"
	redisinfra "github.com/sanosuguru/go-parking-slot-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-parking-slot-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-parking-slot-booking/internal/pkg/metrics"
	"github.com/sanosuguru/go-parking-slot-booking/internal/worker"
)

func main() {
	// .env があれば読み込む（本番環境には存在しない想定）
	_ = godotenv.Load()

	log := logger.Get()
	defer log.Sync()

	cfg := config.Load()

	// PostgreSQL 接続
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatal("データベース接続に失敗しました", zap.Error(err))
	}
	defer db.Close()

	// マイグレーション実行
	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}
	if err := postgres.RunMigrations(db.DB, migrationsPath); err != nil {
		log.Fatal("マイグレーションに失敗しました", zap.Error(err))
	}

	// Redis 接続
	redisClient, err := redisinfra.NewClient(&redisinfra.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal("Redis接続に失敗しました", zap.Error(err))
	}
	defer redisClient.Close()

	// RabbitMQ 接続（未設定・接続失敗時はイベント発行なしで起動を続ける）
	var publisher application.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL)
		if err != nil {
			log.Warn("RabbitMQ接続に失敗しました。イベント発行を無効化します", zap.Error(err))
		} else {
			defer p.Close()
			publisher = p
		}
	}

	// メトリクス初期化
	m := metrics.Init()

	// リポジトリ
	txManager := postgres.NewTxManager(db)
	userRepo := postgres.NewUserRepository(db)
	locationRepo := postgres.NewLocationRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	slotCache := redisinfra.NewSlotCache(redisClient)

	// サービス
	authService := application.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	locationService := application.NewLocationService(locationRepo, slotCache)
	bookingService := application.NewBookingService(txManager, bookingRepo, locationRepo, slotCache, publisher)
	statsService := application.NewStatsService(bookingRepo, locationRepo)

	// ハンドラー
	authHandler := handler.NewAuthHandler(authService)
	locationHandler := handler.NewLocationHandler(locationService)
	bookingHandler := handler.NewBookingHandler(bookingService)
	statsHandler := handler.NewStatsHandler(statsService)
	healthHandler := handler.NewHealthHandler()

	// Echo セットアップ
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	e.Validator = api.NewValidator()
	custommw.SetupMiddleware(e)
	e.Use(custommw.PrometheusMiddleware(m))

	e.GET("/health", healthHandler.Check)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), custommw.MetricsBasicAuth())

	// ルーティング
	v1 := e.Group("/api/v1")
	auth := custommw.JWTAuth(cfg.Auth.JWTSecret)

	v1.POST("/auth/register", authHandler.Register)
	v1.POST("/auth/login", authHandler.Login)
	v1.GET("/auth/me", authHandler.Me, auth)

	v1.GET("/locations", locationHandler.List)
	v1.GET("/locations/my", locationHandler.ListMine, auth)
	v1.GET("/locations/:id", locationHandler.GetByID)
	v1.GET("/locations/:id/availability", locationHandler.Availability)
	v1.POST("/locations", locationHandler.Create, auth)
	v1.PUT("/locations/:id", locationHandler.Update, auth)
	v1.DELETE("/locations/:id", locationHandler.Delete, auth)

	v1.POST("/locations/:id/bookings", bookingHandler.Create, auth)
	v1.GET("/bookings/my", bookingHandler.ListMine, auth)
	v1.GET("/bookings/:id/ticket", bookingHandler.Ticket, auth)
	v1.PUT("/bookings/:id/cancel", bookingHandler.Cancel, auth)

	v1.GET("/admin/stats", statsHandler.OwnerStats, auth)

	// 終了時刻を過ぎた予約を完了状態にするワーカー
	finisher := worker.NewBookingFinisher(bookingService, cfg.Worker.FinisherInterval)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go finisher.Start(workerCtx)

	// サーバー起動
	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()
	log.Info("サーバーを起動しました", zap.String("port", cfg.Server.Port))

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("サーバーをシャットダウンしています...")

	finisher.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Fatal("サーバーシャットダウンエラー", zap.Error(err))
	}

	log.Info("サーバーが正常にシャットダウンしました")
}

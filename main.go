package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yashrajoria/food-ordering-backend/config"
	"github.com/yashrajoria/food-ordering-backend/controllers"
	"github.com/yashrajoria/food-ordering-backend/database"
	"github.com/yashrajoria/food-ordering-backend/kafka"
	"github.com/yashrajoria/food-ordering-backend/logger"
	"github.com/yashrajoria/food-ordering-backend/models"
	"github.com/yashrajoria/food-ordering-backend/repository"
	"github.com/yashrajoria/food-ordering-backend/routes"
	"github.com/yashrajoria/food-ordering-backend/sender"
	"github.com/yashrajoria/food-ordering-backend/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("config load failed: " + err.Error())
	}

	logger.Initialize(cfg.Env)
	log := logger.Log
	defer log.Sync()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Database
	db, err := database.ConnectPostgres(cfg, log,
		&models.User{},
		&models.MenuItem{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.PaymentAttempt{},
		&models.NotificationLog{},
	)
	if err != nil {
		log.Fatal("DB connection failed", zap.Error(err))
	}

	// Redis cart cache (non-fatal; carts fall back to Postgres reads)
	var cartCache repository.CartCache
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Warn("Redis unavailable, cart cache disabled", zap.Error(err))
		} else {
			cartCache = repository.NewRedisCartCache(redisClient, cfg.CartCacheTTL)
		}
	}

	// Kafka order events (non-fatal; events are best-effort)
	var events services.EventPublisher
	var producer *kafka.OrderEventProducer
	if cfg.KafkaBrokers != "" {
		producer = kafka.NewOrderEventProducer(strings.Split(cfg.KafkaBrokers, ","), cfg.KafkaTopic)
		events = producer
	} else {
		log.Warn("KAFKA_BROKERS not set, order events disabled")
	}

	// Email
	emailSender, err := sender.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	if err != nil {
		log.Fatal("Failed to init SMTP sender", zap.Error(err))
	}

	templates, err := services.NewTemplateEngine(cfg.TemplateDir)
	if err != nil {
		log.Fatal("Failed to load email templates", zap.Error(err))
	}

	stripeSvc := services.NewStripeService(cfg.StripeSecretKey, cfg.StripeWebhookKey)

	// Repositories
	cartRepo := repository.NewGormCartRepository(db)
	orderRepo := repository.NewGormOrderRepository(db)
	paymentRepo := repository.NewGormPaymentRepository(db)
	menuRepo := repository.NewGormMenuRepository(db)
	userRepo := repository.NewGormUserRepository(db)
	notificationRepo := repository.NewGormNotificationRepository(db)

	// Services
	notifier := services.NewNotificationService(notificationRepo, emailSender, log)
	cartService := services.NewCartService(cartRepo, menuRepo, cartCache, log)
	orderService := services.NewOrderService(orderRepo, cartRepo, userRepo, cartCache, notifier, templates, events, cfg.PaymentBaseURL, log)
	paymentService := services.NewPaymentService(orderRepo, paymentRepo, userRepo, stripeSvc, notifier, templates, events, cfg.PaymentCurrency, log)

	// Controllers
	cartCtrl := controllers.NewCartController(cartService)
	orderCtrl := controllers.NewOrderController(orderService)
	paymentCtrl := controllers.NewPaymentController(paymentService, stripeSvc, log)
	menuCtrl := controllers.NewMenuController(menuRepo)
	notificationCtrl := controllers.NewNotificationController(notificationRepo)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger())

	routes.RegisterRoutes(r, cartCtrl, orderCtrl, paymentCtrl, menuCtrl, notificationCtrl)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Info("Food ordering backend started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Initiating graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Error("Kafka producer close error", zap.Error(err))
		}
	}

	log.Info("Food ordering backend stopped gracefully")
}

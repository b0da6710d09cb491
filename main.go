package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"go-restaurant-pos/config"
	"go-restaurant-pos/database"
	"go-restaurant-pos/helpers"
	"go-restaurant-pos/logging"
	"go-restaurant-pos/metrics"
	"go-restaurant-pos/middleware"
	"go-restaurant-pos/models"
	"go-restaurant-pos/notify"
	"go-restaurant-pos/routes"
	"go-restaurant-pos/services"
	"go-restaurant-pos/store"
	"go-restaurant-pos/store/memory"
	"go-restaurant-pos/store/mongostore"
	"go-restaurant-pos/store/pgstore"
)

const (
	tokenTTL        = 24 * time.Hour
	shutdownTimeout = 15 * time.Second
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logrus.WithError(err).Fatal("invalid logging configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		log.WithError(err).WithField("driver", cfg.StoreDriver).Fatal("failed to open store")
	}

	if cfg.AdminEmail != "" {
		if err := seedAdmin(ctx, st, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.WithError(err).Fatal("failed to seed admin account")
		}
	}

	m := metrics.New()
	hub := notify.NewHub(log)
	m.WatchConnections(hub.Len)

	var notifier services.Notifier = hub
	var publisher *notify.Publisher
	if cfg.RabbitMQURL != "" {
		publisher, err = notify.NewPublisher(cfg.RabbitMQURL, log)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to rabbitmq")
		}
		notifier = notify.Fanout{hub, publisher}
	}

	opts := []services.Option{
		services.WithNotifier(notifier),
		services.WithRecorder(m),
		services.WithLogger(log),
	}
	deps := routes.Deps{
		Store:   st,
		Orders:  services.NewOrderService(st, opts...),
		Tables:  services.NewTableService(st, opts...),
		Reports: services.NewReportService(st, opts...),
		Tokens:  helpers.NewTokenMaker(cfg.SecretKey, tokenTTL),
		Hub:     hub,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Metrics(m))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"POST", "GET", "PATCH", "DELETE", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "token", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "page not found"})
	})
	router.GET("/metrics", gin.WrapH(m.Handler()))
	routes.Register(router, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithFields(logrus.Fields{"action": "server_start", "port": cfg.Port, "driver": cfg.StoreDriver}).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.WithField("action", "server_shutdown").Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		log.WithError(err).Error("server stopped with error")
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.WithError(err).Warn("failed to close rabbitmq publisher")
		}
	}
	if err := st.Close(closeCtx); err != nil {
		log.WithError(err).Warn("failed to close store")
	}
}

// seedAdmin creates the bootstrap admin unless the email is already taken.
func seedAdmin(ctx context.Context, st store.Store, email, password string) error {
	_, err := st.FindUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return err
	}
	admin := models.User{Name: "Administrator", Email: email, Phone: "-", Role: models.RoleAdmin, PasswordHash: hash}
	admin.Touch(time.Now())
	if err := st.InsertUser(ctx, &admin); err != nil && !errors.Is(err, store.ErrDuplicateKey) {
		return err
	}
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		log.WithField("action", "store_open").Warn("using the in-memory store; data is lost on restart")
		return memory.New(), nil
	case config.DriverMongo:
		client, err := database.NewMongo(ctx, cfg.MongoURL)
		if err != nil {
			return nil, err
		}
		return mongostore.New(ctx, client, cfg.MongoDatabase)
	case config.DriverPostgres:
		pool, err := database.NewPostgres(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, err
		}
		if err := database.RunMigrations(ctx, pool, cfg.MigrationsDir, log); err != nil {
			pool.Close()
			return nil, err
		}
		return pgstore.New(pool), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

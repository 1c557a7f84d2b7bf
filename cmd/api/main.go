package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pratofeito/marmita-orders/internal/accounts"
	"github.com/pratofeito/marmita-orders/internal/cart"
	"github.com/pratofeito/marmita-orders/internal/catalog"
	"github.com/pratofeito/marmita-orders/internal/config"
	"github.com/pratofeito/marmita-orders/internal/httpx"
	kafkax "github.com/pratofeito/marmita-orders/internal/kafka"
	"github.com/pratofeito/marmita-orders/internal/kitchen"
	"github.com/pratofeito/marmita-orders/internal/logging"
	"github.com/pratofeito/marmita-orders/internal/orders"
	"github.com/pratofeito/marmita-orders/internal/postgres"
	"github.com/pratofeito/marmita-orders/internal/redisx"
	"github.com/pratofeito/marmita-orders/internal/session"
	log "github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logging.Setup(cfg.LogLevel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.WithError(err).Fatal("db connect")
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.WithError(err).Fatal("db migrate")
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()
	if err := redisx.Ping(ctx, rdb); err != nil {
		log.WithError(err).Fatal("redis ping")
	}

	// Kafka producers, one per topic
	placed := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPlaced, 1024)
	placed.Start()
	changed := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicLineItemStatusChanged, 1024)
	changed.Start()

	// Services
	accountSvc := accounts.NewService(&accounts.Repo{DB: db})
	catalogSvc := catalog.NewService(&catalog.Repo{DB: db})
	sessions := session.NewStore(rdb, cfg.SessionTTL)
	orderRepo := &orders.Repo{DB: db}

	if cfg.SeedSamples {
		n, err := catalogSvc.SeedSamples(ctx)
		if err != nil {
			log.WithError(err).Fatal("seed samples")
		}
		if n > 0 {
			log.WithField("dishes", n).Info("sample dishes inserted")
		}
	}

	router := httpx.NewRouter(&httpx.Server{
		Service:  cfg.ServiceName,
		Accounts: accountSvc,
		Sessions: sessions,
		Catalog:  catalogSvc,
		Cart:     cart.NewService(catalogSvc, cart.NewRedisStore(rdb, cfg.SessionTTL)),
		Orders:   orders.NewService(orderRepo, accountSvc, orders.NewRedisIdempotency(rdb), placed, cfg.ServiceName),
		Kitchen:  kitchen.NewService(orderRepo, kitchen.NewRedisBoard(rdb), changed, cfg.ServiceName, cfg.PublicBaseURL),
	})

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)

	// close inboxes so pending events are flushed before exit
	placed.Close()
	changed.Close()
	placed.WaitClosed()
	changed.WaitClosed()
}

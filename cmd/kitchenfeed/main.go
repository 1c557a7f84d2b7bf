package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/pratofeito/marmita-orders/internal/config"
	kafkax "github.com/pratofeito/marmita-orders/internal/kafka"
	"github.com/pratofeito/marmita-orders/internal/kitchen"
	"github.com/pratofeito/marmita-orders/internal/kitchenfeed"
	"github.com/pratofeito/marmita-orders/internal/logging"
	"github.com/pratofeito/marmita-orders/internal/orders"
	"github.com/pratofeito/marmita-orders/internal/redisx"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logging.Setup(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()
	if err := redisx.Ping(ctx, rdb); err != nil {
		log.WithError(err).Fatal("redis ping")
	}

	svc := &kitchenfeed.Service{
		Board:       kitchen.NewRedisBoard(rdb),
		Redis:       rdb,
		ServiceName: cfg.ServiceName + "-kitchenfeed",
	}

	subs := []struct {
		topic   string
		handler kafkax.Handler
	}{
		{orders.TopicOrderPlaced, svc.HandleOrderPlaced},
		{orders.TopicLineItemStatusChanged, svc.HandleLineItemStatusChanged},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, sub := range subs {
		sub := sub
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.KitchenFeedGroup, sub.topic, cfg.KitchenFeedWorkers)
		g.Go(func() error {
			log.WithFields(log.Fields{
				"group":   cfg.KitchenFeedGroup,
				"topic":   sub.topic,
				"workers": cfg.KitchenFeedWorkers,
			}).Info("kitchen feed consumer started")
			return cons.Start(gctx, sub.handler)
		})
	}

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("consumer exit")
		return
	}
	log.Info("kitchen feed stopped")
}

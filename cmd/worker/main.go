package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/sitestock/procurement/internal/audit"
	"github.com/sitestock/procurement/internal/config"
	kafkax "github.com/sitestock/procurement/internal/kafka"
	"github.com/sitestock/procurement/internal/logx"
	"github.com/sitestock/procurement/internal/orders"
	"github.com/sitestock/procurement/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logx.L()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &audit.Service{
		Redis:       rdb,
		ServiceName: cfg.ServiceName + "-audit",
	}

	group := getenv("AUDIT_GROUP", "order-audit")
	workers := atoiDefault(os.Getenv("AUDIT_WORKERS"), 4)

	topics := []string{
		orders.TopicOrderSubmitted,
		orders.TopicOrderApproved,
		orders.TopicOrderDisapproved,
	}
	for _, topic := range topics {
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, topic, workers)
		go func(topic string) {
			log.WithFields(logrus.Fields{
				"group":   group,
				"topic":   topic,
				"workers": workers,
			}).Info("audit consumer started")
			if err := cons.Start(ctx, svc.HandleOrderEvent); err != nil {
				log.WithError(err).WithField("topic", topic).Error("consumer exit")
				cancel()
			}
		}(topic)
	}

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
		log.Info("shutting down consumers...")
		cancel()
	case <-ctx.Done():
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil || i <= 0 {
		return def
	}
	return i
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sitestock/procurement/internal/catalog"
	"github.com/sitestock/procurement/internal/config"
	"github.com/sitestock/procurement/internal/httpx"
	kafkax "github.com/sitestock/procurement/internal/kafka"
	"github.com/sitestock/procurement/internal/logx"
	"github.com/sitestock/procurement/internal/orders"
	"github.com/sitestock/procurement/internal/postgres"
	"github.com/sitestock/procurement/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logx.L()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.WithError(err).Fatal("db connect")
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, satu per topic
	pubSubmitted := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderSubmitted, 1024)
	pubSubmitted.Start()
	pubApproved := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderApproved, 1024)
	pubApproved.Start()
	pubDisapproved := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderDisapproved, 1024)
	pubDisapproved.Start()

	// Stores & engine
	catalogStore := &catalog.PGStore{DB: db}
	orderStore := &orders.PGStore{DB: db}
	engine := &orders.Engine{Catalog: catalogStore, Orders: orderStore}

	// Router & handlers
	router := httpx.NewRouter()
	(&httpx.ProductsHandler{Catalog: catalogStore, Redis: rdb}).Register(router)
	(&httpx.OrdersHandler{
		Engine:      engine,
		Submitted:   pubSubmitted,
		Approved:    pubApproved,
		Disapproved: pubDisapproved,
		Redis:       rdb,
		Service:     cfg.ServiceName,
	}).Register(router)
	(&httpx.UploadsHandler{Dir: cfg.UploadDir}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("listen")
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down...")

	shutdownCtx, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(shutdownCtx)

	for _, p := range []*kafkax.Producer{pubSubmitted, pubApproved, pubDisapproved} {
		p.Close() // tutup inbox -> flush & close writer
	}
	for _, p := range []*kafkax.Producer{pubSubmitted, pubApproved, pubDisapproved} {
		p.WaitClosed()
	}
}

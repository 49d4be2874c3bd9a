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

	"github.com/comanda-pos/api/internal/cart"
	"github.com/comanda-pos/api/internal/config"
	"github.com/comanda-pos/api/internal/logger"
	"github.com/comanda-pos/api/internal/menu"
	"github.com/comanda-pos/api/internal/metrics"
	"github.com/comanda-pos/api/internal/notify"
	"github.com/comanda-pos/api/internal/panel"
	"github.com/comanda-pos/api/internal/router"
	"github.com/comanda-pos/api/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	catalog, err := menu.FromConfig(cfg.Menu)
	if err != nil {
		log.Error("menu load failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := metrics.New()
	bus := notify.NewBus(time.Now, log)
	hub := ws.NewHub(collector, log)

	bus.Subscribe(func(n notify.Notification) {
		collector.NotificationPublished(string(n.ToRole), string(n.Type))
	})
	bus.Subscribe(hub.PublishNotification)

	hubCtx, stopHub := context.WithCancel(context.Background())
	go hub.Run(hubCtx)

	carts := cart.NewAggregator(bus, time.Now, log)
	sender := notify.NewSender(cfg.NotifyResetDelay)

	r := router.New(cfg, router.Deps{
		Bus:     bus,
		Sender:  sender,
		Carts:   carts,
		Catalog: catalog,
		Panels:  panel.NewRegistry(bus, carts),
		Hub:     hub,
		Metrics: collector,
		Logger:  log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", "error", err)
	}

	stopHub()
	sender.Stop()
	bus.Close()
	log.Info("server stopped")
}

package main

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/cafemanage/api/internal/billing"
	"github.com/cafemanage/api/internal/config"
	"github.com/cafemanage/api/internal/docstore"
	"github.com/cafemanage/api/internal/logger"
	"github.com/cafemanage/api/internal/router"
	"github.com/cafemanage/api/internal/service"
	"github.com/cafemanage/api/internal/store"
	"github.com/cafemanage/api/internal/ws"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(cfg.Server.Env); err != nil {
		panic(err)
	}
	defer logger.Sync()

	db, err := docstore.Open(cfg.Data.Dir)
	if err != nil {
		zap.S().Fatalf("open data directory %s: %v", cfg.Data.Dir, err)
	}

	st := store.New(db)
	if err := st.Seed(false); err != nil {
		zap.S().Fatalf("seed data: %v", err)
	}

	hub := ws.NewHub()
	go hub.Run()

	renderer := billing.NewPDFRenderer()
	var deliverer billing.Deliverer
	if cfg.SMTP.Enabled() {
		deliverer = billing.NewSMTPDeliverer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	} else {
		zap.S().Warn("SMTP not configured, bills are download-only")
	}

	tables := service.NewTableService(st)
	orders := service.NewOrderService(st, renderer, deliverer, tables)
	carts := service.NewCartService(st)

	r := router.New(cfg, st, orders, carts, tables, hub)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zap.S().Infof("starting server on %s (env=%s, data=%s)", addr, cfg.Server.Env, cfg.Data.Dir)
	if err := http.ListenAndServe(addr, r); err != nil {
		zap.S().Fatalf("server stopped: %v", err)
	}
}

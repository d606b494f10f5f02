package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/novo-pos/api/internal/config"
	"github.com/novo-pos/api/internal/printer"
	"github.com/novo-pos/api/internal/router"
	"github.com/novo-pos/api/internal/service"
	"github.com/novo-pos/api/internal/store"
	"github.com/novo-pos/api/internal/ws"
)

func main() {
	cfg := config.Load()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}
	log.Println("Connected to database")

	st := store.New(pool)

	hub := ws.NewHub()
	go hub.Run()

	var dispatcher service.Dispatcher = printer.Noop{}
	if cfg.PrinterURL != "" {
		dispatcher = printer.NewHTTPRelay(cfg.PrinterURL)
		log.Printf("Print relay enabled: %s", cfg.PrinterURL)
	} else {
		log.Println("WARN: PRINTER_URL not set, receipts will not be printed")
	}

	r := router.New(cfg, st, hub, dispatcher)

	log.Printf("Starting server on :%s", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatal(err)
	}
}

/*
main.go - HTTP server entry point

Reads configuration from the environment (PORT, DATA_DIR, SEASON,
LOG_LEVEL, ENVIRONMENT; a .env file is honored), with flags overriding,
then serves the assignment API with graceful shutdown on SIGINT/SIGTERM.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fnfcrew/assignment-engine/api"
	"github.com/fnfcrew/assignment-engine/config"
	"github.com/fnfcrew/assignment-engine/crew"
	"github.com/fnfcrew/assignment-engine/logger"
	"github.com/fnfcrew/assignment-engine/store/csvfile"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	port := flag.Int("port", cfg.Port, "HTTP server port")
	dataDir := flag.String("data", cfg.DataDir, "data directory holding the roster and ledger files")
	seasonFlag := flag.String("season", cfg.Season, "default season (25FW, 26SS, 26FW, 27SS)")
	flag.Parse()

	logger.Init(cfg)
	log := logger.Log

	season, ok := crew.ParseSeason(*seasonFlag)
	if !ok {
		log.Fatalf("unknown season %q", *seasonFlag)
	}

	handler := api.NewHandler(
		csvfile.NewRosterStore(*dataDir),
		csvfile.NewLedgerStore(*dataDir),
		season,
		log,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      api.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("server listening on :%d (data dir %s, season %s)", *port, *dataDir, season)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Info("server stopped")
}

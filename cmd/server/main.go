package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ignite/postal-converter-ja/internal/api"
	"github.com/ignite/postal-converter-ja/internal/cache"
	"github.com/ignite/postal-converter-ja/internal/config"
	"github.com/ignite/postal-converter-ja/internal/pkg/logger"
	"github.com/ignite/postal-converter-ja/internal/query"
	"github.com/ignite/postal-converter-ja/internal/store"
)

const listenPort = 3202

// checkPortAvailable verifies the target port is not already bound, so a
// stale process doesn't silently swallow requests meant for this one.
func checkPortAvailable(port int) error {
	addr := fmt.Sprintf("0.0.0.0:%d", port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use: %w", port, err)
	}
	ln.Close()
	return nil
}

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		logger.Error("server: failed to load configuration", "error", err.Error())
		os.Exit(1)
	}

	if err := checkPortAvailable(listenPort); err != nil {
		logger.Error("server: preflight port check failed", "error", err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		logger.Error("server: failed to open store", "error", err.Error())
		os.Exit(1)
	}
	defer st.Close()

	var c *cache.Cache
	if cfg.Cache.Enabled() {
		c, err = cache.NewFromURL(cfg.Cache.URL)
		if err != nil {
			logger.Error("server: failed to configure cache", "error", err.Error())
			os.Exit(1)
		}
	} else {
		c = cache.New(nil)
	}

	engine := query.New(st, c, int64(cfg.Cache.TTL.Seconds()))
	metrics := api.NewMetrics()
	handlers := api.NewHandlers(engine, st, c, cfg.Cache.ReadyRequireCache, metrics)
	router := api.NewRouter(handlers)

	srv := &http.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", listenPort),
		Handler: router,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server: listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server: listen failed", "error", err.Error())
			os.Exit(1)
		}
	}()

	<-done
	logger.Info("server: shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server: shutdown error", "error", err.Error())
	}
	logger.Info("server: stopped")
}

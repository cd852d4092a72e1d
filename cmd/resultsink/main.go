package main

import (
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/sitemapchecker/internal/config"
	"github.com/hamed0406/sitemapchecker/internal/httpapi"
	"github.com/hamed0406/sitemapchecker/internal/logging"
	"github.com/hamed0406/sitemapchecker/internal/repo/memory"
)

// resultsink is a local stand-in for the notification and critical
// endpoints: point -w at /hooks/notification and -c at /hooks/critical.
func main() {
	cfg := config.SinkFromEnv()
	logger, err := logging.NewLogger(cfg.LogDir, "info")
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	store := memory.New() // deliveries live for the process lifetime
	api := httpapi.NewServer(logger, store)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(cfg.APIKeys, cfg.RPM, cfg.Burst),
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("sink_listen",
		zap.String("addr", cfg.Addr),
		zap.Bool("auth", len(cfg.APIKeys) > 0),
	)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}

// ABOUTME: Main entry point for the NewHackers API server
// ABOUTME: Loads configuration, starts the HTTP server and shuts it down gracefully

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"newhackers-api/infrastructure/logger/structured"
	"newhackers-api/pkg/config"
	"newhackers-api/pkg/featureflags"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := structured.NewLogger(structured.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	flags := featureflags.NewEnvManager("FEATURE_")
	fields := map[string]interface{}{
		"port":        cfg.Server.Port,
		"cache_type":  cfg.Cache.Type,
		"http_client": cfg.Upstream.Client,
		"interval":    cfg.Cache.Interval.String(),
	}
	for flag, enabled := range flags.GetAllFlags() {
		fields["feature_"+string(flag)] = enabled
	}
	logger.Info("Starting NewHackers API", fields)

	application, err := newApp(cfg, logger, flags)
	if err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	// Cold misses wait for the upstream page and may also wait for the lock
	writeTimeout := cfg.Upstream.Timeout + cfg.Refresh.LockAcquireTimeout + 5*time.Second

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      application.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server starting", map[string]interface{}{
			"address": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", map[string]interface{}{
				"error": err.Error(),
			})
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if err := application.stop(); err != nil {
		logger.Error("Failed to stop refresh workers", map[string]interface{}{
			"error": err.Error(),
		})
	}

	logger.Info("Server stopped", nil)
}

func init() {
	fmt.Println(`
 _   _               _   _            _
| \ | | _____      _| | | | __ _  ___| | _____ _ __ ___
|  \| |/ _ \ \ /\ / / |_| |/ _' |/ __| |/ / _ \ '__/ __|
| |\  |  __/\ V  V /|  _  | (_| | (__|   <  __/ |  \__ \
|_| \_|\___| \_/\_/ |_| |_|\__,_|\___|_|\_\___|_|  |___/
	`)
}

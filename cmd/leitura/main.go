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

	"github.com/joho/godotenv"

	"github.com/rondoninha/leitura/internal/database"
	"github.com/rondoninha/leitura/internal/jobs"
	"github.com/rondoninha/leitura/internal/logging"
	"github.com/rondoninha/leitura/internal/server"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	// Missing .env is fine, the environment may be set directly.
	_ = godotenv.Load()

	port := envOr("LEITURA_PORT", "8080")
	dbPath := envOr("LEITURA_DB_PATH", "leitura.db")
	tzName := envOr("LEITURA_TZ", "America/Sao_Paulo")

	logger := logging.Setup(envOr("LEITURA_LOG_LEVEL", "info"))

	loc, err := time.LoadLocation(tzName)
	if err != nil {
		log.Fatalf("invalid timezone %q: %v", tzName, err)
	}

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	srv := server.New(db, loc, logger)

	sched := jobs.New(loc, srv.ReadingStore(), srv.SessionStore(), srv.RateLimiter(), logger.With("component", "jobs"))
	sched.Start()
	defer sched.Stop()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Leitura running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}

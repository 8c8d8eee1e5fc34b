// server runs the analysis gateway: a single endpoint that hides the
// generative-AI credential behind the process and classifies upstream
// failures into a small, stable error taxonomy.
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

	"github.com/modalyze/modalyze/internal/config"
	"github.com/modalyze/modalyze/internal/gateway"
	"github.com/modalyze/modalyze/internal/upstream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	client := upstream.NewClient(cfg)
	handler := gateway.NewHandler(cfg, client)
	router := gateway.NewRouter(cfg, handler)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
		// No WriteTimeout: the upstream round trip has no fixed bound and
		// must not be cut off mid-response.
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("gateway listening on %s (env=%s, model=%s)", srv.Addr, cfg.AppEnv, cfg.GeminiModel)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/existflow/diary/internal/logger"
	"github.com/existflow/diary/server"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logCfg := logger.DefaultConfig()
	logCfg.FilePath = ""
	logCfg.Console = true
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		logCfg.Level = logger.ParseLevel(lvl)
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	var opts []server.Option
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		opts = append(opts, server.WithSecret([]byte(secret)))
	}

	srv, err := server.New(opts...)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down server: %v", err)
	}
}

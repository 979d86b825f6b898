package main

import (
	"context"
	"errors"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/vncsmyrnk/personhood/internal/adapters/handler/http"
	"github.com/vncsmyrnk/personhood/internal/app"
	"github.com/vncsmyrnk/personhood/internal/config"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := config.NewLogger(os.Stderr, cfg.LogLevel)
	logger.Debug("configuration loaded", "event", "config_loaded", "config", cfg.DebugString())
	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET is empty, session endpoints will reject every request", "event", "config_missing_jwt_secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer a.Close()

	handler := http.NewHandler(http.Handlers{
		Auth:        http.NewAuthHandler(a.Sessions, cfg.CookieDomain, stdhttp.SameSiteLaxMode),
		Credentials: http.NewCredentialHandler(a.Credentials, logger),
		Proposals:   http.NewProposalHandler(a.Proposals, a.Votes, logger),
		Votes:       http.NewVoteHandler(a.Guard, logger),
		Session:     http.NewSessionMiddleware(a.Sessions),
	})
	server := &stdhttp.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "event", "server_started", "addr", cfg.HTTPAddr, "store", cfg.StoreDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	logger.Info("Gracefully shutting down...", "event", "server_stopping")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/ivanoskov/budget_manager/internal/config"
	"github.com/ivanoskov/budget_manager/internal/server"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
		logger.Fatal().Msg("SUPABASE_URL and SUPABASE_KEY are required")
	}

	srv := server.New(cfg, logger)

	httpServer := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      srv.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	logger.Info().Str("addr", cfg.ServerAddr).Msg("starting server")
	if err := httpServer.ListenAndServe(); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}

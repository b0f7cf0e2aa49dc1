package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	SupabaseURL string
	SupabaseKey string
	ServerAddr  string
	Currency    string
}

func LoadConfig() (*Config, error) {
	// A missing .env is fine in deployed environments where the
	// variables are injected directly.
	_ = godotenv.Load()

	cfg := &Config{
		SupabaseURL: os.Getenv("SUPABASE_URL"),
		SupabaseKey: os.Getenv("SUPABASE_KEY"),
		ServerAddr:  os.Getenv("SERVER_ADDR"),
		Currency:    os.Getenv("CURRENCY"),
	}
	if cfg.ServerAddr == "" {
		cfg.ServerAddr = ":8080"
	}
	if cfg.Currency == "" {
		cfg.Currency = "EUR"
	}
	return cfg, nil
}

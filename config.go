package main

import (
	"flag"
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Addr               string `env:"ATM_ADDR" env-default:":8080"`
	DataFile           string `env:"ATM_DATA_FILE" env-default:"atm_data.json"`
	MaxLoginAttempts   int    `env:"ATM_MAX_LOGIN_ATTEMPTS" env-default:"3"`
	LockoutSeconds     int    `env:"ATM_LOCKOUT_SECONDS" env-default:"300"`
	SessionSeconds     int    `env:"ATM_SESSION_SECONDS" env-default:"300"`
	PendingTransferTTL int    `env:"ATM_PENDING_TRANSFER_SECONDS" env-default:"120"`
	HistoryLimit       int    `env:"ATM_HISTORY_LIMIT" env-default:"10"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}

	flag.StringVar(&cfg.Addr, "a", ":8080", "HTTP listen address")
	flag.StringVar(&cfg.DataFile, "f", "atm_data.json", "path to the JSON data file")
	flag.Parse()

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("couldn't read environment variables: %w", err)
	}

	return cfg, nil
}

package main

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config carries everything the server needs from the environment: the two
// local data sources, the three hosted service credentials, and the
// shareable-id key.
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	MongoURL  string `env:"MONGODB_URL,required"`
	RedisAddr string `env:"REDIS_ADDR,required"`

	// 64 hex characters; see shareable.New.
	ShareableKey string        `env:"SHAREABLE_ID_KEY,required"`
	DashboardTTL time.Duration `env:"DASHBOARD_CACHE_TTL" envDefault:"5m"`

	IdentityEndpoint       string `env:"IDENTITY_ENDPOINT,required"`
	IdentityProject        string `env:"IDENTITY_PROJECT,required"`
	IdentityKey            string `env:"IDENTITY_KEY,required"`
	IdentityDatabaseID     string `env:"IDENTITY_DATABASE_ID,required"`
	IdentityUserCollection string `env:"IDENTITY_USER_COLLECTION,required"`
	IdentityBankCollection string `env:"IDENTITY_BANK_COLLECTION,required"`

	AggregatorEndpoint string `env:"AGGREGATOR_ENDPOINT,required"`
	AggregatorClientID string `env:"AGGREGATOR_CLIENT_ID,required"`
	AggregatorSecret   string `env:"AGGREGATOR_SECRET,required"`

	TransferEndpoint string `env:"TRANSFER_ENDPOINT,required"`
	TransferKey      string `env:"TRANSFER_KEY,required"`
	TransferSecret   string `env:"TRANSFER_SECRET,required"`
}

// loadConfig reads .env when present, then the process environment.
func loadConfig() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-redis/redis/v7"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"horizon-server/cache"
	"horizon-server/clients"
	"horizon-server/onboarding"
	"horizon-server/shareable"
)

func setupMongoDB(url string) *mongo.Database {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	c, err := mongo.Connect(ctx, options.Client().ApplyURI(url))
	if err != nil {
		log.Fatal(err)
	}
	return c.Database("horizon")
}

func setupRedis(addr string) *redis.Client {
	// connect to redis
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if _, err := client.Ping().Result(); err != nil {
		log.Fatal("Could not connect to redis:", err)
	}
	return client
}

// setupWorkflow builds the three hosted-service shims and wires the
// onboarding workflow from them.
func setupWorkflow(cfg Config) *onboarding.Workflow {
	hc := &http.Client{Timeout: 15 * time.Second}

	identity := clients.NewIdentity(hc, clients.IdentityConfig{
		Endpoint:       cfg.IdentityEndpoint,
		Project:        cfg.IdentityProject,
		Key:            cfg.IdentityKey,
		DatabaseID:     cfg.IdentityDatabaseID,
		UserCollection: cfg.IdentityUserCollection,
		BankCollection: cfg.IdentityBankCollection,
	})
	aggregator := clients.NewAggregator(hc, clients.AggregatorConfig{
		Endpoint: cfg.AggregatorEndpoint,
		ClientID: cfg.AggregatorClientID,
		Secret:   cfg.AggregatorSecret,
	})
	transfer := clients.NewTransfer(hc, clients.TransferConfig{
		Endpoint: cfg.TransferEndpoint,
		Key:      cfg.TransferKey,
		Secret:   cfg.TransferSecret,
	})

	encrypter, err := shareable.New(cfg.ShareableKey)
	if err != nil {
		log.Fatal("SHAREABLE_ID_KEY is unusable:", err)
	}

	progress := onboarding.NewMongoProgress(setupMongoDB(cfg.MongoURL))
	dashboards := cache.NewDashboard(setupRedis(cfg.RedisAddr), cfg.DashboardTTL)

	return onboarding.New(identity, aggregator, transfer, progress, dashboards, encrypter)
}

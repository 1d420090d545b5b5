// cmd/worker/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ampplex/influencerflow/internal/config"
	"github.com/ampplex/influencerflow/internal/db"
	"github.com/ampplex/influencerflow/internal/logging"
	"github.com/ampplex/influencerflow/internal/model"
	"github.com/ampplex/influencerflow/internal/queue"
	"github.com/ampplex/influencerflow/internal/repository"
	"github.com/ampplex/influencerflow/internal/service"
)

// The worker consumes deal.accepted events and drafts the contract for each
// accepted outreach.
func main() {
	log := logging.Get()

	cfg, dotenv, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	if !dotenv {
		log.Info("⚠️ No .env file found, relying on OS environment variables")
	}
	logging.SetLevel(cfg.LogLevel)

	if cfg.DatabaseURL == "" || cfg.AMQPURL == "" {
		log.Fatal("worker requires DATABASE_URL and AMQP_URL")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to DB
	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to DB")
	}
	defer conn.Close()

	store := &repository.Store{DB: conn}
	contracts := &service.ContractService{
		Repos: store.Repos(),
		Tx:    store,
		Log:   log.WithField("module", "contract"),
	}

	// Connect to RabbitMQ
	q, err := queue.DialAMQP(cfg.AMQPURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to RabbitMQ")
	}
	defer q.Close()

	if err := queue.StartDealAcceptedSubscriber(ctx, q, contracts); err != nil {
		log.WithError(err).Fatal("failed to register consumer")
	}

	log.WithField("topic", model.TopicDealAccepted).Info("Worker running, waiting for messages...")
	<-ctx.Done()
	log.Info("👋 Worker stopped")
}

// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ampplex/influencerflow/internal/auth"
	"github.com/ampplex/influencerflow/internal/config"
	"github.com/ampplex/influencerflow/internal/controller"
	"github.com/ampplex/influencerflow/internal/db"
	"github.com/ampplex/influencerflow/internal/handler"
	"github.com/ampplex/influencerflow/internal/lock"
	"github.com/ampplex/influencerflow/internal/logging"
	"github.com/ampplex/influencerflow/internal/media"
	"github.com/ampplex/influencerflow/internal/negotiation"
	"github.com/ampplex/influencerflow/internal/queue"
	"github.com/ampplex/influencerflow/internal/repository"
	"github.com/ampplex/influencerflow/internal/repository/memory"
	"github.com/ampplex/influencerflow/internal/retry"
	"github.com/ampplex/influencerflow/internal/service"
)

// store is the transactional repository backend: Postgres or in-memory.
type store interface {
	Repos() repository.Repos
	InTx(ctx context.Context, fn func(repository.Repos) error) error
}

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init DB
	var st store
	if cfg.DatabaseURL == "" {
		log.Warn("⚠️ DATABASE_URL not set, using the in-memory store")
		st = memory.NewStore()
	} else {
		conn, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to database")
		}
		defer conn.Close()
		if err := db.Migrate(ctx, conn); err != nil {
			log.WithError(err).Fatal("failed to migrate database")
		}
		st = &repository.Store{DB: conn}
	}
	repos := st.Repos()

	// Session lock
	var locker lock.Locker
	if cfg.RedisAddr == "" {
		log.Warn("⚠️ REDIS_ADDR not set, negotiation turns are serialized per process only")
		locker = lock.NewLocalLocker()
	} else {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.WithError(err).Fatal("failed to connect to redis")
		}
		locker = lock.NewRedisLocker(rdb)
	}

	// Queue
	var q queue.Queue
	contracts := &service.ContractService{Repos: repos, Tx: st, Log: log.WithField("module", "contract")}
	if cfg.AMQPURL == "" {
		log.Info("AMQP_URL not set, accepted deals are handled in-process")
		mem := queue.NewInMemoryQueue()
		if err := queue.StartDealAcceptedSubscriber(ctx, mem, contracts); err != nil {
			log.WithError(err).Fatal("failed to subscribe")
		}
		q = mem
	} else {
		amqpQueue, err := queue.DialAMQP(cfg.AMQPURL)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to rabbitmq")
		}
		defer amqpQueue.Close()
		q = amqpQueue
	}

	// Services
	outreach := &service.OutreachService{Repos: repos, Tx: st, Log: log.WithField("module", "outreach")}
	negotiations := &service.NegotiationService{
		Client:    negotiation.NewClient(cfg.NegotiationBaseURL, cfg.NegotiationTimeout),
		Repos:     repos,
		Projector: &service.Projector{Repos: repos, Tx: st, Log: log.WithField("module", "projector")},
		Locker:    locker,
		LockTTL:   cfg.SessionLockTTL,
		Retry:     retry.Options{MaxAttempts: cfg.RetryMaxAttempts, Delay: cfg.RetryDelay},
		Log:       log.WithField("module", "negotiation"),
	}
	if cfg.RazorpayKeySecret == "" {
		log.Warn("⚠️ RAZORPAY_KEY_SECRET not set, payment verification disabled")
	}
	payments := &service.PaymentService{
		Secret:    cfg.RazorpayKeySecret,
		Contracts: repos.Contracts,
		Log:       log.WithField("module", "payment"),
	}

	routes := controller.Routes{
		Issuer: auth.NewIssuer(cfg.JWTSecret),
		Log:    log,
		Campaigns: &controller.CampaignController{
			CampaignService: &service.CampaignService{Repos: repos},
			OutreachService: outreach,
		},
		Outreach:    &controller.OutreachController{OutreachService: outreach},
		Negotiation: &controller.NegotiationController{NegotiationService: negotiations},
		Contracts:   &controller.ContractController{ContractService: contracts},
		Payments:    &handler.PaymentHandler{Service: payments},
		Monitor:     &handler.MonitorHandler{Service: newMonitorService(ctx, cfg, log)},
	}

	relay := &queue.Relay{
		Store:     st,
		Queue:     q,
		Interval:  cfg.OutboxPollInterval,
		BatchSize: cfg.OutboxBatchSize,
		Log:       log.WithField("module", "outbox"),
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           controller.NewRouter(routes),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		relay.Run(gctx)
		return nil
	})
	g.Go(func() error {
		log.WithField("addr", cfg.HTTPAddr).Info("🚀 Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("server stopped with error")
		return
	}
	log.Info("👋 Server stopped")
}

func newMonitorService(ctx context.Context, cfg *config.Config, log *logrus.Logger) *service.MonitorService {
	var ig service.InstagramAPI
	if cfg.InstagramAccessToken != "" && cfg.InstagramBusinessID != "" {
		ig = media.NewInstagramClient(cfg.InstagramGraphURL, cfg.InstagramAccessToken, cfg.InstagramBusinessID)
	} else {
		log.Warn("⚠️ Instagram credentials not set, Instagram monitoring disabled")
	}

	var yt service.YouTubeAPI
	if cfg.YouTubeAPIKey != "" {
		client, err := media.NewYouTubeClient(ctx, cfg.YouTubeAPIKey, cfg.YouTubeEndpoint)
		if err != nil {
			log.WithError(err).Warn("⚠️ YouTube monitoring disabled")
		} else {
			yt = client
		}
	} else {
		log.Warn("⚠️ YOUTUBE_API_KEY not set, YouTube monitoring disabled")
	}

	return service.NewMonitorService(ig, yt, cfg.MediaCacheSize, cfg.MediaCacheTTL, log.WithField("module", "monitor"))
}

package app

import (
	"errors"
	"fmt"
	"net/http"

	"coinvest-go/internal/config"
	"coinvest-go/internal/db"
	communitydomain "coinvest-go/internal/domain/community"
	"coinvest-go/internal/repository/demo"
	"coinvest-go/internal/repository/inmemory"
	kafkarepo "coinvest-go/internal/repository/kafka"
	communityrepo "coinvest-go/internal/repository/postgres/community"
	redisrepo "coinvest-go/internal/repository/redis"
	"coinvest-go/internal/transport/httpserver"
	"coinvest-go/internal/transport/httpserver/handler"
	"coinvest-go/internal/worker"
	"coinvest-go/pkg/logger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type App struct {
	cfg        config.Config
	log        logger.Logger
	httpServer *http.Server
	db         *gorm.DB
	redis      *redis.Client
	publisher  *kafkarepo.Publisher
	sweeper    *worker.DeadlineSweeper
}

func New(log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, log: log}
	repo, err := a.communityRepository()
	if err != nil {
		a.Close()
		return nil, err
	}

	opts := []communitydomain.Option{
		communitydomain.WithLogger(log.With("component", "community")),
		communitydomain.WithCache(inmemory.NewCommunityCache(), cfg.Cache.CommunityTTL),
	}

	if cfg.Redis.Enabled() {
		log.Info("app: using redis community locks", "addr", cfg.Redis.Addr)
		a.redis = redisrepo.NewClient(cfg.Redis)
		opts = append(opts, communitydomain.WithLocker(redisrepo.NewLocker(a.redis, cfg.Redis.LockTTL, cfg.Redis.LockWait)))
	}

	if cfg.Kafka.Enabled() {
		log.Info("app: publishing events to kafka", "topic", cfg.Kafka.Topic)
		a.publisher = kafkarepo.NewPublisher(cfg.Kafka)
		opts = append(opts, communitydomain.WithPublisher(a.publisher))
	}

	communityService := communitydomain.NewService(repo, opts...)

	if cfg.Orders.SweepEnabled && cfg.Orders.SweepInterval > 0 {
		a.sweeper = worker.NewDeadlineSweeper(communityService, log, cfg.Orders.SweepInterval)
	}

	log.Info("app: initializing router")
	handlers := handler.New(communityService, log)
	router := httpserver.NewRouter(cfg, handlers, log)

	log.Info("app: initializing http server")
	a.httpServer = httpserver.New(cfg, router)
	return a, nil
}

func (a *App) communityRepository() (communitydomain.Repository, error) {
	var repo communitydomain.Repository
	switch a.cfg.Storage {
	case config.StorageMemory:
		a.log.Warn("app: using in-memory storage, data is lost on restart")
		repo = inmemory.NewCommunityRepository()
	default:
		a.log.Info("app: initializing database")
		dbConn, err := db.NewPostgres(a.cfg.DB, a.log)
		if err != nil {
			return nil, err
		}
		a.db = dbConn
		if err := db.Migrate(dbConn, a.log); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		repo = communityrepo.NewPostgres(dbConn)
	}

	if a.cfg.Demo.Enabled {
		a.log.Info("app: demo communities enabled")
		demoRepo, err := demo.New(repo)
		if err != nil {
			return nil, err
		}
		return demoRepo, nil
	}
	return repo, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

// StartWorkers launches background jobs; Close stops them.
func (a *App) StartWorkers() {
	if a.sweeper != nil {
		a.sweeper.Start()
	}
}

func (a *App) Close() error {
	var errs []error
	if a.sweeper != nil {
		a.sweeper.Stop()
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close kafka: %w", err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if a.db != nil {
		sqlDB, err := a.db.DB()
		if err != nil {
			errs = append(errs, err)
		} else if err := sqlDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close db: %w", err))
		}
	}
	return errors.Join(errs...)
}

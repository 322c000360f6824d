package bootstrap

import (
	"context"
	"log"

	"procuredoc-be/internal/config"
	"procuredoc-be/internal/controller"
	"procuredoc-be/internal/coordinator"
	"procuredoc-be/internal/pkg/logger"
	"procuredoc-be/internal/pkg/ratelimit"
	"procuredoc-be/internal/queue"
	"procuredoc-be/internal/repository/unitofwork"
	"procuredoc-be/internal/service"
	"procuredoc-be/internal/stream"
	"procuredoc-be/internal/websocket"
	"procuredoc-be/internal/worker"
	"procuredoc-be/pkg/generation"

	pktNats "procuredoc-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	DocumentController controller.IDocumentController
	SectionController  controller.ISectionController
	JobController      controller.IJobController

	// Background components (exposed for main.go to run)
	Queue  *queue.TaskQueue
	Worker *worker.Worker

	// WebSocket progress feed
	WebSocketHub *websocket.Hub

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	coord := coordinator.NewGormCoordinator(db)

	// 2. Task queue transport
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Generation engine
	var engine generation.Engine
	if cfg.Engine.Provider == "template" {
		engine = generation.NewTemplateEngine()
		log.Printf("[INFO] Using Generation Engine: TEMPLATE")
	} else {
		engine = generation.NewHTTPEngine(cfg.Engine.BaseURL, cfg.Engine.ApiKey, cfg.Engine.Timeout)
		log.Printf("[INFO] Using Generation Engine: HTTP (%s)", cfg.Engine.BaseURL)
	}

	// 3.5 Infrastructure
	// NATS
	var eventPub worker.EventPublisher
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		eventPub = natsPub
	}

	// Redis (optional: rate limit counters and websocket relay)
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
	}

	// Progress stream broker
	broker := stream.NewBroker(sysLogger)

	// WebSocket hub
	wsLogger := logger.NewIsolatedLogger("logs/progress.log")
	wsHub := websocket.NewHub(broker, rdb, wsLogger)
	go wsHub.Run()

	// Rate limiter: Redis counters when available, in-process otherwise.
	var limiterStore ratelimit.Store
	if rdb != nil {
		limiterStore = ratelimit.NewRedisStore(rdb)
	} else {
		limiterStore = ratelimit.NewMemoryStore()
	}
	limiter := ratelimit.NewLimiter(limiterStore, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)

	// 4. Queue and worker
	retry := queue.RetryPolicy{
		MaxAttempts: cfg.Queue.MaxAttempts,
		MinBackoff:  cfg.Queue.MinBackoff,
		MaxBackoff:  cfg.Queue.MaxBackoff,
	}
	taskQueue := queue.NewTaskQueue(pubSub, cfg.Queue.TopicName, uowFactory, retry, sysLogger)

	workerLogger := logger.NewIsolatedLogger(cfg.App.WorkerLogFilePath)
	genWorker := worker.NewWorker(
		uowFactory,
		coord,
		engine,
		broker,
		eventPub,
		workerLogger,
		cfg.Engine.Timeout,
	)

	// 5. Services
	documentService := service.NewDocumentService(uowFactory, coord)
	sectionService := service.NewSectionService(uowFactory, coord, taskQueue, broker, sysLogger)
	jobService := service.NewJobService(uowFactory)

	// 6. Controllers
	return &Container{
		DocumentController: controller.NewDocumentController(documentService),
		SectionController:  controller.NewSectionController(sectionService, limiter),
		JobController:      controller.NewJobController(jobService),

		Queue:  taskQueue,
		Worker: genWorker,

		WebSocketHub: wsHub,
		Logger:       sysLogger,
	}
}

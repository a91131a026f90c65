package bootstrap

import (
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"mailmaestro/adapter/out/cache"
	"mailmaestro/adapter/out/persistence"
	"mailmaestro/config"
	"mailmaestro/core/agent/llm"
	"mailmaestro/core/port/in"
	"mailmaestro/core/port/out"
	"mailmaestro/core/service/analysis"
	"mailmaestro/core/service/calendar"
	"mailmaestro/core/service/mail"
	"mailmaestro/core/service/task"
	"mailmaestro/infra/database"
	"mailmaestro/pkg/logger"
	"mailmaestro/pkg/snowflake"
)

// Dependencies holds every wired component.
type Dependencies struct {
	DB    *sqlx.DB
	Redis *redis.Client

	EmailRepo out.EmailRepository
	TaskRepo  out.TaskRepository
	EventRepo out.EventRepository

	AnalysisService in.AnalysisService
	MailService     in.MailService
	TaskService     in.TaskService
	EventService    in.EventService
}

// NewDependencies connects infrastructure and wires repositories and
// services. Redis and the model gateway are optional; everything else is
// required.
func NewDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	if err := snowflake.Init(workerID()); err != nil {
		return nil, nil, err
	}

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedis(cfg.RedisURL)
		if err != nil {
			logger.WithError(err).Warn("Redis unavailable, analysis cache disabled")
			redisClient = nil
		}
	}

	emailRepo := persistence.NewEmailRepository(db)
	taskRepo := persistence.NewTaskRepository(db)
	eventRepo := persistence.NewEventRepository(db)

	var gateway out.ModelGateway
	if cfg.OpenAIAPIKey != "" {
		client, err := llm.NewClient(llm.ClientConfig{
			APIKey:      cfg.OpenAIAPIKey,
			Model:       cfg.LLMModel,
			Mode:        llm.ResponseMode(cfg.LLMResponseMode),
			MaxTokens:   cfg.LLMMaxTokens,
			Temperature: cfg.LLMTemperature,
		})
		if err != nil {
			return nil, nil, err
		}
		gateway = client
	} else {
		logger.Warn("OPENAI_API_KEY not set, analysis endpoints will return configuration errors")
	}

	var analysisCache out.AnalysisCache
	if redisClient != nil {
		analysisCache = cache.NewAnalysisCache(redisClient)
	}

	zlog := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDevelopment() {
		zlog = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	analysisService := analysis.NewService(emailRepo, taskRepo, eventRepo, gateway, &analysis.Config{
		BatchSize:  cfg.AnalysisBatchSize,
		ChunkDelay: cfg.AnalysisChunkDelay,
		Cache:      analysisCache,
		CacheTTL:   cfg.AnalysisCacheTTL,
		Logger:     &zlog,
	})

	deps := &Dependencies{
		DB:    db,
		Redis: redisClient,

		EmailRepo: emailRepo,
		TaskRepo:  taskRepo,
		EventRepo: eventRepo,

		AnalysisService: analysisService,
		MailService:     mail.NewService(emailRepo, analysisService),
		TaskService:     task.NewService(taskRepo),
		EventService:    calendar.NewService(eventRepo),
	}

	cleanup := func() {
		if redisClient != nil {
			redisClient.Close()
		}
		db.Close()
	}
	return deps, cleanup, nil
}

// workerID derives a snowflake worker id from the process id, keeping ids
// unique across a small number of replicas.
func workerID() int64 {
	return int64(os.Getpid() % 1024)
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	qdrant "github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/spec-kit/workaid/internal/ai"
	httptransport "github.com/spec-kit/workaid/internal/api/http"
	"github.com/spec-kit/workaid/internal/api/http/handlers"
	"github.com/spec-kit/workaid/internal/auth"
	"github.com/spec-kit/workaid/internal/cache"
	"github.com/spec-kit/workaid/internal/config"
	"github.com/spec-kit/workaid/internal/events"
	"github.com/spec-kit/workaid/internal/genai"
	"github.com/spec-kit/workaid/internal/observability"
	"github.com/spec-kit/workaid/internal/persistence"
	"github.com/spec-kit/workaid/internal/repository"
	"github.com/spec-kit/workaid/internal/service"
	"github.com/spec-kit/workaid/internal/vector"
	"github.com/spec-kit/workaid/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	qdrantConn, err := grpc.Dial(cfg.Qdrant.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		logger.Fatal("failed to dial qdrant", zap.Error(err))
	}
	defer qdrantConn.Close()

	collectionsClient := qdrant.NewCollectionsClient(qdrantConn)
	if err := vector.EnsureCollections(ctx, collectionsClient, cfg.OpenAI.EmbeddingDims, logger); err != nil {
		logger.Warn("vector collections unavailable at startup", zap.Error(err))
	}

	responseCache := cache.New(redis.Client, cfg.Cache.TTL, logger)
	genaiClient := genai.NewClient(cfg.OpenAI, cfg.AI, logger)
	vectorStore := vector.NewStore(qdrant.NewPointsClient(qdrantConn), genaiClient, responseCache, logger)

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	staffRepo := repository.NewStaffRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	faqRepo := repository.NewFAQRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:  userRepo,
		StaffRepo: staffRepo,
	})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo, staffRepo)

	classifier := ai.NewLLMClassifier(genaiClient)
	answerer := ai.NewAnswerer(vectorStore, genaiClient, responseCache, cfg.AI.SearchTopK, logger)
	analyzer := ai.NewAnalyzer(ai.AnalyzerDependencies{
		Vectors:    vectorStore,
		TicketRepo: ticketRepo,
		FAQRepo:    faqRepo,
		Generator:  genaiClient,
		Dispatcher: dispatcher,
	}, cfg.AI, logger)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		UserRepo:   userRepo,
		Classifier: classifier,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	faqService := service.NewFAQService(service.FAQDependencies{
		FAQRepo: faqRepo,
		Vectors: vectorStore,
		Logger:  logger,
	})
	chatService := service.NewChatService(answerer, logger)

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	notificationService.RegisterHandlers()

	analyzerWorker := worker.NewAnalyzerWorker(analyzer, ticketRepo, logger)
	analyzerWorker.Register(dispatcher)

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Staff:          handlers.NewStaffHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		StaffTickets:   handlers.NewStaffTicketsHandler(ticketService),
		FAQs:           handlers.NewFAQsHandler(faqService),
		Chat:           handlers.NewChatHandler(chatService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

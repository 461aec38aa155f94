package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/mp2tech/service-center/internal/api/http"
	"github.com/mp2tech/service-center/internal/api/http/handlers"
	"github.com/mp2tech/service-center/internal/auth"
	"github.com/mp2tech/service-center/internal/config"
	"github.com/mp2tech/service-center/internal/events"
	"github.com/mp2tech/service-center/internal/lifecycle"
	"github.com/mp2tech/service-center/internal/notify"
	"github.com/mp2tech/service-center/internal/observability"
	"github.com/mp2tech/service-center/internal/persistence"
	"github.com/mp2tech/service-center/internal/repository"
	"github.com/mp2tech/service-center/internal/service"
	"github.com/mp2tech/service-center/internal/storage"
	"github.com/mp2tech/service-center/internal/worker"
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

	objectStore, err := storage.NewLocalStore(cfg.Storage.BaseDir)
	if err != nil {
		logger.Fatal("failed to init attachment store", zap.Error(err))
	}

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	customerRepo := repository.NewCustomerRepository(pool)
	profileRepo := repository.NewProfileRepository(pool)
	remarkRepo := repository.NewRemarkRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	templateRepo := repository.NewTemplateRepository(pool)
	antivirusRepo := repository.NewAntivirusRepository(pool)
	attendanceRepo := repository.NewAttendanceRepository(pool)

	dispatcher := events.NewInMemoryDispatcher(logger)
	engine := lifecycle.NewEngine(ticketRepo, lifecycle.NewPolicy(), dispatcher)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		ProfileRepo: profileRepo,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:   ticketRepo,
		CustomerRepo: customerRepo,
		RemarkRepo:   remarkRepo,
		Engine:       engine,
		Dispatcher:   dispatcher,
		Store:        objectStore,
	})
	customerService := service.NewCustomerService(customerRepo)
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		NotificationRepo: notificationRepo,
		ProfileRepo:      profileRepo,
		Dispatcher:       dispatcher,
	}, logger)
	templateService := service.NewTemplateService(templateRepo, logger)
	antivirusService := service.NewAntivirusService(antivirusRepo, customerRepo)
	attendanceService := service.NewAttendanceService(attendanceRepo)
	chatService := service.NewChatService(cfg.Chat, redis.Client, logger)

	if err := templateService.EnsureSeeded(ctx); err != nil {
		logger.Warn("template seeding failed", zap.Error(err))
	}

	var whatsappDispatcher *notify.Dispatcher
	if cfg.WhatsApp.Enabled() {
		gateway := notify.NewWhatsAppGateway(cfg.WhatsApp)
		whatsappDispatcher = notify.NewDispatcher(gateway, ticketRepo, customerRepo, profileRepo, cfg.WhatsApp.AdminPhone, logger)
	} else {
		logger.Info("whatsapp gateway not configured; skipping outbound dispatch")
	}
	worker.StartNotificationWorker(dispatcher, notificationService, whatsappDispatcher)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), profileRepo)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	metrics := observability.NewMetrics()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Customers:      handlers.NewCustomersHandler(customerService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		Templates:      handlers.NewTemplatesHandler(templateService),
		Licenses:       handlers.NewLicensesHandler(antivirusService),
		Attendance:     handlers.NewAttendanceHandler(attendanceService),
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

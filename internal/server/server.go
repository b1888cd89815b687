package server

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/mansoorceksport/eventhub/internal/config"
	"github.com/mansoorceksport/eventhub/internal/domain"
	"github.com/mansoorceksport/eventhub/internal/handler"
	"github.com/mansoorceksport/eventhub/internal/jobs"
	"github.com/mansoorceksport/eventhub/internal/middleware"
	"github.com/mansoorceksport/eventhub/internal/repository"
	"github.com/mansoorceksport/eventhub/internal/service"
	"github.com/mansoorceksport/eventhub/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel/metric"
)

// AppDependencies holds the dependencies required to start the application.
// RedisClient, FileRepo, PaymentProvider, Meter and Scheduler are optional.
// Background jobs are registered on Scheduler; the caller starts and stops it.
type AppDependencies struct {
	Config          *config.Config
	MongoDB         *mongo.Database
	RedisClient     *redis.Client
	AuthClient      service.FirebaseAuthClient
	FileRepo        domain.FileRepository
	PaymentProvider service.PaymentProvider
	Meter           metric.Meter
	Scheduler       *jobs.Scheduler
}

// NewApp creates and configures the Fiber application with the given dependencies
func NewApp(deps AppDependencies) *fiber.App {
	cfg := deps.Config

	// Repositories
	userRepo := repository.NewMongoUserRepository(deps.MongoDB)
	packageRepo := repository.NewMongoListingPackageRepository(deps.MongoDB)
	var eventRepo domain.EventRepository = repository.NewMongoEventRepository(deps.MongoDB)
	rsvpRepo := repository.NewMongoRSVPRepository(deps.MongoDB)
	savedRepo := repository.NewMongoSavedEventRepository(deps.MongoDB)
	invoiceRepo := repository.NewMongoInvoiceRepository(deps.MongoDB)
	adminSettingRepo := repository.NewMongoAdminSettingRepository(deps.MongoDB)
	paymentSettingsRepo := repository.NewMongoPaymentSettingsRepository(deps.MongoDB)

	var quoteCache domain.PriceQuoteCache
	if deps.RedisClient != nil {
		redisCache := repository.NewRedisCacheRepository(deps.RedisClient)
		quoteCache = redisCache
		eventRepo = repository.NewCachedEventRepository(eventRepo, redisCache)
	} else {
		log.Println("[Server] Redis not configured, price quotes and events are not cached")
	}

	meter := deps.Meter
	if meter == nil {
		meter = telemetry.Meter()
	}
	provider := deps.PaymentProvider
	if provider == nil {
		provider = service.NewPaymentProvider(cfg.Payment)
	}

	// Services
	tokenService := service.NewTokenService(cfg.JWT)
	authService := service.NewAuthService(userRepo, deps.AuthClient, tokenService, cfg.Auth.AdminEmails)
	pricingService := service.NewPricingService(packageRepo, quoteCache, cfg.Pricing.QuoteCacheTTL, meter)
	catalogService := service.NewCatalogService(packageRepo, quoteCache)
	settingsService := service.NewSettingsService(adminSettingRepo, paymentSettingsRepo)
	eventService := service.NewEventService(eventRepo, rsvpRepo, savedRepo, deps.FileRepo, pricingService, settingsService)
	paymentService := service.NewListingPaymentService(invoiceRepo, eventRepo, userRepo, provider, cfg.Payment.IPaymuAPIKey)

	if cfg.Pricing.SeedDefaultCatalog {
		seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if _, err := catalogService.SeedDefaults(seedCtx); err != nil {
			log.Printf("[Seed] Failed to seed listing catalog: %v", err)
		}
		cancel()
	}

	if deps.Scheduler != nil && cfg.Jobs.Enabled {
		expiry := service.NewListingExpiryService(eventRepo)
		err := deps.Scheduler.Register("listing-expiry", cfg.Jobs.ListingExpirySchedule, cfg.Jobs.Timeout,
			func(ctx context.Context) error {
				_, err := expiry.ExpireDue(ctx)
				return err
			})
		if err != nil {
			log.Printf("[Server] Listing expiry job disabled: %v", err)
		}
	}

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	pricingHandler := handler.NewPricingHandler(pricingService, catalogService)
	settingsHandler := handler.NewSettingsHandler(settingsService)
	eventHandler := handler.NewEventHandler(eventService, cfg.Server.MaxUploadSizeMB)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	webhookHandler := handler.NewWebhookHandler(paymentService)

	bodyLimit := int(cfg.Server.MaxUploadSizeMB * 1024 * 1024)
	if bodyLimit <= 0 {
		bodyLimit = fiber.DefaultBodyLimit
	}
	allowOrigins := cfg.Server.AllowOrigins
	if allowOrigins == "" {
		allowOrigins = "*"
	}

	app := fiber.New(fiber.Config{
		AppName:      "EventHub API",
		BodyLimit:    bodyLimit,
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Correlation-ID",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(telemetry.FiberMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "eventhub",
		})
	})

	requireAuth := middleware.VerifyToken(tokenService)
	optionalAuth := middleware.OptionalAuth(tokenService)

	idempotent := func(c *fiber.Ctx) error { return c.Next() }
	if deps.RedisClient != nil {
		ttl := cfg.Payment.IdempotencyTTL
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		idempotent = middleware.IdempotencyMiddleware(deps.RedisClient, ttl)
	}

	api := app.Group("/api")

	// Auth
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.LoginOrRegister)
	auth.Get("/user", requireAuth, authHandler.GetUser)

	// Pricing (public)
	api.Post("/calculate-price", pricingHandler.CalculatePrice)
	api.Get("/listing-packages", pricingHandler.ListPackages)

	// Events
	api.Get("/events", optionalAuth, eventHandler.ListEvents)
	api.Get("/events/:id", optionalAuth, eventHandler.GetEvent)
	api.Post("/events", requireAuth, eventHandler.CreateEvent)
	api.Put("/events/:id", requireAuth, eventHandler.UpdateEvent)
	api.Delete("/events/:id", requireAuth, eventHandler.DeleteEvent)
	api.Post("/events/:id/image", requireAuth, eventHandler.UploadImage)
	api.Get("/my-events", requireAuth, eventHandler.MyEvents)

	// RSVPs and saved events
	api.Post("/events/:id/rsvp", requireAuth, eventHandler.RSVP)
	api.Delete("/events/:id/rsvp", requireAuth, eventHandler.CancelRSVP)
	api.Get("/my-rsvps", requireAuth, eventHandler.MyRSVPs)
	api.Post("/events/:id/save", requireAuth, eventHandler.SaveEvent)
	api.Delete("/events/:id/save", requireAuth, eventHandler.UnsaveEvent)
	api.Get("/saved-events", requireAuth, eventHandler.SavedEvents)

	// Listing payments
	api.Post("/events/:id/listing/checkout", requireAuth, idempotent, paymentHandler.Checkout)
	api.Get("/payments/status/:id", requireAuth, paymentHandler.GetInvoiceStatus)
	api.Post("/payments/webhook/ipaymu", webhookHandler.IPAYMUWebhook)

	// Admin. Payment settings are readable by anyone so clients know whether
	// listing is free; registered before the admin guard.
	admin := api.Group("/admin")
	admin.Get("/payment-settings", settingsHandler.GetPaymentSettings)
	admin.Use(requireAuth, middleware.AuthorizeRole(domain.RoleAdmin))

	admin.Get("/settings", settingsHandler.ListAdminSettings)
	admin.Post("/settings", settingsHandler.SaveAdminSetting)
	admin.Post("/payment-settings", settingsHandler.UpdatePaymentSettings)

	admin.Post("/listing-packages", pricingHandler.CreatePackage)
	admin.Put("/listing-packages/:id", pricingHandler.UpdatePackage)
	admin.Delete("/listing-packages/:id", pricingHandler.DeletePackage)

	return app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	log.Printf("[Server] Error: %v", err)
	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}

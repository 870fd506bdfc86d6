package main

import (
	"log"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/learnify/marketplace-service/config"
	"github.com/learnify/marketplace-service/internal/consumer"
	"github.com/learnify/marketplace-service/internal/handler"
	"github.com/learnify/marketplace-service/internal/middleware"
	"github.com/learnify/marketplace-service/internal/payment"
	"github.com/learnify/marketplace-service/internal/repository"
	"github.com/learnify/marketplace-service/internal/service"
	"github.com/learnify/marketplace-service/pkg/database"
	"github.com/learnify/marketplace-service/pkg/rabbitmq"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "marketplace-service",
		Short: "Learnify course marketplace API",
		RunE:  func(cmd *cobra.Command, args []string) error { return serve() },
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP API",
			RunE:  func(cmd *cobra.Command, args []string) error { return serve() },
		},
		newRecountCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serve() error {
	cfg := config.Load()

	db := database.NewPostgresDB(cfg.DSN())

	// RabbitMQ publisher: enrollment and catalog events. Publishing is best
	// effort, so the API still starts without a broker.
	var publisher service.EventPublisher
	mqPublisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
	if err != nil {
		log.Printf("RabbitMQ unavailable, events will not be published: %v", err)
	} else {
		defer mqPublisher.Close()
		publisher = mqPublisher
	}

	// Repositories
	listingRepo := repository.NewListingRepository(db)
	cartRepo := repository.NewCartRepository(db)
	ledgerRepo := repository.NewEnrollmentRepository(db)
	userRepo := repository.NewUserRepository(db)

	// RabbitMQ consumer: sync the user directory
	if cfg.UserSyncEnabled {
		mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL, rabbitmq.UserQueueName, rabbitmq.UserBindingKey)
		if err != nil {
			log.Fatalf("failed to connect to RabbitMQ: %v", err)
		}
		defer mqConsumer.Close()

		msgs, err := mqConsumer.Consume()
		if err != nil {
			log.Fatalf("failed to start consuming: %v", err)
		}
		consumer.NewUserConsumer(userRepo).Start(msgs)
	}

	// Services
	reconciliationSvc := service.NewReconciliationService(service.ReconciliationDeps{
		Ledger:    ledgerRepo,
		Carts:     cartRepo,
		Listings:  listingRepo,
		Users:     userRepo,
		Gateway:   payment.NewStripeGateway(cfg.StripeAPIURL, cfg.StripeSecretKey),
		Publisher: publisher,
		Currency:  cfg.Currency,
	})
	catalogSvc := service.NewCatalogService(listingRepo, publisher)
	cartSvc := service.NewCartService(cartRepo, ledgerRepo, listingRepo)
	statsSvc := service.NewStatsService(listingRepo, ledgerRepo, userRepo)
	userSvc := service.NewUserService(userRepo)

	auth := middleware.NewAuth(cfg.JWTSecret)

	// Echo
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Validator = handler.NewValidator()
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())
	e.Use(echoMw.CORS())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": "marketplace-service"})
	})

	handler.NewPaymentHandler(reconciliationSvc).RegisterRoutes(e, auth)
	handler.NewCartHandler(cartSvc).RegisterRoutes(e, auth)
	handler.NewClassHandler(catalogSvc).RegisterRoutes(e, auth)
	handler.NewStatsHandler(statsSvc).RegisterRoutes(e, auth)
	handler.NewUserHandler(userSvc).RegisterRoutes(e)

	log.Printf("Marketplace Service starting on :%s", cfg.ServerPort)
	return e.Start(":" + cfg.ServerPort)
}

package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"

	"inventory/internal/config"
	"inventory/internal/handlers"
	"inventory/internal/logger"
	"inventory/internal/repositories"
	"inventory/internal/services"
	"inventory/internal/validation"
	"inventory/pkg/rabbitmq"
)

// App is the assembled HTTP application and the resources it owns.
type App struct {
	Fiber    *fiber.App
	MQClient *rabbitmq.Client // nil when event publishing is disabled

	cleanup []func()
}

// Close releases the database and broker connections.
func (a *App) Close() {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}
}

// NewApp wires the database, services and handlers for cfg.
func NewApp(cfg config.Config, log *logger.Logger) (*App, error) {
	a := &App{}

	// --- Database ---
	db, err := repositories.OpenDatabase(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	a.cleanup = append(a.cleanup, func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	store := repositories.NewGORMStore(db)

	// --- RabbitMQ (optional) ---
	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: services.EventsExchange}, log)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.MQClient = mqClient
		publisher = mqClient
		a.cleanup = append(a.cleanup, func() {
			if err := mqClient.Close(); err != nil {
				log.Warn("error closing RabbitMQ client", "error", err)
			}
		})
	} else {
		log.Info("RABBITMQ_URL not set, product events are not published")
	}

	// --- Services ---
	v := validation.New()
	opts := services.Options{StoreTimeout: cfg.StoreTimeout, MaxPageLimit: cfg.MaxPageLimit}
	productService := services.NewProductService(store, v, publisher, log, opts)
	manufacturerService := services.NewManufacturerService(store, v, log, opts)

	// --- Handlers ---
	productHandler := handlers.NewProductHandler(productService, handlers.ProductHandlerOptions{
		DefaultPageLimit:       cfg.DefaultPageLimit,
		LowStockThreshold:      cfg.LowStockThreshold,
		CriticalStockThreshold: cfg.CriticalStockThreshold,
	})
	manufacturerHandler := handlers.NewManufacturerHandler(manufacturerService)

	// --- Fiber App ---
	app := fiber.New()
	app.Use(recover.New())
	app.Use(fiberlogger.New())

	api := app.Group("/api")
	productHandler.RegisterRoutes(api)
	manufacturerHandler.RegisterRoutes(api)

	app.Get("/health", func(c *fiber.Ctx) error {
		body := fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "connected",
			"rabbitMQ": "disabled",
		}
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.UserContext()) != nil {
			body["status"] = "unhealthy"
			body["database"] = "unreachable"
			return c.Status(fiber.StatusServiceUnavailable).JSON(body)
		}
		if a.MQClient != nil {
			body["rabbitMQ"] = "connected"
		}
		return c.JSON(body)
	})

	a.Fiber = app
	return a, nil
}

func main() {
	// --- Configuration ---
	cfg := config.Load(viper.New())

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	app, err := NewApp(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize application", "error", err)
	}
	defer app.Close()

	// --- RabbitMQ consumer ---
	if app.MQClient != nil {
		go func() {
			handler := func(msg amqp.Delivery) error {
				log.Info("product event received", "routingKey", msg.RoutingKey, "body", string(msg.Body))
				return nil
			}
			if err := app.MQClient.ConsumeProductEvents(handler); err != nil {
				log.Error("failed to start RabbitMQ consumer", "error", err)
			}
		}()
	}

	// --- Start HTTP Server ---
	log.Info("starting server", "port", cfg.AppPort, "driver", cfg.DatabaseDriver)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Fiber.Listen(cfg.AppPort); err != nil {
			log.Fatal("server failed to start", "error", err)
		}
	}()

	<-quit
	log.Info("shutting down server")

	if err := app.Fiber.Shutdown(); err != nil {
		log.Error("error during Fiber shutdown", "error", err)
	}
	log.Info("server gracefully stopped")
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/flowfix/flowfix-api/internal/application/auth"
	"github.com/flowfix/flowfix-api/internal/application/authz"
	"github.com/flowfix/flowfix-api/internal/application/billing"
	"github.com/flowfix/flowfix-api/internal/application/lifecycle"
	"github.com/flowfix/flowfix-api/internal/application/messaging"
	"github.com/flowfix/flowfix-api/internal/application/notify"
	"github.com/flowfix/flowfix-api/internal/application/subscription"
	infraamqp "github.com/flowfix/flowfix-api/internal/infrastructure/amqp"
	"github.com/flowfix/flowfix-api/internal/infrastructure/dedupe"
	infrapayment "github.com/flowfix/flowfix-api/internal/infrastructure/payment"
	"github.com/flowfix/flowfix-api/internal/infrastructure/postgres"
	httpRouter "github.com/flowfix/flowfix-api/internal/interfaces/http"
	"github.com/flowfix/flowfix-api/pkg/config"
	"github.com/flowfix/flowfix-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	projectRepo := postgres.NewProjectRepository(pool)
	proposalRepo := postgres.NewProposalRepository(pool)
	timeRepo := postgres.NewTimeEntryRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	messageRepo := postgres.NewMessageRepository(pool)
	subscriptionRepo := postgres.NewSubscriptionRepository(pool)
	auditRepo := postgres.NewAuditLogRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Broker de notificaciones: URL vacía degrada a solo-log.
	var pub notify.Publisher
	if cfg.AMQP.URL != "" {
		amqpPub, err := infraamqp.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			log.Warn().Err(err).Msg("broker AMQP no disponible, notificaciones solo-log")
		} else {
			defer amqpPub.Close()
			pub = amqpPub
		}
	}
	notifier := notify.NewDispatcher(pub, log)

	// Dedupe de webhooks: Addr vacío desactiva el guard (nil-safe).
	deduper := dedupe.NewDeduper(cfg.Redis, 24*time.Hour)
	defer deduper.Close()

	az := authz.New(auditRepo, log)
	paymentClient := infrapayment.NewClient(cfg.Payment, log)

	authUC := auth.NewAuthUseCase(userRepo, az, notifier, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	lifecycleUC := lifecycle.NewUseCase(projectRepo, proposalRepo, userRepo, txRunner, az, notifier)
	subscriptionUC := subscription.NewUseCase(subscriptionRepo, log)
	billingUC := billing.NewInvoiceUseCase(
		txRunner, projectRepo, proposalRepo, timeRepo, invoiceRepo, userRepo,
		paymentClient, dedupeOrNil(deduper), subscriptionUC, az, notifier, log,
	)
	messagingUC := messaging.NewUseCase(messageRepo, projectRepo, az)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "FlowFix API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:         authUC,
		LifecycleUC:    lifecycleUC,
		BillingUC:      billingUC,
		MessagingUC:    messagingUC,
		SubscriptionUC: subscriptionUC,
		Authorizer:     az,
		JWTSecret:      cfg.JWT.Secret,
		WebhookSecret:  cfg.Payment.WebhookSecret,
		Log:            log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// dedupeOrNil evita pasar una interfaz no-nil con puntero nil al caso de uso.
func dedupeOrNil(d *dedupe.Deduper) billing.WebhookDeduper {
	if d == nil {
		return nil
	}
	return d
}

package http

import (
	"github.com/flowfix/flowfix-api/internal/application/auth"
	"github.com/flowfix/flowfix-api/internal/application/authz"
	"github.com/flowfix/flowfix-api/internal/application/billing"
	"github.com/flowfix/flowfix-api/internal/application/lifecycle"
	"github.com/flowfix/flowfix-api/internal/application/messaging"
	"github.com/flowfix/flowfix-api/internal/application/subscription"
	"github.com/flowfix/flowfix-api/internal/domain/entity"
	"github.com/flowfix/flowfix-api/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC         *auth.AuthUseCase
	LifecycleUC    *lifecycle.UseCase
	BillingUC      *billing.InvoiceUseCase
	MessagingUC    *messaging.UseCase
	SubscriptionUC *subscription.UseCase
	Authorizer     *authz.Authorizer
	JWTSecret      string
	WebhookSecret  string
	Log            *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	errLog = deps.Log

	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Webhook del procesador de pagos (público; autentica por firma, no por JWT)
	billingHandler := NewBillingHandler(deps.BillingUC, deps.WebhookSecret, deps.Log)
	api.Post("/webhooks/payment", billingHandler.Webhook)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Perfil propio
	protected.Put("/me/payment-method", authHandler.SavePaymentMethod)
	protected.Post("/billing/setup-intent", billingHandler.SetupIntent)

	// Proyectos: ciclo de vida
	projects := protected.Group("/projects")
	projectHandler := NewProjectHandler(deps.LifecycleUC)
	projects.Post("/", projectHandler.Create)
	projects.Get("/", projectHandler.List)
	projects.Get("/:id", projectHandler.GetByID)
	projects.Post("/:id/assign", RequireRole(entity.RoleMasterAdmin), projectHandler.Assign)
	projects.Post("/:id/start", projectHandler.Start)
	projects.Post("/:id/cancel", projectHandler.Cancel)

	// Propuestas
	proposalHandler := NewProposalHandler(deps.LifecycleUC)
	projects.Post("/:id/proposals", proposalHandler.Create)
	projects.Get("/:id/proposals", proposalHandler.List)
	proposals := protected.Group("/proposals")
	proposals.Post("/:id/accept", proposalHandler.Accept)
	proposals.Post("/:id/reject", proposalHandler.Reject)

	// Horas y facturación por proyecto
	projects.Post("/:id/time", billingHandler.LogTime)
	projects.Get("/:id/time", billingHandler.ListTime)
	projects.Post("/:id/complete", billingHandler.Complete)
	projects.Post("/:id/invoices", billingHandler.CreateInvoice)
	projects.Get("/:id/invoices", billingHandler.ListInvoices)

	// Pago de facturas
	invoices := protected.Group("/invoices")
	invoices.Post("/:id/pay", billingHandler.Pay)

	// Mensajería por proyecto
	messageHandler := NewMessageHandler(deps.MessagingUC)
	projects.Post("/:id/messages", messageHandler.Post)
	projects.Get("/:id/messages", messageHandler.List)

	// Suscripciones
	packages := protected.Group("/packages")
	packageHandler := NewPackageHandler(deps.SubscriptionUC)
	packages.Get("/", packageHandler.ListPackages)
	packages.Post("/:id/subscribe", packageHandler.Subscribe)
	protected.Get("/me/subscription", packageHandler.GetMine)

	// Administración (solo master_admin)
	admin := protected.Group("/admin", RequireRole(entity.RoleMasterAdmin))
	adminHandler := NewAdminHandler(deps.AuthUC, deps.Authorizer)
	admin.Post("/users/:id/elevate", adminHandler.ElevateRole)
	admin.Get("/audit", adminHandler.ListAudit)
}

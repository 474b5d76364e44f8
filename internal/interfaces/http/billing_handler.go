package http

import (
	"time"

	"github.com/flowfix/flowfix-api/internal/application/billing"
	"github.com/flowfix/flowfix-api/internal/application/dto"
	"github.com/flowfix/flowfix-api/internal/infrastructure/payment"
	"github.com/flowfix/flowfix-api/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

// Header con la firma del webhook del procesador.
const webhookSignatureHeader = "Payment-Signature"

// BillingHandler maneja horas, facturas, pagos y el webhook del procesador.
type BillingHandler struct {
	uc            *billing.InvoiceUseCase
	webhookSecret string
	log           *logger.Logger
}

// NewBillingHandler construye el handler de facturación.
func NewBillingHandler(uc *billing.InvoiceUseCase, webhookSecret string, log *logger.Logger) *BillingHandler {
	return &BillingHandler{uc: uc, webhookSecret: webhookSecret, log: log}
}

// LogTime registra horas trabajadas (admin asignado).
// POST /api/projects/:id/time
func (h *BillingHandler) LogTime(c *fiber.Ctx) error {
	var in dto.LogTimeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.HoursSpent == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "hours_spent requerido"})
	}
	entry, err := h.uc.LogTime(c.Context(), SessionFrom(c), c.Params("id"), in)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// ListTime lista las horas del proyecto.
// GET /api/projects/:id/time
func (h *BillingHandler) ListTime(c *fiber.Ctx) error {
	entries, err := h.uc.ListTimeEntries(c.Context(), SessionFrom(c), c.Params("id"))
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(entries)
}

// Complete marca el trabajo completo y emite la factura de cierre.
// POST /api/projects/:id/complete
func (h *BillingHandler) Complete(c *fiber.Ctx) error {
	out, err := h.uc.CompleteProject(c.Context(), SessionFrom(c), c.Params("id"))
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(out)
}

// CreateInvoice factura manualmente las horas sin facturar (admin).
// POST /api/projects/:id/invoices
func (h *BillingHandler) CreateInvoice(c *fiber.Ctx) error {
	invoice, err := h.uc.CreateInvoice(c.Context(), SessionFrom(c), c.Params("id"))
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(invoice)
}

// ListInvoices lista las facturas del proyecto.
// GET /api/projects/:id/invoices
func (h *BillingHandler) ListInvoices(c *fiber.Ctx) error {
	invoices, err := h.uc.ListInvoices(c.Context(), SessionFrom(c), c.Params("id"))
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(invoices)
}

// SetupIntent abre el flujo de guardar un método de pago (cliente).
// POST /api/billing/setup-intent
func (h *BillingHandler) SetupIntent(c *fiber.Ctx) error {
	out, err := h.uc.CreateSetupIntent(c.Context(), SessionFrom(c))
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(out)
}

// Pay crea el payment intent de una factura pendiente (cliente dueño).
// POST /api/invoices/:id/pay
func (h *BillingHandler) Pay(c *fiber.Ctx) error {
	out, err := h.uc.CreatePaymentIntent(c.Context(), SessionFrom(c), c.Params("id"))
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(out)
}

// Webhook recibe los eventos del procesador de pagos. Verifica la firma sobre
// el cuerpo crudo antes de decodificar; una firma inválida responde 400 y se
// registra. El procesador reintenta ante cualquier status != 2xx.
// POST /api/webhooks/payment
func (h *BillingHandler) Webhook(c *fiber.Ctx) error {
	body := c.Body()
	sig := c.Get(webhookSignatureHeader)
	if err := payment.VerifySignature(h.webhookSecret, body, sig, time.Now()); err != nil {
		h.log.Warn().Err(err).Msg("webhook de pago con firma inválida")
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "BAD_SIGNATURE", Message: "firma inválida"})
	}
	event, err := payment.ParseEvent(body)
	if err != nil {
		h.log.Warn().Err(err).Msg("webhook de pago con cuerpo inválido")
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "evento inválido"})
	}
	if err := h.uc.HandleWebhook(c.Context(), event); err != nil {
		// Error transitorio (DB caída): 500 para que el procesador reintente.
		h.log.Error().Err(err).Str("event", event.ID).Msg("fallo procesando webhook de pago")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error procesando el evento"})
	}
	return c.SendStatus(fiber.StatusOK)
}

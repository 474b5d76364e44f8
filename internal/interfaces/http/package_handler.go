package http

import (
	"github.com/flowfix/flowfix-api/internal/application/subscription"
	"github.com/gofiber/fiber/v2"
)

// PackageHandler maneja los paquetes de suscripción mensual por horas.
type PackageHandler struct {
	uc *subscription.UseCase
}

// NewPackageHandler construye el handler de suscripciones.
func NewPackageHandler(uc *subscription.UseCase) *PackageHandler {
	return &PackageHandler{uc: uc}
}

// ListPackages lista los paquetes disponibles.
// GET /api/packages
func (h *PackageHandler) ListPackages(c *fiber.Ctx) error {
	packages, err := h.uc.ListPackages(c.Context())
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(packages)
}

// Subscribe suscribe al cliente a un paquete.
// POST /api/packages/:id/subscribe
func (h *PackageHandler) Subscribe(c *fiber.Ctx) error {
	sub, err := h.uc.Subscribe(c.Context(), SessionFrom(c), c.Params("id"))
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sub)
}

// GetMine devuelve la suscripción activa del usuario.
// GET /api/me/subscription
func (h *PackageHandler) GetMine(c *fiber.Ctx) error {
	sub, err := h.uc.GetMine(c.Context(), SessionFrom(c))
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(sub)
}

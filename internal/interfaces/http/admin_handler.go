package http

import (
	"github.com/flowfix/flowfix-api/internal/application/auth"
	"github.com/flowfix/flowfix-api/internal/application/authz"
	"github.com/flowfix/flowfix-api/internal/application/dto"
	"github.com/gofiber/fiber/v2"
)

// AdminHandler operaciones de master_admin: elevación de rol y auditoría.
type AdminHandler struct {
	authUC *auth.AuthUseCase
	authz  *authz.Authorizer
}

// NewAdminHandler construye el handler administrativo.
func NewAdminHandler(authUC *auth.AuthUseCase, az *authz.Authorizer) *AdminHandler {
	return &AdminHandler{authUC: authUC, authz: az}
}

// ElevateRole promueve un client a software_admin.
// POST /api/admin/users/:id/elevate
func (h *AdminHandler) ElevateRole(c *fiber.Ctx) error {
	targetID := c.Params("id")
	if targetID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	user, err := h.authUC.ElevateRole(SessionFrom(c), targetID)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(user)
}

// ListAudit devuelve el rastro de auditoría de overrides.
// GET /api/admin/audit
func (h *AdminHandler) ListAudit(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	logs, err := h.authz.ListAudit(SessionFrom(c), page.Limit, page.Offset)
	if err != nil {
		return mapDomainError(c, err)
	}
	out := make([]*dto.AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, dto.NewAuditLogResponse(l))
	}
	return c.JSON(out)
}

package http

import (
	"github.com/flowfix/flowfix-api/internal/application/dto"
	"github.com/flowfix/flowfix-api/internal/application/lifecycle"
	"github.com/gofiber/fiber/v2"
)

// ProposalHandler maneja las propuestas con precio. Los montos llegan como
// strings decimales y se convierten a centavos en el caso de uso; para
// software_admin las vistas salen con los campos monetarios redactados.
type ProposalHandler struct {
	uc *lifecycle.UseCase
}

// NewProposalHandler construye el handler de propuestas.
func NewProposalHandler(uc *lifecycle.UseCase) *ProposalHandler {
	return &ProposalHandler{uc: uc}
}

// Create crea la propuesta del admin para un proyecto asignado.
// POST /api/projects/:id/proposals
func (h *ProposalHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProposalRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	proposal, err := h.uc.CreateProposal(c.Context(), SessionFrom(c), c.Params("id"), in)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(proposal)
}

// List lista las propuestas del proyecto.
// GET /api/projects/:id/proposals
func (h *ProposalHandler) List(c *fiber.Ctx) error {
	proposals, err := h.uc.ListProposals(c.Context(), SessionFrom(c), c.Params("id"))
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(proposals)
}

// Accept acepta la propuesta pendiente (cliente dueño).
// POST /api/proposals/:id/accept
func (h *ProposalHandler) Accept(c *fiber.Ctx) error {
	proposal, err := h.uc.AcceptProposal(c.Context(), SessionFrom(c), c.Params("id"))
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(proposal)
}

// Reject rechaza la propuesta pendiente (cliente dueño).
// POST /api/proposals/:id/reject
func (h *ProposalHandler) Reject(c *fiber.Ctx) error {
	proposal, err := h.uc.RejectProposal(c.Context(), SessionFrom(c), c.Params("id"))
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(proposal)
}

package http

import (
	"github.com/flowfix/flowfix-api/internal/application/dto"
	"github.com/flowfix/flowfix-api/internal/application/lifecycle"
	"github.com/gofiber/fiber/v2"
)

// ProjectHandler maneja el ciclo de vida de proyectos.
type ProjectHandler struct {
	uc *lifecycle.UseCase
}

// NewProjectHandler construye el handler de proyectos.
func NewProjectHandler(uc *lifecycle.UseCase) *ProjectHandler {
	return &ProjectHandler{uc: uc}
}

// Create registra el intake de un proyecto (cliente).
// POST /api/projects
func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProjectRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	project, err := h.uc.CreateProject(c.Context(), SessionFrom(c), in)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

// List lista los proyectos al alcance del rol.
// GET /api/projects
func (h *ProjectHandler) List(c *fiber.Ctx) error {
	projects, err := h.uc.ListProjects(c.Context(), SessionFrom(c))
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(projects)
}

// GetByID obtiene un proyecto.
// GET /api/projects/:id
func (h *ProjectHandler) GetByID(c *fiber.Ctx) error {
	project, err := h.uc.GetProject(c.Context(), SessionFrom(c), c.Params("id"))
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(project)
}

// Assign asigna un software_admin (solo master_admin).
// POST /api/projects/:id/assign
func (h *ProjectHandler) Assign(c *fiber.Ctx) error {
	var in dto.AssignProjectRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.AdminID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "admin_id requerido"})
	}
	project, err := h.uc.AssignProject(c.Context(), SessionFrom(c), c.Params("id"), in)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(project)
}

// Start marca el inicio del trabajo (admin asignado).
// POST /api/projects/:id/start
func (h *ProjectHandler) Start(c *fiber.Ctx) error {
	project, err := h.uc.StartWork(c.Context(), SessionFrom(c), c.Params("id"))
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(project)
}

// Cancel cancela el proyecto (cliente dueño o master_admin).
// POST /api/projects/:id/cancel
func (h *ProjectHandler) Cancel(c *fiber.Ctx) error {
	project, err := h.uc.CancelProject(c.Context(), SessionFrom(c), c.Params("id"))
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(project)
}

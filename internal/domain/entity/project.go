package entity

import "time"

// Estados del ciclo de vida de un Project. Las transiciones legales
// están definidas en internal/domain/project.
const (
	ProjectSubmitted  = "submitted"
	ProjectAssigned   = "assigned"
	ProjectProposed   = "proposed"
	ProjectAccepted   = "accepted"
	ProjectInProgress = "in_progress"
	ProjectCompleted  = "completed"
	ProjectCancelled  = "cancelled"
)

// Project representa una solicitud de corrección de código de un cliente.
// AssignedAdminID vacío significa sin asignar (solo lo asigna un master_admin).
type Project struct {
	ID              string
	ClientID        string
	AssignedAdminID string
	Title           string
	Description     string
	RepoURL         string
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

package repository

import "github.com/flowfix/flowfix-api/internal/domain/entity"

// ProjectRepository define el puerto de persistencia para Project.
// Todos los cambios de estado son updates condicionales contra el estado
// almacenado: devuelven false (sin error) cuando el estado esperado ya no
// coincide, y el caso de uso lo traduce a ErrInvalidTransition.
type ProjectRepository interface {
	Create(project *entity.Project) error
	GetByID(id string) (*entity.Project, error)
	ListByClient(clientID string) ([]*entity.Project, error)
	ListByAdmin(adminID string) ([]*entity.Project, error)
	ListAll() ([]*entity.Project, error)
	// Assign fija assigned_admin_id y pasa submitted→assigned en un solo update.
	Assign(id, adminID string) (bool, error)
	// UpdateStatus aplica from→to solo si el estado almacenado es from.
	UpdateStatus(id, from, to string) (bool, error)
	// UpdateStatusAny aplica →to si el estado almacenado está en from (cancelación).
	UpdateStatusAny(id string, from []string, to string) (bool, error)
}

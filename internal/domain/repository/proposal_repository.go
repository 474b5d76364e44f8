package repository

import "github.com/flowfix/flowfix-api/internal/domain/entity"

// ProposalRepository define el puerto de persistencia para Proposal.
// Las propuestas reemplazadas se conservan (nunca se borran).
type ProposalRepository interface {
	Create(proposal *entity.Proposal) error
	GetByID(id string) (*entity.Proposal, error)
	// GetPendingByProject devuelve la propuesta pendiente del proyecto, o nil.
	GetPendingByProject(projectID string) (*entity.Proposal, error)
	// GetAcceptedByProject devuelve la propuesta aceptada del proyecto, o nil.
	GetAcceptedByProject(projectID string) (*entity.Proposal, error)
	ListByProject(projectID string) ([]*entity.Proposal, error)
	// UpdateStatus aplica from→to solo si el estado almacenado es from.
	UpdateStatus(id, from, to string) (bool, error)
}

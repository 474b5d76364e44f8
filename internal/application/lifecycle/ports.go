package lifecycle

import (
	"context"

	"github.com/flowfix/flowfix-api/internal/domain/repository"
)

// LifecycleTxRunner ejecuta una función con repos de proyecto y propuesta
// atados a la misma transacción (transición condicional + escritura de
// propuesta de forma atómica).
type LifecycleTxRunner interface {
	RunProposal(ctx context.Context, fn func(
		projectRepo repository.ProjectRepository,
		proposalRepo repository.ProposalRepository,
	) error) error
}

package lifecycle

import (
	"context"
	"time"

	"github.com/flowfix/flowfix-api/internal/application/authz"
	"github.com/flowfix/flowfix-api/internal/application/dto"
	"github.com/flowfix/flowfix-api/internal/application/notify"
	"github.com/flowfix/flowfix-api/internal/domain"
	"github.com/flowfix/flowfix-api/internal/domain/entity"
	"github.com/flowfix/flowfix-api/internal/domain/money"
	"github.com/flowfix/flowfix-api/internal/domain/repository"
	"github.com/google/uuid"
)

// CreateProposal crea la oferta del admin para un proyecto asignado.
// Solo puede existir una propuesta pendiente por proyecto; transición
// assigned→proposed y escritura de la propuesta van en la misma transacción.
func (uc *UseCase) CreateProposal(ctx context.Context, sess *authz.Session, projectID string, in dto.CreateProposalRequest) (*dto.ProposalResponse, error) {
	project, err := uc.loadProject(projectID)
	if err != nil {
		return nil, err
	}
	override, err := uc.authz.AuthorizeProject(sess, project)
	if err != nil {
		return nil, err
	}
	if sess.Role == entity.RoleClient {
		return nil, domain.ErrForbidden // las propuestas las crean los admins
	}

	proposal, err := uc.buildProposal(sess.UserID, projectID, in)
	if err != nil {
		return nil, err
	}

	// Chequeo temprano (la transacción de abajo vuelve a resolver carreras).
	pending, err := uc.proposalRepo.GetPendingByProject(projectID)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, domain.ErrConflictingProposal
	}

	err = uc.txRunner.RunProposal(ctx, func(
		projectRepo repository.ProjectRepository,
		proposalRepo repository.ProposalRepository,
	) error {
		ok, err := projectRepo.UpdateStatus(projectID, entity.ProjectAssigned, entity.ProjectProposed)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInvalidTransition
		}
		return proposalRepo.Create(proposal)
	})
	if err != nil {
		return nil, err
	}

	if override {
		uc.authz.RecordOverride(sess.UserID, "proposal.create", "proposal", proposal.ID, "project "+projectID)
	}
	uc.notifier.Notify(notify.EventProposalCreated, map[string]string{
		"project_id":  projectID,
		"proposal_id": proposal.ID,
		"client_id":   project.ClientID,
	})
	return dto.NewProposalResponse(proposal, uc.authz.CanViewPricing(sess.Role)), nil
}

// AcceptProposal acepta la propuesta pendiente (cliente dueño). Requiere un
// método de pago guardado (pre-autorización); sin él falla con
// ErrPaymentMethodRequired y el cliente debe completar el setup-intent primero.
func (uc *UseCase) AcceptProposal(ctx context.Context, sess *authz.Session, proposalID string) (*dto.ProposalResponse, error) {
	proposal, project, override, err := uc.loadProposalScoped(sess, proposalID)
	if err != nil {
		return nil, err
	}
	if sess.Role == entity.RoleSoftwareAdmin {
		return nil, domain.ErrForbidden // aceptan el cliente o master_admin
	}

	client, err := uc.userRepo.GetByID(project.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil || client.PaymentMethodRef == "" {
		return nil, domain.ErrPaymentMethodRequired
	}

	err = uc.txRunner.RunProposal(ctx, func(
		projectRepo repository.ProjectRepository,
		proposalRepo repository.ProposalRepository,
	) error {
		ok, err := proposalRepo.UpdateStatus(proposalID, entity.ProposalPending, entity.ProposalAccepted)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInvalidTransition
		}
		ok, err = projectRepo.UpdateStatus(project.ID, entity.ProjectProposed, entity.ProjectAccepted)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInvalidTransition
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if override {
		uc.authz.RecordOverride(sess.UserID, "proposal.accept", "proposal", proposalID, "project "+project.ID)
	}
	proposal.Status = entity.ProposalAccepted
	uc.notifier.Notify(notify.EventProposalAccepted, map[string]string{
		"project_id":  project.ID,
		"proposal_id": proposalID,
		"admin_id":    project.AssignedAdminID,
	})
	return dto.NewProposalResponse(proposal, uc.authz.CanViewPricing(sess.Role)), nil
}

// RejectProposal rechaza la propuesta pendiente: el proyecto vuelve a assigned
// y el admin puede presentar una nueva.
func (uc *UseCase) RejectProposal(ctx context.Context, sess *authz.Session, proposalID string) (*dto.ProposalResponse, error) {
	proposal, project, override, err := uc.loadProposalScoped(sess, proposalID)
	if err != nil {
		return nil, err
	}
	if sess.Role == entity.RoleSoftwareAdmin {
		return nil, domain.ErrForbidden
	}

	err = uc.txRunner.RunProposal(ctx, func(
		projectRepo repository.ProjectRepository,
		proposalRepo repository.ProposalRepository,
	) error {
		ok, err := proposalRepo.UpdateStatus(proposalID, entity.ProposalPending, entity.ProposalRejected)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInvalidTransition
		}
		ok, err = projectRepo.UpdateStatus(project.ID, entity.ProjectProposed, entity.ProjectAssigned)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInvalidTransition
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if override {
		uc.authz.RecordOverride(sess.UserID, "proposal.reject", "proposal", proposalID, "project "+project.ID)
	}
	proposal.Status = entity.ProposalRejected
	uc.notifier.Notify(notify.EventProposalRejected, map[string]string{
		"project_id":  project.ID,
		"proposal_id": proposalID,
		"admin_id":    project.AssignedAdminID,
	})
	return dto.NewProposalResponse(proposal, uc.authz.CanViewPricing(sess.Role)), nil
}

// ListProposals lista las propuestas del proyecto (redactadas para software_admin).
func (uc *UseCase) ListProposals(ctx context.Context, sess *authz.Session, projectID string) ([]*dto.ProposalResponse, error) {
	project, err := uc.loadProject(projectID)
	if err != nil {
		return nil, err
	}
	if _, err := uc.authz.AuthorizeProject(sess, project); err != nil {
		return nil, err
	}
	proposals, err := uc.proposalRepo.ListByProject(projectID)
	if err != nil {
		return nil, err
	}
	includePricing := uc.authz.CanViewPricing(sess.Role)
	out := make([]*dto.ProposalResponse, 0, len(proposals))
	for _, p := range proposals {
		out = append(out, dto.NewProposalResponse(p, includePricing))
	}
	return out, nil
}

// buildProposal valida y convierte el request a entidad: montos decimales →
// centavos en la frontera, y el invariante de exclusividad de precios.
func (uc *UseCase) buildProposal(adminID, projectID string, in dto.CreateProposalRequest) (*entity.Proposal, error) {
	now := time.Now()
	proposal := &entity.Proposal{
		ID:          uuid.New().String(),
		ProjectID:   projectID,
		AdminID:     adminID,
		PricingType: in.PricingType,
		Notes:       in.Notes,
		Status:      entity.ProposalPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	switch in.PricingType {
	case entity.PricingHourly:
		if in.HourlyRate == "" || in.EstimatedHours == "" || in.FixFee != "" {
			return nil, domain.ErrValidation
		}
		rate, err := money.ParseCents(in.HourlyRate)
		if err != nil {
			return nil, err
		}
		hours, err := money.ParseHours(in.EstimatedHours)
		if err != nil {
			return nil, err
		}
		proposal.HourlyRateCents = rate
		proposal.EstimatedHours = hours
	case entity.PricingFlatFee:
		if in.FixFee == "" || in.HourlyRate != "" || in.EstimatedHours != "" {
			return nil, domain.ErrValidation
		}
		fee, err := money.ParseCents(in.FixFee)
		if err != nil {
			return nil, err
		}
		proposal.FixFeeCents = fee
	default:
		return nil, domain.ErrValidation
	}
	proposal.EstimatedHours = proposal.EstimatedHours.Truncate(2)
	if !proposal.PricingConsistent() {
		return nil, domain.ErrValidation
	}
	return proposal, nil
}

// loadProposalScoped resuelve propuesta + proyecto y autoriza la sesión.
func (uc *UseCase) loadProposalScoped(sess *authz.Session, proposalID string) (*entity.Proposal, *entity.Project, bool, error) {
	proposal, err := uc.proposalRepo.GetByID(proposalID)
	if err != nil {
		return nil, nil, false, err
	}
	if proposal == nil {
		return nil, nil, false, domain.ErrNotFound
	}
	project, err := uc.loadProject(proposal.ProjectID)
	if err != nil {
		return nil, nil, false, err
	}
	override, err := uc.authz.AuthorizeProject(sess, project)
	if err != nil {
		return nil, nil, false, err
	}
	return proposal, project, override, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/flowfix/flowfix-api/internal/domain"
	"github.com/flowfix/flowfix-api/internal/domain/entity"
	"github.com/flowfix/flowfix-api/internal/domain/repository"
	"github.com/jackc/pgx/v5"
)

var _ repository.ProposalRepository = (*ProposalRepo)(nil)

// ProposalRepo implementación de ProposalRepository sobre PostgreSQL (usable
// con pool o tx). El índice único parcial sobre (project_id) WHERE status =
// 'pending' respalda el invariante de una sola propuesta pendiente por
// proyecto frente a carreras.
type ProposalRepo struct {
	q Querier
}

// NewProposalRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProposalRepository(q Querier) *ProposalRepo {
	return &ProposalRepo{q: q}
}

const proposalColumns = `id, project_id, admin_id, pricing_type, hourly_rate_cents,
	estimated_hours, fix_fee_cents, notes, status, created_at, updated_at`

// Create persiste una propuesta nueva (estado pending).
func (r *ProposalRepo) Create(proposal *entity.Proposal) error {
	query := `
		INSERT INTO proposals (id, project_id, admin_id, pricing_type, hourly_rate_cents,
			estimated_hours, fix_fee_cents, notes, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		proposal.ID, proposal.ProjectID, proposal.AdminID, proposal.PricingType,
		proposal.HourlyRateCents, proposal.EstimatedHours, proposal.FixFeeCents,
		proposal.Notes, proposal.Status, proposal.CreatedAt, proposal.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflictingProposal
		}
		return fmt.Errorf("insert proposal: %w", err)
	}
	return nil
}

// GetByID obtiene una propuesta por ID, o nil si no existe.
func (r *ProposalRepo) GetByID(id string) (*entity.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE id = $1`
	return r.scanOne(query, id)
}

// GetPendingByProject devuelve la propuesta pendiente del proyecto, o nil.
func (r *ProposalRepo) GetPendingByProject(projectID string) (*entity.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE project_id = $1 AND status = $2 LIMIT 1`
	return r.scanOne(query, projectID, entity.ProposalPending)
}

// GetAcceptedByProject devuelve la propuesta aceptada del proyecto, o nil.
func (r *ProposalRepo) GetAcceptedByProject(projectID string) (*entity.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE project_id = $1 AND status = $2 LIMIT 1`
	return r.scanOne(query, projectID, entity.ProposalAccepted)
}

// ListByProject lista las propuestas del proyecto (las reemplazadas se conservan).
func (r *ProposalRepo) ListByProject(projectID string) ([]*entity.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE project_id = $1 ORDER BY created_at DESC`
	rows, err := r.q.Query(context.Background(), query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	defer rows.Close()
	var list []*entity.Proposal
	for rows.Next() {
		var p entity.Proposal
		if err := rows.Scan(&p.ID, &p.ProjectID, &p.AdminID, &p.PricingType, &p.HourlyRateCents,
			&p.EstimatedHours, &p.FixFeeCents, &p.Notes, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan proposal: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// UpdateStatus aplica from→to solo si el estado almacenado es from.
func (r *ProposalRepo) UpdateStatus(id, from, to string) (bool, error) {
	query := `UPDATE proposals SET status = $3, updated_at = now() WHERE id = $1 AND status = $2`
	tag, err := r.q.Exec(context.Background(), query, id, from, to)
	if err != nil {
		return false, fmt.Errorf("update proposal status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ProposalRepo) scanOne(query string, args ...any) (*entity.Proposal, error) {
	var p entity.Proposal
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&p.ID, &p.ProjectID, &p.AdminID, &p.PricingType, &p.HourlyRateCents,
		&p.EstimatedHours, &p.FixFeeCents, &p.Notes, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get proposal: %w", err)
	}
	return &p, nil
}

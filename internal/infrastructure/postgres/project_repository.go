package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/flowfix/flowfix-api/internal/domain/entity"
	"github.com/flowfix/flowfix-api/internal/domain/repository"
	"github.com/jackc/pgx/v5"
)

var _ repository.ProjectRepository = (*ProjectRepo)(nil)

// ProjectRepo implementación de ProjectRepository sobre PostgreSQL (usable con pool o tx).
// Las transiciones de estado son updates condicionales: WHERE status = <esperado>
// y RowsAffected decide. Dos escritores concurrentes desde el mismo estado
// resuelven en exactamente un éxito.
type ProjectRepo struct {
	q Querier
}

// NewProjectRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProjectRepository(q Querier) *ProjectRepo {
	return &ProjectRepo{q: q}
}

const projectColumns = `id, client_id, assigned_admin_id, title, description, repo_url,
	status, created_at, updated_at`

// Create persiste un proyecto nuevo (estado submitted).
func (r *ProjectRepo) Create(project *entity.Project) error {
	query := `
		INSERT INTO projects (id, client_id, assigned_admin_id, title, description, repo_url,
			status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		project.ID, project.ClientID, nullIfEmpty(project.AssignedAdminID),
		project.Title, project.Description, project.RepoURL,
		project.Status, project.CreatedAt, project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

// GetByID obtiene un proyecto por ID, o nil si no existe.
func (r *ProjectRepo) GetByID(id string) (*entity.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	var p entity.Project
	var adminID *string
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&p.ID, &p.ClientID, &adminID, &p.Title, &p.Description, &p.RepoURL,
		&p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	p.AssignedAdminID = emptyIfNull(adminID)
	return &p, nil
}

// ListByClient lista los proyectos de un cliente.
func (r *ProjectRepo) ListByClient(clientID string) ([]*entity.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE client_id = $1 ORDER BY created_at DESC`
	return r.list(query, clientID)
}

// ListByAdmin lista los proyectos asignados a un admin.
func (r *ProjectRepo) ListByAdmin(adminID string) ([]*entity.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE assigned_admin_id = $1 ORDER BY created_at DESC`
	return r.list(query, adminID)
}

// ListAll lista todos los proyectos (master_admin).
func (r *ProjectRepo) ListAll() ([]*entity.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at DESC`
	return r.list(query)
}

// Assign fija assigned_admin_id y pasa submitted→assigned en un solo update
// condicional. false si el proyecto ya no estaba en submitted.
func (r *ProjectRepo) Assign(id, adminID string) (bool, error) {
	query := `
		UPDATE projects SET assigned_admin_id = $2, status = $3, updated_at = now()
		WHERE id = $1 AND status = $4`
	tag, err := r.q.Exec(context.Background(), query, id, adminID, entity.ProjectAssigned, entity.ProjectSubmitted)
	if err != nil {
		return false, fmt.Errorf("assign project: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateStatus aplica from→to solo si el estado almacenado es from.
func (r *ProjectRepo) UpdateStatus(id, from, to string) (bool, error) {
	query := `UPDATE projects SET status = $3, updated_at = now() WHERE id = $1 AND status = $2`
	tag, err := r.q.Exec(context.Background(), query, id, from, to)
	if err != nil {
		return false, fmt.Errorf("update project status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateStatusAny aplica →to si el estado almacenado está en from (cancelación).
func (r *ProjectRepo) UpdateStatusAny(id string, from []string, to string) (bool, error) {
	query := `UPDATE projects SET status = $3, updated_at = now() WHERE id = $1 AND status = ANY($2)`
	tag, err := r.q.Exec(context.Background(), query, id, from, to)
	if err != nil {
		return false, fmt.Errorf("update project status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ProjectRepo) list(query string, args ...any) ([]*entity.Project, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()
	var list []*entity.Project
	for rows.Next() {
		var p entity.Project
		var adminID *string
		if err := rows.Scan(&p.ID, &p.ClientID, &adminID, &p.Title, &p.Description, &p.RepoURL,
			&p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		p.AssignedAdminID = emptyIfNull(adminID)
		list = append(list, &p)
	}
	return list, rows.Err()
}

package lifecycle

import (
	"context"
	"time"

	"github.com/flowfix/flowfix-api/internal/application/authz"
	"github.com/flowfix/flowfix-api/internal/application/dto"
	"github.com/flowfix/flowfix-api/internal/application/notify"
	"github.com/flowfix/flowfix-api/internal/domain"
	"github.com/flowfix/flowfix-api/internal/domain/entity"
	projectdomain "github.com/flowfix/flowfix-api/internal/domain/project"
	"github.com/flowfix/flowfix-api/internal/domain/repository"
	"github.com/google/uuid"
)

// UseCase implementa el ciclo de vida de proyectos: intake, asignación,
// inicio de trabajo y cancelación. Toda transición es un update condicional
// contra el estado almacenado; dos intentos concurrentes desde el mismo
// estado resuelven en exactamente un éxito y un ErrInvalidTransition.
type UseCase struct {
	projectRepo  repository.ProjectRepository
	proposalRepo repository.ProposalRepository
	userRepo     repository.UserRepository
	txRunner     LifecycleTxRunner
	authz        *authz.Authorizer
	notifier     notify.Notifier
}

// NewUseCase construye el caso de uso de ciclo de vida.
func NewUseCase(
	projectRepo repository.ProjectRepository,
	proposalRepo repository.ProposalRepository,
	userRepo repository.UserRepository,
	txRunner LifecycleTxRunner,
	az *authz.Authorizer,
	notifier notify.Notifier,
) *UseCase {
	return &UseCase{
		projectRepo:  projectRepo,
		proposalRepo: proposalRepo,
		userRepo:     userRepo,
		txRunner:     txRunner,
		authz:        az,
		notifier:     notifier,
	}
}

// CreateProject registra el intake de un proyecto. Solo clientes.
func (uc *UseCase) CreateProject(ctx context.Context, sess *authz.Session, in dto.CreateProjectRequest) (*dto.ProjectResponse, error) {
	if err := uc.authz.RequireRole(sess, entity.RoleClient); err != nil {
		return nil, err
	}
	if in.Title == "" || in.Description == "" {
		return nil, domain.ErrValidation
	}
	now := time.Now()
	project := &entity.Project{
		ID:          uuid.New().String(),
		ClientID:    sess.UserID,
		Title:       in.Title,
		Description: in.Description,
		RepoURL:     in.RepoURL,
		Status:      entity.ProjectSubmitted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.projectRepo.Create(project); err != nil {
		return nil, err
	}
	return toProjectResponse(project), nil
}

// GetProject devuelve un proyecto si la sesión tiene acceso según su rol.
func (uc *UseCase) GetProject(ctx context.Context, sess *authz.Session, id string) (*dto.ProjectResponse, error) {
	project, err := uc.loadProject(id)
	if err != nil {
		return nil, err
	}
	if _, err := uc.authz.AuthorizeProject(sess, project); err != nil {
		return nil, err
	}
	return toProjectResponse(project), nil
}

// ListProjects lista los proyectos al alcance del rol: cliente los propios,
// software_admin los asignados, master_admin todos.
func (uc *UseCase) ListProjects(ctx context.Context, sess *authz.Session) ([]*dto.ProjectResponse, error) {
	if err := uc.authz.Authenticated(sess); err != nil {
		return nil, err
	}
	var (
		projects []*entity.Project
		err      error
	)
	switch sess.Role {
	case entity.RoleClient:
		projects, err = uc.projectRepo.ListByClient(sess.UserID)
	case entity.RoleSoftwareAdmin:
		projects, err = uc.projectRepo.ListByAdmin(sess.UserID)
	case entity.RoleMasterAdmin:
		projects, err = uc.projectRepo.ListAll()
	default:
		return nil, domain.ErrForbidden
	}
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ProjectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, toProjectResponse(p))
	}
	return out, nil
}

// AssignProject asigna un software_admin a un proyecto (solo master_admin) y
// pasa submitted→assigned. La acción queda en la auditoría cuando el master
// actúa fuera de su alcance directo, que es el caso normal.
func (uc *UseCase) AssignProject(ctx context.Context, sess *authz.Session, projectID string, in dto.AssignProjectRequest) (*dto.ProjectResponse, error) {
	if err := uc.authz.RequireRole(sess, entity.RoleMasterAdmin); err != nil {
		return nil, err
	}
	project, err := uc.loadProject(projectID)
	if err != nil {
		return nil, err
	}
	admin, err := uc.userRepo.GetByID(in.AdminID)
	if err != nil {
		return nil, err
	}
	if admin == nil || (admin.Role != entity.RoleSoftwareAdmin && admin.Role != entity.RoleMasterAdmin) {
		return nil, domain.ErrValidation
	}
	ok, err := uc.projectRepo.Assign(projectID, in.AdminID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidTransition
	}
	if override, _ := uc.authz.AuthorizeProject(sess, project); override {
		uc.authz.RecordOverride(sess.UserID, "project.assign", "project", projectID, "admin "+in.AdminID)
	}
	project.AssignedAdminID = in.AdminID
	project.Status = entity.ProjectAssigned
	uc.notifier.Notify(notify.EventProjectAssigned, map[string]string{
		"project_id": projectID,
		"admin_id":   in.AdminID,
		"client_id":  project.ClientID,
	})
	return toProjectResponse(project), nil
}

// StartWork marca el inicio del trabajo (admin asignado): accepted→in_progress.
func (uc *UseCase) StartWork(ctx context.Context, sess *authz.Session, projectID string) (*dto.ProjectResponse, error) {
	project, err := uc.loadProject(projectID)
	if err != nil {
		return nil, err
	}
	override, err := uc.authz.AuthorizeProject(sess, project)
	if err != nil {
		return nil, err
	}
	if sess.Role == entity.RoleClient {
		return nil, domain.ErrForbidden // el inicio lo marca el admin
	}
	ok, err := uc.projectRepo.UpdateStatus(projectID, entity.ProjectAccepted, entity.ProjectInProgress)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidTransition
	}
	if override {
		uc.authz.RecordOverride(sess.UserID, "project.start", "project", projectID, "")
	}
	project.Status = entity.ProjectInProgress
	uc.notifier.Notify(notify.EventProjectStarted, map[string]string{
		"project_id": projectID,
		"client_id":  project.ClientID,
	})
	return toProjectResponse(project), nil
}

// CancelProject cancela desde cualquier estado no terminal (cliente dueño o
// master_admin). Cancelar un proyecto completado retorna ErrInvalidTransition.
func (uc *UseCase) CancelProject(ctx context.Context, sess *authz.Session, projectID string) (*dto.ProjectResponse, error) {
	project, err := uc.loadProject(projectID)
	if err != nil {
		return nil, err
	}
	override, err := uc.authz.AuthorizeProject(sess, project)
	if err != nil {
		return nil, err
	}
	if sess.Role == entity.RoleSoftwareAdmin {
		return nil, domain.ErrForbidden // cancelan el cliente o master_admin
	}
	ok, err := uc.projectRepo.UpdateStatusAny(projectID, projectdomain.CancellableStates(), entity.ProjectCancelled)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidTransition
	}
	if override {
		uc.authz.RecordOverride(sess.UserID, "project.cancel", "project", projectID, "")
	}
	project.Status = entity.ProjectCancelled
	uc.notifier.Notify(notify.EventProjectCancelled, map[string]string{
		"project_id": projectID,
		"client_id":  project.ClientID,
		"admin_id":   project.AssignedAdminID,
	})
	return toProjectResponse(project), nil
}

// loadProject lee un proyecto o retorna ErrNotFound.
func (uc *UseCase) loadProject(id string) (*entity.Project, error) {
	project, err := uc.projectRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, domain.ErrNotFound
	}
	return project, nil
}

func toProjectResponse(p *entity.Project) *dto.ProjectResponse {
	return &dto.ProjectResponse{
		ID:              p.ID,
		ClientID:        p.ClientID,
		AssignedAdminID: p.AssignedAdminID,
		Title:           p.Title,
		Description:     p.Description,
		RepoURL:         p.RepoURL,
		Status:          p.Status,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

package messaging

import (
	"context"
	"strings"
	"time"

	"github.com/flowfix/flowfix-api/internal/application/authz"
	"github.com/flowfix/flowfix-api/internal/application/dto"
	"github.com/flowfix/flowfix-api/internal/domain"
	"github.com/flowfix/flowfix-api/internal/domain/entity"
	"github.com/flowfix/flowfix-api/internal/domain/repository"
	"github.com/google/uuid"
)

// UseCase implementa el hilo de mensajes por proyecto. El alcance es el mismo
// que el del proyecto: cliente dueño, admin asignado o master_admin.
type UseCase struct {
	messageRepo repository.MessageRepository
	projectRepo repository.ProjectRepository
	authz       *authz.Authorizer
}

// NewUseCase construye el caso de uso de mensajería.
func NewUseCase(messageRepo repository.MessageRepository, projectRepo repository.ProjectRepository, az *authz.Authorizer) *UseCase {
	return &UseCase{messageRepo: messageRepo, projectRepo: projectRepo, authz: az}
}

// PostMessage publica un mensaje en el hilo del proyecto.
func (uc *UseCase) PostMessage(ctx context.Context, sess *authz.Session, projectID string, in dto.PostMessageRequest) (*dto.MessageResponse, error) {
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, domain.ErrValidation
	}
	override, err := uc.authorizeProject(sess, projectID)
	if err != nil {
		return nil, err
	}
	message := &entity.Message{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		SenderID:  sess.UserID,
		Body:      body,
		CreatedAt: time.Now(),
	}
	if err := uc.messageRepo.Create(message); err != nil {
		return nil, err
	}
	if override {
		uc.authz.RecordOverride(sess.UserID, "message.post", "project", projectID, "")
	}
	return toMessageResponse(message), nil
}

// ListMessages lista el hilo en orden cronológico.
func (uc *UseCase) ListMessages(ctx context.Context, sess *authz.Session, projectID string) ([]*dto.MessageResponse, error) {
	if _, err := uc.authorizeProject(sess, projectID); err != nil {
		return nil, err
	}
	messages, err := uc.messageRepo.ListByProject(projectID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.MessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, toMessageResponse(m))
	}
	return out, nil
}

func (uc *UseCase) authorizeProject(sess *authz.Session, projectID string) (bool, error) {
	project, err := uc.projectRepo.GetByID(projectID)
	if err != nil {
		return false, err
	}
	if project == nil {
		return false, domain.ErrNotFound
	}
	return uc.authz.AuthorizeProject(sess, project)
}

func toMessageResponse(m *entity.Message) *dto.MessageResponse {
	return &dto.MessageResponse{
		ID:        m.ID,
		ProjectID: m.ProjectID,
		SenderID:  m.SenderID,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
	}
}

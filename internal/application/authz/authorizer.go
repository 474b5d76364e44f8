package authz

import (
	"time"

	"github.com/flowfix/flowfix-api/internal/domain"
	"github.com/flowfix/flowfix-api/internal/domain/entity"
	"github.com/flowfix/flowfix-api/internal/domain/repository"
	"github.com/flowfix/flowfix-api/pkg/logger"
	"github.com/google/uuid"
)

// Session es la sesión resuelta por el middleware de auth: {userId, role}.
// nil (o UserID vacío) significa no autenticado.
type Session struct {
	UserID string
	Role   string
}

// Authorizer centraliza la precedencia de autorización por rol:
//  1. sin sesión → ErrUnauthenticated
//  2. master_admin → permitido siempre; fuera de su alcance directo es un
//     override que debe auditarse en mutaciones
//  3. software_admin → solo proyectos con assigned_admin_id == self; además la
//     vista de propuestas va con precios redactados (CanViewPricing)
//  4. client → solo proyectos con client_id == self
//  5. resto → ErrForbidden
type Authorizer struct {
	auditRepo repository.AuditLogRepository
	log       *logger.Logger
}

// New construye el autorizador.
func New(auditRepo repository.AuditLogRepository, log *logger.Logger) *Authorizer {
	return &Authorizer{auditRepo: auditRepo, log: log}
}

// Authenticated valida que exista sesión.
func (a *Authorizer) Authenticated(sess *Session) error {
	if sess == nil || sess.UserID == "" {
		return domain.ErrUnauthenticated
	}
	return nil
}

// RequireRole valida sesión más pertenencia del rol al conjunto permitido.
func (a *Authorizer) RequireRole(sess *Session, roles ...string) error {
	if err := a.Authenticated(sess); err != nil {
		return err
	}
	for _, r := range roles {
		if sess.Role == r {
			return nil
		}
	}
	return domain.ErrForbidden
}

// AuthorizeProject evalúa el acceso de la sesión a un proyecto.
// override=true cuando un master_admin actúa fuera de su alcance directo:
// el caller debe registrar la mutación con RecordOverride.
func (a *Authorizer) AuthorizeProject(sess *Session, p *entity.Project) (override bool, err error) {
	if err := a.Authenticated(sess); err != nil {
		return false, err
	}
	switch sess.Role {
	case entity.RoleMasterAdmin:
		if p.ClientID == sess.UserID || p.AssignedAdminID == sess.UserID {
			return false, nil
		}
		return true, nil
	case entity.RoleSoftwareAdmin:
		if p.AssignedAdminID == sess.UserID {
			return false, nil
		}
		return false, domain.ErrForbidden
	case entity.RoleClient:
		if p.ClientID == sess.UserID {
			return false, nil
		}
		return false, domain.ErrForbidden
	default:
		return false, domain.ErrForbidden
	}
}

// CanViewPricing indica si el rol puede ver los campos monetarios de una
// propuesta. software_admin no: la redacción es de contenido, no solo de acceso.
func (a *Authorizer) CanViewPricing(role string) bool {
	return role != entity.RoleSoftwareAdmin
}

// RecordOverride persiste una acción de override de master_admin en el rastro
// de auditoría. Un fallo de persistencia se registra y no bloquea la acción.
func (a *Authorizer) RecordOverride(actorID, action, targetType, targetID, detail string) {
	entry := &entity.AuditLog{
		ID:         uuid.New().String(),
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Detail:     detail,
		CreatedAt:  time.Now(),
	}
	if err := a.auditRepo.Record(entry); err != nil {
		a.log.Error().Err(err).
			Str("actor", actorID).
			Str("action", action).
			Str("target", targetID).
			Msg("fallo al registrar auditoría de override")
	}
}

// ListAudit devuelve el rastro de auditoría (solo master_admin).
func (a *Authorizer) ListAudit(sess *Session, limit, offset int) ([]*entity.AuditLog, error) {
	if err := a.RequireRole(sess, entity.RoleMasterAdmin); err != nil {
		return nil, err
	}
	return a.auditRepo.List(limit, offset)
}

package dto

import (
	"time"

	"github.com/flowfix/flowfix-api/internal/domain/entity"
)

// AuditLogResponse vista de una entrada del rastro de auditoría.
type AuditLogResponse struct {
	ID         string    `json:"id"`
	ActorID    string    `json:"actor_id"`
	Action     string    `json:"action"`
	TargetType string    `json:"target_type"`
	TargetID   string    `json:"target_id"`
	Detail     string    `json:"detail,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewAuditLogResponse mapea la entidad a la vista.
func NewAuditLogResponse(l *entity.AuditLog) *AuditLogResponse {
	return &AuditLogResponse{
		ID:         l.ID,
		ActorID:    l.ActorID,
		Action:     l.Action,
		TargetType: l.TargetType,
		TargetID:   l.TargetID,
		Detail:     l.Detail,
		CreatedAt:  l.CreatedAt,
	}
}

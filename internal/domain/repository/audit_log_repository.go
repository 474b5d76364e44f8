package repository

import "github.com/flowfix/flowfix-api/internal/domain/entity"

// AuditLogRepository define el puerto de persistencia del rastro de auditoría
// de overrides de master_admin.
type AuditLogRepository interface {
	Record(log *entity.AuditLog) error
	List(limit, offset int) ([]*entity.AuditLog, error)
}

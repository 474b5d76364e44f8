package entity

import "time"

// AuditLog registra acciones de master_admin fuera de su alcance directo
// (override): actor, acción, recurso objetivo y momento.
type AuditLog struct {
	ID         string
	ActorID    string
	Action     string
	TargetType string
	TargetID   string
	Detail     string
	CreatedAt  time.Time
}

package repository

import "github.com/flowfix/flowfix-api/internal/domain/entity"

// UserRepository define el puerto de persistencia para User.
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id string) (*entity.User, error)
	FindByEmail(email string) (*entity.User, error)
	// UpdateRole cambia el rol (solo vía flujo de elevación de master_admin).
	UpdateRole(id, role string) error
	// UpdatePaymentMethod guarda las referencias opacas del procesador de pagos.
	UpdatePaymentMethod(id, customerRef, methodRef string) error
}

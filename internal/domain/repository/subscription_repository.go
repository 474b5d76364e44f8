package repository

import "github.com/flowfix/flowfix-api/internal/domain/entity"

// SubscriptionRepository define el puerto de persistencia para paquetes y
// suscripciones (extensión de suscripción mensual por horas).
type SubscriptionRepository interface {
	ListPackages() ([]*entity.SubscriptionPackage, error)
	GetPackage(id string) (*entity.SubscriptionPackage, error)
	CreateSubscription(sub *entity.Subscription) error
	// GetActiveByUser devuelve la suscripción activa del usuario, o nil.
	GetActiveByUser(userID string) (*entity.Subscription, error)
	// UpdateUsage persiste hours_used y el período vigente (acumulación o reinicio).
	UpdateUsage(sub *entity.Subscription) error
}

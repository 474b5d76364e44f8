package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una Subscription.
const (
	SubscriptionActive    = "active"
	SubscriptionCancelled = "cancelled"
)

// SubscriptionPackage es un plan mensual con una asignación de horas.
type SubscriptionPackage struct {
	ID            string
	Name          string
	Description   string
	PriceCents    int64
	HoursIncluded decimal.Decimal
	Active        bool
	CreatedAt     time.Time
}

// Subscription registra la suscripción de un cliente a un paquete.
// HoursUsed acumula dentro del período vigente y se reinicia al rotar el período.
type Subscription struct {
	ID          string
	UserID      string
	PackageID   string
	HoursUsed   decimal.Decimal
	PeriodStart time.Time
	PeriodEnd   time.Time
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

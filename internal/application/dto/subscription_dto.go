package dto

import (
	"time"

	"github.com/flowfix/flowfix-api/internal/domain/entity"
	"github.com/flowfix/flowfix-api/internal/domain/money"
)

// PackageResponse vista de un paquete de suscripción.
type PackageResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Price         string `json:"price"`
	HoursIncluded string `json:"hours_included"`
}

// NewPackageResponse mapea la entidad a la vista.
func NewPackageResponse(p *entity.SubscriptionPackage) *PackageResponse {
	return &PackageResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         money.FormatCents(p.PriceCents),
		HoursIncluded: p.HoursIncluded.String(),
	}
}

// SubscriptionResponse vista de la suscripción del usuario.
type SubscriptionResponse struct {
	ID          string    `json:"id"`
	PackageID   string    `json:"package_id"`
	HoursUsed   string    `json:"hours_used"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	Status      string    `json:"status"`
}

// NewSubscriptionResponse mapea la entidad a la vista.
func NewSubscriptionResponse(s *entity.Subscription) *SubscriptionResponse {
	return &SubscriptionResponse{
		ID:          s.ID,
		PackageID:   s.PackageID,
		HoursUsed:   s.HoursUsed.String(),
		PeriodStart: s.PeriodStart,
		PeriodEnd:   s.PeriodEnd,
		Status:      s.Status,
	}
}

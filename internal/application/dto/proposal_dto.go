package dto

import (
	"time"

	"github.com/flowfix/flowfix-api/internal/domain/entity"
	"github.com/flowfix/flowfix-api/internal/domain/money"
)

// CreateProposalRequest oferta del admin. Los montos llegan como strings
// decimales y se convierten a centavos en la frontera (nunca float).
type CreateProposalRequest struct {
	PricingType    string `json:"pricing_type"` // hourly | flat_fee
	HourlyRate     string `json:"hourly_rate,omitempty"`
	EstimatedHours string `json:"estimated_hours,omitempty"`
	FixFee         string `json:"fix_fee,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

// ProposalResponse vista de una propuesta. Para software_admin los campos
// monetarios van redactados (omitidos), no solo denegados: ver NewProposalResponse.
type ProposalResponse struct {
	ID             string    `json:"id"`
	ProjectID      string    `json:"project_id"`
	AdminID        string    `json:"admin_id"`
	PricingType    string    `json:"pricing_type,omitempty"`
	HourlyRate     string    `json:"hourly_rate,omitempty"`
	EstimatedHours string    `json:"estimated_hours,omitempty"`
	FixFee         string    `json:"fix_fee,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	Status         string    `json:"status"`
	Redacted       bool      `json:"redacted,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewProposalResponse mapea la entidad a la vista. includePricing=false produce
// la vista redactada para software_admin: sin tarifa, horas estimadas ni fee.
func NewProposalResponse(p *entity.Proposal, includePricing bool) *ProposalResponse {
	resp := &ProposalResponse{
		ID:        p.ID,
		ProjectID: p.ProjectID,
		AdminID:   p.AdminID,
		Notes:     p.Notes,
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
	}
	if !includePricing {
		resp.Redacted = true
		return resp
	}
	resp.PricingType = p.PricingType
	switch p.PricingType {
	case entity.PricingHourly:
		resp.HourlyRate = money.FormatCents(p.HourlyRateCents)
		resp.EstimatedHours = p.EstimatedHours.String()
	case entity.PricingFlatFee:
		resp.FixFee = money.FormatCents(p.FixFeeCents)
	}
	return resp
}

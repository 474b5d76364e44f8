package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de precio de una Proposal.
const (
	PricingHourly  = "hourly"
	PricingFlatFee = "flat_fee"
)

// Estados de una Proposal.
const (
	ProposalPending  = "pending"
	ProposalAccepted = "accepted"
	ProposalRejected = "rejected"
)

// Proposal es una oferta con precio de un admin para un proyecto.
// Invariante: exactamente uno de {HourlyRateCents+EstimatedHours} o {FixFeeCents}
// está poblado, acorde a PricingType. Los montos se guardan en centavos enteros;
// las horas estimadas como NUMERIC (decimal).
type Proposal struct {
	ID              string
	ProjectID       string
	AdminID         string
	PricingType     string
	HourlyRateCents int64
	EstimatedHours  decimal.Decimal
	FixFeeCents     int64
	Notes           string
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PricingConsistent verifica el invariante de campos de precio según PricingType.
func (p *Proposal) PricingConsistent() bool {
	switch p.PricingType {
	case PricingHourly:
		return p.HourlyRateCents > 0 && p.EstimatedHours.GreaterThan(decimal.Zero) && p.FixFeeCents == 0
	case PricingFlatFee:
		return p.FixFeeCents > 0 && p.HourlyRateCents == 0 && p.EstimatedHours.IsZero()
	}
	return false
}

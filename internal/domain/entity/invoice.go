package entity

import "time"

// Estados de una Invoice.
const (
	InvoicePending = "pending"
	InvoicePaid    = "paid"
	InvoiceFailed  = "failed"
)

// Invoice representa un cobro por un proyecto. AmountCents se calcula una sola
// vez al crearla (fee fijo o horas sin facturar × tarifa) y es inmutable;
// solo Status/PaidAt cambian después, vía update condicional.
type Invoice struct {
	ID               string
	ProjectID        string
	ProposalID       string
	AmountCents      int64
	Status           string
	PaymentIntentRef string // referencia opaca del intent en el procesador
	PaidAt           *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimeEntry registra horas trabajadas por un admin en un proyecto.
// Es append-only: nunca se edita ni se borra. InvoiceID vacío significa
// horas aún no facturadas; al facturar se estampa el ID de la factura
// (marca de "facturado hasta aquí").
type TimeEntry struct {
	ID         string
	ProjectID  string
	AdminID    string
	HoursSpent decimal.Decimal // horas fraccionales, no centavos
	Note       string
	InvoiceID  string
	LoggedAt   time.Time
	CreatedAt  time.Time
}

package dto

import (
	"time"

	"github.com/flowfix/flowfix-api/internal/domain/entity"
	"github.com/flowfix/flowfix-api/internal/domain/money"
)

// LogTimeRequest registro de horas (admin asignado). Horas como string decimal.
type LogTimeRequest struct {
	HoursSpent string `json:"hours_spent"`
	Note       string `json:"note,omitempty"`
}

// TimeEntryResponse vista de una entrada de horas.
type TimeEntryResponse struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"project_id"`
	AdminID    string    `json:"admin_id"`
	HoursSpent string    `json:"hours_spent"`
	Note       string    `json:"note,omitempty"`
	Billed     bool      `json:"billed"`
	LoggedAt   time.Time `json:"logged_at"`
}

// NewTimeEntryResponse mapea la entidad a la vista.
func NewTimeEntryResponse(e *entity.TimeEntry) *TimeEntryResponse {
	return &TimeEntryResponse{
		ID:         e.ID,
		ProjectID:  e.ProjectID,
		AdminID:    e.AdminID,
		HoursSpent: e.HoursSpent.String(),
		Note:       e.Note,
		Billed:     e.InvoiceID != "",
		LoggedAt:   e.LoggedAt,
	}
}

// InvoiceResponse vista de una factura (montos en centavos y formateados).
type InvoiceResponse struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	ProposalID  string     `json:"proposal_id"`
	AmountCents int64      `json:"amount_cents"`
	Amount      string     `json:"amount"`
	Status      string     `json:"status"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewInvoiceResponse mapea la entidad a la vista.
func NewInvoiceResponse(inv *entity.Invoice) *InvoiceResponse {
	return &InvoiceResponse{
		ID:          inv.ID,
		ProjectID:   inv.ProjectID,
		ProposalID:  inv.ProposalID,
		AmountCents: inv.AmountCents,
		Amount:      money.FormatCents(inv.AmountCents),
		Status:      inv.Status,
		PaidAt:      inv.PaidAt,
		CreatedAt:   inv.CreatedAt,
	}
}

// PaymentIntentResponse resultado de crear un intent. RequiresSetup=true señala
// "procesador no configurado" (falta credencial), distinto de un rechazo.
type PaymentIntentResponse struct {
	ClientSecret  string `json:"client_secret,omitempty"`
	RequiresSetup bool   `json:"requires_setup,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

// CompleteProjectResponse resultado de marcar completo: proyecto más la factura
// creada en el cierre (nil si no había nada que facturar).
type CompleteProjectResponse struct {
	Project *ProjectResponse `json:"project"`
	Invoice *InvoiceResponse `json:"invoice,omitempty"`
}

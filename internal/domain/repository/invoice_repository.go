package repository

import "github.com/flowfix/flowfix-api/internal/domain/entity"

// InvoiceRepository define el puerto de persistencia para Invoice.
// El monto es inmutable tras la creación; solo status/paid_at transicionan,
// siempre con update condicional (idempotencia de webhooks).
type InvoiceRepository interface {
	Create(invoice *entity.Invoice) error
	GetByID(id string) (*entity.Invoice, error)
	ListByProject(projectID string) ([]*entity.Invoice, error)
	CountPendingByProject(projectID string) (int, error)
	// SetPaymentIntent guarda la referencia del intent creado en el procesador.
	SetPaymentIntent(id, intentRef string) error
	// MarkPaid pasa pending→paid y estampa paid_at. false si ya no estaba pending.
	MarkPaid(id string) (bool, error)
	// MarkFailed pasa pending→failed. false si ya no estaba pending.
	MarkFailed(id string) (bool, error)
}

package billing

import (
	"context"

	"github.com/flowfix/flowfix-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// BillingTxRunner ejecuta una función con repos de proyecto, propuesta, horas
// y factura atados a la misma transacción. La facturación por horas necesita
// leer la marca de facturación y avanzarla de forma serializada frente a
// appends concurrentes de TimeEntry (FOR UPDATE dentro de la tx).
type BillingTxRunner interface {
	RunInvoice(ctx context.Context, fn func(
		projectRepo repository.ProjectRepository,
		proposalRepo repository.ProposalRepository,
		timeRepo repository.TimeEntryRepository,
		invoiceRepo repository.InvoiceRepository,
	) error) error
}

// WebhookDeduper es el contrato mínimo para descartar eventos de webhook ya
// procesados. Lo implementa dedupe.Deduper (redis); la interfaz evita acoplar
// el caso de uso a la infraestructura. Release devuelve la clave cuando el
// procesamiento falla, para que el reintento del procesador con el mismo
// event id no quede descartado.
type WebhookDeduper interface {
	AcquireOnce(ctx context.Context, scope, id string) bool
	Release(ctx context.Context, scope, id string)
}

// UsageRecorder acumula horas contra la suscripción activa del cliente, si
// existe. Lo implementa subscription.UseCase; nil desactiva el descuento.
type UsageRecorder interface {
	RecordUsage(userID string, hours decimal.Decimal) error
}

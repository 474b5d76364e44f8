package repository

import "github.com/flowfix/flowfix-api/internal/domain/entity"

// TimeEntryRepository define el puerto de persistencia para TimeEntry (append-only).
type TimeEntryRepository interface {
	Create(entry *entity.TimeEntry) error
	ListByProject(projectID string) ([]*entity.TimeEntry, error)
	// ListUnbilled devuelve las entradas sin factura del proyecto. Dentro de una
	// transacción la implementación bloquea las filas (FOR UPDATE) para
	// serializar la facturación frente a appends concurrentes.
	ListUnbilled(projectID string) ([]*entity.TimeEntry, error)
	// MarkBilled estampa invoice_id en las entradas indicadas (avance de la marca
	// de facturación). Debe ejecutarse en la misma transacción que crea la factura.
	MarkBilled(entryIDs []string, invoiceID string) error
}

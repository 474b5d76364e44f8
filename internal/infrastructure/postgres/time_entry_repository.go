package postgres

import (
	"context"
	"fmt"

	"github.com/flowfix/flowfix-api/internal/domain/entity"
	"github.com/flowfix/flowfix-api/internal/domain/repository"
)

var _ repository.TimeEntryRepository = (*TimeEntryRepo)(nil)

// TimeEntryRepo implementación de TimeEntryRepository sobre PostgreSQL
// (usable con pool o tx). El ledger es append-only; invoice_id NULL marca
// las horas aún sin facturar.
type TimeEntryRepo struct {
	q Querier
}

// NewTimeEntryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTimeEntryRepository(q Querier) *TimeEntryRepo {
	return &TimeEntryRepo{q: q}
}

const timeEntryColumns = `id, project_id, admin_id, hours_spent, note, invoice_id, logged_at, created_at`

// Create persiste una entrada de horas.
func (r *TimeEntryRepo) Create(entry *entity.TimeEntry) error {
	query := `
		INSERT INTO time_entries (id, project_id, admin_id, hours_spent, note, invoice_id, logged_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		entry.ID, entry.ProjectID, entry.AdminID, entry.HoursSpent, entry.Note,
		nullIfEmpty(entry.InvoiceID), entry.LoggedAt, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert time entry: %w", err)
	}
	return nil
}

// ListByProject lista todas las horas del proyecto en orden cronológico.
func (r *TimeEntryRepo) ListByProject(projectID string) ([]*entity.TimeEntry, error) {
	query := `SELECT ` + timeEntryColumns + ` FROM time_entries WHERE project_id = $1 ORDER BY logged_at`
	return r.list(query, projectID)
}

// ListUnbilled devuelve las entradas sin factura del proyecto, bloqueando las
// filas (FOR UPDATE) para serializar la facturación frente a appends
// concurrentes. Fuera de una transacción el lock se libera al instante, por lo
// que solo tiene sentido llamarlo vía TxRunner.
func (r *TimeEntryRepo) ListUnbilled(projectID string) ([]*entity.TimeEntry, error) {
	query := `SELECT ` + timeEntryColumns + ` FROM time_entries
		WHERE project_id = $1 AND invoice_id IS NULL ORDER BY logged_at FOR UPDATE`
	return r.list(query, projectID)
}

// MarkBilled estampa invoice_id en las entradas indicadas (avance de la marca
// de facturación). Misma transacción que la creación de la factura.
func (r *TimeEntryRepo) MarkBilled(entryIDs []string, invoiceID string) error {
	if len(entryIDs) == 0 {
		return nil
	}
	query := `UPDATE time_entries SET invoice_id = $2 WHERE id = ANY($1) AND invoice_id IS NULL`
	tag, err := r.q.Exec(context.Background(), query, entryIDs, invoiceID)
	if err != nil {
		return fmt.Errorf("mark time entries billed: %w", err)
	}
	if int(tag.RowsAffected()) != len(entryIDs) {
		return fmt.Errorf("mark time entries billed: %d de %d filas", tag.RowsAffected(), len(entryIDs))
	}
	return nil
}

func (r *TimeEntryRepo) list(query string, args ...any) ([]*entity.TimeEntry, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list time entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.TimeEntry
	for rows.Next() {
		var e entity.TimeEntry
		var invoiceID *string
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.AdminID, &e.HoursSpent, &e.Note,
			&invoiceID, &e.LoggedAt, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan time entry: %w", err)
		}
		e.InvoiceID = emptyIfNull(invoiceID)
		list = append(list, &e)
	}
	return list, rows.Err()
}

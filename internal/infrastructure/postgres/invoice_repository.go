package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/flowfix/flowfix-api/internal/domain/entity"
	"github.com/flowfix/flowfix-api/internal/domain/repository"
	"github.com/jackc/pgx/v5"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository sobre PostgreSQL (usable con
// pool o tx). El monto es inmutable; MarkPaid/MarkFailed son updates
// condicionales pending→* y su RowsAffected es la fuente de verdad de la
// idempotencia de webhooks.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `id, project_id, proposal_id, amount_cents, status,
	payment_intent_ref, paid_at, created_at, updated_at`

// Create persiste una factura nueva (estado pending).
func (r *InvoiceRepo) Create(invoice *entity.Invoice) error {
	query := `
		INSERT INTO invoices (id, project_id, proposal_id, amount_cents, status,
			payment_intent_ref, paid_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		invoice.ID, invoice.ProjectID, invoice.ProposalID, invoice.AmountCents,
		invoice.Status, nullIfEmpty(invoice.PaymentIntentRef), invoice.PaidAt,
		invoice.CreatedAt, invoice.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// GetByID obtiene una factura por ID, o nil si no existe.
func (r *InvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	var inv entity.Invoice
	var intentRef *string
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&inv.ID, &inv.ProjectID, &inv.ProposalID, &inv.AmountCents, &inv.Status,
		&intentRef, &inv.PaidAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	inv.PaymentIntentRef = emptyIfNull(intentRef)
	return &inv, nil
}

// ListByProject lista las facturas del proyecto.
func (r *InvoiceRepo) ListByProject(projectID string) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE project_id = $1 ORDER BY created_at DESC`
	rows, err := r.q.Query(context.Background(), query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		var inv entity.Invoice
		var intentRef *string
		if err := rows.Scan(&inv.ID, &inv.ProjectID, &inv.ProposalID, &inv.AmountCents, &inv.Status,
			&intentRef, &inv.PaidAt, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		inv.PaymentIntentRef = emptyIfNull(intentRef)
		list = append(list, &inv)
	}
	return list, rows.Err()
}

// CountPendingByProject cuenta las facturas pendientes del proyecto.
func (r *InvoiceRepo) CountPendingByProject(projectID string) (int, error) {
	var count int
	query := `SELECT count(*) FROM invoices WHERE project_id = $1 AND status = $2`
	err := r.q.QueryRow(context.Background(), query, projectID, entity.InvoicePending).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pending invoices: %w", err)
	}
	return count, nil
}

// SetPaymentIntent guarda la referencia del intent creado en el procesador.
func (r *InvoiceRepo) SetPaymentIntent(id, intentRef string) error {
	query := `UPDATE invoices SET payment_intent_ref = $2, updated_at = now() WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, id, intentRef)
	if err != nil {
		return fmt.Errorf("set payment intent: %w", err)
	}
	return nil
}

// MarkPaid pasa pending→paid y estampa paid_at. false si ya no estaba pending.
func (r *InvoiceRepo) MarkPaid(id string) (bool, error) {
	query := `
		UPDATE invoices SET status = $2, paid_at = now(), updated_at = now()
		WHERE id = $1 AND status = $3`
	tag, err := r.q.Exec(context.Background(), query, id, entity.InvoicePaid, entity.InvoicePending)
	if err != nil {
		return false, fmt.Errorf("mark invoice paid: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarkFailed pasa pending→failed. false si ya no estaba pending.
func (r *InvoiceRepo) MarkFailed(id string) (bool, error) {
	query := `UPDATE invoices SET status = $2, updated_at = now() WHERE id = $1 AND status = $3`
	tag, err := r.q.Exec(context.Background(), query, id, entity.InvoiceFailed, entity.InvoicePending)
	if err != nil {
		return false, fmt.Errorf("mark invoice failed: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

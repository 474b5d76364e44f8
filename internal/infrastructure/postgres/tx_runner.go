package postgres

import (
	"context"
	"fmt"

	"github.com/flowfix/flowfix-api/internal/application/billing"
	"github.com/flowfix/flowfix-api/internal/application/lifecycle"
	"github.com/flowfix/flowfix-api/internal/domain/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Ensure TxRunner implements lifecycle.LifecycleTxRunner and billing.BillingTxRunner.
var _ lifecycle.LifecycleTxRunner = (*TxRunner)(nil)
var _ billing.BillingTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunProposal inicia una transacción con repos de proyecto y propuesta
// (transición condicional + escritura de propuesta de forma atómica).
func (r *TxRunner) RunProposal(ctx context.Context, fn func(
	projectRepo repository.ProjectRepository,
	proposalRepo repository.ProposalRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	projectRepo := NewProjectRepository(tx)
	proposalRepo := NewProposalRepository(tx)

	if err := fn(projectRepo, proposalRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunInvoice inicia una transacción con los repos de facturación: el cierre
// del proyecto, la lectura FOR UPDATE de horas sin facturar, la factura y el
// avance de la marca de facturación van juntos o no van.
func (r *TxRunner) RunInvoice(ctx context.Context, fn func(
	projectRepo repository.ProjectRepository,
	proposalRepo repository.ProposalRepository,
	timeRepo repository.TimeEntryRepository,
	invoiceRepo repository.InvoiceRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	projectRepo := NewProjectRepository(tx)
	proposalRepo := NewProposalRepository(tx)
	timeRepo := NewTimeEntryRepository(tx)
	invoiceRepo := NewInvoiceRepository(tx)

	if err := fn(projectRepo, proposalRepo, timeRepo, invoiceRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

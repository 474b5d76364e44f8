package billing

import (
	"context"
	"time"

	"github.com/flowfix/flowfix-api/internal/application/authz"
	"github.com/flowfix/flowfix-api/internal/application/dto"
	"github.com/flowfix/flowfix-api/internal/application/notify"
	"github.com/flowfix/flowfix-api/internal/domain"
	"github.com/flowfix/flowfix-api/internal/domain/entity"
	"github.com/flowfix/flowfix-api/internal/domain/money"
	"github.com/flowfix/flowfix-api/internal/domain/repository"
	"github.com/flowfix/flowfix-api/internal/infrastructure/payment"
	"github.com/flowfix/flowfix-api/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceUseCase implementa la facturación: registro de horas, cierre del
// proyecto con factura, facturación manual por horas y el flujo de pago
// contra el procesador externo.
//
// Política de disparo: la factura se crea cuando el admin marca el trabajo
// completo (fee fijo íntegro; por horas, solo las no facturadas). La
// refacturación por horas es idempotente: sin entradas nuevas no hay cargo.
type InvoiceUseCase struct {
	txRunner     BillingTxRunner
	projectRepo  repository.ProjectRepository
	proposalRepo repository.ProposalRepository
	timeRepo     repository.TimeEntryRepository
	invoiceRepo  repository.InvoiceRepository
	userRepo     repository.UserRepository
	processor    payment.Processor
	deduper      WebhookDeduper
	usage        UsageRecorder
	authz        *authz.Authorizer
	notifier     notify.Notifier
	log          *logger.Logger
}

// NewInvoiceUseCase construye el caso de uso. deduper y usage pueden ser nil.
func NewInvoiceUseCase(
	txRunner BillingTxRunner,
	projectRepo repository.ProjectRepository,
	proposalRepo repository.ProposalRepository,
	timeRepo repository.TimeEntryRepository,
	invoiceRepo repository.InvoiceRepository,
	userRepo repository.UserRepository,
	processor payment.Processor,
	deduper WebhookDeduper,
	usage UsageRecorder,
	az *authz.Authorizer,
	notifier notify.Notifier,
	log *logger.Logger,
) *InvoiceUseCase {
	return &InvoiceUseCase{
		txRunner:     txRunner,
		projectRepo:  projectRepo,
		proposalRepo: proposalRepo,
		timeRepo:     timeRepo,
		invoiceRepo:  invoiceRepo,
		userRepo:     userRepo,
		processor:    processor,
		deduper:      deduper,
		usage:        usage,
		authz:        az,
		notifier:     notifier,
		log:          log,
	}
}

// LogTime registra horas trabajadas (admin asignado, proyecto in_progress).
// Append-only: las entradas nunca se editan ni se borran.
func (uc *InvoiceUseCase) LogTime(ctx context.Context, sess *authz.Session, projectID string, in dto.LogTimeRequest) (*dto.TimeEntryResponse, error) {
	project, override, err := uc.loadProjectScoped(sess, projectID)
	if err != nil {
		return nil, err
	}
	if sess.Role == entity.RoleClient {
		return nil, domain.ErrForbidden // las horas las registra el admin
	}
	if project.Status != entity.ProjectInProgress {
		return nil, domain.ErrInvalidTransition
	}
	hours, err := money.ParseHours(in.HoursSpent)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	entry := &entity.TimeEntry{
		ID:         uuid.New().String(),
		ProjectID:  projectID,
		AdminID:    sess.UserID,
		HoursSpent: hours,
		Note:       in.Note,
		LoggedAt:   now,
		CreatedAt:  now,
	}
	if err := uc.timeRepo.Create(entry); err != nil {
		return nil, err
	}
	if override {
		uc.authz.RecordOverride(sess.UserID, "time_entry.create", "project", projectID, hours.String()+" h")
	}
	// Descuento de horas de suscripción, si el cliente tiene una activa.
	// Un fallo aquí no revierte el registro de horas.
	if uc.usage != nil {
		if err := uc.usage.RecordUsage(project.ClientID, hours); err != nil {
			uc.log.Warn().Err(err).Str("project", projectID).Msg("no se pudo descontar horas de la suscripción")
		}
	}
	return dto.NewTimeEntryResponse(entry), nil
}

// ListTimeEntries lista las horas del proyecto (alcance por rol).
func (uc *InvoiceUseCase) ListTimeEntries(ctx context.Context, sess *authz.Session, projectID string) ([]*dto.TimeEntryResponse, error) {
	if _, _, err := uc.loadProjectScoped(sess, projectID); err != nil {
		return nil, err
	}
	entries, err := uc.timeRepo.ListByProject(projectID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.TimeEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.NewTimeEntryResponse(e))
	}
	return out, nil
}

// CompleteProject marca el trabajo completo (admin asignado) y crea la factura
// de cierre en la misma transacción: fee fijo íntegro, o las horas sin
// facturar × tarifa. Requiere que no haya facturas pendientes.
func (uc *InvoiceUseCase) CompleteProject(ctx context.Context, sess *authz.Session, projectID string) (*dto.CompleteProjectResponse, error) {
	project, override, err := uc.loadProjectScoped(sess, projectID)
	if err != nil {
		return nil, err
	}
	if sess.Role == entity.RoleClient {
		return nil, domain.ErrForbidden // el cierre lo declara el admin
	}
	proposal, err := uc.proposalRepo.GetAcceptedByProject(projectID)
	if err != nil {
		return nil, err
	}

	var invoice *entity.Invoice
	err = uc.txRunner.RunInvoice(ctx, func(
		projectRepo repository.ProjectRepository,
		proposalRepo repository.ProposalRepository,
		timeRepo repository.TimeEntryRepository,
		invoiceRepo repository.InvoiceRepository,
	) error {
		// El conteo va dentro de la transacción: una factura manual creada en
		// paralelo no puede colarse entre el chequeo y la transición.
		pending, err := invoiceRepo.CountPendingByProject(projectID)
		if err != nil {
			return err
		}
		if pending > 0 {
			return domain.ErrInvalidTransition // facturas pendientes bloquean el cierre
		}
		ok, err := projectRepo.UpdateStatus(projectID, entity.ProjectInProgress, entity.ProjectCompleted)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInvalidTransition
		}
		if proposal == nil {
			return nil // sin propuesta aceptada no hay nada que facturar
		}
		invoice, err = createInvoiceTx(project.ID, proposal, timeRepo, invoiceRepo)
		return err
	})
	if err != nil {
		return nil, err
	}

	if override {
		uc.authz.RecordOverride(sess.UserID, "project.complete", "project", projectID, "")
	}
	project.Status = entity.ProjectCompleted
	uc.notifier.Notify(notify.EventProjectCompleted, map[string]string{
		"project_id": projectID,
		"client_id":  project.ClientID,
	})
	resp := &dto.CompleteProjectResponse{Project: toProjectResponse(project)}
	if invoice != nil {
		uc.notifier.Notify(notify.EventInvoiceCreated, map[string]string{
			"project_id": projectID,
			"invoice_id": invoice.ID,
			"amount":     money.FormatCents(invoice.AmountCents),
		})
		resp.Invoice = dto.NewInvoiceResponse(invoice)
	}
	return resp, nil
}

// CreateInvoice factura manualmente las horas sin facturar de un proyecto por
// horas (admin). Idempotente sobre el ledger: sin entradas nuevas retorna
// ErrNothingToBill y no crea cargo alguno.
func (uc *InvoiceUseCase) CreateInvoice(ctx context.Context, sess *authz.Session, projectID string) (*dto.InvoiceResponse, error) {
	project, override, err := uc.loadProjectScoped(sess, projectID)
	if err != nil {
		return nil, err
	}
	if sess.Role == entity.RoleClient {
		return nil, domain.ErrForbidden
	}
	if project.Status != entity.ProjectInProgress && project.Status != entity.ProjectCompleted {
		return nil, domain.ErrInvalidTransition
	}
	proposal, err := uc.proposalRepo.GetAcceptedByProject(projectID)
	if err != nil {
		return nil, err
	}
	if proposal == nil {
		return nil, domain.ErrValidation
	}
	if proposal.PricingType != entity.PricingHourly {
		return nil, domain.ErrValidation // el fee fijo se factura solo al cierre
	}

	var invoice *entity.Invoice
	err = uc.txRunner.RunInvoice(ctx, func(
		projectRepo repository.ProjectRepository,
		proposalRepo repository.ProposalRepository,
		timeRepo repository.TimeEntryRepository,
		invoiceRepo repository.InvoiceRepository,
	) error {
		invoice, err = createInvoiceTx(projectID, proposal, timeRepo, invoiceRepo)
		if err != nil {
			return err
		}
		if invoice == nil {
			return domain.ErrNothingToBill
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if override {
		uc.authz.RecordOverride(sess.UserID, "invoice.create", "invoice", invoice.ID, "project "+projectID)
	}
	uc.notifier.Notify(notify.EventInvoiceCreated, map[string]string{
		"project_id": projectID,
		"invoice_id": invoice.ID,
		"amount":     money.FormatCents(invoice.AmountCents),
	})
	return dto.NewInvoiceResponse(invoice), nil
}

// ListInvoices lista las facturas del proyecto (alcance por rol; los montos de
// factura no se redactan: el software_admin ve el estado de cobro, no el
// desglose de la propuesta).
func (uc *InvoiceUseCase) ListInvoices(ctx context.Context, sess *authz.Session, projectID string) ([]*dto.InvoiceResponse, error) {
	if _, _, err := uc.loadProjectScoped(sess, projectID); err != nil {
		return nil, err
	}
	invoices, err := uc.invoiceRepo.ListByProject(projectID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, dto.NewInvoiceResponse(inv))
	}
	return out, nil
}

// createInvoiceTx calcula el monto y crea la factura dentro de la transacción
// del caller. Por horas: lee las entradas sin facturar (bloqueadas FOR UPDATE),
// suma, redondea al centavo y avanza la marca estampando invoice_id. Devuelve
// nil sin error cuando no hay nada que facturar.
func createInvoiceTx(
	projectID string,
	proposal *entity.Proposal,
	timeRepo repository.TimeEntryRepository,
	invoiceRepo repository.InvoiceRepository,
) (*entity.Invoice, error) {
	now := time.Now()
	invoice := &entity.Invoice{
		ID:         uuid.New().String(),
		ProjectID:  projectID,
		ProposalID: proposal.ID,
		Status:     entity.InvoicePending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	switch proposal.PricingType {
	case entity.PricingFlatFee:
		invoice.AmountCents = proposal.FixFeeCents
		if err := invoiceRepo.Create(invoice); err != nil {
			return nil, err
		}
		return invoice, nil
	case entity.PricingHourly:
		entries, err := timeRepo.ListUnbilled(projectID)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			return nil, nil
		}
		total := decimal.Zero
		ids := make([]string, 0, len(entries))
		for _, e := range entries {
			total = total.Add(e.HoursSpent)
			ids = append(ids, e.ID)
		}
		invoice.AmountCents = money.HourlyAmountCents(total, proposal.HourlyRateCents)
		if err := invoiceRepo.Create(invoice); err != nil {
			return nil, err
		}
		if err := timeRepo.MarkBilled(ids, invoice.ID); err != nil {
			return nil, err
		}
		return invoice, nil
	}
	return nil, domain.ErrValidation
}

// loadProjectScoped resuelve el proyecto y autoriza la sesión.
func (uc *InvoiceUseCase) loadProjectScoped(sess *authz.Session, projectID string) (*entity.Project, bool, error) {
	project, err := uc.projectRepo.GetByID(projectID)
	if err != nil {
		return nil, false, err
	}
	if project == nil {
		return nil, false, domain.ErrNotFound
	}
	override, err := uc.authz.AuthorizeProject(sess, project)
	if err != nil {
		return nil, false, err
	}
	return project, override, nil
}

func toProjectResponse(p *entity.Project) *dto.ProjectResponse {
	return &dto.ProjectResponse{
		ID:              p.ID,
		ClientID:        p.ClientID,
		AssignedAdminID: p.AssignedAdminID,
		Title:           p.Title,
		Description:     p.Description,
		RepoURL:         p.RepoURL,
		Status:          p.Status,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

package billing_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowfix/flowfix-api/internal/application/authz"
	"github.com/flowfix/flowfix-api/internal/application/billing"
	"github.com/flowfix/flowfix-api/internal/application/dto"
	"github.com/flowfix/flowfix-api/internal/domain"
	"github.com/flowfix/flowfix-api/internal/domain/entity"
	"github.com/flowfix/flowfix-api/internal/domain/repository"
	"github.com/flowfix/flowfix-api/internal/infrastructure/payment"
	"github.com/flowfix/flowfix-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type memProjectRepo struct {
	mu       sync.Mutex
	projects map[string]*entity.Project
}

func (r *memProjectRepo) Create(p *entity.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.projects[p.ID] = &cp
	return nil
}

func (r *memProjectRepo) GetByID(id string) (*entity.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memProjectRepo) ListByClient(string) ([]*entity.Project, error) { return nil, nil }
func (r *memProjectRepo) ListByAdmin(string) ([]*entity.Project, error)  { return nil, nil }
func (r *memProjectRepo) ListAll() ([]*entity.Project, error)            { return nil, nil }
func (r *memProjectRepo) Assign(string, string) (bool, error)            { return false, nil }

func (r *memProjectRepo) UpdateStatus(id, from, to string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok || p.Status != from {
		return false, nil
	}
	p.Status = to
	return true, nil
}

func (r *memProjectRepo) UpdateStatusAny(id string, from []string, to string) (bool, error) {
	return false, nil
}

type memProposalRepo struct {
	mu        sync.Mutex
	proposals map[string]*entity.Proposal
}

func (r *memProposalRepo) Create(p *entity.Proposal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.proposals[p.ID] = &cp
	return nil
}

func (r *memProposalRepo) GetByID(id string) (*entity.Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.proposals[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memProposalRepo) GetPendingByProject(string) (*entity.Proposal, error) { return nil, nil }

func (r *memProposalRepo) GetAcceptedByProject(projectID string) (*entity.Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.proposals {
		if p.ProjectID == projectID && p.Status == entity.ProposalAccepted {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memProposalRepo) ListByProject(string) ([]*entity.Proposal, error) { return nil, nil }
func (r *memProposalRepo) UpdateStatus(string, string, string) (bool, error) {
	return false, nil
}

type memTimeRepo struct {
	mu      sync.Mutex
	entries map[string]*entity.TimeEntry
}

func (r *memTimeRepo) Create(e *entity.TimeEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	r.entries[e.ID] = &cp
	return nil
}

func (r *memTimeRepo) ListByProject(projectID string) ([]*entity.TimeEntry, error) {
	return r.filter(func(e *entity.TimeEntry) bool { return e.ProjectID == projectID })
}

func (r *memTimeRepo) ListUnbilled(projectID string) ([]*entity.TimeEntry, error) {
	return r.filter(func(e *entity.TimeEntry) bool {
		return e.ProjectID == projectID && e.InvoiceID == ""
	})
}

func (r *memTimeRepo) MarkBilled(entryIDs []string, invoiceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range entryIDs {
		if e, ok := r.entries[id]; ok {
			e.InvoiceID = invoiceID
		}
	}
	return nil
}

func (r *memTimeRepo) filter(keep func(*entity.TimeEntry) bool) ([]*entity.TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.TimeEntry
	for _, e := range r.entries {
		if keep(e) {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memInvoiceRepo struct {
	mu           sync.Mutex
	invoices     map[string]*entity.Invoice
	failMarkPaid int // fallos de MarkPaid restantes antes de operar normal
}

func (r *memInvoiceRepo) Create(inv *entity.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *inv
	r.invoices[inv.ID] = &cp
	return nil
}

func (r *memInvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (r *memInvoiceRepo) ListByProject(projectID string) ([]*entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Invoice
	for _, inv := range r.invoices {
		if inv.ProjectID == projectID {
			cp := *inv
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memInvoiceRepo) CountPendingByProject(projectID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, inv := range r.invoices {
		if inv.ProjectID == projectID && inv.Status == entity.InvoicePending {
			count++
		}
	}
	return count, nil
}

func (r *memInvoiceRepo) SetPaymentIntent(id, intentRef string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inv, ok := r.invoices[id]; ok {
		inv.PaymentIntentRef = intentRef
	}
	return nil
}

func (r *memInvoiceRepo) MarkPaid(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failMarkPaid > 0 {
		r.failMarkPaid--
		return false, domain.ErrStoreUnavailable
	}
	inv, ok := r.invoices[id]
	if !ok || inv.Status != entity.InvoicePending {
		return false, nil
	}
	inv.Status = entity.InvoicePaid
	return true, nil
}

func (r *memInvoiceRepo) MarkFailed(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok || inv.Status != entity.InvoicePending {
		return false, nil
	}
	inv.Status = entity.InvoiceFailed
	return true, nil
}

type memUserRepo struct {
	users map[string]*entity.User
}

func (r *memUserRepo) Create(u *entity.User) error { r.users[u.ID] = u; return nil }
func (r *memUserRepo) GetByID(id string) (*entity.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}
func (r *memUserRepo) FindByEmail(string) (*entity.User, error) { return nil, nil }
func (r *memUserRepo) UpdateRole(string, string) error          { return nil }
func (r *memUserRepo) UpdatePaymentMethod(id, customerRef, methodRef string) error {
	if u, ok := r.users[id]; ok {
		u.PaymentCustomerRef = customerRef
		u.PaymentMethodRef = methodRef
	}
	return nil
}

type fakeTxRunner struct {
	projects  *memProjectRepo
	proposals *memProposalRepo
	times     *memTimeRepo
	invoices  *memInvoiceRepo
	before    func() // corre antes del cuerpo, simula una escritura concurrente
}

func (f *fakeTxRunner) RunInvoice(ctx context.Context, fn func(
	projectRepo repository.ProjectRepository,
	proposalRepo repository.ProposalRepository,
	timeRepo repository.TimeEntryRepository,
	invoiceRepo repository.InvoiceRepository,
) error) error {
	if f.before != nil {
		f.before()
	}
	return fn(f.projects, f.proposals, f.times, f.invoices)
}

// fakeProcessor simula el procesador de pagos.
type fakeProcessor struct {
	notConfigured bool
	declined      bool
	intents       []payment.IntentRequest
}

func (f *fakeProcessor) CreateCustomer(ctx context.Context, email string) (string, error) {
	if f.notConfigured {
		return "", domain.ErrPaymentNotConfigured
	}
	return "cus_test", nil
}

func (f *fakeProcessor) CreateSetupIntent(ctx context.Context, customerRef string) (*payment.SetupIntentResult, error) {
	if f.notConfigured {
		return nil, domain.ErrPaymentNotConfigured
	}
	return &payment.SetupIntentResult{SetupRef: "seti_test", ClientSecret: "seti_secret"}, nil
}

func (f *fakeProcessor) CreateIntent(ctx context.Context, req payment.IntentRequest) (*payment.IntentResult, error) {
	if f.notConfigured {
		return nil, domain.ErrPaymentNotConfigured
	}
	if f.declined {
		return nil, domain.ErrPaymentDeclined
	}
	f.intents = append(f.intents, req)
	return &payment.IntentResult{IntentRef: "pi_test", ClientSecret: "pi_secret", Status: "processing"}, nil
}

// fakeDeduper recuerda los IDs vistos (equivalente in-memory del SetNX/DEL).
type fakeDeduper struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (f *fakeDeduper) AcquireOnce(ctx context.Context, scope, id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := scope + ":" + id
	if f.seen[key] {
		return false
	}
	f.seen[key] = true
	return true
}

func (f *fakeDeduper) Release(ctx context.Context, scope, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.seen, scope+":"+id)
}

// countingNotifier cuenta eventos por tipo.
type countingNotifier struct {
	mu     sync.Mutex
	events map[string]int
}

func (n *countingNotifier) Notify(eventKind string, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events[eventKind]++
}

func (n *countingNotifier) count(eventKind string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.events[eventKind]
}

type fakeAuditRepo struct{ entries []*entity.AuditLog }

func (f *fakeAuditRepo) Record(log *entity.AuditLog) error {
	f.entries = append(f.entries, log)
	return nil
}
func (f *fakeAuditRepo) List(int, int) ([]*entity.AuditLog, error) { return f.entries, nil }

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	uc        *billing.InvoiceUseCase
	projects  *memProjectRepo
	proposals *memProposalRepo
	times     *memTimeRepo
	invoices  *memInvoiceRepo
	users     *memUserRepo
	processor *fakeProcessor
	notifier  *countingNotifier
	txRunner  *fakeTxRunner
}

var (
	client = &entity.User{ID: "client-1", Email: "cliente@test.com", Role: entity.RoleClient, Status: "active",
		PaymentCustomerRef: "cus_1", PaymentMethodRef: "pm_1"}
	admin = &entity.User{ID: "admin-1", Email: "admin@test.com", Role: entity.RoleSoftwareAdmin, Status: "active"}
)

func sessionFor(u *entity.User) *authz.Session {
	return &authz.Session{UserID: u.ID, Role: u.Role}
}

func newFixture() *fixture {
	projects := &memProjectRepo{projects: map[string]*entity.Project{}}
	proposals := &memProposalRepo{proposals: map[string]*entity.Proposal{}}
	times := &memTimeRepo{entries: map[string]*entity.TimeEntry{}}
	invoices := &memInvoiceRepo{invoices: map[string]*entity.Invoice{}}
	users := &memUserRepo{users: map[string]*entity.User{}}
	for _, u := range []*entity.User{client, admin} {
		cp := *u
		users.users[u.ID] = &cp
	}
	processor := &fakeProcessor{}
	notifier := &countingNotifier{events: map[string]int{}}
	txRunner := &fakeTxRunner{projects: projects, proposals: proposals, times: times, invoices: invoices}
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	az := authz.New(&fakeAuditRepo{}, log)
	uc := billing.NewInvoiceUseCase(
		txRunner,
		projects, proposals, times, invoices, users,
		processor, &fakeDeduper{seen: map[string]bool{}}, nil, az, notifier, log,
	)
	return &fixture{
		uc: uc, projects: projects, proposals: proposals, times: times,
		invoices: invoices, users: users, processor: processor, notifier: notifier,
		txRunner: txRunner,
	}
}

func (f *fixture) seedProject(t *testing.T, status string) {
	t.Helper()
	require.NoError(t, f.projects.Create(&entity.Project{
		ID: "p1", ClientID: client.ID, AssignedAdminID: admin.ID,
		Title: "Fix", Description: "d", Status: status,
	}))
}

func (f *fixture) seedHourlyProposal(t *testing.T, rateCents int64) {
	t.Helper()
	require.NoError(t, f.proposals.Create(&entity.Proposal{
		ID: "prop-1", ProjectID: "p1", AdminID: admin.ID,
		PricingType:     entity.PricingHourly,
		HourlyRateCents: rateCents,
		EstimatedHours:  decimal.RequireFromString("10"),
		Status:          entity.ProposalAccepted,
	}))
}

func (f *fixture) seedFlatProposal(t *testing.T, feeCents int64) {
	t.Helper()
	require.NoError(t, f.proposals.Create(&entity.Proposal{
		ID: "prop-1", ProjectID: "p1", AdminID: admin.ID,
		PricingType: entity.PricingFlatFee,
		FixFeeCents: feeCents,
		Status:      entity.ProposalAccepted,
	}))
}

func (f *fixture) logHours(t *testing.T, hours string) {
	t.Helper()
	_, err := f.uc.LogTime(context.Background(), sessionFor(admin), "p1", dto.LogTimeRequest{HoursSpent: hours})
	require.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Registro de horas
// ──────────────────────────────────────────────────────────────────────────────

func TestLogTime_AdminAsignadoEnProgreso(t *testing.T) {
	f := newFixture()
	f.seedProject(t, entity.ProjectInProgress)

	out, err := f.uc.LogTime(context.Background(), sessionFor(admin), "p1", dto.LogTimeRequest{HoursSpent: "2.5", Note: "debug"})
	require.NoError(t, err)
	assert.Equal(t, "2.5", out.HoursSpent)
	assert.False(t, out.Billed)
}

func TestLogTime_ClienteProhibido(t *testing.T) {
	f := newFixture()
	f.seedProject(t, entity.ProjectInProgress)

	_, err := f.uc.LogTime(context.Background(), sessionFor(client), "p1", dto.LogTimeRequest{HoursSpent: "1"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestLogTime_SoloEnProgreso(t *testing.T) {
	f := newFixture()
	f.seedProject(t, entity.ProjectAccepted)

	_, err := f.uc.LogTime(context.Background(), sessionFor(admin), "p1", dto.LogTimeRequest{HoursSpent: "1"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestLogTime_HorasInvalidas(t *testing.T) {
	f := newFixture()
	f.seedProject(t, entity.ProjectInProgress)

	for _, hours := range []string{"0", "-2", "abc"} {
		_, err := f.uc.LogTime(context.Background(), sessionFor(admin), "p1", dto.LogTimeRequest{HoursSpent: hours})
		assert.ErrorIs(t, err, domain.ErrValidation, "horas %q", hours)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Cierre del proyecto con factura
// ──────────────────────────────────────────────────────────────────────────────

func TestCompleteProject_FeeFijo(t *testing.T) {
	f := newFixture()
	f.seedProject(t, entity.ProjectInProgress)
	f.seedFlatProposal(t, 50000) // $500.00

	out, err := f.uc.CompleteProject(context.Background(), sessionFor(admin), "p1")
	require.NoError(t, err)
	assert.Equal(t, entity.ProjectCompleted, out.Project.Status)
	require.NotNil(t, out.Invoice)
	assert.Equal(t, int64(50000), out.Invoice.AmountCents)
	assert.Equal(t, "500.00", out.Invoice.Amount)
	assert.Equal(t, entity.InvoicePending, out.Invoice.Status)
	assert.Equal(t, 1, f.notifier.count("invoice.created"))
}

func TestCompleteProject_PorHorasFacturaSoloLoNoFacturado(t *testing.T) {
	f := newFixture()
	f.seedProject(t, entity.ProjectInProgress)
	f.seedHourlyProposal(t, 10000) // $100.00/h
	f.logHours(t, "2.5")
	f.logHours(t, "4.0")

	out, err := f.uc.CompleteProject(context.Background(), sessionFor(admin), "p1")
	require.NoError(t, err)
	require.NotNil(t, out.Invoice)
	// 6.5 h × $100.00 = $650.00
	assert.Equal(t, int64(65000), out.Invoice.AmountCents)

	// La marca de facturación avanzó: no quedan horas sin facturar.
	unbilled, _ := f.times.ListUnbilled("p1")
	assert.Empty(t, unbilled)
}

func TestCompleteProject_SinHorasNoFactura(t *testing.T) {
	f := newFixture()
	f.seedProject(t, entity.ProjectInProgress)
	f.seedHourlyProposal(t, 10000)

	out, err := f.uc.CompleteProject(context.Background(), sessionFor(admin), "p1")
	require.NoError(t, err)
	assert.Equal(t, entity.ProjectCompleted, out.Project.Status)
	assert.Nil(t, out.Invoice, "sin horas registradas el cierre no emite factura")
}

func TestCompleteProject_BloqueadoPorFacturaPendiente(t *testing.T) {
	f := newFixture()
	f.seedProject(t, entity.ProjectInProgress)
	f.seedHourlyProposal(t, 10000)
	f.logHours(t, "3")

	// Factura intermedia pendiente.
	_, err := f.uc.CreateInvoice(context.Background(), sessionFor(admin), "p1")
	require.NoError(t, err)

	_, err = f.uc.CompleteProject(context.Background(), sessionFor(admin), "p1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition,
		"con una factura pendiente el cierre debe bloquearse")

	p, _ := f.projects.GetByID("p1")
	assert.Equal(t, entity.ProjectInProgress, p.Status)
}

func TestCompleteProject_FacturaConcurrenteBloqueaDentroDeLaTx(t *testing.T) {
	f := newFixture()
	f.seedProject(t, entity.ProjectInProgress)
	f.seedHourlyProposal(t, 10000)

	// Una factura manual se cuela justo antes del cuerpo transaccional: el
	// conteo de pendientes dentro de la transacción debe verla y abortar.
	f.txRunner.before = func() {
		require.NoError(t, f.invoices.Create(&entity.Invoice{
			ID: "inv-race", ProjectID: "p1", ProposalID: "prop-1",
			AmountCents: 10000, Status: entity.InvoicePending,
		}))
	}

	_, err := f.uc.CompleteProject(context.Background(), sessionFor(admin), "p1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	p, _ := f.projects.GetByID("p1")
	assert.Equal(t, entity.ProjectInProgress, p.Status, "el proyecto no debe cerrar")
}

func TestCompleteProject_ClienteProhibido(t *testing.T) {
	f := newFixture()
	f.seedProject(t, entity.ProjectInProgress)
	f.seedFlatProposal(t, 50000)

	_, err := f.uc.CompleteProject(context.Background(), sessionFor(client), "p1")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ──────────────────────────────────────────────────────────────────────────────
// Facturación manual por horas
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateInvoice_RefacturarSinHorasNuevasEsNoOp(t *testing.T) {
	f := newFixture()
	f.seedProject(t, entity.ProjectInProgress)
	f.seedHourlyProposal(t, 10000)
	f.logHours(t, "3")

	first, err := f.uc.CreateInvoice(context.Background(), sessionFor(admin), "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(30000), first.AmountCents)

	// Sin horas nuevas: no se crea un segundo cargo.
	_, err = f.uc.CreateInvoice(context.Background(), sessionFor(admin), "p1")
	assert.ErrorIs(t, err, domain.ErrNothingToBill)

	all, _ := f.invoices.ListByProject("p1")
	assert.Len(t, all, 1, "refacturar sin horas nuevas no debe crear facturas")
}

func TestCreateInvoice_HorasNuevasTrasFacturar(t *testing.T) {
	f := newFixture()
	f.seedProject(t, entity.ProjectInProgress)
	f.seedHourlyProposal(t, 10000)
	f.logHours(t, "3")

	first, err := f.uc.CreateInvoice(context.Background(), sessionFor(admin), "p1")
	require.NoError(t, err)
	require.NotNil(t, first)

	// Nuevas horas después de la primera factura.
	f.logHours(t, "1.5")
	second, err := f.uc.CreateInvoice(context.Background(), sessionFor(admin), "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(15000), second.AmountCents, "solo las horas nuevas")
}

func TestCreateInvoice_FeeFijoSoloAlCierre(t *testing.T) {
	f := newFixture()
	f.seedProject(t, entity.ProjectInProgress)
	f.seedFlatProposal(t, 50000)

	_, err := f.uc.CreateInvoice(context.Background(), sessionFor(admin), "p1")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ──────────────────────────────────────────────────────────────────────────────
// Pagos
// ──────────────────────────────────────────────────────────────────────────────

func (f *fixture) seedPendingInvoice(t *testing.T, amountCents int64) {
	t.Helper()
	require.NoError(t, f.invoices.Create(&entity.Invoice{
		ID: "inv-1", ProjectID: "p1", ProposalID: "prop-1",
		AmountCents: amountCents, Status: entity.InvoicePending,
	}))
}

func TestCreatePaymentIntent_Cliente(t *testing.T) {
	f := newFixture()
	f.seedProject(t, entity.ProjectCompleted)
	f.seedPendingInvoice(t, 50000)

	out, err := f.uc.CreatePaymentIntent(context.Background(), sessionFor(client), "inv-1")
	require.NoError(t, err)
	assert.Equal(t, "pi_secret", out.ClientSecret)
	assert.False(t, out.RequiresSetup)

	inv, _ := f.invoices.GetByID("inv-1")
	assert.Equal(t, "pi_test", inv.PaymentIntentRef)

	require.Len(t, f.processor.intents, 1)
	assert.Equal(t, int64(50000), f.processor.intents[0].AmountCents)
	assert.Equal(t, "inv-1", f.processor.intents[0].InvoiceID)
}

func TestCreatePaymentIntent_ProcesadorNoConfigurado(t *testing.T) {
	f := newFixture()
	f.processor.notConfigured = true
	f.seedProject(t, entity.ProjectCompleted)
	f.seedPendingInvoice(t, 50000)

	out, err := f.uc.CreatePaymentIntent(context.Background(), sessionFor(client), "inv-1")
	require.NoError(t, err, "credencial ausente no es culpa del cliente")
	assert.True(t, out.RequiresSetup)
	assert.Empty(t, out.ClientSecret)
}

func TestCreatePaymentIntent_RechazoDeTarjeta(t *testing.T) {
	f := newFixture()
	f.processor.declined = true
	f.seedProject(t, entity.ProjectCompleted)
	f.seedPendingInvoice(t, 50000)

	_, err := f.uc.CreatePaymentIntent(context.Background(), sessionFor(client), "inv-1")
	assert.ErrorIs(t, err, domain.ErrPaymentDeclined)
}

func TestCreatePaymentIntent_SinMetodoDePago(t *testing.T) {
	f := newFixture()
	f.seedProject(t, entity.ProjectCompleted)
	f.seedPendingInvoice(t, 50000)
	require.NoError(t, f.users.UpdatePaymentMethod(client.ID, "", ""))

	_, err := f.uc.CreatePaymentIntent(context.Background(), sessionFor(client), "inv-1")
	assert.ErrorIs(t, err, domain.ErrPaymentMethodRequired)
}

func TestCreateSetupIntent_CreaCustomerLaPrimeraVez(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.users.UpdatePaymentMethod(client.ID, "", ""))

	out, err := f.uc.CreateSetupIntent(context.Background(), sessionFor(client))
	require.NoError(t, err)
	assert.Equal(t, "seti_secret", out.ClientSecret)

	u, _ := f.users.GetByID(client.ID)
	assert.Equal(t, "cus_test", u.PaymentCustomerRef, "la referencia del customer debe persistirse")
}

// ──────────────────────────────────────────────────────────────────────────────
// Webhooks — idempotencia en dos capas
// ──────────────────────────────────────────────────────────────────────────────

func succeededEvent(id string) *payment.WebhookEvent {
	return &payment.WebhookEvent{
		ID: id, Type: payment.EventIntentSucceeded, IntentRef: "pi_test", InvoiceID: "inv-1",
	}
}

func TestHandleWebhook_MarcaPagada(t *testing.T) {
	f := newFixture()
	f.seedProject(t, entity.ProjectCompleted)
	f.seedPendingInvoice(t, 50000)

	require.NoError(t, f.uc.HandleWebhook(context.Background(), succeededEvent("evt-1")))

	inv, _ := f.invoices.GetByID("inv-1")
	assert.Equal(t, entity.InvoicePaid, inv.Status)
	assert.Equal(t, 1, f.notifier.count("invoice.paid"))
}

func TestHandleWebhook_EventoDuplicadoEsNoOp(t *testing.T) {
	f := newFixture()
	f.seedProject(t, entity.ProjectCompleted)
	f.seedPendingInvoice(t, 50000)

	require.NoError(t, f.uc.HandleWebhook(context.Background(), succeededEvent("evt-1")))
	require.NoError(t, f.uc.HandleWebhook(context.Background(), succeededEvent("evt-1")))

	inv, _ := f.invoices.GetByID("inv-1")
	assert.Equal(t, entity.InvoicePaid, inv.Status)
	assert.Equal(t, 1, f.notifier.count("invoice.paid"),
		"el duplicado no debe notificar dos veces")
}

func TestHandleWebhook_ReenvioConOtroEventID(t *testing.T) {
	f := newFixture()
	f.seedProject(t, entity.ProjectCompleted)
	f.seedPendingInvoice(t, 50000)

	// Mismo intent, distinto event id (reenvío del procesador): el update
	// condicional pending→paid es la fuente de verdad.
	require.NoError(t, f.uc.HandleWebhook(context.Background(), succeededEvent("evt-1")))
	require.NoError(t, f.uc.HandleWebhook(context.Background(), succeededEvent("evt-2")))

	assert.Equal(t, 1, f.notifier.count("invoice.paid"))
}

func TestHandleWebhook_ReintentoTrasFalloDeEscritura(t *testing.T) {
	f := newFixture()
	f.seedProject(t, entity.ProjectCompleted)
	f.seedPendingInvoice(t, 50000)
	f.invoices.failMarkPaid = 1

	// La primera entrega falla al escribir: el error sube (el procesador
	// reintenta) y la clave de dedupe se libera.
	err := f.uc.HandleWebhook(context.Background(), succeededEvent("evt-1"))
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)

	inv, _ := f.invoices.GetByID("inv-1")
	require.Equal(t, entity.InvoicePending, inv.Status)

	// El reintento llega con el mismo event id y debe poder procesar.
	require.NoError(t, f.uc.HandleWebhook(context.Background(), succeededEvent("evt-1")))

	inv, _ = f.invoices.GetByID("inv-1")
	assert.Equal(t, entity.InvoicePaid, inv.Status)
	assert.Equal(t, 1, f.notifier.count("invoice.paid"))
}

func TestHandleWebhook_PagoFallido(t *testing.T) {
	f := newFixture()
	f.seedProject(t, entity.ProjectCompleted)
	f.seedPendingInvoice(t, 50000)

	event := &payment.WebhookEvent{
		ID: "evt-1", Type: payment.EventIntentFailed, IntentRef: "pi_test", InvoiceID: "inv-1",
	}
	require.NoError(t, f.uc.HandleWebhook(context.Background(), event))

	inv, _ := f.invoices.GetByID("inv-1")
	assert.Equal(t, entity.InvoiceFailed, inv.Status)
	assert.Equal(t, 1, f.notifier.count("invoice.failed"))
}

func TestHandleWebhook_TipoDesconocidoSeIgnora(t *testing.T) {
	f := newFixture()
	f.seedProject(t, entity.ProjectCompleted)
	f.seedPendingInvoice(t, 50000)

	event := &payment.WebhookEvent{ID: "evt-1", Type: "customer.updated", InvoiceID: "inv-1"}
	require.NoError(t, f.uc.HandleWebhook(context.Background(), event))

	inv, _ := f.invoices.GetByID("inv-1")
	assert.Equal(t, entity.InvoicePending, inv.Status)
}

func TestHandleWebhook_FacturaInexistenteNoFalla(t *testing.T) {
	f := newFixture()
	event := &payment.WebhookEvent{
		ID: "evt-1", Type: payment.EventIntentSucceeded, InvoiceID: "no-existe",
	}
	assert.NoError(t, f.uc.HandleWebhook(context.Background(), event),
		"una factura desconocida se registra y se descarta, sin reintentos")
}

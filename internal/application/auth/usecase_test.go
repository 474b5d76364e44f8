package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowfix/flowfix-api/internal/application/auth"
	"github.com/flowfix/flowfix-api/internal/application/authz"
	"github.com/flowfix/flowfix-api/internal/application/dto"
	"github.com/flowfix/flowfix-api/internal/domain"
	"github.com/flowfix/flowfix-api/internal/domain/entity"
	"github.com/flowfix/flowfix-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type memUserRepo struct {
	users        map[string]*entity.User
	findErr      error // fallo inyectado en FindByEmail
	createdCount int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*entity.User{}}
}

func (r *memUserRepo) Create(u *entity.User) error {
	cp := *u
	r.users[u.ID] = &cp
	r.createdCount++
	return nil
}

func (r *memUserRepo) GetByID(id string) (*entity.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) FindByEmail(email string) (*entity.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) UpdateRole(id, role string) error {
	if u, ok := r.users[id]; ok {
		u.Role = role
	}
	return nil
}

func (r *memUserRepo) UpdatePaymentMethod(id, customerRef, methodRef string) error {
	if u, ok := r.users[id]; ok {
		u.PaymentCustomerRef = customerRef
		u.PaymentMethodRef = methodRef
	}
	return nil
}

type fakeAuditRepo struct{ entries []*entity.AuditLog }

func (f *fakeAuditRepo) Record(log *entity.AuditLog) error {
	f.entries = append(f.entries, log)
	return nil
}
func (f *fakeAuditRepo) List(int, int) ([]*entity.AuditLog, error) { return f.entries, nil }

type noopNotifier struct{}

func (noopNotifier) Notify(string, any) {}

func newUseCase() (*auth.AuthUseCase, *memUserRepo) {
	repo := newMemUserRepo()
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	az := authz.New(&fakeAuditRepo{}, log)
	uc := auth.NewAuthUseCase(repo, az, noopNotifier{}, auth.JWTConfig{
		Secret: "test-secret", ExpMinutes: 60, Issuer: "flowfix-test",
	})
	return uc, repo
}

// ──────────────────────────────────────────────────────────────────────────────
// Registro
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterUser_CreaCliente(t *testing.T) {
	uc, _ := newUseCase()
	out, err := uc.RegisterUser(dto.RegisterRequest{
		Email: "nuevo@test.com", Password: "secreta123", FirstName: "Ana",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleClient, out.Role, "el registro público siempre crea client")
	assert.False(t, out.HasPaymentMethod)
}

func TestRegisterUser_EmailDuplicado(t *testing.T) {
	uc, _ := newUseCase()
	_, err := uc.RegisterUser(dto.RegisterRequest{Email: "dup@test.com", Password: "secreta123"})
	require.NoError(t, err)

	_, err = uc.RegisterUser(dto.RegisterRequest{Email: "dup@test.com", Password: "otra12345"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestRegisterUser_FalloDeLecturaNoCreaUsuario(t *testing.T) {
	uc, repo := newUseCase()
	repo.findErr = domain.ErrStoreUnavailable

	// Un almacenamiento caído no puede leerse como "email libre": el error
	// sube y no se intenta el Create.
	_, err := uc.RegisterUser(dto.RegisterRequest{Email: "x@test.com", Password: "secreta123"})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Zero(t, repo.createdCount, "no debe crearse ningún usuario")
}

func TestRegisterUser_CamposObligatorios(t *testing.T) {
	uc, _ := newUseCase()
	_, err := uc.RegisterUser(dto.RegisterRequest{Email: "", Password: "secreta123"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.RegisterUser(dto.RegisterRequest{Email: "a@test.com", Password: ""})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ──────────────────────────────────────────────────────────────────────────────
// Login y elevación de rol
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_CredencialesCorrectas(t *testing.T) {
	uc, _ := newUseCase()
	_, err := uc.RegisterUser(dto.RegisterRequest{Email: "login@test.com", Password: "secreta123"})
	require.NoError(t, err)

	out, err := uc.Login(dto.LoginRequest{Email: "login@test.com", Password: "secreta123"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, "login@test.com", out.User.Email)
}

func TestLogin_PasswordIncorrecta(t *testing.T) {
	uc, _ := newUseCase()
	_, err := uc.RegisterUser(dto.RegisterRequest{Email: "login@test.com", Password: "secreta123"})
	require.NoError(t, err)

	_, err = uc.Login(dto.LoginRequest{Email: "login@test.com", Password: "equivocada"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestElevateRole_SoloMasterYDesdeClient(t *testing.T) {
	uc, repo := newUseCase()
	created, err := uc.RegisterUser(dto.RegisterRequest{Email: "c@test.com", Password: "secreta123"})
	require.NoError(t, err)

	master := &authz.Session{UserID: "m1", Role: entity.RoleMasterAdmin}
	out, err := uc.ElevateRole(master, created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleSoftwareAdmin, out.Role)

	// Un software_admin no puede volver a elevarse.
	_, err = uc.ElevateRole(master, created.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)

	// Y un cliente no puede elevar a nadie.
	_, err = uc.ElevateRole(&authz.Session{UserID: created.ID, Role: entity.RoleClient}, created.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	stored, _ := repo.GetByID(created.ID)
	assert.Equal(t, entity.RoleSoftwareAdmin, stored.Role)
}

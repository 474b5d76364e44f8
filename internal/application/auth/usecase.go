package auth

import (
	"time"

	"github.com/flowfix/flowfix-api/internal/application/authz"
	"github.com/flowfix/flowfix-api/internal/application/dto"
	"github.com/flowfix/flowfix-api/internal/application/notify"
	"github.com/flowfix/flowfix-api/internal/domain"
	"github.com/flowfix/flowfix-api/internal/domain/entity"
	"github.com/flowfix/flowfix-api/internal/domain/repository"
	"github.com/flowfix/flowfix-api/pkg/jwt"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de identidad: registro, login y elevación de rol.
type AuthUseCase struct {
	userRepo repository.UserRepository
	authz    *authz.Authorizer
	notifier notify.Notifier
	jwtCfg   JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, az *authz.Authorizer, notifier notify.Notifier, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, authz: az, notifier: notifier, jwtCfg: jwtCfg}
}

// RegisterUser crea un usuario con rol client: hashea password con bcrypt y
// persiste. El registro público nunca crea admins (eso es elevación explícita).
func (uc *AuthUseCase) RegisterUser(in dto.RegisterRequest) (*dto.UserResponse, error) {
	if in.Email == "" || in.Password == "" {
		return nil, domain.ErrValidation
	}
	existing, err := uc.userRepo.FindByEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        in.Email,
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         entity.RoleClient,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// Login verifica email/password, genera JWT con el rol y retorna token + usuario.
func (uc *AuthUseCase) Login(in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.FindByEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if user.Status != "active" {
		return nil, domain.ErrForbidden
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		User:  *toUserResponse(user),
	}, nil
}

// ElevateRole promueve un usuario existente a software_admin (flujo de
// invitación de admin). Solo master_admin; queda siempre en la auditoría.
func (uc *AuthUseCase) ElevateRole(sess *authz.Session, targetUserID string) (*dto.UserResponse, error) {
	if err := uc.authz.RequireRole(sess, entity.RoleMasterAdmin); err != nil {
		return nil, err
	}
	user, err := uc.userRepo.GetByID(targetUserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if user.Role != entity.RoleClient {
		return nil, domain.ErrValidation // solo se eleva desde client
	}
	if err := uc.userRepo.UpdateRole(user.ID, entity.RoleSoftwareAdmin); err != nil {
		return nil, err
	}
	user.Role = entity.RoleSoftwareAdmin
	uc.authz.RecordOverride(sess.UserID, "user.elevate_role", "user", user.ID, "client → software_admin")
	uc.notifier.Notify(notify.EventRoleElevated, map[string]string{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return toUserResponse(user), nil
}

// SavePaymentMethod guarda las referencias del método de pago del propio usuario
// (pre-autorización requerida para aceptar propuestas).
func (uc *AuthUseCase) SavePaymentMethod(sess *authz.Session, in dto.SavePaymentMethodRequest) error {
	if err := uc.authz.RequireRole(sess, entity.RoleClient); err != nil {
		return err
	}
	if in.PaymentMethodRef == "" {
		return domain.ErrValidation
	}
	return uc.userRepo.UpdatePaymentMethod(sess.UserID, in.CustomerRef, in.PaymentMethodRef)
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:               u.ID,
		Email:            u.Email,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Role:             u.Role,
		Status:           u.Status,
		HasPaymentMethod: u.PaymentMethodRef != "",
		CreatedAt:        u.CreatedAt,
	}
}

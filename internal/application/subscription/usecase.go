package subscription

import (
	"context"
	"time"

	"github.com/flowfix/flowfix-api/internal/application/authz"
	"github.com/flowfix/flowfix-api/internal/application/dto"
	"github.com/flowfix/flowfix-api/internal/domain"
	"github.com/flowfix/flowfix-api/internal/domain/entity"
	"github.com/flowfix/flowfix-api/internal/domain/repository"
	"github.com/flowfix/flowfix-api/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UseCase implementa los paquetes de suscripción mensual por horas: alta,
// consulta y descuento de horas contra el período vigente. El cobro recurrente
// va por el mismo procesador que las facturas de proyecto.
type UseCase struct {
	repo repository.SubscriptionRepository
	log  *logger.Logger
}

// NewUseCase construye el caso de uso de suscripciones.
func NewUseCase(repo repository.SubscriptionRepository, log *logger.Logger) *UseCase {
	return &UseCase{repo: repo, log: log}
}

// ListPackages lista los paquetes disponibles (público autenticado).
func (uc *UseCase) ListPackages(ctx context.Context) ([]*dto.PackageResponse, error) {
	packages, err := uc.repo.ListPackages()
	if err != nil {
		return nil, err
	}
	out := make([]*dto.PackageResponse, 0, len(packages))
	for _, p := range packages {
		out = append(out, dto.NewPackageResponse(p))
	}
	return out, nil
}

// Subscribe suscribe al cliente a un paquete. Una sola suscripción activa por
// usuario; el período arranca hoy y dura un mes calendario.
func (uc *UseCase) Subscribe(ctx context.Context, sess *authz.Session, packageID string) (*dto.SubscriptionResponse, error) {
	if sess == nil || sess.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if sess.Role != entity.RoleClient {
		return nil, domain.ErrForbidden
	}
	pkg, err := uc.repo.GetPackage(packageID)
	if err != nil {
		return nil, err
	}
	if pkg == nil || !pkg.Active {
		return nil, domain.ErrNotFound
	}
	existing, err := uc.repo.GetActiveByUser(sess.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrValidation // ya tiene una suscripción activa
	}
	now := time.Now()
	sub := &entity.Subscription{
		ID:          uuid.New().String(),
		UserID:      sess.UserID,
		PackageID:   pkg.ID,
		HoursUsed:   decimal.Zero,
		PeriodStart: now,
		PeriodEnd:   now.AddDate(0, 1, 0),
		Status:      entity.SubscriptionActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.CreateSubscription(sub); err != nil {
		return nil, err
	}
	return dto.NewSubscriptionResponse(sub), nil
}

// GetMine devuelve la suscripción activa del usuario, rotando el período si
// ya venció (las horas usadas vuelven a cero).
func (uc *UseCase) GetMine(ctx context.Context, sess *authz.Session) (*dto.SubscriptionResponse, error) {
	if sess == nil || sess.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}
	sub, err := uc.activeWithCurrentPeriod(sess.UserID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, domain.ErrNotFound
	}
	return dto.NewSubscriptionResponse(sub), nil
}

// RecordUsage acumula horas trabajadas contra la suscripción activa del
// cliente. Sin suscripción es un no-op; las horas por encima de la asignación
// igual se acumulan y se facturan por el flujo normal del proyecto.
func (uc *UseCase) RecordUsage(userID string, hours decimal.Decimal) error {
	sub, err := uc.activeWithCurrentPeriod(userID)
	if err != nil {
		return err
	}
	if sub == nil {
		return nil
	}
	sub.HoursUsed = sub.HoursUsed.Add(hours)
	sub.UpdatedAt = time.Now()
	return uc.repo.UpdateUsage(sub)
}

// activeWithCurrentPeriod lee la suscripción activa y rota el período vencido.
func (uc *UseCase) activeWithCurrentPeriod(userID string) (*entity.Subscription, error) {
	sub, err := uc.repo.GetActiveByUser(userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, nil
	}
	now := time.Now()
	if now.After(sub.PeriodEnd) {
		for now.After(sub.PeriodEnd) {
			sub.PeriodStart = sub.PeriodEnd
			sub.PeriodEnd = sub.PeriodEnd.AddDate(0, 1, 0)
		}
		sub.HoursUsed = decimal.Zero
		sub.UpdatedAt = now
		if err := uc.repo.UpdateUsage(sub); err != nil {
			return nil, err
		}
		uc.log.Debug().Str("subscription", sub.ID).Msg("período de suscripción rotado")
	}
	return sub, nil
}

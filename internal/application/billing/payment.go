package billing

import (
	"context"
	"errors"

	"github.com/flowfix/flowfix-api/internal/application/authz"
	"github.com/flowfix/flowfix-api/internal/application/dto"
	"github.com/flowfix/flowfix-api/internal/application/notify"
	"github.com/flowfix/flowfix-api/internal/domain"
	"github.com/flowfix/flowfix-api/internal/domain/entity"
	"github.com/flowfix/flowfix-api/internal/infrastructure/payment"
)

// CreateSetupIntent abre el flujo de guardar un método de pago (solo el propio
// cliente). Crea el customer en el procesador la primera vez y persiste la
// referencia antes de devolver el client_secret.
func (uc *InvoiceUseCase) CreateSetupIntent(ctx context.Context, sess *authz.Session) (*dto.PaymentIntentResponse, error) {
	if err := uc.authz.RequireRole(sess, entity.RoleClient); err != nil {
		return nil, err
	}
	user, err := uc.userRepo.GetByID(sess.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	customerRef := user.PaymentCustomerRef
	if customerRef == "" {
		customerRef, err = uc.processor.CreateCustomer(ctx, user.Email)
		if err != nil {
			return uc.mapProcessorError(err)
		}
		if err := uc.userRepo.UpdatePaymentMethod(user.ID, customerRef, user.PaymentMethodRef); err != nil {
			return nil, err
		}
	}
	setup, err := uc.processor.CreateSetupIntent(ctx, customerRef)
	if err != nil {
		return uc.mapProcessorError(err)
	}
	return &dto.PaymentIntentResponse{ClientSecret: setup.ClientSecret}, nil
}

// CreatePaymentIntent crea el cargo off-session de una factura pendiente
// (cliente dueño del proyecto). Guarda la referencia del intent; el resultado
// final llega por webhook.
func (uc *InvoiceUseCase) CreatePaymentIntent(ctx context.Context, sess *authz.Session, invoiceID string) (*dto.PaymentIntentResponse, error) {
	invoice, err := uc.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrNotFound
	}
	project, override, err := uc.loadProjectScoped(sess, invoice.ProjectID)
	if err != nil {
		return nil, err
	}
	if sess.Role == entity.RoleSoftwareAdmin {
		return nil, domain.ErrForbidden // el pago lo dispara el cliente
	}
	if invoice.Status != entity.InvoicePending {
		return nil, domain.ErrInvalidTransition
	}

	client, err := uc.userRepo.GetByID(project.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil || client.PaymentCustomerRef == "" || client.PaymentMethodRef == "" {
		return nil, domain.ErrPaymentMethodRequired
	}

	result, err := uc.processor.CreateIntent(ctx, payment.IntentRequest{
		AmountCents:      invoice.AmountCents,
		CustomerRef:      client.PaymentCustomerRef,
		PaymentMethodRef: client.PaymentMethodRef,
		InvoiceID:        invoice.ID,
	})
	if err != nil {
		return uc.mapProcessorError(err)
	}
	if err := uc.invoiceRepo.SetPaymentIntent(invoice.ID, result.IntentRef); err != nil {
		return nil, err
	}
	if override {
		uc.authz.RecordOverride(sess.UserID, "invoice.pay", "invoice", invoice.ID, "")
	}
	return &dto.PaymentIntentResponse{ClientSecret: result.ClientSecret}, nil
}

// HandleWebhook procesa un evento ya verificado del procesador. Idempotente en
// dos capas: dedupe por event id (redis, fail-open) y update condicional
// pending→paid/failed como fuente de verdad. Un evento repetido o tardío es un
// no-op silencioso, sin notificación duplicada.
func (uc *InvoiceUseCase) HandleWebhook(ctx context.Context, event *payment.WebhookEvent) error {
	switch event.Type {
	case payment.EventIntentSucceeded, payment.EventIntentFailed:
	default:
		uc.log.Debug().Str("type", event.Type).Msg("evento de webhook ignorado")
		return nil
	}
	if event.InvoiceID == "" {
		uc.log.Warn().Str("event", event.ID).Msg("evento de webhook sin invoice_id en metadata")
		return nil
	}
	if uc.deduper != nil && !uc.deduper.AcquireOnce(ctx, "webhook", event.ID) {
		uc.log.Debug().Str("event", event.ID).Msg("evento de webhook duplicado, descartado")
		return nil
	}
	if err := uc.applyWebhookEvent(ctx, event); err != nil {
		// El procesamiento falló después de adquirir la clave: liberarla para
		// que el reintento del procesador con el mismo event id vuelva a
		// entrar. El update condicional en la base sigue siendo la fuente de
		// verdad de la idempotencia.
		if uc.deduper != nil {
			uc.deduper.Release(ctx, "webhook", event.ID)
		}
		return err
	}
	return nil
}

func (uc *InvoiceUseCase) applyWebhookEvent(ctx context.Context, event *payment.WebhookEvent) error {
	invoice, err := uc.invoiceRepo.GetByID(event.InvoiceID)
	if err != nil {
		return err
	}
	if invoice == nil {
		uc.log.Warn().Str("invoice", event.InvoiceID).Msg("webhook referencia una factura inexistente")
		return nil
	}

	switch event.Type {
	case payment.EventIntentSucceeded:
		ok, err := uc.invoiceRepo.MarkPaid(invoice.ID)
		if err != nil {
			return err
		}
		if !ok {
			return nil // ya resuelta por un evento anterior
		}
		uc.notifier.Notify(notify.EventInvoicePaid, map[string]string{
			"project_id": invoice.ProjectID,
			"invoice_id": invoice.ID,
		})
	case payment.EventIntentFailed:
		ok, err := uc.invoiceRepo.MarkFailed(invoice.ID)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		uc.notifier.Notify(notify.EventInvoiceFailed, map[string]string{
			"project_id": invoice.ProjectID,
			"invoice_id": invoice.ID,
		})
	}
	return nil
}

// mapProcessorError traduce los fallos del procesador a la respuesta del
// cliente: credencial ausente → requires_setup (no es culpa del cliente);
// rechazo de tarjeta se propaga como sentinela.
func (uc *InvoiceUseCase) mapProcessorError(err error) (*dto.PaymentIntentResponse, error) {
	if errors.Is(err, domain.ErrPaymentNotConfigured) {
		uc.log.Error().Err(err).Msg("procesador de pagos sin configurar")
		return &dto.PaymentIntentResponse{
			RequiresSetup: true,
			Reason:        "procesador de pagos no configurado",
		}, nil
	}
	return nil, err
}

package notify

import (
	"github.com/flowfix/flowfix-api/pkg/logger"
)

// Tipos de evento publicados por los servicios de ciclo de vida y facturación.
// La routing key es el propio tipo (topic exchange).
const (
	EventProjectAssigned  = "project.assigned"
	EventProjectStarted   = "project.started"
	EventProjectCompleted = "project.completed"
	EventProjectCancelled = "project.cancelled"
	EventProposalCreated  = "proposal.created"
	EventProposalAccepted = "proposal.accepted"
	EventProposalRejected = "proposal.rejected"
	EventInvoiceCreated   = "invoice.created"
	EventInvoicePaid      = "invoice.paid"
	EventInvoiceFailed    = "invoice.failed"
	EventRoleElevated     = "user.role_elevated"
)

// Notifier es el contrato que consumen los casos de uso: fire-and-forget,
// retorna de inmediato y nunca propaga errores al caller.
type Notifier interface {
	Notify(eventKind string, payload any)
}

// Publisher es el puerto hacia el broker (lo implementa amqp.Publisher).
type Publisher interface {
	Publish(routingKey string, payload any) error
}

// Dispatcher implementa Notifier publicando en una goroutine aparte.
// El despacho no retiene locks ni transacciones del caller; un fallo de
// entrega se registra y jamás revierte la transición que lo disparó.
type Dispatcher struct {
	pub Publisher
	log *logger.Logger
}

// NewDispatcher construye el dispatcher. pub puede ser nil (sin broker
// configurado): los eventos solo se registran en el log.
func NewDispatcher(pub Publisher, log *logger.Logger) *Dispatcher {
	return &Dispatcher{pub: pub, log: log}
}

// Notify publica el evento de forma asíncrona y retorna de inmediato.
func (d *Dispatcher) Notify(eventKind string, payload any) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				d.log.Error().Interface("panic", r).Str("event", eventKind).Msg("pánico en despacho de notificación")
			}
		}()
		if d.pub == nil {
			d.log.Debug().Str("event", eventKind).Msg("notificación descartada: broker no configurado")
			return
		}
		if err := d.pub.Publish(eventKind, payload); err != nil {
			d.log.Error().Err(err).Str("event", eventKind).Msg("fallo al publicar notificación")
		}
	}()
}

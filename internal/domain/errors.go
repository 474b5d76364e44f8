package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Cada uno representa un "kind" estable que la capa HTTP traduce a un status
// y un mensaje legible; el detalle interno solo se registra en el log.
var (
	ErrUnauthenticated       = errors.New("sesión requerida")
	ErrUnauthorized          = errors.New("credenciales inválidas")
	ErrForbidden             = errors.New("acceso denegado")
	ErrNotFound              = errors.New("recurso no encontrado")
	ErrUserNotFound          = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists    = errors.New("el email ya está registrado")
	ErrValidation            = errors.New("entrada inválida")
	ErrInvalidTransition     = errors.New("transición de estado no permitida")
	ErrConflictingProposal   = errors.New("ya existe una propuesta pendiente para el proyecto")
	ErrPaymentMethodRequired = errors.New("se requiere un método de pago guardado")
	ErrPaymentNotConfigured  = errors.New("procesador de pagos no configurado")
	ErrPaymentDeclined       = errors.New("el procesador rechazó el pago")
	ErrNothingToBill         = errors.New("no hay horas sin facturar")
	ErrStoreUnavailable      = errors.New("almacenamiento no disponible")
)

package dto

import "time"

// RegisterRequest alta de usuario (siempre rol client; los admins se elevan después).
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// LoginRequest credenciales de acceso.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse vista pública de un usuario.
type UserResponse struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Role             string    `json:"role"`
	Status           string    `json:"status"`
	HasPaymentMethod bool      `json:"has_payment_method"`
	CreatedAt        time.Time `json:"created_at"`
}

// LoginResponse token más usuario.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// SavePaymentMethodRequest referencias del método de pago guardado en el procesador.
type SavePaymentMethodRequest struct {
	CustomerRef      string `json:"customer_ref"`
	PaymentMethodRef string `json:"payment_method_ref"`
}

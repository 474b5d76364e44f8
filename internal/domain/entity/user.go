package entity

import "time"

// Roles válidos para User.
const (
	RoleClient        = "client"
	RoleSoftwareAdmin = "software_admin"
	RoleMasterAdmin   = "master_admin"
)

// ValidRole verifica que el rol pertenezca al conjunto cerrado de roles.
func ValidRole(role string) bool {
	switch role {
	case RoleClient, RoleSoftwareAdmin, RoleMasterAdmin:
		return true
	}
	return false
}

// User representa un usuario del sistema.
// El rol es inmutable salvo por la elevación explícita de un master_admin.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	FirstName    string
	LastName     string
	Role         string // client, software_admin, master_admin
	Status       string // active, inactive, suspended
	// Referencias opacas al procesador de pagos. PaymentMethodRef no vacío
	// es la pre-autorización que exige la aceptación de propuestas.
	PaymentCustomerRef string
	PaymentMethodRef   string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

package auth

// Role define el rol del usuario dentro de Kaupod.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Claims representa la información extraída del token.
type Claims struct {
	UserID string
	Email  string
	Role   Role
}

// IsAdmin centraliza el chequeo de rol para los endpoints /admin.
func (c Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

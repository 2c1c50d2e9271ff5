package auth

// Claims representa la identidad resuelta desde el token de sesión.
type Claims struct {
	UserID string
	Role   string
	Email  string
}

const (
	RolePatient = "patient"
	RoleAdmin   = "admin"
)

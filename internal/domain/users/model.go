package users

import "time"

// Role define los roles soportados.
// @Enum patient, admin
type Role string

const (
	RolePatient Role = "patient"
	RoleAdmin   Role = "admin"
)

// User representa una cuenta (paciente o admin).
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Email        string
	Role         Role
	FullName     string

	CreatedAt time.Time
}

// Session es una sesión server-side con TTL.
// El token viaja en cookie o header Bearer; nunca se persiste el password plano.
type Session struct {
	Token     string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

package auth

import "context"

// SessionVerifier resuelve un token de sesión a claims o error.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

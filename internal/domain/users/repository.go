package users

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("user not found")
	ErrSessionNotFound = errors.New("session not found")
)

type Repository interface {
	Create(ctx context.Context, u User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	ListByRole(ctx context.Context, role Role) ([]User, error)
}

type SessionRepository interface {
	Create(ctx context.Context, s Session) error
	GetByToken(ctx context.Context, token string) (Session, error)
	Delete(ctx context.Context, token string) error
}

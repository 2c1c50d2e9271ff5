package notifications

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("notification not found")

type Repository interface {
	Create(ctx context.Context, n Notification) error
	GetByID(ctx context.Context, id string) (Notification, error)

	// ListByUser ordena por createdAt descendente, limitado.
	ListByUser(ctx context.Context, userID string, limit int) ([]Notification, error)

	MarkRead(ctx context.Context, id string) error

	// DeleteReadBefore limpia notificaciones leídas anteriores a cutoff.
	// Lo dispara el job diario de mantenimiento.
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int, error)
}

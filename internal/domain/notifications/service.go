package notifications

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidInput = errors.New("invalid input")

const defaultListLimit = 50

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	MedicineID   *string
	Title        string
	Message      string
	Type         Type
	ScheduledFor *time.Time
}

func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Notification, error) {
	if strings.TrimSpace(userID) == "" {
		return Notification{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Message) == "" {
		return Notification{}, ErrInvalidInput
	}

	typ := in.Type
	if typ == "" {
		typ = TypeReminder
	}
	if typ != TypeReminder && typ != TypeAlert && typ != TypeInfo {
		return Notification{}, ErrInvalidInput
	}

	n := Notification{
		ID:           uuid.NewString(),
		UserID:       userID,
		MedicineID:   in.MedicineID,
		Title:        strings.TrimSpace(in.Title),
		Message:      strings.TrimSpace(in.Message),
		Type:         typ,
		Read:         false,
		ScheduledFor: in.ScheduledFor,
		CreatedAt:    s.now(),
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return Notification{}, err
	}
	return n, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Notification, error) {
	return s.repo.ListByUser(ctx, userID, defaultListLimit)
}

func (s *Service) MarkRead(ctx context.Context, id, userID string) (Notification, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Notification{}, ErrInvalidInput
	}

	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Notification{}, err
	}
	if n.UserID != userID {
		return Notification{}, ErrNotFound
	}

	if err := s.repo.MarkRead(ctx, id); err != nil {
		return Notification{}, err
	}
	n.Read = true
	return n, nil
}

// PruneRead borra notificaciones leídas con más de `age` de antigüedad.
func (s *Service) PruneRead(ctx context.Context, age time.Duration) (int, error) {
	return s.repo.DeleteReadBefore(ctx, s.now().Add(-age))
}

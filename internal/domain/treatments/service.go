package treatments

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidInput = errors.New("invalid input")

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
	Name        string
	Description string
	StartDate   *time.Time
	EndDate     *time.Time
}

func (s *Service) Create(ctx context.Context, patientID string, in CreateInput) (Treatment, error) {
	if strings.TrimSpace(patientID) == "" {
		return Treatment{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Treatment{}, ErrInvalidInput
	}

	now := s.now()
	start := now
	if in.StartDate != nil {
		start = *in.StartDate
	}

	t := Treatment{
		ID:          uuid.NewString(),
		PatientID:   patientID,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Status:      StatusActive,
		StartDate:   start,
		EndDate:     in.EndDate,
		CreatedAt:   now,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return Treatment{}, err
	}
	return t, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Treatment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Treatment{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID string) ([]Treatment, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

type UpdateInput struct {
	// Punteros para PATCH real: nil = no tocar.
	Name        *string
	Description *string
	Status      *string
	EndDate     *time.Time
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Treatment, error) {
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return Treatment{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Treatment{}, ErrInvalidInput
		}
		t.Name = name
	}
	if in.Description != nil {
		t.Description = strings.TrimSpace(*in.Description)
	}
	if in.Status != nil {
		st := Status(strings.TrimSpace(*in.Status))
		if st != StatusActive && st != StatusCompleted && st != StatusPaused {
			return Treatment{}, ErrInvalidInput
		}
		t.Status = st
	}
	if in.EndDate != nil {
		t.EndDate = in.EndDate
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return Treatment{}, err
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}

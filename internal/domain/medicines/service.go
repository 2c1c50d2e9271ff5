package medicines

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrBadScheduleTime = errors.New("scheduleTime must be HH:MM (24h)")
)

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
	TreatmentID  string
	Name         string
	Dosage       string
	Frequency    string
	ScheduleTime string
	Instructions string
	Stock        int
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Medicine, error) {
	if strings.TrimSpace(in.TreatmentID) == "" {
		return Medicine{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Dosage) == "" {
		return Medicine{}, ErrInvalidInput
	}

	sched, err := normalizeScheduleTime(in.ScheduleTime)
	if err != nil {
		return Medicine{}, err
	}

	if in.Stock < 0 {
		return Medicine{}, ErrInvalidInput
	}

	m := Medicine{
		ID:           uuid.NewString(),
		TreatmentID:  strings.TrimSpace(in.TreatmentID),
		Name:         strings.TrimSpace(in.Name),
		Dosage:       strings.TrimSpace(in.Dosage),
		Frequency:    strings.TrimSpace(in.Frequency),
		ScheduleTime: sched,
		Instructions: strings.TrimSpace(in.Instructions),
		Stock:        in.Stock,
		CreatedAt:    s.now(),
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return Medicine{}, err
	}
	return m, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Medicine, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Medicine{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByTreatment(ctx context.Context, treatmentID string) ([]Medicine, error) {
	return s.repo.ListByTreatment(ctx, treatmentID)
}

func (s *Service) ListByPatient(ctx context.Context, patientID string) ([]Medicine, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

type UpdateInput struct {
	// Punteros para PATCH real: nil = no tocar.
	Name         *string
	Dosage       *string
	Frequency    *string
	ScheduleTime *string
	Instructions *string
	Stock        *int
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Medicine, error) {
	m, err := s.GetByID(ctx, id)
	if err != nil {
		return Medicine{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Medicine{}, ErrInvalidInput
		}
		m.Name = name
	}
	if in.Dosage != nil {
		m.Dosage = strings.TrimSpace(*in.Dosage)
	}
	if in.Frequency != nil {
		m.Frequency = strings.TrimSpace(*in.Frequency)
	}
	if in.ScheduleTime != nil {
		sched, err := normalizeScheduleTime(*in.ScheduleTime)
		if err != nil {
			return Medicine{}, err
		}
		m.ScheduleTime = sched
	}
	if in.Instructions != nil {
		m.Instructions = strings.TrimSpace(*in.Instructions)
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return Medicine{}, ErrInvalidInput
		}
		m.Stock = *in.Stock
	}

	if err := s.repo.Update(ctx, m); err != nil {
		return Medicine{}, err
	}
	return m, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}

// DecrementStock baja el stock en 1 con piso en 0.
// Se invoca al registrar una toma; best-effort desde el caller.
func (s *Service) DecrementStock(ctx context.Context, id string) error {
	m, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if m.Stock <= 0 {
		return nil
	}
	m.Stock--
	return s.repo.Update(ctx, m)
}

// normalizeScheduleTime valida "HH:MM" 24h y lo devuelve zero-padded.
func normalizeScheduleTime(s string) (string, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return "", ErrBadScheduleTime
	}

	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return "", ErrBadScheduleTime
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", ErrBadScheduleTime
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return "", ErrBadScheduleTime
	}

	return fmt.Sprintf("%02d:%02d", h, m), nil
}

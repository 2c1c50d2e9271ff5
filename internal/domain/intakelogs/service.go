package intakelogs

import (
	"context"
	"errors"
	"strings"
	"time"

	"mediflow/internal/platform/logger"

	"github.com/google/uuid"
)

var ErrInvalidInput = errors.New("invalid input")

// StockSink descuenta stock al registrar una toma. Best-effort.
type StockSink interface {
	DecrementStock(ctx context.Context, medicineID string) error
}

type Service struct {
	repo  Repository
	stock StockSink // puede ser nil
	log   logger.Logger
	now   func() time.Time
}

func NewService(repo Repository, stock StockSink, log logger.Logger) *Service {
	if log == nil {
		log = logger.Noop{}
	}
	return &Service{
		repo:  repo,
		stock: stock,
		log:   log,
		now:   time.Now,
	}
}

type CreateInput struct {
	MedicineID    string
	ScheduledTime time.Time
	TakenTime     *time.Time
	Status        Status
	Notes         string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (IntakeLog, error) {
	if strings.TrimSpace(in.MedicineID) == "" {
		return IntakeLog{}, ErrInvalidInput
	}
	if in.ScheduledTime.IsZero() {
		return IntakeLog{}, ErrInvalidInput
	}

	status := in.Status
	if status == "" {
		status = StatusPending
	}
	if status != StatusTaken && status != StatusMissed && status != StatusPending {
		return IntakeLog{}, ErrInvalidInput
	}

	now := s.now()
	taken := in.TakenTime
	if status == StatusTaken && taken == nil {
		taken = &now
	}
	if status != StatusTaken {
		taken = nil
	}

	l := IntakeLog{
		ID:            uuid.NewString(),
		MedicineID:    strings.TrimSpace(in.MedicineID),
		ScheduledTime: in.ScheduledTime,
		TakenTime:     taken,
		Status:        status,
		Notes:         strings.TrimSpace(in.Notes),
		CreatedAt:     now,
	}

	if err := s.repo.Create(ctx, l); err != nil {
		return IntakeLog{}, err
	}

	// Stock: efecto secundario no crítico; no bloquea el registro.
	if status == StatusTaken && s.stock != nil {
		if err := s.stock.DecrementStock(ctx, l.MedicineID); err != nil {
			s.log.Warn("stock decrement failed", map[string]any{
				"medicine_id": l.MedicineID,
				"err":         err.Error(),
			})
		}
	}

	return l, nil
}

func (s *Service) ListByMedicine(ctx context.Context, medicineID string) ([]IntakeLog, error) {
	return s.repo.ListByMedicine(ctx, medicineID)
}

func (s *Service) GetRecent(ctx context.Context, medicineID string) (IntakeLog, error) {
	medicineID = strings.TrimSpace(medicineID)
	if medicineID == "" {
		return IntakeLog{}, ErrInvalidInput
	}
	return s.repo.GetRecent(ctx, medicineID)
}

// GetToday devuelve el log `taken` de hoy para la medicina, o ErrNotFound.
func (s *Service) GetToday(ctx context.Context, medicineID string) (IntakeLog, error) {
	medicineID = strings.TrimSpace(medicineID)
	if medicineID == "" {
		return IntakeLog{}, ErrInvalidInput
	}
	return s.repo.GetTakenOn(ctx, medicineID, s.now())
}

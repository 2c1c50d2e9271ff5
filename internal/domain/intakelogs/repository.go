package intakelogs

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("intake log not found")

	// ErrAlreadyTakenToday: ya existe un log `taken` para esa medicina
	// en ese día calendario. El insert debe ser check-then-insert atómico
	// (única serialización real entre sesiones concurrentes del paciente).
	ErrAlreadyTakenToday = errors.New("medicine already marked as taken today")
)

type Repository interface {
	// Create inserta el log. Si in.Status == taken y ya hay un taken para
	// (medicina, día calendario de ScheduledTime) retorna ErrAlreadyTakenToday.
	Create(ctx context.Context, l IntakeLog) error

	GetByID(ctx context.Context, id string) (IntakeLog, error)

	// ListByMedicine ordena por scheduledTime descendente.
	ListByMedicine(ctx context.Context, medicineID string) ([]IntakeLog, error)

	// GetRecent devuelve el último log creado para la medicina.
	GetRecent(ctx context.Context, medicineID string) (IntakeLog, error)

	// GetTakenOn busca el log `taken` de la medicina en el día calendario de day.
	GetTakenOn(ctx context.Context, medicineID string, day time.Time) (IntakeLog, error)
}
